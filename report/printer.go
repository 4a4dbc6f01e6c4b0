package report

import (
	"fmt"
	"io"

	"github.com/use-agent/bonrate/cleaner"
	"github.com/use-agent/bonrate/config"
	"github.com/use-agent/bonrate/models"
)

// Printer writes the console report for one fetch.
type Printer struct {
	out    io.Writer
	errOut io.Writer
	cfg    config.OutputConfig

	// debugID labels the diagnostic table section.
	debugID string
}

// NewPrinter creates a Printer writing results to out and failures to errOut.
func NewPrinter(out, errOut io.Writer, cfg config.OutputConfig, debugID string) *Printer {
	return &Printer{out: out, errOut: errOut, cfg: cfg, debugID: debugID}
}

// PrintResult writes the four labelled rates, then the debug table if enabled.
func (p *Printer) PrintResult(r *models.ExtractionResult) error {
	fmt.Fprint(p.out, "\n --- Extracted Data --- \n\n")
	for _, f := range models.RateFields {
		v, ok := displayValue(r.Value(f.ID))
		if ok {
			fmt.Fprintf(p.out, "%s: %s %s\n", f.Label, v, p.cfg.Unit)
		} else {
			fmt.Fprintf(p.out, "%s: %s\n", f.Label, v)
		}
	}

	if !p.cfg.ShowDebugTable {
		return nil
	}

	fmt.Fprintf(p.out, "\n--- Debug Parent Table for '%s' ---\n", p.debugID)
	if r.DebugTableHTML == nil {
		fmt.Fprintln(p.out, "Could not extract table HTML.")
		return nil
	}
	rendered, err := cleaner.RenderTable(*r.DebugTableHTML, p.cfg.DebugFormat)
	if err != nil {
		return fmt.Errorf("render debug table: %w", err)
	}
	fmt.Fprintln(p.out, rendered)
	return nil
}

// PrintFailure writes the fixed diagnostic block for a failed fetch.
func (p *Printer) PrintFailure(err error) {
	fmt.Fprintln(p.errOut, "\n--- An Error Occurred ---")
	fmt.Fprintln(p.errOut, err)
	fmt.Fprintln(p.errOut, "This could be a timeout. The site might be slow or blocking.")
	fmt.Fprintln(p.errOut, "Failed to fetch data.")
}
