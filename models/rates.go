package models

// Rate ids as they appear in the bonbast markup.
const (
	EURSell = "eur1"
	EURBuy  = "eur2"
	USDSell = "usd1"
	USDBuy  = "usd2"
)

// RateField describes one required page element and how it is reported.
type RateField struct {
	ID    string
	Label string
}

// Selector returns the CSS selector for the field's element.
func (f RateField) Selector() string {
	return "#" + f.ID
}

// RateFields lists the required elements in report order.
var RateFields = []RateField{
	{ID: EURSell, Label: "EUR€ Sell"},
	{ID: EURBuy, Label: "EUR€ Buy"},
	{ID: USDSell, Label: "USD$ Sell"},
	{ID: USDBuy, Label: "USD$ Buy"},
}

// ExtractionResult holds the raw texts read from one page load.
// A nil field means the element was missing or had no text content.
type ExtractionResult struct {
	EURSell *string
	EURBuy  *string
	USDSell *string
	USDBuy  *string

	// DebugTableHTML is the inner HTML of the table enclosing the debug
	// element. It is only for inspection and never affects the rates.
	DebugTableHTML *string
}

// Value returns the field for a rate id, or nil for an unknown id.
func (r *ExtractionResult) Value(id string) *string {
	switch id {
	case EURSell:
		return r.EURSell
	case EURBuy:
		return r.EURBuy
	case USDSell:
		return r.USDSell
	case USDBuy:
		return r.USDBuy
	}
	return nil
}

func (r *ExtractionResult) set(id string, v *string) {
	switch id {
	case EURSell:
		r.EURSell = v
	case EURBuy:
		r.EURBuy = v
	case USDSell:
		r.USDSell = v
	case USDBuy:
		r.USDBuy = v
	}
}

// NewExtractionResult builds a result from texts keyed by rate id.
func NewExtractionResult(texts map[string]*string, debugTable *string) *ExtractionResult {
	r := &ExtractionResult{DebugTableHTML: debugTable}
	for id, v := range texts {
		r.set(id, v)
	}
	return r
}
