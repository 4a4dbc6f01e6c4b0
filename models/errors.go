package models

import (
	"errors"
	"fmt"
)

// Error codes carried by ExtractError.
const (
	ErrCodeBrowser     = "BROWSER_FAILED"
	ErrCodeNavigation  = "NAVIGATION_FAILED"
	ErrCodeTimeout     = "ELEMENT_TIMEOUT"
	ErrCodeExtraction  = "EXTRACTION_FAILED"
	ErrCodeDiagnostics = "DIAGNOSTICS_FAILED"
)

// ExtractError is the error type returned by a failed fetch.
// Callers branch on Code instead of matching message text.
type ExtractError struct {
	Code     string
	Message  string
	Selector string // set for element-level failures
	Err      error  // wrapped original error
}

func (e *ExtractError) Error() string {
	msg := e.Message
	if e.Selector != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Selector)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// NewExtractError creates a new ExtractError.
func NewExtractError(code, message string, err error) *ExtractError {
	return &ExtractError{Code: code, Message: message, Err: err}
}

// NewElementError creates an ExtractError bound to a page selector.
func NewElementError(code, message, selector string, err error) *ExtractError {
	return &ExtractError{Code: code, Message: message, Selector: selector, Err: err}
}

// CodeOf returns the code of the first ExtractError in err's chain, or "".
func CodeOf(err error) string {
	var ee *ExtractError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}

// Retryable reports whether a second attempt could plausibly succeed:
// the page was slow, not broken.
func Retryable(err error) bool {
	switch CodeOf(err) {
	case ErrCodeTimeout, ErrCodeNavigation:
		return true
	}
	return false
}
