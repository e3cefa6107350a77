package tokenizer

import (
	"errors"
	"fmt"
)

// Quoting errors reported in strict mode.
var (
	// ErrDanglingQuote indicates text after a closing quote.
	ErrDanglingQuote = errors.New("string found after closing quote")

	// ErrQuoteAfterContent indicates a quote opened after unquoted field content.
	ErrQuoteAfterContent = errors.New("string found before opening quote")
)

// ParseError is a strict-mode grammar violation with its position in the input.
type ParseError struct {
	// Line is the 1-indexed line of the offending character.
	Line int
	// Column is the 1-indexed column (in runes) of the offending character.
	Column int
	// Record is the 0-indexed record being read; the header is record 0.
	Record int
	// Err is ErrDanglingQuote or ErrQuoteAfterContent.
	Err error
}

// Error returns a formatted error message with position information.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error on line %d, column %d (record %d): %v", e.Line, e.Column, e.Record, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
