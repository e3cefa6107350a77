package specd

import (
	"errors"

	"github.com/shapestone/shape-specd/internal/tokenizer"
)

// Fatal validation errors. A fatal error stops the scan; accumulated
// problems are reported as findings instead.
var (
	// ErrOpen indicates the data file could not be opened.
	ErrOpen = errors.New("error opening")

	// ErrNoHeader indicates the data file has no header row.
	ErrNoHeader = errors.New("fatal error parsing header")

	// ErrNoData indicates the data file has no first data row.
	ErrNoData = errors.New("fatal error parsing first data row")
)

// ParseError is a strict-mode quoting violation with its position in the file.
type ParseError = tokenizer.ParseError

// Quoting errors wrapped by ParseError.
var (
	ErrDanglingQuote     = tokenizer.ErrDanglingQuote
	ErrQuoteAfterContent = tokenizer.ErrQuoteAfterContent
)
