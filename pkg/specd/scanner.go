package specd

import (
	"io"

	"github.com/shapestone/shape-specd/internal/tokenizer"
)

// Scanner provides a streaming interface for reading catalog rows one at a time.
// Rows are tokenized lazily as Scan is called, so memory use does not grow
// with the file. A Scanner is not restartable; open the catalog again to
// read from the start.
//
// Example usage:
//
//	sc, _ := cat.Open(specd.ModeStrict)
//	defer sc.Close()
//
//	for sc.Scan() {
//	    row := sc.Row()
//	    fmt.Println(row)
//	}
//	if err := sc.Err(); err != nil {
//	    // handle error
//	}
type Scanner struct {
	source io.Closer
	tok    *tokenizer.Tokenizer
	row    Row
	index  int
	err    error
}

// NewScanner creates a Scanner that reads CSV from r.
// Close is a no-op unless r is an io.Closer.
func NewScanner(r io.Reader, mode Mode) *Scanner {
	return newScanner(r, mode)
}

func newScanner(r io.Reader, mode Mode) *Scanner {
	sc := &Scanner{
		tok:   tokenizer.NewTokenizerFromReader(r, tokenizer.Options{Mode: mode}),
		index: -1,
	}
	if c, ok := r.(io.Closer); ok {
		sc.source = c
	}
	return sc
}

// Scan advances to the next row.
// It returns false when there are no more rows or an error occurs.
// After Scan returns false, the Err method will return any error that occurred.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	row, err := s.tok.Next()
	if err != nil {
		s.row = nil
		if err != io.EOF {
			s.err = err
		}
		return false
	}
	s.row = row
	s.index++
	return true
}

// Row returns the current row. The header is row 0.
// This should only be called after Scan() returns true.
func (s *Scanner) Row() Row {
	return s.row
}

// Index returns the index of the current row; 0 is the header.
func (s *Scanner) Index() int {
	return s.index
}

// Err returns the error, if any, that was encountered during scanning.
// It returns nil at EOF.
func (s *Scanner) Err() error {
	return s.err
}

// Close releases the underlying file.
func (s *Scanner) Close() error {
	if s.source == nil {
		return nil
	}
	err := s.source.Close()
	s.source = nil
	return err
}

// Next returns the next row, io.EOF at the end, or the scan error.
func (s *Scanner) Next() (Row, error) {
	if s.Scan() {
		return s.row, nil
	}
	if s.err != nil {
		return nil, s.err
	}
	return nil, io.EOF
}
