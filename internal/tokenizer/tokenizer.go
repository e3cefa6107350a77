package tokenizer

import (
	"io"
	"strings"

	shapetokenizer "github.com/shapestone/shape-core/pkg/tokenizer"
)

// Options configures the tokenizer behavior.
type Options struct {
	// Mode is the quote-error policy. Default: ModeLenient
	Mode Mode
}

// DefaultOptions returns default tokenizer options.
func DefaultOptions() Options {
	return Options{
		Mode: ModeLenient,
	}
}

// action is the event produced by one transition.
type action int

const (
	actNone action = iota
	actEndField
	actEndRow
)

// Tokenizer turns a character stream into rows of nullable fields.
//
// The grammar is RFC 4180 with Spec D deviations:
//   - a field is null only if it held no characters and was never quoted
//   - a quote after unquoted content, or text after a closing quote, is an
//     error in ModeStrict and is absorbed in ModeLenient
//   - blank lines yield nothing
//
// A Tokenizer reads one character at a time and is not restartable: once Next
// returns an error (including io.EOF) every later call returns the same error.
// It is not safe for concurrent use.
type Tokenizer struct {
	stream shapetokenizer.Stream
	opts   Options

	state  State
	field  strings.Builder
	quoted bool
	row    Row

	// position of the last character read, and of the next one
	line, column         int
	nextLine, nextColumn int

	records int
	err     error
}

// NewTokenizer creates a lenient tokenizer over an in-memory string.
func NewTokenizer(input string) *Tokenizer {
	return NewTokenizerWithOptions(input, DefaultOptions())
}

// NewTokenizerWithOptions creates a tokenizer over an in-memory string with custom options.
func NewTokenizerWithOptions(input string, opts Options) *Tokenizer {
	return NewTokenizerWithStream(shapetokenizer.NewStream(input), opts)
}

// NewTokenizerFromReader creates a tokenizer that streams from r.
func NewTokenizerFromReader(r io.Reader, opts Options) *Tokenizer {
	return NewTokenizerWithStream(shapetokenizer.NewStreamFromReader(r), opts)
}

// NewTokenizerWithStream creates a tokenizer using a pre-configured stream.
func NewTokenizerWithStream(stream shapetokenizer.Stream, opts Options) *Tokenizer {
	return &Tokenizer{
		stream:     stream,
		opts:       opts,
		state:      StateFieldStart,
		nextLine:   1,
		nextColumn: 1,
	}
}

// Next returns the next row. It returns io.EOF when the input is exhausted,
// or a *ParseError on a strict-mode quoting violation. The returned row is
// owned by the caller.
func (t *Tokenizer) Next() (Row, error) {
	if t.err != nil {
		return nil, t.err
	}

	for {
		ch, ok := t.read()
		if !ok {
			t.err = io.EOF
			if t.pending() {
				return t.endRow(), nil
			}
			return nil, io.EOF
		}

		// CRLF terminates a row everywhere except inside a quoted run.
		if ch == '\r' && t.state != StateQuoted {
			if next, ok := t.stream.PeekChar(); ok && next == '\n' {
				t.read()
				ch = '\n'
			}
		}

		act, err := t.step(ch)
		if err != nil {
			t.err = err
			return nil, err
		}

		switch act {
		case actEndField:
			t.endField()
		case actEndRow:
			if len(t.row) == 0 && t.field.Len() == 0 && !t.quoted {
				// blank line
				continue
			}
			return t.endRow(), nil
		}
	}
}

// ReadAll reads every remaining row.
func (t *Tokenizer) ReadAll() ([]Row, error) {
	var rows []Row
	for {
		row, err := t.Next()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
}

// Records returns the number of rows yielded so far.
func (t *Tokenizer) Records() int {
	return t.records
}

// step applies one character to the current state.
func (t *Tokenizer) step(ch rune) (action, error) {
	switch t.state {
	case StateUnquoted:
		return t.unquoted(ch)
	case StateQuoted:
		return t.inQuotes(ch), nil
	case StateQuoteSeen:
		return t.quoteSeen(ch)
	case StateDiscard:
		return t.discard(ch), nil
	default:
		return t.fieldStart(ch), nil
	}
}

func (t *Tokenizer) fieldStart(ch rune) action {
	switch ch {
	case '"':
		t.quoted = true
		t.state = StateQuoted
	case ',':
		return actEndField
	case '\n':
		return actEndRow
	default:
		t.field.WriteRune(ch)
		t.state = StateUnquoted
	}
	return actNone
}

func (t *Tokenizer) unquoted(ch rune) (action, error) {
	switch ch {
	case '"':
		if t.opts.Mode == ModeStrict {
			return actNone, t.errorf(ErrQuoteAfterContent)
		}
		// the quote is dropped and the field stays unquoted
	case ',':
		return actEndField, nil
	case '\n':
		return actEndRow, nil
	default:
		t.field.WriteRune(ch)
	}
	return actNone, nil
}

func (t *Tokenizer) inQuotes(ch rune) action {
	if ch == '"' {
		t.state = StateQuoteSeen
		return actNone
	}
	t.field.WriteRune(ch)
	return actNone
}

func (t *Tokenizer) quoteSeen(ch rune) (action, error) {
	switch ch {
	case '"':
		t.field.WriteByte('"')
		t.state = StateQuoted
	case ',':
		return actEndField, nil
	case '\n':
		return actEndRow, nil
	default:
		if t.opts.Mode == ModeStrict {
			return actNone, t.errorf(ErrDanglingQuote)
		}
		t.state = StateDiscard
	}
	return actNone, nil
}

func (t *Tokenizer) discard(ch rune) action {
	switch ch {
	case ',':
		return actEndField
	case '\n':
		return actEndRow
	}
	return actNone
}

// pending reports whether there is a partially read row at end of input.
func (t *Tokenizer) pending() bool {
	return len(t.row) > 0 || t.field.Len() > 0 || t.quoted
}

func (t *Tokenizer) endField() {
	if t.field.Len() == 0 && !t.quoted {
		t.row = append(t.row, NullField())
	} else {
		t.row = append(t.row, StringField(t.field.String()))
	}
	t.field.Reset()
	t.quoted = false
	t.state = StateFieldStart
}

func (t *Tokenizer) endRow() Row {
	t.endField()
	row := t.row
	t.row = nil
	t.records++
	return row
}

// read consumes one character and tracks its position.
func (t *Tokenizer) read() (rune, bool) {
	ch, ok := t.stream.NextChar()
	if !ok {
		return 0, false
	}
	t.line, t.column = t.nextLine, t.nextColumn
	if ch == '\n' {
		t.nextLine++
		t.nextColumn = 1
	} else {
		t.nextColumn++
	}
	return ch, true
}

func (t *Tokenizer) errorf(err error) *ParseError {
	return &ParseError{
		Line:   t.line,
		Column: t.column,
		Record: t.records,
		Err:    err,
	}
}
