// Package tokenizer provides the Spec D row tokenizer on top of Shape's character streams.
package tokenizer

import "fmt"

// Field is a single nullable CSV value.
//
// Valid is false only for an unquoted, zero-length token. A quoted empty
// token ("") is a valid empty string.
type Field struct {
	Value string
	Valid bool
}

// StringField returns a non-null field holding s.
func StringField(s string) Field {
	return Field{Value: s, Valid: true}
}

// NullField returns a null field.
func NullField() Field {
	return Field{}
}

// IsNull reports whether the field is null.
func (f Field) IsNull() bool {
	return !f.Valid
}

// String returns the value, or <null> for a null field.
func (f Field) String() string {
	if !f.Valid {
		return "<null>"
	}
	return f.Value
}

// Row is an ordered sequence of fields as read from one record.
type Row []Field

// Strings returns the row values, with nulls as empty strings.
func (r Row) Strings() []string {
	out := make([]string, len(r))
	for i, f := range r {
		out[i] = f.Value
	}
	return out
}

// State is the per-field state of the tokenizer.
type State int

const (
	// StateFieldStart is the normal state before any field content.
	StateFieldStart State = iota
	// StateUnquoted accumulates unquoted content.
	StateUnquoted
	// StateQuoted is inside a quoted run.
	StateQuoted
	// StateQuoteSeen follows a quote inside a quoted run: either an escape or the close.
	StateQuoteSeen
	// StateDiscard drops input up to the next delimiter (lenient recovery only).
	StateDiscard
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateFieldStart:
		return "field-start"
	case StateUnquoted:
		return "unquoted"
	case StateQuoted:
		return "quoted"
	case StateQuoteSeen:
		return "quote-seen"
	case StateDiscard:
		return "discard"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Mode is the quote-error policy.
type Mode int

const (
	// ModeLenient silently absorbs quoting errors.
	ModeLenient Mode = iota
	// ModeStrict stops at the first quoting error.
	ModeStrict
)

// String returns the string representation of Mode.
func (m Mode) String() string {
	switch m {
	case ModeLenient:
		return "lenient"
	case ModeStrict:
		return "strict"
	default:
		return fmt.Sprintf("Mode(%d)", m)
	}
}
