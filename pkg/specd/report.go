package specd

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Severity is the level of a finding.
type Severity int

const (
	// SeverityInfo is an informational note.
	SeverityInfo Severity = iota
	// SeverityWarning is a diagnostic that does not affect the verdict.
	SeverityWarning
	// SeverityError fails the validation.
	SeverityError
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("Severity(%d)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Code identifies the kind of a finding.
type Code string

const (
	CodeCheck             Code = "check"
	CodeHeader            Code = "header"
	CodeHeaderType        Code = "header-type"
	CodeDuplicateLabel    Code = "duplicate-label"
	CodeHeaderWhitespace  Code = "header-whitespace"
	CodeFileWhitespace    Code = "file-label-whitespace"
	CodeFilePlacement     Code = "file-placement"
	CodeFileColumnType    Code = "file-column-type"
	CodeFileColumnMissing Code = "file-column-missing"
	CodeFirstRow          Code = "first-row"
	CodeDeferredType      Code = "deferred-type"
	CodeColumnCount       Code = "column-count"
	CodeTypeMismatch      Code = "type-mismatch"
	CodeTypePromotion     Code = "type-promotion"
	CodeWhitespace        Code = "whitespace"
	CodeMissingFile       Code = "missing-file"
	CodeFileCount         Code = "file-count"
	CodeRowCount          Code = "row-count"
	CodeQuick             Code = "quick"
	CodeFatal             Code = "fatal"
)

// Finding is one entry of a Report.
type Finding struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Code     Code     `json:"code" yaml:"code"`
	// Row is 0 for the header, n for data row n, and -1 for the whole file.
	Row int `json:"row" yaml:"row"`
	// Column is the 0-indexed column, or -1.
	Column  int    `json:"column" yaml:"column"`
	Message string `json:"message" yaml:"message"`
}

// String formats the finding for display.
func (f Finding) String() string {
	switch {
	case f.Row < 0:
		return fmt.Sprintf("%s: %s", f.Severity, f.Message)
	case f.Row == 0:
		return fmt.Sprintf("%s: header: %s", f.Severity, f.Message)
	default:
		return fmt.Sprintf("%s: row #%d: %s", f.Severity, f.Row, f.Message)
	}
}

// Report accumulates the findings of one validation run in emission order.
// Each finding is also logged as it is recorded.
type Report struct {
	// Catalog is the path of the validated catalog.
	Catalog string `json:"catalog" yaml:"catalog"`
	// Rows is the number of data rows scanned in the full pass.
	Rows int `json:"rows" yaml:"rows"`
	// FilesReferenced is the number of non-null file column values.
	FilesReferenced int `json:"files_referenced" yaml:"files_referenced"`
	// FilesFound is the number of referenced files that exist.
	FilesFound int `json:"files_found" yaml:"files_found"`
	// Types is the final TypeVector.
	Types TypeVector `json:"-" yaml:"-"`

	findings []Finding
	log      logrus.FieldLogger
}

// NewReport creates an empty report that logs to logger.
// A nil logger discards log output.
func NewReport(catalog string, logger logrus.FieldLogger) *Report {
	if logger == nil {
		logger = discardLogger()
	}
	return &Report{
		Catalog: catalog,
		log:     logger.WithField("catalog", catalog),
	}
}

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Add records a finding.
func (r *Report) Add(f Finding) {
	r.findings = append(r.findings, f)

	entry := r.log.WithField("code", f.Code)
	if f.Row >= 0 {
		entry = entry.WithField("row", f.Row)
	}
	if f.Column >= 0 {
		entry = entry.WithField("column", f.Column)
	}
	switch f.Severity {
	case SeverityError:
		entry.Error(f.Message)
	case SeverityWarning:
		entry.Warn(f.Message)
	default:
		entry.Info(f.Message)
	}
}

// Infof records an informational note.
func (r *Report) Infof(code Code, row, column int, format string, args ...any) {
	r.Add(Finding{Severity: SeverityInfo, Code: code, Row: row, Column: column, Message: fmt.Sprintf(format, args...)})
}

// Warnf records a warning.
func (r *Report) Warnf(code Code, row, column int, format string, args ...any) {
	r.Add(Finding{Severity: SeverityWarning, Code: code, Row: row, Column: column, Message: fmt.Sprintf(format, args...)})
}

// Errorf records an error.
func (r *Report) Errorf(code Code, row, column int, format string, args ...any) {
	r.Add(Finding{Severity: SeverityError, Code: code, Row: row, Column: column, Message: fmt.Sprintf(format, args...)})
}

// Findings returns every finding in emission order.
func (r *Report) Findings() []Finding {
	return append([]Finding(nil), r.findings...)
}

// Filter returns the findings with the given severity.
func (r *Report) Filter(sev Severity) []Finding {
	var out []Finding
	for _, f := range r.findings {
		if f.Severity == sev {
			out = append(out, f)
		}
	}
	return out
}

// Errors returns the error-level findings.
func (r *Report) Errors() []Finding {
	return r.Filter(SeverityError)
}

// Warnings returns the warning-level findings.
func (r *Report) Warnings() []Finding {
	return r.Filter(SeverityWarning)
}

// WithCode returns the findings with the given code.
func (r *Report) WithCode(code Code) []Finding {
	var out []Finding
	for _, f := range r.findings {
		if f.Code == code {
			out = append(out, f)
		}
	}
	return out
}

// HasErrors reports whether any error-level finding was recorded.
func (r *Report) HasErrors() bool {
	for _, f := range r.findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Passed is the verdict: true if no error-level finding was recorded.
func (r *Report) Passed() bool {
	return !r.HasErrors()
}
