// Package output renders validation reports and schemas for the terminal
// or as machine-readable JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/shapestone/shape-specd/pkg/specd"
)

// Mode is an output format.
type Mode string

// Output modes.
const (
	ModeText Mode = "text"
	ModeJSON Mode = "json"
	ModeYAML Mode = "yaml"
)

// Renderer writes command results to an output stream.
type Renderer struct {
	w       io.Writer
	mode    Mode
	verbose bool
	styled  bool
}

// NewRenderer returns a renderer writing to w. Text tables use box drawing
// characters when w is a terminal.
func NewRenderer(w io.Writer, mode Mode, verbose bool) *Renderer {
	return &Renderer{
		w:       w,
		mode:    mode,
		verbose: verbose,
		styled:  isTerminal(w),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// ReportDoc is the machine-readable form of a validation report.
type ReportDoc struct {
	Catalog         string          `json:"catalog" yaml:"catalog"`
	Passed          bool            `json:"passed" yaml:"passed"`
	Rows            int             `json:"rows" yaml:"rows"`
	FilesReferenced int             `json:"files_referenced" yaml:"files_referenced"`
	FilesFound      int             `json:"files_found" yaml:"files_found"`
	Types           []string        `json:"types" yaml:"types"`
	Findings        []specd.Finding `json:"findings" yaml:"findings"`
}

// NewReportDoc converts a report.
func NewReportDoc(r *specd.Report) ReportDoc {
	return ReportDoc{
		Catalog:         r.Catalog,
		Passed:          r.Passed(),
		Rows:            r.Rows,
		FilesReferenced: r.FilesReferenced,
		FilesFound:      r.FilesFound,
		Types:           r.Types.Strings(),
		Findings:        r.Findings(),
	}
}

// Column is one column of a catalog schema.
type Column struct {
	Index int    `json:"index" yaml:"index"`
	Label string `json:"label" yaml:"label"`
	Type  string `json:"type" yaml:"type"`
	File  bool   `json:"file" yaml:"file"`
}

// SchemaDoc is the machine-readable form of a catalog schema.
type SchemaDoc struct {
	Catalog string   `json:"catalog" yaml:"catalog"`
	Columns []Column `json:"columns" yaml:"columns"`
}

// NewSchemaDoc pairs header labels with their resolved types. Columns the
// type vector does not cover are EMPTY.
func NewSchemaDoc(catalog string, header specd.Row, types specd.TypeVector) SchemaDoc {
	doc := SchemaDoc{Catalog: catalog, Columns: make([]Column, len(header))}
	for i, h := range header {
		t := specd.TypeEmpty
		if i < len(types) {
			t = types[i]
		}
		doc.Columns[i] = Column{Index: i, Label: h.Value, Type: t.String(), File: specd.IsFileColumn(h.Value)}
	}
	return doc
}

// Report renders a validation report. Text output lists warnings and
// errors, plus info notes when verbose, followed by the verdict.
func (r *Renderer) Report(rep *specd.Report) error {
	switch r.mode {
	case ModeJSON:
		return r.json(NewReportDoc(rep))
	case ModeYAML:
		return r.yaml(NewReportDoc(rep))
	}

	var shown []specd.Finding
	for _, f := range rep.Findings() {
		if f.Severity != specd.SeverityInfo || r.verbose {
			shown = append(shown, f)
		}
	}
	if len(shown) > 0 {
		t := r.table()
		t.AppendHeader(table.Row{"Severity", "Row", "Column", "Code", "Message"})
		for _, f := range shown {
			t.AppendRow(table.Row{f.Severity, position(f.Row), position(f.Column), f.Code, f.Message})
		}
		t.Render()
	}

	verdict := "PASS"
	if !rep.Passed() {
		verdict = "FAIL"
	}
	_, err := fmt.Fprintf(r.w, "%s %s (%d rows, %d of %d files, %d errors, %d warnings)\n",
		verdict, rep.Catalog, rep.Rows, rep.FilesFound, rep.FilesReferenced,
		len(rep.Errors()), len(rep.Warnings()))
	return err
}

// Schema renders a catalog schema.
func (r *Renderer) Schema(doc SchemaDoc) error {
	switch r.mode {
	case ModeJSON:
		return r.json(doc)
	case ModeYAML:
		return r.yaml(doc)
	}

	t := r.table()
	t.SetTitle(doc.Catalog)
	t.AppendHeader(table.Row{"#", "Label", "Type", "File"})
	for _, c := range doc.Columns {
		file := ""
		if c.File {
			file = "yes"
		}
		t.AppendRow(table.Row{c.Index, c.Label, c.Type, file})
	}
	t.Render()
	return nil
}

// Message writes a line of plain text. Machine modes emit {"message": ...}.
func (r *Renderer) Message(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	switch r.mode {
	case ModeJSON:
		return r.json(map[string]string{"message": msg})
	case ModeYAML:
		return r.yaml(map[string]string{"message": msg})
	}
	_, err := fmt.Fprintln(r.w, msg)
	return err
}

func (r *Renderer) table() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.w)
	if r.styled {
		t.SetStyle(table.StyleLight)
	} else {
		t.SetStyle(table.StyleDefault)
	}
	return t
}

func (r *Renderer) json(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (r *Renderer) yaml(v any) error {
	enc := yaml.NewEncoder(r.w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func position(n int) string {
	if n < 0 {
		return "-"
	}
	return strconv.Itoa(n)
}
