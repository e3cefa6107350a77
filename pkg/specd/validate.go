package specd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Options controls validation.
type Options struct {
	// Quick skips the full pass over the data rows. Only the header and the
	// first data row are checked.
	Quick bool

	// Logger receives every finding as it is recorded. Nil discards.
	Logger logrus.FieldLogger
}

// DefaultOptions returns the default validation options: a full check
// with logging discarded.
func DefaultOptions() Options {
	return Options{}
}

// Validate checks a catalog against Spec D and returns the report.
//
// The returned error is non-nil only for fatal conditions: the data file
// could not be opened, it has no header or no first data row, a strict
// parse failure, or ctx was canceled. The report is always non-nil and a
// fatal error is also recorded in it as the final finding. Otherwise the
// verdict is Report.Passed.
func Validate(ctx context.Context, cat *Catalog, opts Options) (*Report, error) {
	v := &validator{
		cat:    cat,
		opts:   opts,
		report: NewReport(cat.Root, opts.Logger),
	}
	if err := v.run(ctx); err != nil {
		v.report.Errorf(CodeFatal, -1, -1, "check failed: %q is invalid: %v", cat.Root, err)
		return v.report, err
	}
	if v.report.Passed() {
		v.report.Infof(CodeCheck, -1, -1, "check succeeded")
	} else {
		v.report.Errorf(CodeCheck, -1, -1, "check failed: %q is invalid", cat.Root)
	}
	return v.report, nil
}

// validator holds the state of one validation run.
type validator struct {
	cat    *Catalog
	opts   Options
	report *Report

	header Row
	files  []int
	types  TypeVector
}

func (v *validator) run(ctx context.Context) error {
	r := v.report
	r.Infof(CodeCheck, -1, -1, "checking %q as Spec D", v.cat.Root)

	if err := v.firstPass(ctx); err != nil {
		return err
	}
	r.Types = v.types.Clone()
	if v.opts.Quick {
		r.Infof(CodeQuick, -1, -1, "quick check, row data not checked")
		return nil
	}
	return v.fullPass(ctx)
}

// firstPass reads the header and the first data row.
func (v *validator) firstPass(ctx context.Context) error {
	r := v.report
	r.Infof(CodeCheck, -1, -1, "opening %q", v.cat.DataFile)
	sc, err := v.cat.Open(ModeStrict)
	if err != nil {
		return err
	}
	defer sc.Close()

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrNoHeader, err)
		}
		return ErrNoHeader
	}
	v.header = sc.Row()
	v.checkHeader()

	if err := ctx.Err(); err != nil {
		return err
	}
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrNoData, err)
		}
		return ErrNoData
	}
	v.checkFirstRow(sc.Row())
	return nil
}

func (v *validator) checkHeader() {
	r := v.report
	header := v.header
	r.Infof(CodeHeader, 0, -1, "header is %s", header.Strings())
	r.Infof(CodeHeader, 0, -1, "number of columns is %d", len(header))

	types := InferTypes(header)
	for i, t := range types {
		if t != TypeString {
			r.Errorf(CodeHeaderType, 0, i, "column header %q is %s, not STRING", header[i].Value, t)
		}
	}

	seen := make(map[Field]int, len(header))
	for i, f := range header {
		if first, ok := seen[f]; ok {
			r.Errorf(CodeDuplicateLabel, 0, i, "header label %q on column #%d duplicates column #%d", f.Value, i, first)
			continue
		}
		seen[f] = i
	}

	for i, f := range header {
		trimmed := strings.TrimSpace(f.Value)
		if trimmed == f.Value {
			continue
		}
		r.Warnf(CodeHeaderWhitespace, 0, i, "whitespace preceding or following header label %q", f.Value)
		if IsFileColumn(trimmed) && !IsFileColumn(f.Value) {
			r.Warnf(CodeFileWhitespace, 0, i, "header label %q has whitespace and will not be detected as a FILE column", f.Value)
		}
	}

	v.files = FileColumns(header)
	r.Infof(CodeHeader, 0, -1, "FILE column indices are %v", v.files)
	for _, msg := range CheckFileColumns(header) {
		r.Errorf(CodeFilePlacement, 0, -1, "%s", msg)
	}
}

func (v *validator) checkFirstRow(row Row) {
	r := v.report
	r.Infof(CodeFirstRow, 1, -1, "first data row is %s", row.Strings())

	v.types = InferTypes(row)
	r.Infof(CodeFirstRow, 1, -1, "data types are %s", v.types)
	if v.types.HasEmpty() {
		for i, t := range v.types {
			if t == TypeEmpty {
				r.Infof(CodeDeferredType, 1, i, "column #%d is EMPTY on the first row, type not determined yet", i)
			}
		}
	}

	if len(row) != len(v.header) {
		r.Errorf(CodeColumnCount, 1, -1, "first row has %d columns, header has %d", len(row), len(v.header))
	}

	for _, i := range v.files {
		if i >= len(row) {
			r.Errorf(CodeFileColumnMissing, 1, i, "FILE column #%d is beyond the %d data columns of row #1", i, len(row))
			continue
		}
		if t := v.types[i]; t != TypeString && t != TypeEmpty {
			r.Errorf(CodeFileColumnType, 1, i, "FILE column #%d is %s, not STRING or EMPTY", i, t)
		}
	}
}

// fullPass rescans the file from the start and checks every data row.
func (v *validator) fullPass(ctx context.Context) error {
	r := v.report
	sc, err := v.cat.Open(ModeStrict)
	if err != nil {
		return err
	}
	defer sc.Close()

	// Skip the header; the first pass already read it.
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrNoHeader, err)
		}
		return ErrNoHeader
	}

	n := 0
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		n++
		v.checkRow(n, sc.Row())
	}
	if err := sc.Err(); err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			return fmt.Errorf("parsing row #%d: %w", n+1, err)
		}
		return err
	}

	r.Rows = n
	r.Types = v.types.Clone()
	r.Infof(CodeRowCount, -1, -1, "number of data rows is %d", n)
	r.Infof(CodeFileCount, -1, -1, "%d of %d referenced files found", r.FilesFound, r.FilesReferenced)
	return nil
}

func (v *validator) checkRow(n int, row Row) {
	r := v.report

	if len(row) != len(v.header) {
		r.Errorf(CodeColumnCount, n, -1, "row has %d columns, header has %d: %s", len(row), len(v.header), row.Strings())
	}

	rec := v.types.Reconcile(row)
	if rec.Promoted {
		r.Infof(CodeTypePromotion, n, -1, "types updated from %s to %s", rec.Before, rec.After)
	}
	if !rec.OK {
		for _, i := range rec.Mismatched {
			r.Errorf(CodeTypeMismatch, n, i, "column #%d is %s, expected %s: %q", i, rec.Observed[i], rec.After[i], row[i].Value)
		}
	}

	for i, f := range row {
		if strings.TrimSpace(f.Value) != f.Value {
			r.Warnf(CodeWhitespace, n, i, "whitespace preceding or following value %q", f.Value)
		}
	}

	for _, i := range v.files {
		if i >= len(row) {
			r.Errorf(CodeFileColumnMissing, n, i, "unable to check FILE column #%d, not enough columns", i)
			continue
		}
		if row[i].IsNull() {
			continue
		}
		r.FilesReferenced++
		path := v.cat.Resolve(row[i].Value)
		if !fileExists(path) {
			r.Errorf(CodeMissingFile, n, i, "file %q is missing", path)
			continue
		}
		r.FilesFound++
	}
}
