// Package specd reads and validates Cinema Spec D catalogs.
//
// A Spec D catalog is a directory holding one CSV file (conventionally
// data.csv). The first row is the header. Columns whose label starts with
// FILE hold paths, relative to the catalog root, of files that belong to the
// row; they must be the trailing columns of the header.
//
// # Reading
//
// Catalog.Open returns a Scanner that streams rows, header first:
//
//	cat := specd.NewCatalog("sphere.cdb")
//	sc, err := cat.Open(specd.ModeLenient)
//	if err != nil {
//	    // handle error
//	}
//	defer sc.Close()
//	for sc.Scan() {
//	    row := sc.Row()
//	    // row[i].Valid is false for null fields
//	}
//	if err := sc.Err(); err != nil {
//	    // handle error
//	}
//
// # Validation
//
// Validate scans the catalog once for the header and first data row, then
// again from the start for every row, accumulating findings in a Report:
//
//	report, err := specd.Validate(ctx, cat, specd.DefaultOptions())
//	if err != nil {
//	    // fatal: the file could not be opened or parsed
//	}
//	if !report.Passed() {
//	    for _, f := range report.Errors() {
//	        fmt.Println(f)
//	    }
//	}
//
// # Thread Safety
//
// A Catalog holds no mutable state and may be shared. Scanner, Report and
// TypeVector values belong to one caller.
package specd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shapestone/shape-specd/internal/tokenizer"
)

const (
	// DataFileName is the conventional name of the catalog CSV.
	DataFileName = "data.csv"

	// FileColumnKeyword is the label prefix that marks a file column.
	FileColumnKeyword = "FILE"
)

// Field is a nullable CSV value.
type Field = tokenizer.Field

// Row is one record of fields.
type Row = tokenizer.Row

// Mode is the tokenizer quote-error policy.
type Mode = tokenizer.Mode

const (
	// ModeLenient ignores quoting errors.
	ModeLenient = tokenizer.ModeLenient
	// ModeStrict fails on the first quoting error.
	ModeStrict = tokenizer.ModeStrict
)

// StringField returns a non-null field holding s.
func StringField(s string) Field { return tokenizer.StringField(s) }

// NullField returns a null field.
func NullField() Field { return tokenizer.NullField() }

// ParseRows tokenizes a whole CSV document held in memory.
func ParseRows(input string, mode Mode) ([]Row, error) {
	return tokenizer.NewTokenizerWithOptions(input, tokenizer.Options{Mode: mode}).ReadAll()
}

// Catalog locates a Spec D catalog on disk.
type Catalog struct {
	// Root is the catalog directory. File column values are relative to it.
	Root string
	// DataFile is the CSV path relative to Root. Default: DataFileName
	DataFile string
}

// NewCatalog returns the catalog rooted at root using the default data file.
func NewCatalog(root string) *Catalog {
	return &Catalog{Root: root, DataFile: DataFileName}
}

// Path returns the full path of the data file.
func (c *Catalog) Path() string {
	name := c.DataFile
	if name == "" {
		name = DataFileName
	}
	return filepath.Join(c.Root, name)
}

// Name returns the base name of the catalog directory without its extension,
// e.g. "sphere" for "/data/sphere.cdb".
func (c *Catalog) Name() string {
	base := filepath.Base(filepath.Clean(c.Root))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Resolve returns the path of a file column value, relative to the root.
func (c *Catalog) Resolve(value string) string {
	return filepath.Join(c.Root, value)
}

// Open opens the data file and returns a Scanner whose first row is the header.
// It returns an error wrapping ErrOpen if the data file is not a regular file
// or cannot be opened.
func (c *Catalog) Open(mode Mode) (*Scanner, error) {
	path := c.Path()
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrOpen, path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w %q: not a regular file", ErrOpen, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrOpen, path, err)
	}
	return newScanner(f, mode), nil
}
