package specd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ColumnType is the inferred type of a value or column.
type ColumnType int

const (
	// TypeEmpty means no informative value has been observed yet.
	TypeEmpty ColumnType = iota
	// TypeInteger is a base-10 integer.
	TypeInteger
	// TypeFloat is a floating point number, including nan and inf.
	TypeFloat
	// TypeString is any other text.
	TypeString
)

// String returns the Spec D name of the type.
func (t ColumnType) String() string {
	switch t {
	case TypeEmpty:
		return "EMPTY"
	case TypeInteger:
		return "INTEGER"
	case TypeFloat:
		return "FLOAT"
	case TypeString:
		return "STRING"
	default:
		return fmt.Sprintf("ColumnType(%d)", t)
	}
}

// SQLType returns the relational column type. An unresolved Empty column
// is stored as text.
func (t ColumnType) SQLType() string {
	switch t {
	case TypeInteger:
		return "INTEGER"
	case TypeFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}

// ColumnTypeFromSQL maps a relational column type back to a ColumnType.
func ColumnTypeFromSQL(sqlType string) (ColumnType, error) {
	switch strings.ToUpper(strings.TrimSpace(sqlType)) {
	case "INTEGER":
		return TypeInteger, nil
	case "REAL":
		return TypeFloat, nil
	case "TEXT":
		return TypeString, nil
	default:
		return TypeEmpty, fmt.Errorf("unsupported column type %q", sqlType)
	}
}

// InferType classifies one field.
//
// Null is Empty. Otherwise the value is an Integer if it parses as a base-10
// integer, else a Float if it parses as a float (case-insensitive, so nan
// and inf are floats), else a String. Out-of-range numbers keep their
// numeric type.
func InferType(f Field) ColumnType {
	if f.IsNull() {
		return TypeEmpty
	}
	if _, err := strconv.ParseInt(f.Value, 10, 64); err == nil || errors.Is(err, strconv.ErrRange) {
		return TypeInteger
	}
	if _, err := strconv.ParseFloat(strings.ToLower(f.Value), 64); err == nil || errors.Is(err, strconv.ErrRange) {
		return TypeFloat
	}
	return TypeString
}

// TypeVector is the per-column type of a catalog, evolving as rows are read.
type TypeVector []ColumnType

// InferTypes returns the type of every field in row.
func InferTypes(row Row) TypeVector {
	tv := make(TypeVector, len(row))
	for i, f := range row {
		tv[i] = InferType(f)
	}
	return tv
}

// Clone returns a copy of the vector.
func (tv TypeVector) Clone() TypeVector {
	return append(TypeVector(nil), tv...)
}

// HasEmpty reports whether any column is still unresolved.
func (tv TypeVector) HasEmpty() bool {
	for _, t := range tv {
		if t == TypeEmpty {
			return true
		}
	}
	return false
}

// Strings returns the type names.
func (tv TypeVector) Strings() []string {
	out := make([]string, len(tv))
	for i, t := range tv {
		out[i] = t.String()
	}
	return out
}

// String formats the vector as (A, B, C).
func (tv TypeVector) String() string {
	return "(" + strings.Join(tv.Strings(), ", ") + ")"
}

// Reconciliation is the outcome of checking one row against a TypeVector.
type Reconciliation struct {
	// OK is false if any column holds a value of the wrong type.
	OK bool
	// Promoted is true if an Empty column was resolved by this row.
	Promoted bool
	// Before is the vector before the row was applied.
	Before TypeVector
	// After is the vector after promotion.
	After TypeVector
	// Observed is the inferred type of each field of the row.
	Observed TypeVector
	// Mismatched lists the indices of columns that failed.
	Mismatched []int
}

// Reconcile checks row against the vector and updates it in place.
//
// Each Empty column takes the type of the row's value when that value is
// concrete. A value is accepted when it is null, when the column is still
// Empty, when its type equals the column type, or when it is the text "nan"
// (any case) in a String column. Columns beyond the shorter of the row and
// the vector are not compared.
func (tv TypeVector) Reconcile(row Row) Reconciliation {
	res := Reconciliation{
		OK:       true,
		Before:   tv.Clone(),
		Observed: InferTypes(row),
	}

	n := len(tv)
	if len(row) < n {
		n = len(row)
	}

	for i := 0; i < n; i++ {
		v := res.Observed[i]
		if tv[i] == TypeEmpty && v != TypeEmpty {
			tv[i] = v
			res.Promoted = true
		}
		h := tv[i]
		switch {
		case v == TypeEmpty, h == TypeEmpty, v == h:
		case h == TypeString && strings.ToLower(row[i].Value) == "nan":
		default:
			res.OK = false
			res.Mismatched = append(res.Mismatched, i)
		}
	}

	res.After = tv.Clone()
	return res
}

// Types resolves the catalog's TypeVector by reconciling every data row
// against the first one. Rows are read leniently and mismatches are
// ignored; use Validate to check them.
func (c *Catalog) Types(ctx context.Context) (Row, TypeVector, error) {
	sc, err := c.Open(ModeLenient)
	if err != nil {
		return nil, nil, err
	}
	defer sc.Close()

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, nil, err
		}
		return nil, nil, ErrNoHeader
	}
	header := sc.Row()

	var tv TypeVector
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if tv == nil {
			tv = InferTypes(sc.Row())
			continue
		}
		tv.Reconcile(sc.Row())
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	if tv == nil {
		return header, nil, ErrNoData
	}
	return header, tv, nil
}
