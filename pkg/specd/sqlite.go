package specd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// OpenSQLite opens a SQLite database at path. An empty path or ":memory:"
// opens a private in-memory database held on a single connection.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	memory := path == "" || path == ":memory:"
	if memory {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if memory {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// ExportSQLite copies the catalog into a new table of db and returns the
// table name. An empty table name uses Catalog.Name.
//
// Columns are named by the header labels with the types resolved by
// Catalog.Types: INTEGER, REAL or TEXT. Null fields are stored as NULL.
// Rows are inserted in one transaction.
func ExportSQLite(ctx context.Context, db *sql.DB, cat *Catalog, table string) (string, error) {
	if table == "" {
		table = cat.Name()
	}

	header, types, err := cat.Types(ctx)
	if err != nil {
		return "", err
	}

	cols := make([]string, len(header))
	marks := make([]string, len(header))
	colTypes := make([]ColumnType, len(header))
	for i, h := range header {
		if i < len(types) {
			colTypes[i] = types[i]
		}
		cols[i] = quoteIdent(h.Value) + " " + colTypes[i].SQLType()
		marks[i] = "?"
	}

	create := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(table), strings.Join(cols, ", "))
	insert := fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(table), strings.Join(marks, ", "))

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, create); err != nil {
		return "", fmt.Errorf("failed to create table %q: %w", table, err)
	}
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return "", fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	sc, err := cat.Open(ModeLenient)
	if err != nil {
		return "", err
	}
	defer sc.Close()

	sc.Scan() // header
	for sc.Scan() {
		row := sc.Row()
		if len(row) != len(header) {
			return "", fmt.Errorf("row #%d has %d columns, header has %d", sc.Index(), len(row), len(header))
		}
		args := make([]any, len(row))
		for i, f := range row {
			args[i] = sqlValue(f, colTypes[i])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return "", fmt.Errorf("failed to insert row #%d: %w", sc.Index(), err)
		}
	}
	if err := sc.Err(); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}
	return table, nil
}

// sqlValue converts a field to the driver value for a column of type t.
// Values that do not parse as t are stored as text.
func sqlValue(f Field, t ColumnType) any {
	if f.IsNull() {
		return nil
	}
	switch t {
	case TypeInteger:
		if n, err := strconv.ParseInt(f.Value, 10, 64); err == nil {
			return n
		}
	case TypeFloat:
		if x, err := strconv.ParseFloat(strings.ToLower(f.Value), 64); err == nil {
			return x
		}
	}
	return f.Value
}

// ImportSQLite writes table as the catalog's data file. An existing data
// file is moved to a backup first; its new name is returned, or "" if
// there was none.
//
// File columns are moved after the other columns, keeping their relative
// order. NULL is written as a zero-length token and the empty string as "".
func ImportSQLite(ctx context.Context, db *sql.DB, table string, cat *Catalog) (string, error) {
	names, err := tableColumns(ctx, db, table)
	if err != nil {
		return "", err
	}
	order := fileColumnsLast(names)

	var backup string
	if fileExists(cat.Path()) {
		if backup, err = cat.MoveToBackup(); err != nil {
			return "", err
		}
	} else if err := os.MkdirAll(cat.Root, 0o755); err != nil {
		return "", err
	}

	rows, err := db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(table))
	if err != nil {
		return backup, fmt.Errorf("failed to query table %q: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	f, err := os.Create(cat.Path())
	if err != nil {
		return backup, err
	}
	defer f.Close()
	w := NewWriter(f)

	header := make(Row, len(names))
	for i, n := range names {
		header[order[i]] = StringField(n)
	}
	if err := w.WriteRow(header); err != nil {
		return backup, err
	}

	values := make([]any, len(names))
	ptrs := make([]any, len(names))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return backup, fmt.Errorf("failed to scan row: %w", err)
		}
		out := make(Row, len(names))
		for i, v := range values {
			out[order[i]] = fieldFromSQL(v)
		}
		if err := w.WriteRow(out); err != nil {
			return backup, err
		}
	}
	if err := rows.Err(); err != nil {
		return backup, fmt.Errorf("failed to read table %q: %w", table, err)
	}

	if err := w.Flush(); err != nil {
		return backup, err
	}
	return backup, f.Close()
}

// tableColumns returns the column names of table, checking that every
// column type maps to a Spec D type.
func tableColumns(ctx context.Context, db *sql.DB, table string) ([]string, error) {
	rows, err := db.QueryContext(ctx, "SELECT name, type FROM pragma_table_info(?)", table)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %q: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name, typ string
		if err := rows.Scan(&name, &typ); err != nil {
			return nil, err
		}
		if _, err := ColumnTypeFromSQL(typ); err != nil {
			return nil, fmt.Errorf("column %q of %q: %w", name, table, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("table %q: %w", table, errNoTable)
	}
	return names, nil
}

var errNoTable = errors.New("no such table or no columns")

// fileColumnsLast returns, for each column, its position in an ordering
// that puts the file columns last and otherwise keeps the input order.
func fileColumnsLast(names []string) []int {
	order := make([]int, len(names))
	left := 0
	right := 0
	for _, n := range names {
		if !IsFileColumn(n) {
			right++
		}
	}
	for i, n := range names {
		if IsFileColumn(n) {
			order[i] = right
			right++
		} else {
			order[i] = left
			left++
		}
	}
	return order
}

func fieldFromSQL(v any) Field {
	switch x := v.(type) {
	case nil:
		return NullField()
	case int64:
		return StringField(strconv.FormatInt(x, 10))
	case float64:
		return StringField(formatFloat(x))
	case []byte:
		return StringField(string(x))
	case string:
		return StringField(x)
	default:
		return StringField(fmt.Sprint(x))
	}
}

// formatFloat formats x so that it reads back as a Float, never an Integer.
func formatFloat(x float64) string {
	switch {
	case math.IsNaN(x):
		return "nan"
	case math.IsInf(x, 1):
		return "inf"
	case math.IsInf(x, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(x, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
