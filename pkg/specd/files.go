package specd

import (
	"fmt"
	"os"
	"strings"
)

// IsFileColumn reports whether a header label names a file column.
// The test is on the raw label: " FILE" is not a file column.
func IsFileColumn(label string) bool {
	return strings.HasPrefix(label, FileColumnKeyword)
}

// FileColumns returns the indices of the file columns of header, in order.
// It does not check their placement.
func FileColumns(header Row) []int {
	var cols []int
	for i, f := range header {
		if f.Valid && IsFileColumn(f.Value) {
			cols = append(cols, i)
		}
	}
	return cols
}

// CheckFileColumns checks that the file columns form one contiguous block
// ending at the last header column. It returns one message per problem.
func CheckFileColumns(header Row) []string {
	cols := FileColumns(header)
	if len(cols) == 0 {
		return nil
	}

	var problems []string
	last := cols[len(cols)-1]
	if last != len(header)-1 {
		problems = append(problems, fmt.Sprintf("FILE on column #%d is not on the last column", last))
	}
	for i := 0; i+1 < len(cols); i++ {
		if cols[i+1]-cols[i] != 1 {
			problems = append(problems, fmt.Sprintf("FILE on column #%d is not sequentially last", cols[i]))
		}
	}
	return problems
}

// fileExists reports whether path is a regular file. Any stat error counts
// as missing.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
