package specd

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/shapestone/shape-core/pkg/ast"
)

// RowNode converts a row to an AST record: an ArrayDataNode of LiteralNodes
// whose value is the field string, or nil for a null field.
func RowNode(row Row) *ast.ArrayDataNode {
	elems := make([]ast.SchemaNode, len(row))
	for i, f := range row {
		var v interface{}
		if f.Valid {
			v = f.Value
		}
		elems[i] = ast.NewLiteralNode(v, ast.ZeroPosition())
	}
	return ast.NewArrayDataNode(elems, ast.ZeroPosition())
}

// RowsNode converts rows to an AST file node: an ArrayDataNode of records.
func RowsNode(rows []Row) *ast.ArrayDataNode {
	elems := make([]ast.SchemaNode, len(rows))
	for i, row := range rows {
		elems[i] = RowNode(row)
	}
	return ast.NewArrayDataNode(elems, ast.ZeroPosition())
}

// Render converts an AST node to Spec D CSV bytes.
//
// The node is either a file (array of records) or a single record (array of
// literals). Rendering handles:
//   - Quoting fields containing commas, quotes, or line breaks
//   - Doubling quotes inside quoted fields
//   - Null literals as zero-length tokens, empty strings as ""
//   - A record of a single null field as "", since an empty line is skipped
//     on read
//   - LF after every record of a file
func Render(node ast.SchemaNode) ([]byte, error) {
	if node == nil {
		return []byte{}, nil
	}
	var buf bytes.Buffer
	if err := renderNode(node, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderNode recursively renders an AST node to the buffer.
func renderNode(node ast.SchemaNode, buf *bytes.Buffer) error {
	switch n := node.(type) {
	case *ast.ArrayDataNode:
		return renderArrayData(n, buf)
	case *ast.LiteralNode:
		return renderLiteral(n, buf)
	default:
		return fmt.Errorf("unsupported node type for CSV rendering: %T", node)
	}
}

func renderArrayData(node *ast.ArrayDataNode, buf *bytes.Buffer) error {
	elements := node.Elements()
	if len(elements) == 0 {
		return nil
	}

	switch elements[0].(type) {
	case *ast.ArrayDataNode:
		for _, elem := range elements {
			if err := renderNode(elem, buf); err != nil {
				return err
			}
			buf.WriteByte('\n')
		}
		return nil

	case *ast.LiteralNode:
		// A lone null would render as a blank line, which reads back as no
		// row at all; write it as "" so the row survives.
		if lit, ok := elements[0].(*ast.LiteralNode); ok && len(elements) == 1 && lit.Value() == nil {
			buf.WriteString(`""`)
			return nil
		}
		for i, elem := range elements {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := renderNode(elem, buf); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("unexpected element type in array: %T", elements[0])
	}
}

func renderLiteral(node *ast.LiteralNode, buf *bytes.Buffer) error {
	switch v := node.Value().(type) {
	case nil:
		// null is the zero-length token
	case string:
		writeField(buf, v)
	default:
		writeField(buf, fmt.Sprintf("%v", v))
	}
	return nil
}

// writeField writes a non-null field. The empty string is written as ""
// so it reads back as empty rather than null.
func writeField(buf *bytes.Buffer, value string) {
	if value != "" && !strings.ContainsAny(value, ",\"\n\r") {
		buf.WriteString(value)
		return
	}
	buf.WriteByte('"')
	buf.WriteString(strings.ReplaceAll(value, `"`, `""`))
	buf.WriteByte('"')
}

// Writer writes rows as Spec D CSV.
type Writer struct {
	w   *bufio.Writer
	buf bytes.Buffer
}

// NewWriter returns a Writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteRow writes one record followed by LF.
func (w *Writer) WriteRow(row Row) error {
	w.buf.Reset()
	if err := renderNode(RowNode(row), &w.buf); err != nil {
		return err
	}
	w.buf.WriteByte('\n')
	_, err := w.w.Write(w.buf.Bytes())
	return err
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
