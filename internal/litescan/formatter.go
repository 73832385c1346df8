package litescan

import (
	"fmt"
	"io"
	"strings"
)

// OutputFormatter renders query results through a small interface that
// keeps row and count rendering pluggable between console and
// machine-readable output.
type OutputFormatter interface {
	FormatRow(values []CellValue) string
	FormatCount(count int) string
}

// PipeFormatter renders rows "|"-joined: NULL as the literal text "NULL",
// blobs as empty string, everything else via CellValue.String.
type PipeFormatter struct {
	io.Writer
}

func NewPipeFormatter(w io.Writer) *PipeFormatter { return &PipeFormatter{Writer: w} }

func (f *PipeFormatter) FormatRow(values []CellValue) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.String()
	}
	return strings.Join(parts, "|")
}

func (f *PipeFormatter) FormatCount(count int) string {
	return fmt.Sprintf("%d", count)
}

// JSONFormatter renders each row as a JSON object keyed by column name,
// falling back to "col<i>" for positions past Columns. It exists alongside PipeFormatter the way the
// teacher keeps a console and a JSON formatter side by side, even though
// only one is wired into the default CLI path.
type JSONFormatter struct {
	io.Writer
	Columns []string
}

func NewJSONFormatter(w io.Writer, columns []string) *JSONFormatter {
	return &JSONFormatter{Writer: w, Columns: columns}
}

func (f *JSONFormatter) FormatRow(values []CellValue) string {
	var pairs []string
	for i, v := range values {
		key := fmt.Sprintf("col%d", i)
		if i < len(f.Columns) {
			key = f.Columns[i]
		}
		pairs = append(pairs, fmt.Sprintf("%q: %s", key, jsonValue(v)))
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}

func (f *JSONFormatter) FormatCount(count int) string {
	return fmt.Sprintf(`{"count": %d}`, count)
}

func jsonValue(v CellValue) string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindText:
		return fmt.Sprintf("%q", v.Text)
	case KindBlob:
		return `""`
	default:
		return v.String()
	}
}
