// Package output provides output formatting for revgate-cli.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Table holds tabular data for rendering.
type Table struct {
	Headers []string
	Rows    [][]string
}

// AddRow appends a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render writes the table using aligned columns.
func (t *Table) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	if len(t.Headers) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	}
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	return tw.Flush()
}

// TableFormatter formats data as an aligned text table.
type TableFormatter struct{}

// Format renders a Table directly; everything else falls back to a
// two-column key/value listing built from the JSON representation.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	if data == nil {
		return nil
	}

	if t, ok := data.(*Table); ok {
		return t.Render(w)
	}
	if t, ok := data.(Table); ok {
		return t.Render(w)
	}

	return keyValueTable(w, data)
}

// keyValueTable renders any JSON-shaped value as KEY / VALUE rows.
func keyValueTable(w io.Writer, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		// Not an object; print as-is
		_, err = fmt.Fprintln(w, string(raw))
		return err
	}

	table := &Table{Headers: []string{"FIELD", "VALUE"}}
	for _, key := range sortedKeys(fields) {
		table.AddRow(key, formatValue(fields[key]))
	}
	return table.Render(w)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%.4f", val)
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(raw)
	}
}
