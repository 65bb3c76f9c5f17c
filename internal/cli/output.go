package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-modeladmin/pkg/form"
)

// record is one instance flattened to column values, in column order.
type record struct {
	columns []string
	values  map[string]any
}

func (r record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.values)
}

func (r record) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, column := range r.columns {
		var value yaml.Node
		if err := value.Encode(plain(r.values[column])); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: column}, &value)
	}
	return node, nil
}

type listing struct {
	Count int      `json:"count" yaml:"count"`
	Rows  []record `json:"rows" yaml:"rows"`
}

type fieldRow struct {
	Name       string   `json:"name" yaml:"name"`
	Kind       string   `json:"kind" yaml:"kind"`
	Label      string   `json:"label" yaml:"label"`
	Widget     string   `json:"widget,omitempty" yaml:"widget,omitempty"`
	Validators []string `json:"validators,omitempty" yaml:"validators,omitempty"`
	Choices    []string `json:"choices,omitempty" yaml:"choices,omitempty"`
	Related    string   `json:"related,omitempty" yaml:"related,omitempty"`
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func renderSchema(w io.Writer, format string, s *form.Schema) error {
	rows := make([]fieldRow, 0, s.Len())
	for _, field := range s.Fields() {
		row := fieldRow{
			Name:       field.Name,
			Kind:       string(field.Kind),
			Label:      field.Label,
			Widget:     field.Widget,
			Validators: field.ValidatorNames(),
			Related:    field.RelatedModel,
		}
		if len(field.Choices) <= 12 {
			for _, choice := range field.Choices {
				row.Choices = append(row.Choices, fmt.Sprint(choice.Value))
			}
		}
		rows = append(rows, row)
	}
	if format != "table" {
		return encode(w, format, rows)
	}

	t := newTable(w)
	t.SetTitle(s.Name())
	t.AppendHeader(table.Row{"Field", "Kind", "Label", "Widget", "Validators", "Choices"})
	for _, row := range rows {
		kind := row.Kind
		if row.Related != "" {
			kind += " -> " + row.Related
		}
		t.AppendRow(table.Row{row.Name, kind, row.Label, row.Widget, strings.Join(row.Validators, ", "), strings.Join(row.Choices, "|")})
	}
	t.Render()
	return nil
}

func renderListing(w io.Writer, format string, columns []string, count int, rows []record) error {
	if format != "table" {
		return encode(w, format, listing{Count: count, Rows: rows})
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintf(w, "(0 of %d rows)\n", count)
		return err
	}
	t := newTable(w)
	header := make(table.Row, len(columns))
	for i, column := range columns {
		header[i] = column
	}
	t.AppendHeader(header)
	for _, r := range rows {
		row := make(table.Row, len(columns))
		for i, column := range columns {
			row[i] = formatValue(r.values[column])
		}
		t.AppendRow(row)
	}
	t.Render()
	_, err := fmt.Fprintf(w, "(%d of %d rows)\n", len(rows), count)
	return err
}

func renderRecord(w io.Writer, format string, r record) error {
	if format != "table" {
		return encode(w, format, r)
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"Field", "Value"})
	for _, column := range r.columns {
		t.AppendRow(table.Row{column, formatValue(r.values[column])})
	}
	t.Render()
	return nil
}

// plain converts values the encoders do not know into strings.
func plain(value any) any {
	switch v := value.(type) {
	case fmt.Stringer:
		return v.String()
	case []byte:
		return string(v)
	}
	return value
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "-"
	case time.Time:
		return v.Format(time.RFC3339)
	case []byte:
		return string(v)
	}
	return fmt.Sprint(value)
}
