// Package output renders command results as tables, JSON or YAML.
package output

import (
	"encoding/json"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/coursemap/internal/cmd/table"
	"github.com/agentstation/coursemap/pkg/catalogs"
	"github.com/agentstation/coursemap/pkg/errors"
)

// Format is an output format name.
type Format string

// Output formats.
const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatWide  Format = "wide"
)

// Formats lists the accepted --format values.
var Formats = []Format{FormatTable, FormatWide, FormatJSON, FormatYAML}

// Data is a prepared table.
type Data = table.Data

// Formatter writes a command result.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// NewFormatter returns the formatter for format. Unknown and empty formats
// render as tables.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: "  "}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TableFormatter{Wide: format == FormatWide}
	}
}

// DetectFormat returns the explicit format, else table on a terminal and
// JSON when stdout is piped.
func DetectFormat(explicit string) Format {
	if explicit != "" {
		return Format(strings.ToLower(explicit))
	}
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return FormatTable
	}
	return FormatJSON
}

// ParseFormat validates a --format value. Empty means auto-detect.
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(s))
	if format == "" || slices.Contains(Formats, format) {
		return format, nil
	}
	return "", errors.NewValidationError("format", s, "must be one of: table, wide, json, yaml")
}

// Courses writes courses in format.
func Courses(w io.Writer, courses []catalogs.Course, format Format) error {
	if courses == nil {
		courses = []catalogs.Course{}
	}
	return NewFormatter(format).Format(w, courses)
}

// Teachers writes teachers in format.
func Teachers(w io.Writer, teachers []catalogs.Teacher, format Format) error {
	if teachers == nil {
		teachers = []catalogs.Teacher{}
	}
	return NewFormatter(format).Format(w, teachers)
}

// IDs writes ids under header, one per row in table formats.
func IDs(w io.Writer, header string, ids []string, format Format) error {
	if ids == nil {
		ids = []string{}
	}
	if _, ok := NewFormatter(format).(*TableFormatter); !ok {
		return NewFormatter(format).Format(w, ids)
	}
	rows := make([][]string, len(ids))
	for i, id := range ids {
		rows[i] = []string{id}
	}
	return NewFormatter(format).Format(w, Data{Headers: []string{header}, Rows: rows})
}

// JSONFormatter writes indented JSON.
type JSONFormatter struct {
	Indent string
}

// Format writes data as JSON.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	if f.Indent != "" {
		enc.SetIndent("", f.Indent)
	}
	return enc.Encode(data)
}

// YAMLFormatter writes YAML using the records' yaml tags.
type YAMLFormatter struct{}

// Format writes data as YAML.
func (f *YAMLFormatter) Format(w io.Writer, data any) error {
	b, err := yaml.MarshalWithOptions(data, yaml.Indent(2), yaml.IndentSequence(false))
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// TableFormatter writes tables. Wide adds the secondary course and teacher
// columns.
type TableFormatter struct {
	Wide bool
}

// Format writes data as a table. Courses and teachers get their catalog
// columns; any other record is laid out from its JSON fields.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	switch v := data.(type) {
	case Data:
		return f.render(w, v)
	case []catalogs.Course:
		return f.render(w, table.CoursesToTableData(v, f.Wide))
	case catalogs.Course:
		return f.render(w, table.CoursesToTableData([]catalogs.Course{v}, f.Wide))
	case []catalogs.Teacher:
		return f.render(w, table.TeachersToTableData(v, f.Wide))
	case catalogs.Teacher:
		return f.render(w, table.TeachersToTableData([]catalogs.Teacher{v}, f.Wide))
	default:
		d, err := recordTable(data)
		if err != nil {
			return err
		}
		return f.render(w, d)
	}
}

func (f *TableFormatter) render(w io.Writer, data Data) error {
	var cfg tablewriter.Config
	if len(data.ColumnAlignment) > 0 {
		align := make([]tw.Align, len(data.ColumnAlignment))
		for i, a := range data.ColumnAlignment {
			switch a {
			case table.AlignLeft:
				align[i] = tw.AlignLeft
			case table.AlignCenter:
				align[i] = tw.AlignCenter
			case table.AlignRight:
				align[i] = tw.AlignRight
			default:
				align[i] = tw.Skip
			}
		}
		cfg.Header.Alignment = tw.CellAlignment{PerColumn: align}
		cfg.Row.Alignment = tw.CellAlignment{PerColumn: align}
	}

	t := tablewriter.NewTable(w, tablewriter.WithConfig(cfg))
	if len(data.Headers) > 0 {
		t.Header(toCells(data.Headers)...)
	}
	for _, row := range data.Rows {
		if err := t.Append(toCells(row)...); err != nil {
			return err
		}
	}
	return t.Render()
}

func toCells(values []string) []any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

// recordTable lays out a record by its JSON form: an object becomes
// Property/Value rows, a list of objects one row per element with the union
// of their keys as columns, and a list of scalars a single Value column.
func recordTable(data any) (Data, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return Data{}, errors.WrapParse("json", "output", err)
	}
	var decoded any
	if err := json.Unmarshal(b, &decoded); err != nil {
		return Data{}, errors.WrapParse("json", "output", err)
	}

	switch v := decoded.(type) {
	case map[string]any:
		keys := sortedKeys(v)
		rows := make([][]string, len(keys))
		for i, k := range keys {
			rows[i] = []string{headerLabel(k), cell(v[k])}
		}
		return Data{Headers: []string{"Property", "Value"}, Rows: rows}, nil
	case []any:
		var keys []string
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				for _, k := range sortedKeys(m) {
					if !slices.Contains(keys, k) {
						keys = append(keys, k)
					}
				}
			}
		}
		if len(keys) == 0 {
			rows := make([][]string, len(v))
			for i, item := range v {
				rows[i] = []string{cell(item)}
			}
			return Data{Headers: []string{"Value"}, Rows: rows}, nil
		}
		headers := make([]string, len(keys))
		for i, k := range keys {
			headers[i] = headerLabel(k)
		}
		rows := make([][]string, len(v))
		for i, item := range v {
			m, _ := item.(map[string]any)
			row := make([]string, len(keys))
			for j, k := range keys {
				row[j] = cell(m[k])
			}
			rows[i] = row
		}
		return Data{Headers: headers, Rows: rows}, nil
	default:
		return Data{Headers: []string{"Value"}, Rows: [][]string{{cell(v)}}}, nil
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// cell renders one decoded JSON value.
func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = cell(item)
		}
		return strings.Join(parts, ", ")
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}

// headerLabel turns a JSON key such as "ratingCount" into "Rating Count".
func headerLabel(key string) string {
	var b strings.Builder
	prev := ' '
	for _, r := range key {
		switch {
		case r == '_':
			r = ' '
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			b.WriteByte(' ')
		}
		b.WriteRune(r)
		prev = r
	}
	return cases.Title(language.English).String(b.String())
}
