package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/agentstation/coursemap/pkg/catalogs"
	"github.com/agentstation/coursemap/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"YAML", FormatYAML, false},
		{"wide", FormatWide, false},
		{"", "", false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectFormatExplicit(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("yaml"))
}

func TestCoursesJSON(t *testing.T) {
	var buf bytes.Buffer
	courses := []catalogs.Course{{ID: "1", Title: "Go", TeacherID: "7"}}
	require.NoError(t, Courses(&buf, courses, FormatJSON))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "7", decoded[0]["teacherId"])
}

func TestCoursesTable(t *testing.T) {
	var buf bytes.Buffer
	courses := []catalogs.Course{{ID: "1", Title: "Go", Price: catalogs.Float(10)}}
	require.NoError(t, Courses(&buf, courses, FormatTable))

	out := buf.String()
	assert.Contains(t, strings.ToUpper(out), "TITLE")
	assert.Contains(t, out, "$10.00")
}

func TestTeachersYAML(t *testing.T) {
	var buf bytes.Buffer
	teachers := []catalogs.Teacher{{ID: "1", Name: "Ana", StudentsCount: 3}}
	require.NoError(t, Teachers(&buf, teachers, FormatYAML))

	assert.Contains(t, buf.String(), "name: Ana")
	assert.Contains(t, buf.String(), "studentsCount: 3")
}

func TestIDs(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, IDs(&buf, "Course", nil, FormatJSON))
	assert.JSONEq(t, "[]", buf.String())

	buf.Reset()
	require.NoError(t, IDs(&buf, "Course", []string{"1", "2"}, FormatTable))
	assert.Contains(t, strings.ToUpper(buf.String()), "COURSE")
}

func TestParseFormatIsValidationError(t *testing.T) {
	_, err := ParseFormat("xml")
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestRecordTable(t *testing.T) {
	type summary struct {
		StudentID string   `json:"studentId"`
		Preview   string   `json:"preview"`
		Topics    []string `json:"topics,omitempty"`
		Price     *float64 `json:"price,omitempty"`
	}

	tests := []struct {
		name    string
		data    any
		headers []string
		rows    [][]string
	}{
		{
			name:    "object",
			data:    summary{StudentID: "u-1", Preview: "hi", Price: catalogs.Float(9.5)},
			headers: []string{"Property", "Value"},
			rows:    [][]string{{"Preview", "hi"}, {"Price", "9.5"}, {"Student Id", "u-1"}},
		},
		{
			name:    "objects",
			data:    []summary{{StudentID: "u-1", Preview: "a"}, {StudentID: "u-2", Preview: "b", Topics: []string{"go", "sql"}}},
			headers: []string{"Preview", "Student Id", "Topics"},
			rows:    [][]string{{"a", "u-1", ""}, {"b", "u-2", "go, sql"}},
		},
		{
			name:    "map",
			data:    map[string]string{"phone": "555"},
			headers: []string{"Property", "Value"},
			rows:    [][]string{{"Phone", "555"}},
		},
		{
			name:    "scalars",
			data:    []int{3, 4},
			headers: []string{"Value"},
			rows:    [][]string{{"3"}, {"4"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := recordTable(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.headers, got.Headers)
			assert.Equal(t, tt.rows, got.Rows)
		})
	}
}

func TestHeaderLabel(t *testing.T) {
	tests := map[string]string{
		"courses":     "Courses",
		"ratingCount": "Rating Count",
		"photoURL":    "Photo Url",
		"created_at":  "Created At",
	}
	for in, want := range tests {
		assert.Equal(t, want, headerLabel(in), in)
	}
}

func TestTableFormatterSingleCourse(t *testing.T) {
	var buf bytes.Buffer
	course := catalogs.Course{ID: "1", Title: "Go", Price: catalogs.Float(10)}
	require.NoError(t, NewFormatter(FormatWide).Format(&buf, course))
	assert.Contains(t, buf.String(), "$10.00")
}
