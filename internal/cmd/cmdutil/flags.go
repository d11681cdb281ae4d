// Package cmdutil provides shared flags and argument parsing for coursemap commands.
package cmdutil

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/coursemap/pkg/catalogs"
	"github.com/agentstation/coursemap/pkg/errors"
	"github.com/agentstation/coursemap/pkg/store"
)

// FilterFlags holds the listing flags shared by course and teacher commands.
type FilterFlags struct {
	Search    string
	TeacherID string
	Category  string
	Level     string
	MinPrice  float64
	MaxPrice  float64
	MinRating float64
	Sort      string
	Page      int
	PerPage   int
}

// AddFilterFlags adds listing flags to a command.
func AddFilterFlags(cmd *cobra.Command) *FilterFlags {
	flags := &FilterFlags{}

	cmd.Flags().StringVarP(&flags.Search, "search", "s", "",
		"Search term matched against titles, descriptions and names")
	cmd.Flags().StringVar(&flags.TeacherID, "teacher", "",
		"Filter by teacher id")
	cmd.Flags().StringVarP(&flags.Category, "category", "c", "",
		"Filter by category")
	cmd.Flags().StringVar(&flags.Level, "level", "",
		"Filter by level: Beginner, Intermediate, Advanced")
	cmd.Flags().Float64Var(&flags.MinPrice, "min-price", 0,
		"Minimum price")
	cmd.Flags().Float64Var(&flags.MaxPrice, "max-price", 0,
		"Maximum price")
	cmd.Flags().Float64Var(&flags.MinRating, "min-rating", 0,
		"Minimum rating")
	cmd.Flags().StringVar(&flags.Sort, "sort", "",
		"Sort order: popular, rating, newest, price-low, price-high")
	cmd.Flags().IntVar(&flags.Page, "page", 1,
		"Page number")
	cmd.Flags().IntVar(&flags.PerPage, "per-page", 10,
		"Results per page")

	return flags
}

// Spec converts the flags into a FilterSpec. Price bounds only apply when
// their flag was set.
func (f *FilterFlags) Spec(cmd *cobra.Command) (catalogs.FilterSpec, error) {
	sortBy, ok := catalogs.ParseSortOrder(f.Sort)
	if !ok {
		return catalogs.FilterSpec{}, errors.NewValidationError("sort", f.Sort, "unknown sort order")
	}
	spec := catalogs.FilterSpec{
		Search:    f.Search,
		TeacherID: f.TeacherID,
		Category:  f.Category,
		SortBy:    sortBy,
	}
	if f.Level != "" {
		level, ok := catalogs.ParseLevel(f.Level)
		if !ok {
			return catalogs.FilterSpec{}, errors.NewValidationError("level", f.Level, "unknown level")
		}
		spec.Level = string(level)
	}
	if cmd.Flags().Changed("min-price") {
		spec.MinPrice = catalogs.Float(f.MinPrice)
	}
	if cmd.Flags().Changed("max-price") {
		spec.MaxPrice = catalogs.Float(f.MaxPrice)
	}
	if cmd.Flags().Changed("min-rating") {
		spec.MinRating = catalogs.Float(f.MinRating)
	}
	return spec, nil
}

// ParsePatch turns key=value pairs into a patch for records of type T.
// Values of string fields are kept verbatim; other values are decoded as
// JSON when valid, so numbers and lists keep their type.
func ParsePatch[T any](pairs []string) (store.Patch, error) {
	stringFields := stringFieldsOf(reflect.TypeFor[T]())
	patch := store.Patch{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.NewValidationError("set", pair, fmt.Sprintf("expected key=value, got %q", pair))
		}
		if stringFields[key] {
			patch[key] = value
			continue
		}
		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err == nil {
			patch[key] = decoded
		} else {
			patch[key] = value
		}
	}
	return patch, nil
}

// stringFieldsOf returns the JSON names of t's string-kinded fields.
func stringFieldsOf(t reflect.Type) map[string]bool {
	out := map[string]bool{}
	if t.Kind() != reflect.Struct {
		return out
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Type.Kind() != reflect.String {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" {
			name = field.Name
		}
		if name != "-" {
			out[name] = true
		}
	}
	return out
}
