package catalogs

import (
	"sort"
	"strings"
)

// SortOrder selects the ordering applied by Query.
type SortOrder string

// String returns the string representation of a SortOrder.
func (s SortOrder) String() string {
	return string(s)
}

// Sort orders.
const (
	SortNone      SortOrder = ""
	SortPopular   SortOrder = "popular"
	SortRating    SortOrder = "rating"
	SortNewest    SortOrder = "newest"
	SortPriceLow  SortOrder = "price-low"
	SortPriceHigh SortOrder = "price-high"
)

// SortOrders lists every recognized sort order.
var SortOrders = []SortOrder{SortPopular, SortRating, SortNewest, SortPriceLow, SortPriceHigh}

// ParseSortOrder returns the sort order named by s.
func ParseSortOrder(s string) (SortOrder, bool) {
	for _, o := range SortOrders {
		if strings.EqualFold(s, string(o)) {
			return o, true
		}
	}
	return SortNone, s == ""
}

// Queryable is implemented by records the query engine can filter and sort.
type Queryable interface {
	SearchText() []string
	TeacherRef() string
	CategoryValues() []string
	LevelValue() string
	PriceValue() float64
	RatingValue() float64
	Popularity() int
	Timestamp() string
}

var (
	_ Queryable = Course{}
	_ Queryable = Teacher{}
)

// FilterSpec holds the optional search, filter and sort parameters of a listing.
// Zero values mean no constraint.
type FilterSpec struct {
	Search    string    `json:"search,omitempty" yaml:"search,omitempty"`
	TeacherID string    `json:"teacherId,omitempty" yaml:"teacherId,omitempty"`
	Category  string    `json:"category,omitempty" yaml:"category,omitempty"`
	Level     string    `json:"level,omitempty" yaml:"level,omitempty"`
	MinPrice  *float64  `json:"minPrice,omitempty" yaml:"minPrice,omitempty"`
	MaxPrice  *float64  `json:"maxPrice,omitempty" yaml:"maxPrice,omitempty"`
	MinRating *float64  `json:"minRating,omitempty" yaml:"minRating,omitempty"`
	SortBy    SortOrder `json:"sortBy,omitempty" yaml:"sortBy,omitempty"`
}

// IsZero reports whether the spec constrains nothing.
func (f FilterSpec) IsZero() bool {
	return f.Search == "" && f.TeacherID == "" && f.Category == "" && f.Level == "" &&
		f.MinPrice == nil && f.MaxPrice == nil && f.MinRating == nil && f.SortBy == SortNone
}

// Query returns the items matching spec, in spec's sort order.
// The input slice is never modified. Filters are ANDed, the search term
// matches if any searchable field contains it, and sorting is stable.
func Query[T Queryable](items []T, spec FilterSpec) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if spec.matches(item) {
			out = append(out, item)
		}
	}
	sortQueryable(out, spec.SortBy)
	return out
}

func (f FilterSpec) matches(item Queryable) bool {
	return f.matchesSearch(item) &&
		f.matchesEquality(item) &&
		f.matchesRanges(item)
}

func (f FilterSpec) matchesSearch(item Queryable) bool {
	q := strings.ToLower(strings.TrimSpace(f.Search))
	if q == "" {
		return true
	}
	for _, field := range item.SearchText() {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func (f FilterSpec) matchesEquality(item Queryable) bool {
	if f.TeacherID != "" && item.TeacherRef() != f.TeacherID {
		return false
	}
	if f.Level != "" && item.LevelValue() != f.Level {
		return false
	}
	if f.Category != "" {
		found := false
		for _, v := range item.CategoryValues() {
			if v == f.Category {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (f FilterSpec) matchesRanges(item Queryable) bool {
	price := item.PriceValue()
	if f.MinPrice != nil && price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && price > *f.MaxPrice {
		return false
	}
	if f.MinRating != nil && *f.MinRating > 0 && item.RatingValue() < *f.MinRating {
		return false
	}
	return true
}

func sortQueryable[T Queryable](list []T, order SortOrder) {
	less := lessFunc(order)
	if less == nil {
		return
	}
	sort.SliceStable(list, func(i, j int) bool {
		return less(list[i], list[j])
	})
}

func lessFunc(order SortOrder) func(a, b Queryable) bool {
	switch order {
	case SortPopular:
		return func(a, b Queryable) bool { return a.Popularity() > b.Popularity() }
	case SortRating:
		return func(a, b Queryable) bool { return a.RatingValue() > b.RatingValue() }
	case SortNewest:
		return func(a, b Queryable) bool {
			return ParseTimestamp(a.Timestamp()).After(ParseTimestamp(b.Timestamp()))
		}
	case SortPriceLow:
		return func(a, b Queryable) bool { return a.PriceValue() < b.PriceValue() }
	case SortPriceHigh:
		return func(a, b Queryable) bool { return a.PriceValue() > b.PriceValue() }
	default:
		return nil
	}
}
