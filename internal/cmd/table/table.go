// Package table converts catalog records into rows for table output.
package table

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agentstation/coursemap/pkg/catalogs"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// CoursesToTableData converts courses to table format.
func CoursesToTableData(courses []catalogs.Course, wide bool) Data {
	headers := []string{"ID", "Title", "Category", "Level", "Price", "Rating", "Enrolled"}
	align := []Align{AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight}
	if wide {
		headers = append(headers, "Instructor", "Created")
		align = append(align, AlignLeft, AlignLeft)
	}

	rows := make([][]string, 0, len(courses))
	for _, c := range courses {
		row := []string{
			c.ID,
			Truncate(c.Title, 40),
			orDash(c.Category),
			string(c.DerivedLevel()),
			FormatPrice(c.Price),
			FormatRating(c.Rating, c.RatingCount),
			strconv.Itoa(c.EnrolledCount),
		}
		if wide {
			instructor := "-"
			if c.Instructor != nil {
				instructor = c.Instructor.Name
			}
			row = append(row, instructor, orDash(c.CreatedAt))
		}
		rows = append(rows, row)
	}
	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// TeachersToTableData converts teachers to table format.
func TeachersToTableData(teachers []catalogs.Teacher, wide bool) Data {
	headers := []string{"ID", "Name", "Subject", "Rating", "Courses", "Students"}
	align := []Align{AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight}
	if wide {
		headers = append(headers, "Title", "Specialties")
		align = append(align, AlignLeft, AlignLeft)
	}

	rows := make([][]string, 0, len(teachers))
	for _, t := range teachers {
		row := []string{
			t.ID,
			t.Name,
			orDash(t.DisplaySubject()),
			FormatRating(t.Rating, t.RatingCount),
			strconv.Itoa(t.CoursesCount),
			strconv.Itoa(t.StudentsCount),
		}
		if wide {
			row = append(row, orDash(t.Title), orDash(strings.Join(t.Specialties, ", ")))
		}
		rows = append(rows, row)
	}
	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// FormatPrice renders a price, or "Free" when none is set.
func FormatPrice(price *float64) string {
	if price == nil || *price == 0 {
		return "Free"
	}
	return fmt.Sprintf("$%.2f", *price)
}

// FormatRating renders a rating with its count.
func FormatRating(rating *float64, count int) string {
	if rating == nil {
		return "-"
	}
	if count > 0 {
		return fmt.Sprintf("%.1f (%d)", *rating, count)
	}
	return fmt.Sprintf("%.1f", *rating)
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n || n < 4 {
		return s
	}
	return string(r[:n-3]) + "..."
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
