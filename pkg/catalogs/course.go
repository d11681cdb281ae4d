package catalogs

import (
	"strings"

	"github.com/agentstation/coursemap/pkg/constants"
)

// Level is a course difficulty level.
type Level string

// String returns the string representation of a Level.
func (l Level) String() string {
	return string(l)
}

// Course levels.
const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

// Price thresholds used to derive a level when none is stored.
const (
	intermediatePrice = 50
	advancedPrice     = 100
)

// ParseLevel matches a level name case-insensitively.
func ParseLevel(s string) (Level, bool) {
	for _, l := range []Level{LevelBeginner, LevelIntermediate, LevelAdvanced} {
		if strings.EqualFold(s, string(l)) {
			return l, true
		}
	}
	return "", false
}

// Instructor is the display object joined onto a course from the teacher collection.
type Instructor struct {
	Name   string `json:"name" yaml:"name"`
	Avatar string `json:"avatar,omitempty" yaml:"avatar,omitempty"`
}

// Course represents a catalog course.
type Course struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Price       *float64 `json:"price,omitempty" yaml:"price,omitempty"`
	Category    string   `json:"category,omitempty" yaml:"category,omitempty"`
	Level       Level    `json:"level,omitempty" yaml:"level,omitempty"`
	TeacherID   string   `json:"teacherId,omitempty" yaml:"teacherId,omitempty"`
	Image       string   `json:"image,omitempty" yaml:"image,omitempty"`
	Thumbnail   string   `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
	Duration    string   `json:"duration,omitempty" yaml:"duration,omitempty"`
	Topics      []string `json:"topics,omitempty" yaml:"topics,omitempty"`
	Sessions    []string `json:"sessions,omitempty" yaml:"sessions,omitempty"` // ISO-8601 session starts

	Rating        *float64 `json:"rating,omitempty" yaml:"rating,omitempty"`
	RatingCount   int      `json:"ratingCount,omitempty" yaml:"ratingCount,omitempty"`
	EnrolledCount int      `json:"enrolledCount,omitempty" yaml:"enrolledCount,omitempty"`

	// Instructor is derived on read and never authoritative.
	Instructor *Instructor `json:"instructor,omitempty" yaml:"instructor,omitempty"`

	CreatedAt string `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// GetID returns the course id.
func (c Course) GetID() string {
	return c.ID
}

// PriceOrZero returns the price, treating a missing price as 0.
func (c Course) PriceOrZero() float64 {
	if c.Price == nil {
		return 0
	}
	return *c.Price
}

// RatingOrZero returns the rating, treating a missing rating as 0.
func (c Course) RatingOrZero() float64 {
	if c.Rating == nil {
		return 0
	}
	return *c.Rating
}

// DerivedLevel returns the stored level, or one derived from the price:
// no price or under 50 is Beginner, under 100 Intermediate, else Advanced.
func (c Course) DerivedLevel() Level {
	if c.Level != "" {
		return c.Level
	}
	switch {
	case c.Price == nil || *c.Price < intermediatePrice:
		return LevelBeginner
	case *c.Price < advancedPrice:
		return LevelIntermediate
	default:
		return LevelAdvanced
	}
}

// DisplayCategory is the chip shown for a course: its category, else its level.
func (c Course) DisplayCategory() string {
	if c.Category != "" {
		return c.Category
	}
	return string(c.DerivedLevel())
}

// SearchText returns the fields a search term is matched against.
func (c Course) SearchText() []string {
	fields := []string{c.Title, c.Description, c.Category, string(c.DerivedLevel())}
	if c.Instructor != nil {
		fields = append(fields, c.Instructor.Name)
	}
	return append(fields, c.Topics...)
}

// TeacherRef returns the owning teacher id.
func (c Course) TeacherRef() string { return c.TeacherID }

// CategoryValues returns the values a category filter may equal.
func (c Course) CategoryValues() []string {
	if c.Category == "" {
		return []string{string(c.DerivedLevel())}
	}
	return []string{c.Category, string(c.DerivedLevel())}
}

// LevelValue returns the stored or derived level.
func (c Course) LevelValue() string { return string(c.DerivedLevel()) }

// PriceValue returns the price or 0.
func (c Course) PriceValue() float64 { return c.PriceOrZero() }

// RatingValue returns the rating or 0.
func (c Course) RatingValue() float64 { return c.RatingOrZero() }

// Popularity returns the enrolled count.
func (c Course) Popularity() int { return c.EnrolledCount }

// Timestamp returns createdAt, falling back to updatedAt.
func (c Course) Timestamp() string {
	if c.CreatedAt != "" {
		return c.CreatedAt
	}
	return c.UpdatedAt
}

// NormalizeCourse returns a copy with thumbnail, level and instructor filled in.
// The instructor is joined from teachers by TeacherID, with a placeholder when
// no teacher matches.
func NormalizeCourse(c Course, teachers []Teacher) Course {
	out := c.Clone()
	if out.Thumbnail == "" {
		out.Thumbnail = out.Image
	}
	out.Level = c.DerivedLevel()
	out.Instructor = &Instructor{
		Name:   constants.UnknownInstructorName,
		Avatar: constants.UnknownInstructorAvatar,
	}
	if c.TeacherID != "" {
		for _, t := range teachers {
			if t.ID == c.TeacherID {
				out.Instructor = &Instructor{Name: t.Name, Avatar: t.DisplayImage()}
				break
			}
		}
	}
	return out
}

// NormalizeCourses normalizes every course against the same teacher list.
func NormalizeCourses(courses []Course, teachers []Teacher) []Course {
	out := make([]Course, len(courses))
	for i, c := range courses {
		out[i] = NormalizeCourse(c, teachers)
	}
	return out
}

// Clone returns a deep copy of the course.
func (c Course) Clone() Course {
	out := c
	out.Price = cloneFloat(c.Price)
	out.Rating = cloneFloat(c.Rating)
	if c.Topics != nil {
		out.Topics = append([]string(nil), c.Topics...)
	}
	if c.Sessions != nil {
		out.Sessions = append([]string(nil), c.Sessions...)
	}
	if c.Instructor != nil {
		inst := *c.Instructor
		out.Instructor = &inst
	}
	return out
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

// Float returns a pointer to f, for optional numeric fields.
func Float(f float64) *float64 {
	return &f
}
