package catalogs

// Teacher represents an instructor profile.
type Teacher struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	Title          string   `json:"title,omitempty" yaml:"title,omitempty"`
	Subject        string   `json:"subject,omitempty" yaml:"subject,omitempty"`
	Specialization string   `json:"specialization,omitempty" yaml:"specialization,omitempty"`
	Image          string   `json:"image,omitempty" yaml:"image,omitempty"`
	Avatar         string   `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	Bio            string   `json:"bio,omitempty" yaml:"bio,omitempty"`
	Specialties    []string `json:"specialties,omitempty" yaml:"specialties,omitempty"`

	Rating        *float64 `json:"rating,omitempty" yaml:"rating,omitempty"`
	RatingCount   int      `json:"ratingCount,omitempty" yaml:"ratingCount,omitempty"`
	CoursesCount  int      `json:"coursesCount,omitempty" yaml:"coursesCount,omitempty"`
	StudentsCount int      `json:"studentsCount,omitempty" yaml:"studentsCount,omitempty"`

	CreatedAt string `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// GetID returns the teacher id.
func (t Teacher) GetID() string {
	return t.ID
}

// DisplayImage returns image, falling back to avatar.
func (t Teacher) DisplayImage() string {
	if t.Image != "" {
		return t.Image
	}
	return t.Avatar
}

// DisplaySubject returns subject, falling back to specialization.
func (t Teacher) DisplaySubject() string {
	if t.Subject != "" {
		return t.Subject
	}
	return t.Specialization
}

// SearchText returns the fields a search term is matched against.
func (t Teacher) SearchText() []string {
	return append([]string{t.Name, t.Subject, t.Specialization, t.Title}, t.Specialties...)
}

// TeacherRef returns the teacher's own id.
func (t Teacher) TeacherRef() string { return t.ID }

// CategoryValues returns the subject or specialization.
func (t Teacher) CategoryValues() []string {
	if s := t.DisplaySubject(); s != "" {
		return []string{s}
	}
	return nil
}

// LevelValue is empty; teachers have no level.
func (t Teacher) LevelValue() string { return "" }

// PriceValue is 0; teachers have no price.
func (t Teacher) PriceValue() float64 { return 0 }

// RatingValue returns the rating or 0.
func (t Teacher) RatingValue() float64 {
	if t.Rating == nil {
		return 0
	}
	return *t.Rating
}

// Popularity returns the student count.
func (t Teacher) Popularity() int { return t.StudentsCount }

// Timestamp returns createdAt, falling back to updatedAt.
func (t Teacher) Timestamp() string {
	if t.CreatedAt != "" {
		return t.CreatedAt
	}
	return t.UpdatedAt
}

// NormalizeTeacher returns a copy with image filled from avatar.
func NormalizeTeacher(t Teacher) Teacher {
	out := t.Clone()
	out.Image = t.DisplayImage()
	return out
}

// Clone returns a deep copy of the teacher.
func (t Teacher) Clone() Teacher {
	out := t
	out.Rating = cloneFloat(t.Rating)
	if t.Specialties != nil {
		out.Specialties = append([]string(nil), t.Specialties...)
	}
	return out
}
