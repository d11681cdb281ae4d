package catalogs

import "testing"

// TestCourse creates a test course with sensible defaults.
// The t.Helper() call ensures stack traces point to the test, not this function.
func TestCourse(t testing.TB, id string) Course {
	t.Helper()
	return Course{
		ID:            id,
		Title:         "Course " + id,
		Description:   "A test course",
		Price:         Float(25),
		Category:      "Development",
		Rating:        Float(4),
		EnrolledCount: 10,
		CreatedAt:     "2024-01-01T00:00:00.000Z",
		UpdatedAt:     "2024-01-01T00:00:00.000Z",
	}
}

// TestTeacher creates a test teacher with sensible defaults.
func TestTeacher(t testing.TB, id string) Teacher {
	t.Helper()
	return Teacher{
		ID:      id,
		Name:    "Teacher " + id,
		Subject: "Mathematics",
		Image:   "https://example.com/avatars/" + id + ".jpg",
		Rating:  Float(4.5),
	}
}
