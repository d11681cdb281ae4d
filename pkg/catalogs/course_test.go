package catalogs_test

import (
	"testing"

	"github.com/agentstation/coursemap/pkg/catalogs"
	"github.com/agentstation/coursemap/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivedLevel(t *testing.T) {
	tests := []struct {
		name  string
		price *float64
		level catalogs.Level
		want  catalogs.Level
	}{
		{"no price", nil, "", catalogs.LevelBeginner},
		{"cheap", catalogs.Float(49.99), "", catalogs.LevelBeginner},
		{"boundary 50", catalogs.Float(50), "", catalogs.LevelIntermediate},
		{"mid", catalogs.Float(99.99), "", catalogs.LevelIntermediate},
		{"boundary 100", catalogs.Float(100), "", catalogs.LevelAdvanced},
		{"explicit level wins", catalogs.Float(10), catalogs.LevelAdvanced, catalogs.LevelAdvanced},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := catalogs.Course{Price: tt.price, Level: tt.level}
			assert.Equal(t, tt.want, c.DerivedLevel())
		})
	}
}

func TestNormalizeCourse(t *testing.T) {
	teacher := catalogs.TestTeacher(t, "1")
	teacher.Image = ""
	teacher.Avatar = "https://example.com/a.jpg"

	t.Run("joins instructor", func(t *testing.T) {
		c := catalogs.Course{ID: "x", TeacherID: "1", Image: "img.jpg", Price: catalogs.Float(60)}
		got := catalogs.NormalizeCourse(c, []catalogs.Teacher{teacher})

		require.NotNil(t, got.Instructor)
		assert.Equal(t, teacher.Name, got.Instructor.Name)
		assert.Equal(t, "https://example.com/a.jpg", got.Instructor.Avatar)
		assert.Equal(t, "img.jpg", got.Thumbnail)
		assert.Equal(t, catalogs.LevelIntermediate, got.Level)

		assert.Empty(t, c.Level, "input must not be modified")
		assert.Nil(t, c.Instructor)
	})

	t.Run("placeholder when teacher missing", func(t *testing.T) {
		c := catalogs.Course{ID: "y", TeacherID: "404", Instructor: &catalogs.Instructor{Name: "Stale"}}
		got := catalogs.NormalizeCourse(c, []catalogs.Teacher{teacher})

		assert.Equal(t, constants.UnknownInstructorName, got.Instructor.Name)
		assert.Equal(t, constants.UnknownInstructorAvatar, got.Instructor.Avatar)
	})

	t.Run("keeps explicit thumbnail", func(t *testing.T) {
		c := catalogs.Course{Thumbnail: "t.jpg", Image: "i.jpg"}
		assert.Equal(t, "t.jpg", catalogs.NormalizeCourse(c, nil).Thumbnail)
	})
}

func TestCloneIsDeep(t *testing.T) {
	c := catalogs.TestCourse(t, "1")
	c.Topics = []string{"a"}

	cp := c.Clone()
	*cp.Price = 999
	cp.Topics[0] = "changed"

	assert.Equal(t, 25.0, *c.Price)
	assert.Equal(t, "a", c.Topics[0])
}

func TestDisplayCategory(t *testing.T) {
	assert.Equal(t, "Design", catalogs.Course{Category: "Design"}.DisplayCategory())
	assert.Equal(t, "Advanced", catalogs.Course{Price: catalogs.Float(200)}.DisplayCategory())
}
