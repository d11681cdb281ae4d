package coursemap

import (
	"context"

	"github.com/agentstation/coursemap/pkg/constants"
)

// Admin provides the data management operations of the admin screens.
type Admin interface {
	// Reseed overwrites the course and teacher collections with the fixtures.
	Reseed(ctx context.Context) error
	// Reset removes the session, both collections, all accounts and profile
	// overrides. The collections are seeded again on next use.
	Reset(ctx context.Context) error
	// Counts reports how many records each local collection holds.
	Counts(ctx context.Context) Counts
}

// Counts is the number of stored records per collection.
type Counts struct {
	Courses  int `json:"courses" yaml:"courses"`
	Teachers int `json:"teachers" yaml:"teachers"`
	Users    int `json:"users" yaml:"users"`
}

// Reseed overwrites the local collections with the seed fixtures.
func (c *client) Reseed(ctx context.Context) error {
	c.localCourses.Reseed(ctx)
	c.localTeachers.Reseed(ctx)
	c.log.Info().
		Int("courses", len(c.seed.Courses)).
		Int("teachers", len(c.seed.Teachers)).
		Msg("collections reseeded")
	return nil
}

// Reset clears the local data keys.
func (c *client) Reset(ctx context.Context) error {
	if err := c.accounts.Reset(ctx); err != nil {
		return err
	}
	if err := c.localCourses.Clear(ctx); err != nil {
		return err
	}
	if err := c.localTeachers.Clear(ctx); err != nil {
		return err
	}
	c.log.Info().
		Strs("keys", []string{constants.SessionKey, constants.CoursesKey, constants.TeachersKey, constants.UsersKey, constants.ProfileKeyPrefix + "*"}).
		Msg("local data reset")
	return nil
}

// Counts reports local collection sizes.
func (c *client) Counts(ctx context.Context) Counts {
	return Counts{
		Courses:  c.localCourses.Count(ctx),
		Teachers: c.localTeachers.Count(ctx),
		Users:    c.accounts.Count(ctx),
	}
}
