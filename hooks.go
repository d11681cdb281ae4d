package coursemap

import (
	"github.com/agentstation/coursemap/pkg/catalogs"
	"github.com/agentstation/coursemap/pkg/store"
)

// Hooks registers callbacks for course changes.
type Hooks interface {
	// OnCourseCreated registers a callback for created courses
	OnCourseCreated(fn store.CreatedHook[catalogs.Course])
	// OnCourseUpdated registers a callback for updated courses
	OnCourseUpdated(fn store.UpdatedHook[catalogs.Course])
	// OnCourseDeleted registers a callback for deleted courses
	OnCourseDeleted(fn store.DeletedHook[catalogs.Course])
}

// courseHooks are the hook sets a course mutation can fire from. With a
// remote store configured a mutation fires from the remote set, or from the
// local set when it falls back, never both.
func (c *client) courseHooks() []*store.Hooks[catalogs.Course] {
	sets := []*store.Hooks[catalogs.Course]{c.localCourses.Hooks}
	if c.remoteCourses != nil {
		sets = append(sets, c.remoteCourses.Hooks)
	}
	return sets
}

// OnCourseCreated registers a callback for created courses.
func (c *client) OnCourseCreated(fn store.CreatedHook[catalogs.Course]) {
	for _, h := range c.courseHooks() {
		h.OnCreated(fn)
	}
}

// OnCourseUpdated registers a callback for updated courses.
func (c *client) OnCourseUpdated(fn store.UpdatedHook[catalogs.Course]) {
	for _, h := range c.courseHooks() {
		h.OnUpdated(fn)
	}
}

// OnCourseDeleted registers a callback for deleted courses.
func (c *client) OnCourseDeleted(fn store.DeletedHook[catalogs.Course]) {
	for _, h := range c.courseHooks() {
		h.OnDeleted(fn)
	}
}

// flushCoursesOnTeacherChange drops cached remote course listings whenever a
// teacher changes, since listings carry joined instructor names.
func (c *client) flushCoursesOnTeacherChange() {
	flush := func() { c.remoteCourses.Invalidate() }
	for _, h := range []*store.Hooks[catalogs.Teacher]{c.localTeachers.Hooks, c.remoteTeachers.Hooks} {
		h.OnCreated(func(catalogs.Teacher) { flush() })
		h.OnUpdated(func(_, _ catalogs.Teacher) { flush() })
		h.OnDeleted(func(catalogs.Teacher) { flush() })
	}
}
