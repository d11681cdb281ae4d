// Package catalogs defines the course and teacher records of the catalog
// and the pure query engine every listing goes through.
//
// Query filters, searches and sorts a list without touching the input:
//
//	spec := catalogs.FilterSpec{Search: "design", SortBy: catalogs.SortRating}
//	page := catalogs.Paginate(catalogs.Query(courses, spec), 1, 10)
//
// Derived values such as a course's level and instructor are computed by
// NormalizeCourse and are never treated as stored data.
package catalogs
