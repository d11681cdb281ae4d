package catalogs

import "github.com/agentstation/coursemap/pkg/constants"

// Page is one page of a paginated list.
type Page[T any] struct {
	Page      int `json:"page" yaml:"page"`
	PerPage   int `json:"perPage" yaml:"perPage"`
	Total     int `json:"total" yaml:"total"`
	PageCount int `json:"pageCount" yaml:"pageCount"`
	Items     []T `json:"paginated" yaml:"paginated"`
}

// Paginate returns the requested page of list. The page number is clamped
// into [1, PageCount] and PageCount is at least 1, so an empty list yields
// an empty page 1. A non-positive perPage uses the default page size.
func Paginate[T any](list []T, page, perPage int) Page[T] {
	if perPage <= 0 {
		perPage = constants.DefaultPerPage
	}
	total := len(list)
	pageCount := max(1, (total+perPage-1)/perPage)
	page = min(max(page, 1), pageCount)

	start := min((page-1)*perPage, total)
	end := min(start+perPage, total)

	return Page[T]{
		Page:      page,
		PerPage:   perPage,
		Total:     total,
		PageCount: pageCount,
		Items:     append(make([]T, 0, end-start), list[start:end]...),
	}
}

// Window returns the first page*pageSize items of list, the way an
// infinite-scrolling list grows, and whether more remain.
func Window[T any](list []T, page, pageSize int) ([]T, bool) {
	if pageSize <= 0 {
		pageSize = constants.DefaultPerPage
	}
	n := min(max(page, 1)*pageSize, len(list))
	return append(make([]T, 0, n), list[:n]...), n < len(list)
}
