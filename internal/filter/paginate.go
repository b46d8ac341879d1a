package filter

// DefaultPageSize is used when a caller passes a non-positive page size.
const DefaultPageSize = 10

// Page is one slice of a filtered collection plus the totals needed to draw
// a pager.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
	TotalCount int `json:"total_count"`
}

// Paginate returns page (1-based) of items. A page outside [1, TotalPages]
// yields empty Items with correct totals; clamping is the caller's job.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(items)
	p := Page[T]{
		Items:      []T{},
		Page:       page,
		PageSize:   pageSize,
		TotalPages: total / pageSize,
		TotalCount: total,
	}
	if total%pageSize != 0 {
		p.TotalPages++
	}
	if page < 1 || page > p.TotalPages {
		return p
	}
	start := (page - 1) * pageSize
	end := start + min(pageSize, total-start)
	p.Items = items[start:end:end]
	return p
}

// ClampPage limits page to [1, totalPages]. With no pages it returns 1.
func ClampPage(page, totalPages int) int {
	if totalPages < 1 || page < 1 {
		return 1
	}
	return min(page, totalPages)
}
