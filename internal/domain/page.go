package domain

// Page size bounds for listings that can grow without limit, such as the
// public trip feed.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PageRequest selects one page of a listing. Page is 1-indexed.
type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest builds a PageRequest from optional query values. Missing or
// non-positive values fall back to page 1 and DefaultPageLimit; the limit is
// capped at MaxPageLimit.
func NewPageRequest(page, limit *int) PageRequest {
	p := PageRequest{Page: 1, Limit: DefaultPageLimit}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if limit != nil && *limit >= 1 {
		p.Limit = min(*limit, MaxPageLimit)
	}
	return p
}

// Offset is the number of rows to skip.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages is how many pages of p.Limit rows hold total rows.
func (p PageRequest) TotalPages(total int64) int {
	if total <= 0 || p.Limit <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}

// HasNext reports whether a page follows p.
func (p PageRequest) HasNext(total int64) bool {
	return p.Page < p.TotalPages(total)
}
