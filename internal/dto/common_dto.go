package dto

// ─── Pagination ──────────────────────────────────────────────────────────────

// PageQuery is embedded in every list filter.
type PageQuery struct {
	Page  int `form:"page,default=1"   validate:"min=1"`
	Limit int `form:"limit,default=20" validate:"min=1,max=100"`
}

// Offset is the row offset for the requested page.
func (p PageQuery) Offset() int { return (p.Page - 1) * p.Limit }

// Normalize clamps out-of-range values to the defaults.
func (p *PageQuery) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > 100 {
		p.Limit = 20
	}
}

// ListResponse is the envelope of every paginated listing.
type ListResponse[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// NewListResponse fills the pagination fields from q and total.
func NewListResponse[T any](data []T, total int64, q PageQuery) ListResponse[T] {
	if data == nil {
		data = []T{}
	}
	pages := 0
	if q.Limit > 0 {
		pages = int((total + int64(q.Limit) - 1) / int64(q.Limit))
	}
	return ListResponse[T]{Data: data, Total: total, Page: q.Page, Limit: q.Limit, TotalPages: pages}
}

const DateLayout = "2006-01-02"
