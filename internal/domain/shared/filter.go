package shared

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Filter is the list query shared by the tile, customer and invoice
// repositories. Filters holds exact-match columns such as status or
// customer_id; Search is a case-insensitive substring match whose columns
// each repository picks.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]interface{}
}

// Normalize clamps paging to 1..100 rows per page, defaulting to 20
func (f Filter) Normalize() Filter {
	f.Page = max(f.Page, 1)
	switch {
	case f.PageSize < 1:
		f.PageSize = defaultPageSize
	case f.PageSize > maxPageSize:
		f.PageSize = maxPageSize
	}
	if f.Filters == nil {
		f.Filters = map[string]interface{}{}
	}
	return f
}

// Offset is the number of rows skipped before the current page
func (f Filter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}
