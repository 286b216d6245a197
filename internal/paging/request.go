package paging

// Request carries list parameters explicitly from one call to the next.
//
// SearchString is non-nil only when the caller submitted a new filter; CurrentFilter is the
// filter the previous page was rendered with.
type Request struct {
	SortOrder     string
	CurrentFilter string
	SearchString  *string
	PageIndex     *int
}

// Resolve returns the effective filter and page index. A newly submitted filter
// always restarts at page 1; otherwise the carried filter and requested page apply.
func (r Request) Resolve() (filter string, pageIndex int) {
	if r.SearchString != nil {
		return *r.SearchString, 1
	}
	pageIndex = 1
	if r.PageIndex != nil && *r.PageIndex > 1 {
		pageIndex = *r.PageIndex
	}
	return r.CurrentFilter, pageIndex
}
