// Package pagination slices an ordered collection into fixed-size pages.
//
// Semantics mirror the common paginator contract: page numbers are
// 1-indexed, a request past the last page clamps to the last page instead
// of erroring, and an empty collection still has exactly one (empty) page.
package pagination

import "strconv"

// PerPage is the fixed page size for every feed view.
const PerPage = 10

// Meta describes one page of a collection.
type Meta struct {
	Page        int   `json:"page"`
	NumPages    int   `json:"num_pages"`
	Count       int64 `json:"count"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// Pager computes page windows over a collection of Count items.
type Pager struct {
	Count   int64
	PerPage int
}

// NewPager returns a Pager with the default page size.
func NewPager(count int64) Pager {
	return Pager{Count: count, PerPage: PerPage}
}

// ParsePage resolves a raw query value to a page number. Absent,
// non-numeric, or sub-1 input defaults to page 1.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// NumPages is ceil(Count/PerPage), with a minimum of one page so an empty
// collection still renders.
func (p Pager) NumPages() int {
	if p.Count <= 0 {
		return 1
	}
	return int((p.Count + int64(p.PerPage) - 1) / int64(p.PerPage))
}

// Clamp snaps an out-of-range page number into [1, NumPages].
func (p Pager) Clamp(page int) int {
	if page < 1 {
		return 1
	}
	if last := p.NumPages(); page > last {
		return last
	}
	return page
}

// Offset is the item offset of the given (already clamped) page.
func (p Pager) Offset(page int) int {
	return (page - 1) * p.PerPage
}

// MetaFor clamps page and returns its metadata.
func (p Pager) MetaFor(page int) Meta {
	page = p.Clamp(page)
	return Meta{
		Page:        page,
		NumPages:    p.NumPages(),
		Count:       p.Count,
		HasNext:     page < p.NumPages(),
		HasPrevious: page > 1,
	}
}
