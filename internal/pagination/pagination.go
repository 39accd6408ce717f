// Package pagination converts page requests into offset/limit windows and
// builds the descriptor returned alongside every paged listing.
package pagination

import "math"

// Descriptor is the (currentPage, totalPages, totalItems) triple.
type Descriptor struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
}

// Window is a normalized page request.
type Window struct {
	Page   int
	Offset int
	Limit  int
}

// Result is the full output of Paginate.
type Result struct {
	Offset     int
	Limit      int
	Descriptor Descriptor
}

// NewWindow normalizes page and pageSize. Pages below 1 are treated as page 1
// and page sizes below 1 as 1. An offset that would overflow saturates at
// math.MaxInt, which selects no rows.
func NewWindow(page, pageSize int) Window {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	offset := math.MaxInt
	if page-1 <= math.MaxInt/pageSize {
		offset = (page - 1) * pageSize
	}
	return Window{
		Page:   page,
		Offset: offset,
		Limit:  pageSize,
	}
}

// Describe builds the descriptor for this window given the filtered total.
func (w Window) Describe(totalItems int64) Descriptor {
	if totalItems < 0 {
		totalItems = 0
	}
	return Descriptor{
		CurrentPage: w.Page,
		TotalPages:  TotalPages(totalItems, w.Limit),
		TotalItems:  totalItems,
	}
}

// Paginate combines NewWindow and Describe.
func Paginate(page, pageSize int, totalItems int64) Result {
	w := NewWindow(page, pageSize)
	return Result{
		Offset:     w.Offset,
		Limit:      w.Limit,
		Descriptor: w.Describe(totalItems),
	}
}

// TotalPages returns max(1, ceil(totalItems/pageSize)).
func TotalPages(totalItems int64, pageSize int) int {
	if pageSize < 1 {
		pageSize = 1
	}
	if totalItems <= 0 {
		return 1
	}
	size := int64(pageSize)
	return int((totalItems + size - 1) / size)
}
