package models

import "math"

// PageRequest is a zero-based window into the ordered item list.
type PageRequest struct {
	Number int
	Size   int
}

// Offset is the number of items before the window. It saturates at
// math.MaxInt64 instead of overflowing for absurd page numbers.
func (p PageRequest) Offset() int64 {
	if p.Size <= 0 || p.Number <= 0 {
		return 0
	}
	if int64(p.Number) > math.MaxInt64/int64(p.Size) {
		return math.MaxInt64
	}
	return int64(p.Number) * int64(p.Size)
}

// Limit is the maximum number of items in the window.
func (p PageRequest) Limit() int {
	return p.Size
}

// TotalPages is ceil(total/size).
func (p PageRequest) TotalPages(total int64) int {
	if p.Size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(p.Size) - 1) / int64(p.Size))
}

// Page is one window of items plus its pagination metadata.
type Page struct {
	Items      []*Item
	Number     int
	Size       int
	TotalItems int64
	TotalPages int
}

// NewPage assembles a Page for req from the window and the total item count.
// A window past the last page is empty; the metadata is still reported.
func NewPage(req PageRequest, items []*Item, total int64) *Page {
	if items == nil {
		items = []*Item{}
	}
	return &Page{
		Items:      items,
		Number:     req.Number,
		Size:       req.Size,
		TotalItems: total,
		TotalPages: req.TotalPages(total),
	}
}
