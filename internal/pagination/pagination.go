package pagination

import (
	"errors"
	"fmt"

	"tothemoon/internal/domain"
)

var (
	ErrPageOutOfRange  = errors.New("page out of range")
	ErrInvalidPageSize = errors.New("invalid page size")
)

// StripWindow is the number of consecutive page buttons shown around the current page.
const StripWindow = 5

// Controller tracks the listing position against a known or estimated record total.
type Controller struct {
	page     int
	pageSize int
	total    int
}

func New(pageSize, total int) (*Controller, error) {
	if !domain.ValidPageSize(pageSize) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPageSize, pageSize)
	}
	c := &Controller{page: 1, pageSize: pageSize}
	c.SetTotal(total)
	return c, nil
}

func (c *Controller) Page() int     { return c.page }
func (c *Controller) PageSize() int { return c.pageSize }
func (c *Controller) Total() int    { return c.total }

// GoToPage moves to a zero-based page index. The first page is always reachable;
// any other page must start before the record total.
func (c *Controller) GoToPage(index int) error {
	if index < 0 || (index > 0 && index*c.pageSize >= c.total) {
		return fmt.Errorf("%w: index %d with %d records at size %d", ErrPageOutOfRange, index, c.total, c.pageSize)
	}
	c.page = index + 1
	return nil
}

// SetPageSize changes the page size and returns to the first page.
func (c *Controller) SetPageSize(size int) error {
	if !domain.ValidPageSize(size) {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, size)
	}
	c.pageSize = size
	c.page = 1
	return nil
}

// CyclePageSize steps through the allowed sizes in either direction.
func (c *Controller) CyclePageSize(step int) {
	idx := 0
	for i, s := range domain.PageSizes {
		if s == c.pageSize {
			idx = i
			break
		}
	}
	n := len(domain.PageSizes)
	idx = ((idx+step)%n + n) % n
	_ = c.SetPageSize(domain.PageSizes[idx])
}

func (c *Controller) CanGoPrevious() bool { return c.page > 1 }

func (c *Controller) CanGoNext() bool { return c.page*c.pageSize < c.total }

// Next advances one page and reports whether it moved.
func (c *Controller) Next() bool {
	if !c.CanGoNext() {
		return false
	}
	c.page++
	return true
}

// Previous goes back one page and reports whether it moved.
func (c *Controller) Previous() bool {
	if !c.CanGoPrevious() {
		return false
	}
	c.page--
	return true
}

// SetTotal updates the record total and pulls the current page back into range.
func (c *Controller) SetTotal(total int) {
	if total < 0 {
		total = 0
	}
	c.total = total
	if last := c.TotalPages(); c.page > last {
		c.page = last
	}
	if c.page < 1 {
		c.page = 1
	}
}

func (c *Controller) TotalPages() int {
	if c.total == 0 {
		return 1
	}
	return (c.total + c.pageSize - 1) / c.pageSize
}

// Range returns the 1-based first and last record numbers on the current page.
func (c *Controller) Range() (first, last int) {
	if c.total == 0 {
		return 0, 0
	}
	first = (c.page-1)*c.pageSize + 1
	last = c.page * c.pageSize
	if last > c.total {
		last = c.total
	}
	return first, last
}

// RangeLabel is the "Showing X to Y of Z results" line.
func (c *Controller) RangeLabel() string {
	first, last := c.Range()
	return fmt.Sprintf("Showing %d to %d of %d results", first, last, c.total)
}

// Query combines the position with a sort into a listing request.
func (c *Controller) Query(sort *domain.SortSpec) domain.PageQuery {
	return domain.PageQuery{Page: c.page, PageSize: c.pageSize, Sort: sort}
}

// StripItem is one element of the page-number strip.
type StripItem struct {
	Page     int
	Ellipsis bool
	Current  bool
}

// Strip lays out up to StripWindow page numbers centred on the current page,
// with the first and last pages pinned and gaps marked by ellipses.
func (c *Controller) Strip() []StripItem {
	last := c.TotalPages()
	start := c.page - StripWindow/2
	end := c.page + StripWindow/2
	if start < 1 {
		end += 1 - start
		start = 1
	}
	if end > last {
		start -= end - last
		end = last
	}
	if start < 1 {
		start = 1
	}

	var items []StripItem
	if start > 1 {
		items = append(items, StripItem{Page: 1})
		if start > 2 {
			items = append(items, StripItem{Ellipsis: true})
		}
	}
	for p := start; p <= end; p++ {
		items = append(items, StripItem{Page: p, Current: p == c.page})
	}
	if end < last {
		if end < last-1 {
			items = append(items, StripItem{Ellipsis: true})
		}
		items = append(items, StripItem{Page: last})
	}
	return items
}
