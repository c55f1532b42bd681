package listing

import (
	"math"
	"strconv"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
	// MaxOffset bounds the rows a page may skip so OFFSET never overflows.
	MaxOffset = math.MaxInt32
)

// Page is a normalised page request.
type Page struct {
	Number int
	Limit  int
}

// Meta is the pagination block returned with list responses.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	if p.Number < 1 || p.Limit <= 0 {
		return 0
	}
	if p.Number-1 > MaxOffset/p.Limit {
		return MaxOffset
	}
	return (p.Number - 1) * p.Limit
}

// lastPage is the highest page number whose offset stays within MaxOffset.
func lastPage(limit int) int {
	return MaxOffset/limit + 1
}

// TotalPages computes the page count for total matching rows.
func (p Page) TotalPages(total int) int {
	if total <= 0 || p.Limit <= 0 {
		return 0
	}
	return (total + p.Limit - 1) / p.Limit
}

// Meta builds the response metadata for total matching rows.
func (p Page) Meta(total int) *Meta {
	return &Meta{Page: p.Number, Limit: p.Limit, Total: total, TotalPages: p.TotalPages(total)}
}

// NewPage clamps raw page values to sane bounds without recording warnings.
func NewPage(number, limit int) Page {
	if number < 1 {
		number = 1
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if number > lastPage(limit) {
		number = lastPage(limit)
	}
	return Page{Number: number, Limit: limit}
}

// Page reads the page and limit parameters. Pages beyond the last one are not
// rejected; they simply produce an empty slice.
func (n *Normalizer) Page() Page {
	page := Page{Number: 1, Limit: n.defaultLimit}

	if raw := n.raw("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			n.warn("page", raw, "not an integer")
		case v < 1:
			n.warn("page", raw, "must be at least 1")
		default:
			page.Number = v
		}
	}

	if raw := n.raw("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			n.warn("limit", raw, "not an integer")
		case v < 1:
			n.warn("limit", raw, "must be at least 1")
		case v > n.maxLimit:
			n.warn("limit", raw, "capped at "+strconv.Itoa(n.maxLimit))
			page.Limit = n.maxLimit
		default:
			page.Limit = v
		}
	}

	if last := lastPage(page.Limit); page.Number > last {
		n.warn("page", n.raw("page"), "capped at "+strconv.Itoa(last))
		page.Number = last
	}
	return page
}
