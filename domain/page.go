package domain

import (
	"errors"
	"strconv"
	"strings"
)

// DefaultPerPage is used whenever no positive page size is configured.
const DefaultPerPage = 10

// Page is one fixed-size slice of an ordered post listing, together with the
// navigation metadata needed to render links to its neighbours.
type Page struct {
	Posts    []Post `json:"posts"`
	Number   int    `json:"number"`
	NumPages int    `json:"num_pages"`
	Total    int64  `json:"total"`
	PerPage  int    `json:"per_page"`
}

// NewPage resolves a raw page number against a listing of total rows.
// Pages are 1-indexed. A missing or non-numeric raw value yields the first page,
// and values outside the valid range are clamped to the nearest valid page.
// An empty listing still has one (empty) page.
func NewPage(raw string, total int64, perPage int) *Page {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	numPages := 1
	if total > 0 {
		numPages = int((total + int64(perPage) - 1) / int64(perPage))
	}
	raw = strings.TrimSpace(raw)
	number, err := strconv.Atoi(raw)
	switch {
	case errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(raw, "-"):
		// Too large to parse, so past the last page.
		number = numPages
	case err != nil || number < 1:
		number = 1
	}
	if number > numPages {
		number = numPages
	}
	return &Page{
		Number:   number,
		NumPages: numPages,
		Total:    total,
		PerPage:  perPage,
	}
}

// Offset is the number of rows that precede this page.
func (p *Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// HasNext reports whether a page follows this one.
func (p *Page) HasNext() bool {
	return p.Number < p.NumPages
}

// HasPrevious reports whether a page precedes this one.
func (p *Page) HasPrevious() bool {
	return p.Number > 1
}

// HasOtherPages reports whether the listing spans more than one page.
func (p *Page) HasOtherPages() bool {
	return p.NumPages > 1
}

func (p *Page) NextPageNumber() int {
	return p.Number + 1
}

func (p *Page) PreviousPageNumber() int {
	return p.Number - 1
}
