package util

import (
	"math"
	"strconv"
)

// PageSize is the fixed number of products per catalog page.
const PageSize = 3

// MaxPage is the largest page whose offset and successor fit in an int.
const MaxPage = math.MaxInt / PageSize

// ParseIntDefault returns def for empty or non-numeric input.
func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func Calculate(page, size int) (from, limit int) {
	if size <= 0 || size > 100 {
		size = 10
	}
	page = clamp(page, math.MaxInt/size)
	from = (page - 1) * size
	return from, size
}

type Page struct {
	CurrentPage     int   `json:"currentPage"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
	NextPage        int   `json:"nextPage"`
	PreviousPage    int   `json:"previousPage"`
	LastPage        int   `json:"lastPage"`
	TotalItems      int64 `json:"totalItems"`
}

// NewPage builds navigation metadata for page out of total items at PageSize per page.
func NewPage(page int, total int64) Page {
	page = clamp(page, MaxPage)
	last := int((total + PageSize - 1) / PageSize)
	return Page{
		CurrentPage:     page,
		HasNextPage:     page < last,
		HasPreviousPage: page > 1,
		NextPage:        page + 1,
		PreviousPage:    page - 1,
		LastPage:        last,
		TotalItems:      total,
	}
}

func clamp(page, upper int) int {
	if page < 1 {
		return 1
	}
	if page > upper {
		return upper
	}
	return page
}
