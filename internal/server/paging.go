package server

import (
	"strconv"
	"strings"
)

// window is a resolved page: which slice of the capped result set to load.
type window struct {
	Count      int
	TotalPages int
	Page       int
	Offset     int
	Limit      int
}

// paginate clamps the requested page into range. At most maxItems of total
// are paginated (0 means no cap). Non-numeric pages resolve to 1 and
// out-of-range pages resolve to the last page; an empty set still has one page.
func paginate(total, maxItems, perPage int, rawPage string) window {
	count := total
	if maxItems > 0 && count > maxItems {
		count = maxItems
	}
	pages := (count + perPage - 1) / perPage
	if pages < 1 {
		pages = 1
	}
	page, err := strconv.Atoi(strings.TrimSpace(rawPage))
	if err != nil {
		page = 1
	}
	if page < 1 || page > pages {
		page = pages
	}
	offset := (page - 1) * perPage
	limit := perPage
	if offset+limit > count {
		limit = count - offset
	}
	return window{Count: count, TotalPages: pages, Page: page, Offset: offset, Limit: limit}
}
