// Package cursor renders the plain-integer navigation cursors carried in a
// result page's next_url and previous_url. Cursors are deliberately
// transparent query parameters (page, id_anchor, direction), not opaque
// tokens; clients round-trip them verbatim.
package cursor

import (
	"net/url"
	"strconv"

	"github.com/tanglisha/text-pair/internal/request"
)

const (
	paramPage      = "page"
	paramAnchor    = "id_anchor"
	paramDirection = "direction"
)

// Links carries the rendered navigation URLs of one result page. An empty
// string means no page exists in that direction.
type Links struct {
	Next     string
	Previous string
}

// PageLinks derives the navigation links for one page of results.
// firstAnchor and lastAnchor are the ordering keys of the page's edge rows.
// An empty page links nowhere; a previous link exists only past page one and
// flips the direction so the store reads backward from the page's first row.
func PageLinks(path string, query url.Values, page, firstAnchor, lastAnchor int, hasRows bool) Links {
	var links Links
	if !hasRows {
		return links
	}
	links.Next = PageURL(path, query, page+1, lastAnchor, request.DirectionNext)
	if page > 1 {
		links.Previous = PageURL(path, query, page-1, firstAnchor, request.DirectionPrevious)
	}
	return links
}

// PageURL rebuilds the request URL with the three navigation parameters
// replaced. Filter fields and other control parameters pass through
// untouched; parameters are re-encoded in sorted order.
func PageURL(path string, query url.Values, page, anchor int, direction string) string {
	values := make(url.Values, len(query)+3)
	for key, vals := range query {
		switch key {
		case paramPage, paramAnchor, paramDirection:
			continue
		}
		values[key] = vals
	}
	values.Set(paramPage, strconv.Itoa(page))
	values.Set(paramAnchor, strconv.Itoa(anchor))
	values.Set(paramDirection, direction)
	return path + "?" + values.Encode()
}

// StartPosition returns the zero-based offset of a page's first row within
// the full result ordering.
func StartPosition(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return pageSize * (page - 1)
}
