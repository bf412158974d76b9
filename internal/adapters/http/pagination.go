package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// PaginatedResponse wraps a listing with its pagination window.
type PaginatedResponse struct {
	Data       any        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Pagination is an offset window over a listing. Total counts only what the
// query could see, not the whole table.
type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Total  int `json:"total"`
}

// SetLinkHeaders emits RFC 8288 first/prev/next/last relations for an
// offset-paginated listing.
func SetLinkHeaders(c *fiber.Ctx, p Pagination) {
	link := func(offset int, rel string) string {
		return fmt.Sprintf(`<%s?offset=%d&limit=%d>; rel=%q`, c.Path(), offset, p.Limit, rel)
	}

	rels := []string{link(0, "first")}
	if p.Offset > 0 {
		rels = append(rels, link(max(p.Offset-p.Limit, 0), "prev"))
	}
	if next := p.Offset + p.Limit; next < p.Total {
		rels = append(rels, link(next, "next"))
	}
	rels = append(rels, link(max(p.Total-p.Limit, 0), "last"))

	c.Set(fiber.HeaderLink, strings.Join(rels, ", "))
}
