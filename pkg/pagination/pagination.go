// Package pagination reads limit/offset query parameters and builds page
// envelopes with navigation links.
package pagination

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ErrInvalid is returned by Parse for a limit or offset that is not a
// non-negative integer.
var ErrInvalid = errors.New("limit and offset must be non-negative integers")

type Params struct {
	Limit  int
	Offset int
}

// Parse reads ?limit= and ?offset=. A missing or zero limit selects
// DefaultLimit; larger limits are clamped to MaxLimit.
func Parse(c echo.Context) (Params, error) {
	p := Params{Limit: DefaultLimit}
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return Params{}, ErrInvalid
		}
		if n > 0 {
			p.Limit = min(n, MaxLimit)
		}
	}
	if raw := c.QueryParam("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return Params{}, ErrInvalid
		}
		p.Offset = n
	}
	return p, nil
}

func (p Params) hasNext(total int) bool { return p.Offset+p.Limit < total }

func (p Params) previousOffset() int { return max(p.Offset-p.Limit, 0) }

// Page is one page of a listing. Data is never null in JSON.
type Page[T any] struct {
	Data    []T   `json:"data"`
	Total   int   `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
	Links   Links `json:"links"`
}

type Links struct {
	Self     string `json:"self"`
	Next     string `json:"next,omitempty"`
	Previous string `json:"previous,omitempty"`
}

// NewPage wraps items. Links point at basePath and keep every filter
// except limit and offset, which are replaced.
func NewPage[T any](items []T, total int, p Params, basePath string, filters url.Values) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Data:    items,
		Total:   total,
		Limit:   p.Limit,
		Offset:  p.Offset,
		HasMore: p.hasNext(total),
		Links:   p.links(basePath, total, filters),
	}
}

func (p Params) links(basePath string, total int, filters url.Values) Links {
	build := func(offset int) string {
		q := url.Values{}
		for k, v := range filters {
			if k != "limit" && k != "offset" {
				q[k] = v
			}
		}
		q.Set("limit", strconv.Itoa(p.Limit))
		q.Set("offset", strconv.Itoa(offset))
		return basePath + "?" + q.Encode()
	}

	l := Links{Self: build(p.Offset)}
	if p.hasNext(total) {
		l.Next = build(p.Offset + p.Limit)
	}
	if p.Offset > 0 {
		l.Previous = build(p.previousOffset())
	}
	return l
}
