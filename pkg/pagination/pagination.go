// Package pagination slices list results into pages and builds the links
// between them.
package pagination

import (
	"net/http"
	"net/url"
	"strconv"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 20
)

type Params struct {
	Page    int
	PerPage int
}

// FromQuery reads page and per_page. Values that are missing or not positive
// integers fall back to the defaults; per_page is clamped to maxPerPage when
// maxPerPage is positive.
func FromQuery(q url.Values, maxPerPage int) Params {
	p := Params{
		Page:    positiveInt(q.Get("page"), DefaultPage),
		PerPage: positiveInt(q.Get("per_page"), DefaultPerPage),
	}
	if maxPerPage > 0 && p.PerPage > maxPerPage {
		p.PerPage = maxPerPage
	}
	return p
}

func positiveInt(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Pages is the number of pages needed for total items.
func (p Params) Pages(total int64) int64 {
	if total <= 0 {
		return 0
	}
	per := int64(p.PerPage)
	return (total + per - 1) / per
}

func (p Params) HasNext(total int64) bool {
	return int64(p.Page) < p.Pages(total)
}

func (p Params) HasPrev() bool {
	return p.Page > 1
}

type Page[T any] struct {
	Data []T   `json:"data"`
	Next string `json:"next,omitempty"`
	Prev string `json:"prev,omitempty"`
}

// New wraps one page of items. Links reuse base with page and per_page replaced.
func New[T any](items []T, total int64, p Params, base *url.URL) Page[T] {
	if items == nil {
		items = []T{}
	}
	page := Page[T]{Data: items}
	if p.HasNext(total) {
		page.Next = Link(base, p.Page+1, p.PerPage)
	}
	if p.HasPrev() {
		page.Prev = Link(base, p.Page-1, p.PerPage)
	}
	return page
}

func Link(base *url.URL, page, perPage int) string {
	u := *base
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	u.RawQuery = q.Encode()
	return u.String()
}

// RequestURL reconstructs the absolute URL the client called.
// The scheme comes from the connection only; forwarding headers are client controlled.
func RequestURL(r *http.Request) *url.URL {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return &url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     r.URL.Path,
		RawQuery: r.URL.RawQuery,
	}
}
