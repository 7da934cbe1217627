package pagination

import (
	"crypto/tls"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromQuery(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		p := FromQuery(url.Values{}, 100)
		assert.Equal(t, Params{Page: 1, PerPage: 20}, p)
	})

	t.Run("Invalid values fall back", func(t *testing.T) {
		p := FromQuery(url.Values{"page": {"abc"}, "per_page": {"-3"}}, 100)
		assert.Equal(t, Params{Page: 1, PerPage: 20}, p)

		p = FromQuery(url.Values{"page": {"0"}, "per_page": {"1.5"}}, 100)
		assert.Equal(t, Params{Page: 1, PerPage: 20}, p)
	})

	t.Run("Explicit values", func(t *testing.T) {
		p := FromQuery(url.Values{"page": {"3"}, "per_page": {"5"}}, 100)
		assert.Equal(t, Params{Page: 3, PerPage: 5}, p)
		assert.Equal(t, 10, p.Offset())
	})

	t.Run("Clamped per_page", func(t *testing.T) {
		p := FromQuery(url.Values{"per_page": {"1000"}}, 100)
		assert.Equal(t, 100, p.PerPage)
	})
}

func TestNew(t *testing.T) {
	base, _ := url.Parse("http://localhost/posts/?per_page=1&q=x")

	t.Run("First page of many", func(t *testing.T) {
		page := New([]int{1}, 3, Params{Page: 1, PerPage: 1}, base)
		assert.Len(t, page.Data, 1)
		assert.Equal(t, "http://localhost/posts/?page=2&per_page=1&q=x", page.Next)
		assert.Empty(t, page.Prev)
	})

	t.Run("Middle page", func(t *testing.T) {
		page := New([]int{2}, 3, Params{Page: 2, PerPage: 1}, base)
		assert.Equal(t, "http://localhost/posts/?page=3&per_page=1&q=x", page.Next)
		assert.Equal(t, "http://localhost/posts/?page=1&per_page=1&q=x", page.Prev)
	})

	t.Run("Last page", func(t *testing.T) {
		page := New([]int{3}, 3, Params{Page: 3, PerPage: 1}, base)
		assert.Empty(t, page.Next)
		assert.NotEmpty(t, page.Prev)
	})

	t.Run("Empty result", func(t *testing.T) {
		page := New[int](nil, 0, Params{Page: 1, PerPage: 20}, base)
		assert.NotNil(t, page.Data)
		assert.Empty(t, page.Data)
		assert.Empty(t, page.Next)
		assert.Empty(t, page.Prev)
	})
}

func TestRequestURL(t *testing.T) {
	req, _ := http.NewRequest("GET", "/comments/?page=2", nil)
	req.Host = "api.example.com"
	req.Header.Set("X-Forwarded-Proto", "gopher")

	u := RequestURL(req)
	assert.Equal(t, "http://api.example.com/comments/?page=2", u.String())

	req.TLS = &tls.ConnectionState{}
	assert.Equal(t, "https", RequestURL(req).Scheme)
}
