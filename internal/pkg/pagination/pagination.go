// Package pagination implements page-number pagination for list endpoints.
package pagination

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
)

var ErrInvalidPage = errors.New("invalid page")

// Page is the list envelope returned by paginated endpoints.
type Page struct {
	Count    int64   `json:"count"`
	NumPages int     `json:"num_pages"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

type Params struct {
	Page int
	Size int
	// Last asks for the final page, which is known only once the total is.
	Last bool
}

func (p Params) Limit() int  { return p.Size }
func (p Params) Offset() int { return (p.Page - 1) * p.Size }

// FromQuery reads ?page=N or ?page=last. A missing page means the first one.
func FromQuery(c *gin.Context, size int) (Params, error) {
	raw := c.Query("page")
	switch raw {
	case "":
		return Params{Page: 1, Size: size}, nil
	case "last":
		return Params{Page: 1, Size: size, Last: true}, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return Params{}, ErrInvalidPage
	}
	return Params{Page: n, Size: size}, nil
}

func numPages(total int64, size int) int {
	if total <= 0 {
		return 1
	}
	return int((total + int64(size) - 1) / int64(size))
}

// Resolve turns a request for the last page into a concrete page number.
func (p Params) Resolve(total int64) Params {
	if p.Last {
		p.Page, p.Last = numPages(total, p.Size), false
	}
	return p
}

// Fetch runs list for p. A request for the last page is answered with a
// second query once the first has reported the total.
func Fetch[T any](p Params, list func(Params) ([]T, int64, error)) ([]T, Params, int64, error) {
	items, total, err := list(p)
	if err != nil || !p.Last {
		return items, p, total, err
	}
	resolved := p.Resolve(total)
	if resolved.Page != p.Page {
		items, total, err = list(resolved)
	}
	return items, resolved, total, err
}

// Build assembles the envelope. A page past the end of a non-empty result
// set is reported as ErrInvalidPage.
func Build(c *gin.Context, p Params, total int64, results any) (*Page, error) {
	p = p.Resolve(total)
	n := numPages(total, p.Size)
	if p.Page > n {
		return nil, ErrInvalidPage
	}

	page := &Page{Count: total, NumPages: n, Results: results}
	if p.Page < n {
		page.Next = link(c, p.Page+1)
	}
	if p.Page > 1 {
		page.Previous = link(c, p.Page-1)
	}
	return page, nil
}

func link(c *gin.Context, n int) *string {
	u := url.URL{
		Scheme: scheme(c),
		Host:   c.Request.Host,
		Path:   c.Request.URL.Path,
	}
	q := c.Request.URL.Query()
	if n == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(n))
	}
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}

func scheme(c *gin.Context) string {
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	if c.Request.TLS != nil {
		return "https"
	}
	return "http"
}
