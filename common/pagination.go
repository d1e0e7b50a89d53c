package common

import (
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
)

// PerPage is how many articles one listing page holds.
const PerPage = 6

type Pagination struct {
	Page    int
	PerPage int
	Total   int
	Pages   int

	path  string
	query url.Values
}

// PageParam reads ?page=N, falling back to 1 for anything missing or
// below one.
func PageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// Paginate returns the slice of items shown on page (1-based). A page past
// the end is empty.
func Paginate[T any](items []T, page, perPage int) []T {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || page > (len(items)+perPage-1)/perPage {
		return []T{}
	}
	offset := (page - 1) * perPage
	end := offset + perPage
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// NewPagination describes page of total items. Page links keep the request
// path and query (e.g. a search term) and only swap the page number.
func NewPagination(c *gin.Context, page, total int) Pagination {
	pages := (total + PerPage - 1) / PerPage
	query := url.Values{}
	for k, v := range c.Request.URL.Query() {
		if k != "page" {
			query[k] = v
		}
	}
	return Pagination{
		Page:    page,
		PerPage: PerPage,
		Total:   total,
		Pages:   pages,
		path:    c.Request.URL.Path,
		query:   query,
	}
}

// PaginateRequest applies the request's page number to items.
func PaginateRequest[T any](c *gin.Context, items []T) ([]T, Pagination) {
	page := PageParam(c)
	return Paginate(items, page, PerPage), NewPagination(c, page, len(items))
}

func (p Pagination) HasPrev() bool { return p.Page > 1 }
func (p Pagination) HasNext() bool { return p.Page < p.Pages }
func (p Pagination) Prev() int     { return p.Page - 1 }
func (p Pagination) Next() int     { return p.Page + 1 }

func (p Pagination) PageNumbers() []int {
	numbers := make([]int, p.Pages)
	for i := range numbers {
		numbers[i] = i + 1
	}
	return numbers
}

func (p Pagination) URL(page int) string {
	q := url.Values{}
	for k, v := range p.query {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(page))
	return p.path + "?" + q.Encode()
}
