package pagination

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// MinVisible is the smallest supported number of numeric page slots.
const MinVisible = 5

// EllipsisMarker is the JSON rendering of a gap in the page window.
const EllipsisMarker = "..."

// Token is one slot of a page window: either a page number or an ellipsis.
type Token struct {
	Page     int
	Ellipsis bool
}

// Number returns a page-number token.
func Number(n int) Token { return Token{Page: n} }

// Gap is the ellipsis token.
var Gap = Token{Ellipsis: true}

// MarshalJSON renders numbers as JSON numbers and gaps as "...".
func (t Token) MarshalJSON() ([]byte, error) {
	if t.Ellipsis {
		return json.Marshal(EllipsisMarker)
	}
	return json.Marshal(t.Page)
}

func (t Token) String() string {
	if t.Ellipsis {
		return EllipsisMarker
	}
	return strconv.Itoa(t.Page)
}

// TotalPages returns ceil(count/pageSize), never less than 1.
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 || count <= 0 {
		return 1
	}
	n := count / pageSize
	if count%pageSize > 0 {
		n++
	}
	return max(1, n)
}

// ClampPage bounds page into [1, totalPages].
func ClampPage(page, totalPages int) int {
	totalPages = max(1, totalPages)
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Window lays out at most maxVisible numeric page slots plus up to two gaps.
// The first and last page are always present. maxVisible below MinVisible is
// raised to MinVisible; currentPage is clamped first.
func Window(totalPages, currentPage, maxVisible int) []Token {
	totalPages = max(1, totalPages)
	current := ClampPage(currentPage, totalPages)
	m := max(MinVisible, maxVisible)

	if totalPages <= m {
		return span(nil, 1, totalPages)
	}

	edge := m - 2
	tail := m - 3

	switch {
	case current <= edge:
		out := span(make([]Token, 0, m+1), 1, m-1)
		return append(out, Gap, Number(totalPages))
	case current >= totalPages-tail:
		out := append(make([]Token, 0, m+1), Number(1), Gap)
		return span(out, totalPages-edge, totalPages)
	default:
		k := (m - 3) / 2
		out := append(make([]Token, 0, m+2), Number(1), Gap)
		out = span(out, current-k, current+k)
		return append(out, Gap, Number(totalPages))
	}
}

func span(dst []Token, from, to int) []Token {
	for p := from; p <= to; p++ {
		dst = append(dst, Number(p))
	}
	return dst
}

// Slice returns the items on the given 1-based page. Pages outside the
// collection yield an empty, non-nil slice.
func Slice[T any](items []T, page, pageSize int) []T {
	if pageSize <= 0 || page < 1 {
		return []T{}
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := min(start+pageSize, len(items))
	return items[start:end]
}

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// FromRequest reads ?page= from r. Page sizes are fixed per view, so the
// caller supplies perPage. Missing or malformed pages default to 1.
func FromRequest(r *http.Request, perPage int) Params {
	p := Params{Page: 1, PerPage: perPage}
	if raw := r.URL.Query().Get("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			p.Page = v
		}
	}
	return p
}

// Result is one page of an in-memory collection together with its window.
type Result[T any] struct {
	Data       []T     `json:"data"`
	TotalCount int     `json:"total_count"`
	Page       int     `json:"page"`
	PerPage    int     `json:"per_page"`
	TotalPages int     `json:"total_pages"`
	HasNext    bool    `json:"has_next"`
	HasPrev    bool    `json:"has_prev"`
	Pages      []Token `json:"pages"`
}

// Paginate clamps the requested page, slices items and lays out the window.
func Paginate[T any](items []T, params Params, maxVisible int) Result[T] {
	total := TotalPages(len(items), params.PerPage)
	page := ClampPage(params.Page, total)
	return NewResult(Slice(items, page, params.PerPage), len(items), Params{Page: page, PerPage: params.PerPage}, maxVisible)
}

// NewResult wraps a page that was already fetched (for example with SQL
// OFFSET/LIMIT) given the collection's total count. params.Page is clamped.
func NewResult[T any](data []T, totalCount int, params Params, maxVisible int) Result[T] {
	total := TotalPages(totalCount, params.PerPage)
	page := ClampPage(params.Page, total)
	if data == nil {
		data = []T{}
	}

	return Result[T]{
		Data:       data,
		TotalCount: totalCount,
		Page:       page,
		PerPage:    params.PerPage,
		TotalPages: total,
		HasNext:    page < total,
		HasPrev:    page > 1,
		Pages:      Window(total, page, maxVisible),
	}
}

// Offset returns the zero-based index of the first item on page p.
func (p Params) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}
