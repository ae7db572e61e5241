package listing

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

func (d Direction) Flip() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// Query parameter names, shared by console URLs and backend requests.
const (
	ParamPage     = "page"
	ParamLimit    = "limit"
	ParamSort     = "sort"
	ParamOrder    = "order"
	ParamSearch   = "search"
	ParamCategory = "category"
	ParamSource   = "source"
	// ParamFilter marks a submitted filter form.
	ParamFilter = "filter"
)

// Defaults bound what Parse accepts for one listing view.
type Defaults struct {
	PageSize   int
	PageSizes  []int
	SortField  string
	SortFields []string
	Direction  Direction
}

// Query is the filter and pagination state of a listing view. It lives in the
// console URL and is never persisted. Changing the search text or a filter
// returns to the first page.
type Query struct {
	Page      int
	PageSize  int
	SortField string
	Direction Direction
	Search    string
	Category  string
	Source    string
}

// New is the first page of a listing with d's defaults.
func New(d Defaults) Query {
	dir := d.Direction
	if dir != Desc {
		dir = Asc
	}
	return Query{Page: 1, PageSize: d.PageSize, SortField: d.SortField, Direction: dir}
}

// Parse reads a query from console URL parameters. Values outside d fall back
// to d's defaults.
func Parse(values url.Values, d Defaults) Query {
	q := New(d)

	if page, err := strconv.Atoi(values.Get(ParamPage)); err == nil && page > 0 {
		q.Page = page
	}
	if size, err := strconv.Atoi(values.Get(ParamLimit)); err == nil && size > 0 && (len(d.PageSizes) == 0 || slices.Contains(d.PageSizes, size)) {
		q.PageSize = size
	}
	if field := values.Get(ParamSort); field != "" && slices.Contains(d.SortFields, field) {
		q.SortField = field
	}
	switch Direction(values.Get(ParamOrder)) {
	case Asc:
		q.Direction = Asc
	case Desc:
		q.Direction = Desc
	}
	q.Search = strings.TrimSpace(values.Get(ParamSearch))
	q.Category = strings.TrimSpace(values.Get(ParamCategory))
	q.Source = strings.TrimSpace(values.Get(ParamSource))
	return q
}

func (q Query) WithSearch(search string) Query {
	q.Search = strings.TrimSpace(search)
	q.Page = 1
	return q
}

func (q Query) WithCategory(category string) Query {
	q.Category = category
	q.Page = 1
	return q
}

func (q Query) WithSource(source string) Query {
	q.Source = source
	q.Page = 1
	return q
}

// Apply takes the search text and filters of a submitted filter form. When
// values carry ParamFilter they replace those of q and the listing returns to
// its first page; otherwise q is unchanged.
func (q Query) Apply(values url.Values) Query {
	if !values.Has(ParamFilter) {
		return q
	}
	return q.WithSearch(values.Get(ParamSearch)).
		WithCategory(strings.TrimSpace(values.Get(ParamCategory))).
		WithSource(strings.TrimSpace(values.Get(ParamSource)))
}

func (q Query) WithPage(page int) Query {
	if page < 1 {
		page = 1
	}
	q.Page = page
	return q
}

func (q Query) WithPageSize(size int) Query {
	if size > 0 {
		q.PageSize = size
	}
	q.Page = 1
	return q
}

// ToggleSort sorts by field and flips the current direction.
func (q Query) ToggleSort(field string) Query {
	q.SortField = field
	q.Direction = q.Direction.Flip()
	return q
}

// Offset is the zero-based index of the first item on the page.
func (q Query) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// Backend returns the backend request parameters. Empty filters are omitted.
func (q Query) Backend() url.Values {
	v := url.Values{}
	v.Set(ParamPage, strconv.Itoa(q.Page))
	v.Set(ParamLimit, strconv.Itoa(q.PageSize))
	if q.SortField != "" {
		v.Set(ParamSort, q.SortField)
		v.Set(ParamOrder, string(q.Direction))
	}
	setIf(v, ParamSearch, q.Search)
	setIf(v, ParamCategory, q.Category)
	setIf(v, ParamSource, q.Source)
	return v
}

// Console returns the parameters that reproduce q in a console URL.
func (q Query) Console() url.Values {
	return q.Backend()
}

// URL is path with q's console parameters.
func (q Query) URL(path string) string {
	return path + "?" + q.Console().Encode()
}

// Pages is the number of pages needed for total items, at least one.
func (q Query) Pages(total int) int {
	if q.PageSize <= 0 || total <= 0 {
		return 1
	}
	return (total + q.PageSize - 1) / q.PageSize
}

func setIf(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}
