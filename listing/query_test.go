package listing_test

import (
	"net/url"
	"testing"

	"github.com/jrsteele09/catalog-console/listing"
	"github.com/stretchr/testify/require"
)

var products = listing.Defaults{
	PageSize:   5,
	PageSizes:  []int{5, 10, 25},
	SortField:  "name",
	SortFields: []string{"name", "sku"},
	Direction:  listing.Asc,
}

func TestNew(t *testing.T) {
	q := listing.New(products)
	require.Equal(t, listing.Query{Page: 1, PageSize: 5, SortField: "name", Direction: listing.Asc}, q)
}

func TestFilterChangesResetPage(t *testing.T) {
	q := listing.New(products).WithPage(3)
	require.Equal(t, 3, q.Page)

	tests := []struct {
		name   string
		change func(listing.Query) listing.Query
	}{
		{"search", func(q listing.Query) listing.Query { return q.WithSearch("lamp") }},
		{"category", func(q listing.Query) listing.Query { return q.WithCategory("Home") }},
		{"source", func(q listing.Query) listing.Query { return q.WithSource("ADMIN") }},
		{"page size", func(q listing.Query) listing.Query { return q.WithPageSize(10) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, 1, tt.change(q).Page)
			require.Equal(t, 3, q.Page)
		})
	}
}

func TestApplyFilterForm(t *testing.T) {
	q := listing.Parse(url.Values{"page": {"3"}, "search": {"old"}}, products)
	require.Equal(t, 3, q.Page)

	require.Equal(t, q, q.Apply(url.Values{"search": {"new"}}))

	applied := q.Apply(url.Values{
		"filter":   {"1"},
		"search":   {" lamp "},
		"category": {"Home"},
		"source":   {""},
	})
	require.Equal(t, 1, applied.Page)
	require.Equal(t, "lamp", applied.Search)
	require.Equal(t, "Home", applied.Category)
	require.Empty(t, applied.Source)
	require.Equal(t, "1", applied.Backend().Get("page"))
}

func TestToggleSort(t *testing.T) {
	q := listing.New(products).WithPage(2)

	q = q.ToggleSort("sku")
	require.Equal(t, "sku", q.SortField)
	require.Equal(t, listing.Desc, q.Direction)
	require.Equal(t, 2, q.Page)

	q = q.ToggleSort("sku")
	require.Equal(t, listing.Asc, q.Direction)
}

func TestBackendOmitsEmptyFilters(t *testing.T) {
	q := listing.New(products).WithSearch("  lamp ")
	require.Equal(t, url.Values{
		"page":   {"1"},
		"limit":  {"5"},
		"sort":   {"name"},
		"order":  {"asc"},
		"search": {"lamp"},
	}, q.Backend())

	q = q.WithCategory("Home").WithSource("USER").WithPage(2)
	v := q.Backend()
	require.Equal(t, "Home", v.Get("category"))
	require.Equal(t, "USER", v.Get("source"))
	require.Equal(t, "2", v.Get("page"))
}

func TestParse(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		q := listing.New(products).WithCategory("Home").WithPageSize(25).WithPage(4).ToggleSort("sku")
		require.Equal(t, q, listing.Parse(q.Console(), products))
	})

	t.Run("out of range values fall back", func(t *testing.T) {
		q := listing.Parse(url.Values{
			"page":  {"-2"},
			"limit": {"7"},
			"sort":  {"password"},
			"order": {"sideways"},
		}, products)
		require.Equal(t, listing.New(products), q)
	})
}

func TestPages(t *testing.T) {
	q := listing.New(products)
	require.Equal(t, 1, q.Pages(0))
	require.Equal(t, 1, q.Pages(5))
	require.Equal(t, 2, q.Pages(6))
	require.Equal(t, 3, q.WithPageSize(10).Pages(21))
}

func TestPager(t *testing.T) {
	q := listing.New(products).WithPage(2)
	p := q.Pager("/products", 12, products.PageSizes)

	require.Equal(t, 3, p.Pages)
	require.Equal(t, 6, p.From)
	require.Equal(t, 10, p.To)
	require.Contains(t, p.PrevURL, "page=1")
	require.Contains(t, p.NextURL, "page=3")
	require.Len(t, p.Sizes, 3)
	require.True(t, p.Sizes[0].Selected)
	require.Contains(t, p.Sizes[1].URL, "limit=10")
	require.Contains(t, p.Sizes[1].URL, "page=1")

	last := q.WithPage(3).Pager("/products", 12, nil)
	require.Equal(t, 12, last.To)
	require.Empty(t, last.NextURL)

	empty := listing.New(products).Pager("/products", 0, nil)
	require.Zero(t, empty.From)
	require.Empty(t, empty.PrevURL)
	require.Empty(t, empty.NextURL)
}
