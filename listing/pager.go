package listing

// Pager is the pagination bar of a rendered listing.
type Pager struct {
	Page    int
	Pages   int
	Total   int
	From    int
	To      int
	PrevURL string
	NextURL string
	Sizes   []SizeOption
}

type SizeOption struct {
	Size     int
	URL      string
	Selected bool
}

// Pager builds the pagination bar for a listing at path holding total items.
func (q Query) Pager(path string, total int, sizes []int) Pager {
	p := Pager{Page: q.Page, Pages: q.Pages(total), Total: total}
	if total > 0 {
		p.From = q.Offset() + 1
		p.To = min(q.Offset()+q.PageSize, total)
		if p.From > total {
			p.From, p.To = 0, 0
		}
	}
	if q.Page > 1 {
		p.PrevURL = q.WithPage(min(q.Page-1, p.Pages)).URL(path)
	}
	if q.Page < p.Pages {
		p.NextURL = q.WithPage(q.Page + 1).URL(path)
	}
	for _, size := range sizes {
		p.Sizes = append(p.Sizes, SizeOption{
			Size:     size,
			URL:      q.WithPageSize(size).URL(path),
			Selected: size == q.PageSize,
		})
	}
	return p
}

// SortURL is the console URL that toggles sorting by field.
func (q Query) SortURL(path, field string) string {
	return q.ToggleSort(field).URL(path)
}
