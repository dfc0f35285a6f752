package domain

import "strconv"

const DefaultPageSize = 10

// Page is one slice of an ordered collection. CurrentPage is 1-based and
// always within [1, TotalPages].
type Page[T any] struct {
	Items       []T `json:"items"`
	TotalItems  int `json:"totalFilteredCount"`
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	PageSize    int `json:"pageSize"`
}

// FirstItem is the 1-based position of the first item shown, or 0 when the
// page is empty.
func (p Page[T]) FirstItem() int {
	if len(p.Items) == 0 {
		return 0
	}
	return (p.CurrentPage-1)*p.PageSize + 1
}

func (p Page[T]) LastItem() int {
	if len(p.Items) == 0 {
		return 0
	}
	return p.FirstItem() + len(p.Items) - 1
}

func (p Page[T]) HasNext() bool {
	return p.CurrentPage < p.TotalPages
}

func (p Page[T]) HasPrev() bool {
	return p.CurrentPage > 1
}

// TotalPages is ceil(total/size), and 1 for an empty collection.
func TotalPages(total, size int) int {
	if total <= 0 {
		return 1
	}
	return 1 + (total-1)/size
}

// Paginate slices items for the requested page. A page past the end is
// clamped to the last page. The returned items alias the input slice.
func Paginate[T any](items []T, page, size int) (Page[T], error) {
	if page <= 0 {
		return Page[T]{}, invalid("page", strconv.Itoa(page), "must be at least 1")
	}
	if size <= 0 {
		return Page[T]{}, invalid("pageSize", strconv.Itoa(size), "must be positive")
	}

	pages := TotalPages(len(items), size)
	if page > pages {
		page = pages
	}
	start := (page - 1) * size
	end := min(start+size, len(items))

	return Page[T]{
		Items:       items[start:end:end],
		TotalItems:  len(items),
		CurrentPage: page,
		TotalPages:  pages,
		PageSize:    size,
	}, nil
}

// PageMarker is one entry of a page selector: a page number or an ellipsis.
type PageMarker struct {
	Page     int
	Ellipsis bool
}

func (m PageMarker) String() string {
	if m.Ellipsis {
		return "..."
	}
	return strconv.Itoa(m.Page)
}

// maxVisiblePages is the selector width below which every page is listed.
const maxVisiblePages = 7

// PageNumbers lays out a page selector: first and last page, the current
// page with one neighbour on each side, and a single ellipsis per gap. A gap
// of exactly one page shows that page instead of an ellipsis.
func PageNumbers(current, total int) []PageMarker {
	if total < 1 {
		total = 1
	}
	current = max(1, min(current, total))

	if total <= maxVisiblePages {
		out := make([]PageMarker, 0, total)
		for p := 1; p <= total; p++ {
			out = append(out, PageMarker{Page: p})
		}
		return out
	}

	var anchors []int
	for _, p := range []int{1, current - 1, current, current + 1, total} {
		if p < 1 || p > total {
			continue
		}
		if len(anchors) > 0 && anchors[len(anchors)-1] >= p {
			continue
		}
		anchors = append(anchors, p)
	}

	out := make([]PageMarker, 0, len(anchors)+2)
	for i, p := range anchors {
		if i > 0 {
			switch gap := p - anchors[i-1]; {
			case gap == 2:
				out = append(out, PageMarker{Page: p - 1})
			case gap > 2:
				out = append(out, PageMarker{Ellipsis: true})
			}
		}
		out = append(out, PageMarker{Page: p})
	}
	return out
}
