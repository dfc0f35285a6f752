package domain

import (
	"strconv"
	"strings"
	"time"
)

// RequestQuery fully describes one requests view.
type RequestQuery struct {
	Filter   RequestFilter
	Sort     SortSpec
	Page     int
	PageSize int
}

// NewRequestQuery returns the dashboard defaults: no filter, newest first,
// first page.
func NewRequestQuery() RequestQuery {
	return RequestQuery{
		Filter:   RequestFilter{Filter: Filter{Window: WindowAll}},
		Sort:     DefaultRequestSort,
		Page:     1,
		PageSize: DefaultPageSize,
	}
}

// TimeDependent reports whether the result can change as the clock moves.
func (q RequestQuery) TimeDependent() bool {
	return q.Filter.Window.Active()
}

type ProblemQuery struct {
	Filter   ProblemFilter
	Sort     SortSpec
	Page     int
	PageSize int
}

func NewProblemQuery() ProblemQuery {
	return ProblemQuery{
		Filter:   ProblemFilter{Filter: Filter{Window: WindowAll}},
		Sort:     DefaultProblemSort,
		Page:     1,
		PageSize: DefaultPageSize,
	}
}

func (q ProblemQuery) TimeDependent() bool {
	return q.Filter.Window.Active()
}

// Result is a page plus the size of the filtered collection it was cut from.
type Result[T any] struct {
	Page          Page[T]
	TotalFiltered int
}

// QueryRequests runs filter, sort and paginate in that order. Sorting must
// precede pagination or pages would be cut from an unordered collection.
func QueryRequests(items []Request, q RequestQuery, now time.Time) (Result[Request], error) {
	if err := q.Filter.Validate(); err != nil {
		return Result[Request]{}, err
	}
	c, err := RequestComparator(q.Sort)
	if err != nil {
		return Result[Request]{}, err
	}
	return run(q.Filter.Apply(items, now), c, q.Page, q.PageSize)
}

func QueryProblems(items []Problem, q ProblemQuery, now time.Time) (Result[Problem], error) {
	if err := q.Filter.Validate(); err != nil {
		return Result[Problem]{}, err
	}
	c, err := ProblemComparator(q.Sort)
	if err != nil {
		return Result[Problem]{}, err
	}
	return run(q.Filter.Apply(items, now), c, q.Page, q.PageSize)
}

func run[T any](filtered []T, c Comparator[T], page, size int) (Result[T], error) {
	p, err := Paginate(SortStable(filtered, c), page, size)
	if err != nil {
		return Result[T]{}, err
	}
	return Result[T]{Page: p, TotalFiltered: len(filtered)}, nil
}

// RequestTimeline filters and then buckets. Sort and page settings of q are
// ignored since ordering has no effect on bucket counts.
func RequestTimeline(items []Request, q RequestQuery, now time.Time) (Timeline, error) {
	if err := q.Filter.Validate(); err != nil {
		return Timeline{}, err
	}
	return Aggregate(q.Filter.Apply(items, now), now), nil
}

// RawQuery is the untyped form of a query as it arrives from flags or URL
// parameters. Empty strings and "all" leave a clause inactive.
type RawQuery struct {
	Search          string `form:"search"`
	Method          string `form:"method"`
	Status          string `form:"status"`
	Window          string `form:"window"`
	Severity        string `form:"severity"`
	Sort            string `form:"sort"`
	Direction       string `form:"direction"`
	Page            string `form:"page"`
	PageSize        string `form:"pageSize"`
	MinResponseTime string `form:"minResponseTime"`
	MaxResponseTime string `form:"maxResponseTime"`
}

func isAll(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "all")
}

func parseMatch[T comparable](s string, parse func(string) (T, error)) (Match[T], error) {
	if isAll(s) {
		return Any[T](), nil
	}
	v, err := parse(s)
	if err != nil {
		return Match[T]{}, err
	}
	return Exactly(v), nil
}

func parseInt(field, s string, fallback int) (int, error) {
	if strings.TrimSpace(s) == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, invalid(field, s, "not an integer")
	}
	return n, nil
}

func parseBound(field, s string) (*int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil, invalid(field, s, "not an integer")
	}
	return &n, nil
}

func (r RawQuery) filter() (Filter, error) {
	var (
		f   = Filter{Search: r.Search}
		err error
	)
	if f.Method, err = parseMatch(r.Method, ParseMethod); err != nil {
		return Filter{}, err
	}
	if f.Status, err = parseMatch(r.Status, ParseStatus); err != nil {
		return Filter{}, err
	}
	if f.Window, err = ParseTimeWindow(r.Window); err != nil {
		return Filter{}, err
	}
	return f, nil
}

func (r RawQuery) sort(def SortSpec) (SortSpec, error) {
	spec := def
	if strings.TrimSpace(r.Sort) != "" {
		spec.Field = SortField(strings.TrimSpace(r.Sort))
	}
	if strings.TrimSpace(r.Direction) != "" {
		d, err := ParseDirection(r.Direction)
		if err != nil {
			return SortSpec{}, err
		}
		spec.Direction = d
	}
	return spec, nil
}

func (r RawQuery) paging() (int, int, error) {
	page, err := parseInt("page", r.Page, 1)
	if err != nil {
		return 0, 0, err
	}
	size, err := parseInt("pageSize", r.PageSize, DefaultPageSize)
	if err != nil {
		return 0, 0, err
	}
	if page <= 0 {
		return 0, 0, invalid("page", r.Page, "must be at least 1")
	}
	if size <= 0 {
		return 0, 0, invalid("pageSize", r.PageSize, "must be positive")
	}
	return page, size, nil
}

// ParseRequestQuery rejects anything it does not understand, including a
// severity, which only problems carry.
func ParseRequestQuery(r RawQuery) (RequestQuery, error) {
	if !isAll(r.Severity) {
		return RequestQuery{}, invalid("severity", r.Severity, "requests have no severity")
	}
	f, err := r.filter()
	if err != nil {
		return RequestQuery{}, err
	}
	q := RequestQuery{Filter: RequestFilter{Filter: f}}
	if q.Filter.MinResponseTime, err = parseBound("minResponseTime", r.MinResponseTime); err != nil {
		return RequestQuery{}, err
	}
	if q.Filter.MaxResponseTime, err = parseBound("maxResponseTime", r.MaxResponseTime); err != nil {
		return RequestQuery{}, err
	}
	if q.Sort, err = r.sort(DefaultRequestSort); err != nil {
		return RequestQuery{}, err
	}
	if _, err := RequestComparator(q.Sort); err != nil {
		return RequestQuery{}, err
	}
	if q.Page, q.PageSize, err = r.paging(); err != nil {
		return RequestQuery{}, err
	}
	if err := q.Filter.Validate(); err != nil {
		return RequestQuery{}, err
	}
	return q, nil
}

func ParseProblemQuery(r RawQuery) (ProblemQuery, error) {
	if strings.TrimSpace(r.MinResponseTime) != "" || strings.TrimSpace(r.MaxResponseTime) != "" {
		return ProblemQuery{}, invalid("responseTime", r.MinResponseTime+".."+r.MaxResponseTime, "problems have no response time")
	}
	f, err := r.filter()
	if err != nil {
		return ProblemQuery{}, err
	}
	q := ProblemQuery{Filter: ProblemFilter{Filter: f}}
	if q.Filter.Severity, err = parseMatch(r.Severity, ParseSeverity); err != nil {
		return ProblemQuery{}, err
	}
	if q.Sort, err = r.sort(DefaultProblemSort); err != nil {
		return ProblemQuery{}, err
	}
	if _, err := ProblemComparator(q.Sort); err != nil {
		return ProblemQuery{}, err
	}
	if q.Page, q.PageSize, err = r.paging(); err != nil {
		return ProblemQuery{}, err
	}
	return q, nil
}
