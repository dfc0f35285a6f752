package domain

import (
	"strconv"
	"strings"
	"time"
)

// Match is either Any (no constraint) or Exactly one value.
type Match[T comparable] struct {
	value T
	set   bool
}

func Any[T comparable]() Match[T] {
	return Match[T]{}
}

func Exactly[T comparable](v T) Match[T] {
	return Match[T]{value: v, set: true}
}

func (m Match[T]) Active() bool {
	return m.set
}

func (m Match[T]) Value() (T, bool) {
	return m.value, m.set
}

func (m Match[T]) Matches(v T) bool {
	return !m.set || m.value == v
}

func (m Match[T]) String() string {
	if !m.set {
		return "all"
	}
	switch v := any(m.value).(type) {
	case Status:
		return v.String()
	case Method:
		return string(v)
	case Severity:
		return string(v)
	}
	return "?"
}

type TimeWindow string

const (
	WindowAll TimeWindow = "all"
	Window1h  TimeWindow = "1h"
	Window6h  TimeWindow = "6h"
	Window24h TimeWindow = "24h"
)

// Duration is zero for WindowAll.
func (w TimeWindow) Duration() time.Duration {
	switch w {
	case Window1h:
		return time.Hour
	case Window6h:
		return 6 * time.Hour
	case Window24h:
		return 24 * time.Hour
	}
	return 0
}

func (w TimeWindow) Active() bool {
	return w.Duration() > 0
}

func ParseTimeWindow(s string) (TimeWindow, error) {
	switch w := TimeWindow(strings.ToLower(strings.TrimSpace(s))); w {
	case "", WindowAll:
		return WindowAll, nil
	case Window1h, Window6h, Window24h:
		return w, nil
	}
	return "", invalid("window", s, "expected all, 1h, 6h or 24h")
}

// Predicate reports whether a record is kept.
type Predicate[T any] func(T) bool

// All is the logical AND of preds; with no preds it keeps everything.
func All[T any](preds ...Predicate[T]) Predicate[T] {
	return func(item T) bool {
		for _, p := range preds {
			if !p(item) {
				return false
			}
		}
		return true
	}
}

// Select returns the kept records in their original relative order. The
// input slice is not modified.
func Select[T any](items []T, keep Predicate[T]) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

type record interface {
	searchFields() []string
	httpMethod() Method
	responseStatus() Status
	timestamp() time.Time
}

func (r Request) searchFields() []string { return []string{r.Path} }
func (r Request) httpMethod() Method { return r.Method }
func (r Request) responseStatus() Status { return r.Status }
func (r Request) timestamp() time.Time { return r.CreatedAt }
func (p Problem) searchFields() []string { return []string{p.Title, p.Path} }
func (p Problem) httpMethod() Method { return p.Method }
func (p Problem) responseStatus() Status { return p.Status }
func (p Problem) timestamp() time.Time { return p.LastOccurrence }

// Filter holds the clauses shared by both collections. The zero value
// matches everything.
type Filter struct {
	Search string
	Method Match[Method]
	Status Match[Status]
	Window TimeWindow
}

func (f Filter) Validate() error {
	if v, ok := f.Method.Value(); ok && !v.Valid() {
		return invalid("method", string(v), "")
	}
	if v, ok := f.Status.Value(); ok && !v.Valid() {
		return invalid("status", v.String(), "")
	}
	switch f.Window {
	case "", WindowAll, Window1h, Window6h, Window24h:
	default:
		return invalid("window", string(f.Window), "expected all, 1h, 6h or 24h")
	}
	return nil
}

func clauses[T record](f Filter, now time.Time) []Predicate[T] {
	var preds []Predicate[T]
	if q := strings.ToLower(f.Search); q != "" {
		preds = append(preds, func(item T) bool {
			for _, field := range item.searchFields() {
				if strings.Contains(strings.ToLower(field), q) {
					return true
				}
			}
			return false
		})
	}
	if want, ok := f.Method.Value(); ok {
		preds = append(preds, func(item T) bool { return item.httpMethod() == want })
	}
	if want, ok := f.Status.Value(); ok {
		preds = append(preds, func(item T) bool { return item.responseStatus() == want })
	}
	if f.Window.Active() {
		since := now.Add(-f.Window.Duration())
		preds = append(preds, func(item T) bool { return !item.timestamp().Before(since) })
	}
	return preds
}

// RequestFilter adds inclusive response-time bounds to the shared clauses.
type RequestFilter struct {
	Filter
	MinResponseTime *int64
	MaxResponseTime *int64
}

func (f RequestFilter) Validate() error {
	if err := f.Filter.Validate(); err != nil {
		return err
	}
	if f.MinResponseTime != nil && *f.MinResponseTime < 0 {
		return invalid("minResponseTime", strconv.FormatInt(*f.MinResponseTime, 10), "must be non-negative")
	}
	if f.MinResponseTime != nil && f.MaxResponseTime != nil && *f.MaxResponseTime < *f.MinResponseTime {
		return invalid("maxResponseTime", strconv.FormatInt(*f.MaxResponseTime, 10), "is below minResponseTime")
	}
	return nil
}

// Predicate captures now once; every record is judged against the same
// instant.
func (f RequestFilter) Predicate(now time.Time) Predicate[Request] {
	preds := clauses[Request](f.Filter, now)
	if f.MinResponseTime != nil {
		lo := *f.MinResponseTime
		preds = append(preds, func(r Request) bool { return r.ResponseTime >= lo })
	}
	if f.MaxResponseTime != nil {
		hi := *f.MaxResponseTime
		preds = append(preds, func(r Request) bool { return r.ResponseTime <= hi })
	}
	return All(preds...)
}

func (f RequestFilter) Apply(items []Request, now time.Time) []Request {
	return Select(items, f.Predicate(now))
}

type ProblemFilter struct {
	Filter
	Severity Match[Severity]
}

func (f ProblemFilter) Validate() error {
	if err := f.Filter.Validate(); err != nil {
		return err
	}
	if v, ok := f.Severity.Value(); ok && !v.Valid() {
		return invalid("severity", string(v), "")
	}
	return nil
}

func (f ProblemFilter) Predicate(now time.Time) Predicate[Problem] {
	preds := clauses[Problem](f.Filter, now)
	if want, ok := f.Severity.Value(); ok {
		preds = append(preds, func(p Problem) bool { return p.Severity == want })
	}
	return All(preds...)
}

func (f ProblemFilter) Apply(items []Problem, now time.Time) []Problem {
	return Select(items, f.Predicate(now))
}
