package domain

import (
	"cmp"
	"slices"
	"strings"
)

type SortField string

const (
	SortCreatedAt      SortField = "createdAt"
	SortResponseTime   SortField = "responseTime"
	SortLastOccurrence SortField = "lastOccurrence"
	SortOccurrences    SortField = "occurrences"
)

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case Ascending, Descending:
		return d, nil
	}
	return "", invalid("direction", s, "expected asc or desc")
}

// Comparator returns a negative number when a sorts before b in ascending
// order, zero when their keys are equal.
type Comparator[T any] func(a, b T) int

// By builds an ascending comparator from a key selector.
func By[T any, K cmp.Ordered](key func(T) K) Comparator[T] {
	return func(a, b T) int {
		return cmp.Compare(key(a), key(b))
	}
}

// Reverse flips the natural order; equal keys stay equal.
func (c Comparator[T]) Reverse() Comparator[T] {
	return func(a, b T) int {
		return c(b, a)
	}
}

// SortSpec pairs a field with a direction.
type SortSpec struct {
	Field     SortField
	Direction Direction
}

var (
	DefaultRequestSort = SortSpec{Field: SortCreatedAt, Direction: Descending}
	DefaultProblemSort = SortSpec{Field: SortLastOccurrence, Direction: Descending}
)

func byCreatedAt(a, b Request) int {
	return a.CreatedAt.Compare(b.CreatedAt)
}

func byLastOccurrence(a, b Problem) int {
	return a.LastOccurrence.Compare(b.LastOccurrence)
}

var requestKeys = map[SortField]Comparator[Request]{
	SortCreatedAt:    byCreatedAt,
	SortResponseTime: By(func(r Request) int64 { return r.ResponseTime }),
}

var problemKeys = map[SortField]Comparator[Problem]{
	SortLastOccurrence: byLastOccurrence,
	SortOccurrences:    By(func(p Problem) int64 { return p.Occurrences }),
}

func comparatorFor[T any](keys map[SortField]Comparator[T], spec SortSpec) (Comparator[T], error) {
	c, ok := keys[spec.Field]
	if !ok {
		return nil, invalid("sort", string(spec.Field), "")
	}
	switch spec.Direction {
	case Ascending:
		return c, nil
	case Descending:
		return c.Reverse(), nil
	}
	return nil, invalid("direction", string(spec.Direction), "expected asc or desc")
}

func RequestComparator(spec SortSpec) (Comparator[Request], error) {
	return comparatorFor(requestKeys, spec)
}

func ProblemComparator(spec SortSpec) (Comparator[Problem], error) {
	return comparatorFor(problemKeys, spec)
}

// SortStable returns a sorted copy. Records with equal keys keep their input
// order in both directions.
func SortStable[T any](items []T, c Comparator[T]) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, c)
	return out
}
