package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, time.November, 5, 12, 30, 0, 0, time.UTC)

func req(id string, method Method, path string, status Status, rt int64, age time.Duration) Request {
	return Request{ID: id, Method: method, Path: path, Status: status, ResponseTime: rt, CreatedAt: testNow.Add(-age)}
}

func sampleRequests() []Request {
	return []Request{
		req("r1", MethodGet, "/api/v1/users", 200, 120, 10*time.Minute),
		req("r2", MethodPost, "/api/v1/users/123", 500, 900, 2*time.Hour),
		req("r3", MethodGet, "/api/v1/products", 404, 40, 7*time.Hour),
		req("r4", MethodDelete, "/api/v1/orders", 200, 1500, 25*time.Hour),
		req("r5", MethodGet, "/API/V1/USERS", 401, 15, 30*time.Hour),
	}
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, id(item))
	}
	return out
}

func requestIDs(items []Request) []string {
	return ids(items, func(r Request) string { return r.ID })
}

func problemIDs(items []Problem) []string {
	return ids(items, func(p Problem) string { return p.ID })
}

func TestRequestFilter_Search(t *testing.T) {
	items := []Request{
		req("a", MethodGet, "/api/v1/users", 200, 10, time.Minute),
		req("b", MethodGet, "/api/v1/users/123", 200, 10, time.Minute),
		req("c", MethodGet, "/api/v1/products", 200, 10, time.Minute),
	}

	t.Run("substring", func(t *testing.T) {
		f := RequestFilter{Filter: Filter{Search: "users"}}
		assert.Equal(t, []string{"a", "b"}, requestIDs(f.Apply(items, testNow)))
	})

	t.Run("case insensitive", func(t *testing.T) {
		f := RequestFilter{Filter: Filter{Search: "USERS"}}
		assert.Equal(t, []string{"a", "b"}, requestIDs(f.Apply(items, testNow)))
	})

	t.Run("empty query matches all", func(t *testing.T) {
		f := RequestFilter{Filter: Filter{Search: ""}}
		assert.Len(t, f.Apply(items, testNow), 3)
	})

	t.Run("whitespace is part of the query", func(t *testing.T) {
		f := RequestFilter{Filter: Filter{Search: "   "}}
		assert.Empty(t, f.Apply(items, testNow))

		f = RequestFilter{Filter: Filter{Search: " users"}}
		assert.Empty(t, f.Apply(items, testNow))

		f = RequestFilter{Filter: Filter{Search: "users/"}}
		assert.Equal(t, []string{"b"}, requestIDs(f.Apply(items, testNow)))
	})
}

func TestProblemFilter_SearchTitleOrPath(t *testing.T) {
	items := []Problem{
		{ID: "p1", Title: "Slow users endpoint", Path: "/api/v1/accounts"},
		{ID: "p2", Title: "Gateway errors", Path: "/api/v1/users"},
		{ID: "p3", Title: "Payment failures", Path: "/api/v1/payments"},
	}
	f := ProblemFilter{Filter: Filter{Search: "Users"}}
	assert.Equal(t, []string{"p1", "p2"}, problemIDs(f.Apply(items, testNow)))
}

func TestRequestFilter_Clauses(t *testing.T) {
	items := sampleRequests()

	tests := []struct {
		name   string
		filter RequestFilter
		want   []string
	}{
		{"zero value keeps all", RequestFilter{}, []string{"r1", "r2", "r3", "r4", "r5"}},
		{"method", RequestFilter{Filter: Filter{Method: Exactly(MethodGet)}}, []string{"r1", "r3", "r5"}},
		{"status", RequestFilter{Filter: Filter{Status: Exactly(Status(200))}}, []string{"r1", "r4"}},
		{"window 1h", RequestFilter{Filter: Filter{Window: Window1h}}, []string{"r1"}},
		{"window all", RequestFilter{Filter: Filter{Window: WindowAll}}, []string{"r1", "r2", "r3", "r4", "r5"}},
		{"method and status", RequestFilter{Filter: Filter{Method: Exactly(MethodGet), Status: Exactly(Status(404))}}, []string{"r3"}},
		{"min response time", RequestFilter{MinResponseTime: ptr(int64(900))}, []string{"r2", "r4"}},
		{"response time range", RequestFilter{MinResponseTime: ptr(int64(40)), MaxResponseTime: ptr(int64(900))}, []string{"r1", "r2", "r3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, requestIDs(tt.filter.Apply(items, testNow)))
		})
	}
}

func TestRequestFilter_TimeWindowScenario(t *testing.T) {
	items := []Request{
		req("10m", MethodGet, "/a", 200, 1, 10*time.Minute),
		req("6h05m", MethodGet, "/a", 200, 1, 6*time.Hour+5*time.Minute),
		req("7h", MethodGet, "/a", 200, 1, 7*time.Hour),
		req("25h", MethodGet, "/a", 200, 1, 25*time.Hour),
		req("30h", MethodGet, "/a", 200, 1, 30*time.Hour),
	}

	day := RequestFilter{Filter: Filter{Window: Window24h}}
	assert.Equal(t, []string{"10m", "6h05m", "7h"}, requestIDs(day.Apply(items, testNow)))

	six := RequestFilter{Filter: Filter{Window: Window6h}}
	assert.Equal(t, []string{"10m"}, requestIDs(six.Apply(items, testNow)))
}

func TestRequestFilter_WindowBoundaryInclusive(t *testing.T) {
	items := []Request{req("edge", MethodGet, "/a", 200, 1, time.Hour)}
	f := RequestFilter{Filter: Filter{Window: Window1h}}
	assert.Len(t, f.Apply(items, testNow), 1)
}

func TestProblemFilter_SeverityAndWindow(t *testing.T) {
	items := []Problem{
		{ID: "p1", Severity: SeverityHigh, LastOccurrence: testNow.Add(-30 * time.Minute)},
		{ID: "p2", Severity: SeverityCritical, LastOccurrence: testNow.Add(-15 * time.Minute)},
		{ID: "p3", Severity: SeverityHigh, LastOccurrence: testNow.Add(-3 * time.Hour)},
	}

	f := ProblemFilter{Severity: Exactly(SeverityHigh)}
	assert.Equal(t, []string{"p1", "p3"}, problemIDs(f.Apply(items, testNow)))

	f.Window = Window1h
	assert.Equal(t, []string{"p1"}, problemIDs(f.Apply(items, testNow)))
}

func TestFilter_Idempotent(t *testing.T) {
	items := sampleRequests()
	f := RequestFilter{Filter: Filter{Search: "api", Method: Exactly(MethodGet), Window: Window24h}}

	once := f.Apply(items, testNow)
	twice := f.Apply(once, testNow)
	assert.Equal(t, once, twice)
}

func TestFilter_AddingClauseNeverWidens(t *testing.T) {
	items := sampleRequests()
	base := RequestFilter{Filter: Filter{Search: "api"}}
	baseLen := len(base.Apply(items, testNow))

	narrowed := []RequestFilter{
		{Filter: Filter{Search: "api", Method: Exactly(MethodGet)}},
		{Filter: Filter{Search: "api", Status: Exactly(Status(500))}},
		{Filter: Filter{Search: "api", Window: Window6h}},
		{Filter: Filter{Search: "api"}, MaxResponseTime: ptr(int64(100))},
	}
	for _, f := range narrowed {
		assert.LessOrEqual(t, len(f.Apply(items, testNow)), baseLen)
	}
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	items := sampleRequests()
	before := append([]Request(nil), items...)
	RequestFilter{Filter: Filter{Method: Exactly(MethodPost)}}.Apply(items, testNow)
	assert.Equal(t, before, items)
}

func TestFilter_Validate(t *testing.T) {
	require.NoError(t, Filter{}.Validate())

	err := Filter{Method: Exactly(Method("TRACE"))}.Validate()
	assert.ErrorIs(t, err, ErrInvalidArgument)

	err = Filter{Status: Exactly(Status(418))}.Validate()
	assert.ErrorIs(t, err, ErrInvalidArgument)

	err = Filter{Window: TimeWindow("2d")}.Validate()
	assert.ErrorIs(t, err, ErrInvalidArgument)

	err = RequestFilter{MinResponseTime: ptr(int64(50)), MaxResponseTime: ptr(int64(10))}.Validate()
	assert.ErrorIs(t, err, ErrInvalidArgument)

	err = ProblemFilter{Severity: Exactly(Severity("urgent"))}.Validate()
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestMatch(t *testing.T) {
	all := Any[Method]()
	assert.False(t, all.Active())
	assert.True(t, all.Matches(MethodPut))
	assert.Equal(t, "all", all.String())

	get := Exactly(MethodGet)
	assert.True(t, get.Active())
	assert.True(t, get.Matches(MethodGet))
	assert.False(t, get.Matches(MethodPost))
	assert.Equal(t, "GET", get.String())
	assert.Equal(t, "503", Exactly(Status(503)).String())
}

func ptr[T any](v T) *T {
	return &v
}
