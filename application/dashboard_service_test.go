package application

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"api-monitor/domain"
)

var testNow = time.Date(2025, time.November, 5, 12, 30, 0, 0, time.UTC)

type memorySource struct {
	requests     []domain.Request
	problems     []domain.Problem
	err          error
	requestLoads int
	problemLoads int
}

func (m *memorySource) LoadRequests(context.Context) ([]domain.Request, error) {
	m.requestLoads++
	return m.requests, m.err
}

func (m *memorySource) LoadProblems(context.Context) ([]domain.Problem, error) {
	m.problemLoads++
	return m.problems, m.err
}

func fixtureRequests() []domain.Request {
	return []domain.Request{
		{ID: "r1", Method: domain.MethodGet, Path: "/api/v1/users", Status: 200, ResponseTime: 40, CreatedAt: testNow.Add(-10 * time.Minute)},
		{ID: "r2", Method: domain.MethodPost, Path: "/api/v1/orders", Status: 500, ResponseTime: 900, CreatedAt: testNow.Add(-2 * time.Hour)},
		{ID: "r3", Method: domain.MethodGet, Path: "/api/v1/users/123", Status: 404, ResponseTime: 15, CreatedAt: testNow.Add(-30 * time.Hour)},
	}
}

func newService(t *testing.T, src Source, cache int) *DashboardService {
	t.Helper()
	svc, err := NewDashboardService(src, WithClock(func() time.Time { return testNow }), WithCache(cache))
	require.NoError(t, err)
	return svc
}

func TestDashboardService_Requests(t *testing.T) {
	src := &memorySource{requests: fixtureRequests()}
	svc := newService(t, src, 0)

	q := domain.NewRequestQuery()
	q.Filter.Method = domain.Exactly(domain.MethodGet)
	res, err := svc.Requests(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalFiltered)
	require.Len(t, res.Page.Items, 2)
	assert.Equal(t, "r1", res.Page.Items[0].ID)

	q.Filter.Window = domain.Window1h
	res, err = svc.Requests(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalFiltered)
}

func TestDashboardService_SourceFailure(t *testing.T) {
	boom := errors.New("connection refused")
	svc := newService(t, &memorySource{err: boom}, 8)

	_, err := svc.Requests(context.Background(), domain.NewRequestQuery())
	assert.ErrorIs(t, err, boom)

	_, err = svc.Problems(context.Background(), domain.NewProblemQuery())
	assert.ErrorIs(t, err, boom)

	_, err = svc.Timeline(context.Background(), domain.NewRequestQuery())
	assert.ErrorIs(t, err, boom)
}

func TestDashboardService_InvalidQuery(t *testing.T) {
	svc := newService(t, &memorySource{requests: fixtureRequests()}, 8)
	q := domain.NewRequestQuery()
	q.PageSize = 0
	_, err := svc.Requests(context.Background(), q)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestDashboardService_Cache(t *testing.T) {
	src := &memorySource{requests: fixtureRequests()}
	svc := newService(t, src, 8)
	ctx := context.Background()

	q := domain.NewRequestQuery()
	first, err := svc.Requests(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 1, svc.cache.Len())

	second, err := svc.Requests(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, svc.cache.Len())

	// time windows are never cached
	q.Filter.Window = domain.Window24h
	_, err = svc.Requests(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 1, svc.cache.Len())

	// a changed collection is a different key
	src.requests = append(src.requests, domain.Request{
		ID: "r4", Method: domain.MethodPut, Path: "/api/v1/products", Status: 201, ResponseTime: 70, CreatedAt: testNow,
	})
	third, err := svc.Requests(ctx, domain.NewRequestQuery())
	require.NoError(t, err)
	assert.Equal(t, 4, third.TotalFiltered)
	assert.Equal(t, "r4", third.Page.Items[0].ID)
	assert.Equal(t, 2, svc.cache.Len())
}

func TestDashboardService_ProblemsAndTimeline(t *testing.T) {
	src := &memorySource{
		requests: fixtureRequests(),
		problems: []domain.Problem{
			{ID: "p1", Title: "Server Error on /api/v1/orders", Method: domain.MethodPost, Path: "/api/v1/orders", Occurrences: 3, LastOccurrence: testNow.Add(-time.Hour), Severity: domain.SeverityHigh, Status: 500},
			{ID: "p2", Title: "Client Error on /api/v1/users/123", Method: domain.MethodGet, Path: "/api/v1/users/123", Occurrences: 9, LastOccurrence: testNow.Add(-3 * time.Hour), Severity: domain.SeverityLow, Status: 404},
		},
	}
	svc := newService(t, src, 8)

	q := domain.NewProblemQuery()
	q.Filter.Severity = domain.Exactly(domain.SeverityLow)
	res, err := svc.Problems(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, res.Page.Items, 1)
	assert.Equal(t, "p2", res.Page.Items[0].ID)

	tl, err := svc.Timeline(context.Background(), domain.NewRequestQuery())
	require.NoError(t, err)
	assert.Len(t, tl.Buckets, domain.TimelineBuckets)
	assert.Equal(t, 3, tl.TotalCount)
	assert.Equal(t, 2, tl.Bucketed())
}

func TestFingerprint_QueryFields(t *testing.T) {
	items := fixtureRequests()
	base := domain.NewRequestQuery()

	lo, hi := int64(10), int64(10)
	withMin := base
	withMin.Filter.MinResponseTime = &lo
	withMax := base
	withMax.Filter.MaxResponseTime = &hi
	paged := base
	paged.Page = 2

	keys := map[uint64]string{}
	for name, q := range map[string]domain.RequestQuery{"base": base, "min": withMin, "max": withMax, "paged": paged} {
		k := requestsKey(items, q)
		_, dup := keys[k]
		assert.False(t, dup, name)
		keys[k] = name
	}
	assert.Equal(t, requestsKey(items, base), requestsKey(fixtureRequests(), domain.NewRequestQuery()))
}

func TestDashboardService_LogsBothCollections(t *testing.T) {
	var buf bytes.Buffer
	src := &memorySource{
		requests: fixtureRequests(),
		problems: []domain.Problem{
			{ID: "p1", Title: "Resource Not Found", Method: domain.MethodDelete, Path: "/api/v1/products/456", Occurrences: 5, LastOccurrence: testNow.Add(-time.Hour), Severity: domain.SeverityLow, Status: 404},
		},
	}
	svc, err := NewDashboardService(src,
		WithClock(func() time.Time { return testNow }),
		WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)),
	)
	require.NoError(t, err)

	_, err = svc.Requests(context.Background(), domain.NewRequestQuery())
	require.NoError(t, err)
	_, err = svc.Problems(context.Background(), domain.NewProblemQuery())
	require.NoError(t, err)

	out := buf.String()
	for _, msg := range []string{"requests loaded", "request query", "problems loaded", "problem query"} {
		assert.Contains(t, out, `"message":"`+msg+`"`)
	}
	assert.Equal(t, 4, bytes.Count(buf.Bytes(), []byte(`"took"`)))
}
