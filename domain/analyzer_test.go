package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findProblem(t *testing.T, problems []Problem, title string) Problem {
	t.Helper()
	for _, p := range problems {
		if p.Title == title {
			return p
		}
	}
	t.Fatalf("no problem titled %q in %v", title, problems)
	return Problem{}
}

func TestAnalyzer_Analyze(t *testing.T) {
	var items []Request
	for i := 0; i < 6; i++ {
		items = append(items, req("pay", MethodPost, "/api/v1/payments", 500, 300, time.Duration(i+1)*time.Minute))
	}
	items = append(items,
		req("login", MethodGet, "/api/v1/orders", 401, 20, 5*time.Minute),
		req("missing", MethodDelete, "/api/v1/products/456", 404, 20, time.Hour),
		req("slow", MethodGet, "/api/v1/users", 200, 1800, 30*time.Minute),
		req("fast", MethodGet, "/api/v1/users", 200, 80, 20*time.Minute),
	)
	before := append([]Request(nil), items...)

	problems := NewAnalyzer(1000, 10*time.Second, 20).Analyze(items)
	require.Len(t, problems, 4)
	assert.Equal(t, before, items)

	server := findProblem(t, problems, "Server Error on /api/v1/payments")
	assert.Equal(t, int64(6), server.Occurrences)
	assert.Equal(t, SeverityCritical, server.Severity)
	assert.Equal(t, Status(500), server.Status)
	assert.Equal(t, testNow.Add(-time.Minute), server.LastOccurrence)

	auth := findProblem(t, problems, "Unauthorized Access Attempts")
	assert.Equal(t, SeverityMedium, auth.Severity)

	slow := findProblem(t, problems, "High Response Time on /api/v1/users")
	assert.Equal(t, int64(1), slow.Occurrences)
	assert.Equal(t, SeverityHigh, slow.Severity)

	for i := 1; i < len(problems); i++ {
		assert.False(t, problems[i].LastOccurrence.After(problems[i-1].LastOccurrence))
	}
	for _, p := range problems {
		assert.NoError(t, p.Validate())
	}
}

func TestAnalyzer_StableIDs(t *testing.T) {
	items := []Request{req("a", MethodGet, "/x", 503, 1, time.Minute)}
	first := DefaultAnalyzer().Analyze(items)
	second := DefaultAnalyzer().Analyze(items)
	require.Len(t, first, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
}

func TestAnalyzer_Burst(t *testing.T) {
	var items []Request
	for i := 0; i < 25; i++ {
		items = append(items, req("b", MethodGet, "/api/v1/webhooks", 200, 10, time.Duration(i)*200*time.Millisecond))
	}
	items = append(items, req("late", MethodGet, "/api/v1/webhooks", 200, 10, time.Hour))

	problems := NewAnalyzer(0, 10*time.Second, 20).Analyze(items)
	require.Len(t, problems, 1)
	assert.Equal(t, "Traffic Spike on /api/v1/webhooks", problems[0].Title)
	assert.Equal(t, int64(25), problems[0].Occurrences)
	assert.Equal(t, testNow, problems[0].LastOccurrence)
}
