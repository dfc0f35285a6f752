// Package fixture supplies demo collections without a backend.
package fixture

import (
	"encoding/binary"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"

	"api-monitor/domain"
)

var Paths = []string{
	"/api/v1/users",
	"/api/v1/users/123",
	"/api/v1/products",
	"/api/v1/products/456",
	"/api/v1/orders",
	"/api/v1/orders/789",
	"/api/v1/auth/login",
	"/api/v1/auth/logout",
	"/api/v1/payments",
	"/api/v1/webhooks",
}

// Generator produces random request records. The same seed and clock give
// the same records, ids included.
type Generator struct {
	src *rand.ChaCha8
	rng *rand.Rand
	now func() time.Time
}

// NewGenerator seeds from seed, or from the clock when seed is zero.
func NewGenerator(seed int64, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], uint64(seed))
	src := rand.NewChaCha8(key)
	return &Generator{src: src, rng: rand.New(src), now: now}
}

// Requests returns n records created within the 24 hours before now,
// newest first.
func (g *Generator) Requests(n int) []domain.Request {
	now := g.now()
	out := make([]domain.Request, 0, n)
	for range n {
		created := now.
			Add(-time.Duration(g.rng.IntN(24)) * time.Hour).
			Add(-time.Duration(g.rng.IntN(60)) * time.Minute)
		out = append(out, domain.Request{
			ID:           g.id(),
			Method:       domain.Methods[g.rng.IntN(len(domain.Methods))],
			Path:         Paths[g.rng.IntN(len(Paths))],
			Status:       domain.Statuses[g.rng.IntN(len(domain.Statuses))],
			ResponseTime: int64(g.rng.IntN(2000) + 10),
			CreatedAt:    created,
		})
	}
	slices.SortStableFunc(out, func(a, b domain.Request) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

func (g *Generator) id() string {
	u, err := uuid.NewRandomFromReader(g.src)
	if err != nil {
		return "req-" + uuid.NewString()
	}
	return "req-" + u.String()
}

// Problems returns the canonical demo problems relative to now.
func (g *Generator) Problems() []domain.Problem {
	now := g.now()
	return []domain.Problem{
		{
			ID:             "prob-1",
			Title:          "High Response Time on User Endpoint",
			Description:    "GET /api/v1/users endpoint consistently returns slow responses",
			Method:         domain.MethodGet,
			Path:           "/api/v1/users",
			Occurrences:    15,
			LastOccurrence: now.Add(-30 * time.Minute),
			Severity:       domain.SeverityHigh,
			Status:         200,
		},
		{
			ID:             "prob-2",
			Title:          "Server Error on Payment Processing",
			Description:    "POST /api/v1/payments returning 500 errors intermittently",
			Method:         domain.MethodPost,
			Path:           "/api/v1/payments",
			Occurrences:    8,
			LastOccurrence: now.Add(-15 * time.Minute),
			Severity:       domain.SeverityCritical,
			Status:         500,
		},
		{
			ID:             "prob-3",
			Title:          "Unauthorized Access Attempts",
			Description:    "Multiple 401 responses on protected endpoints",
			Method:         domain.MethodGet,
			Path:           "/api/v1/orders",
			Occurrences:    23,
			LastOccurrence: now.Add(-5 * time.Minute),
			Severity:       domain.SeverityMedium,
			Status:         401,
		},
		{
			ID:             "prob-4",
			Title:          "Resource Not Found",
			Description:    "DELETE /api/v1/products/456 returning 404 errors",
			Method:         domain.MethodDelete,
			Path:           "/api/v1/products/456",
			Occurrences:    5,
			LastOccurrence: now.Add(-time.Hour),
			Severity:       domain.SeverityLow,
			Status:         404,
		},
		{
			ID:             "prob-5",
			Title:          "Bad Gateway Errors",
			Description:    "Webhook endpoint experiencing 502 errors during high traffic",
			Method:         domain.MethodPost,
			Path:           "/api/v1/webhooks",
			Occurrences:    12,
			LastOccurrence: now.Add(-45 * time.Minute),
			Severity:       domain.SeverityHigh,
			Status:         502,
		},
	}
}
