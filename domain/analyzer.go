package domain

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

type problemKind int

const (
	kindServerError problemKind = iota
	kindAuth
	kindClientError
	kindSlow
	kindBurst
)

type problemKey struct {
	kind   problemKind
	method Method
	path   string
	status Status
}

type problemHit struct {
	key   problemKey
	count int64
	last  time.Time
}

// Analyzer derives Problems from a request log.
type Analyzer struct {
	slowThreshold  int64
	burstWindow    time.Duration
	burstThreshold int
}

func NewAnalyzer(slowThresholdMS int64, burstWindow time.Duration, burstThreshold int) *Analyzer {
	return &Analyzer{
		slowThreshold:  slowThresholdMS,
		burstWindow:    burstWindow,
		burstThreshold: burstThreshold,
	}
}

func DefaultAnalyzer() *Analyzer {
	return NewAnalyzer(1000, 10*time.Second, 20)
}

func handleHit(key problemKey, at time.Time, hits map[problemKey]*problemHit) {
	if hit, exists := hits[key]; exists {
		hit.count++
		if at.After(hit.last) {
			hit.last = at
		}
		return
	}
	hits[key] = &problemHit{key: key, count: 1, last: at}
}

func classify(r Request, slowThreshold int64) (problemKind, bool) {
	switch {
	case r.Status >= 500:
		return kindServerError, true
	case r.Status == 401 || r.Status == 403:
		return kindAuth, true
	case r.Status.IsError():
		return kindClientError, true
	case slowThreshold > 0 && r.ResponseTime >= slowThreshold:
		return kindSlow, true
	}
	return 0, false
}

// Analyze groups failing, slow and bursty requests by endpoint. The result is
// ordered by last occurrence, newest first. The input is not modified.
func (a *Analyzer) Analyze(requests []Request) []Problem {
	hits := make(map[problemKey]*problemHit)
	byEndpoint := make(map[problemKey][]time.Time)

	for _, r := range requests {
		if kind, ok := classify(r, a.slowThreshold); ok {
			key := problemKey{kind: kind, method: r.Method, path: r.Path}
			if kind != kindSlow {
				key.status = r.Status
			}
			handleHit(key, r.CreatedAt, hits)
		}
		endpoint := problemKey{kind: kindBurst, method: r.Method, path: r.Path}
		byEndpoint[endpoint] = append(byEndpoint[endpoint], r.CreatedAt)
	}

	for key, times := range byEndpoint {
		if peak, last, found := a.rapidRequests(times); found {
			hits[key] = &problemHit{key: key, count: int64(peak), last: last}
		}
	}

	problems := make([]Problem, 0, len(hits))
	for _, hit := range hits {
		problems = append(problems, hit.problem())
	}
	slices.SortFunc(problems, func(x, y Problem) int {
		return cmp.Or(y.LastOccurrence.Compare(x.LastOccurrence), cmp.Compare(x.ID, y.ID))
	})
	return problems
}

// rapidRequests finds the largest number of requests inside any window of
// burstWindow length.
func (a *Analyzer) rapidRequests(times []time.Time) (int, time.Time, bool) {
	if a.burstThreshold <= 0 || len(times) < a.burstThreshold {
		return 0, time.Time{}, false
	}
	sorted := slices.Clone(times)
	slices.SortFunc(sorted, time.Time.Compare)

	maxCount := 0
	var last time.Time
	j := 0
	for i := range sorted {
		for j < len(sorted) && sorted[j].Sub(sorted[i]) <= a.burstWindow {
			j++
		}
		if n := j - i; n > maxCount {
			maxCount = n
			last = sorted[j-1]
		}
	}
	if maxCount >= a.burstThreshold {
		return maxCount, last, true
	}
	return 0, time.Time{}, false
}

func (h *problemHit) problem() Problem {
	k := h.key
	endpoint := fmt.Sprintf("%s %s", k.method, k.path)
	p := Problem{
		ID:             "prob-" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%d|%s|%d", k.kind, endpoint, k.status))).String()[:8],
		Method:         k.method,
		Path:           k.path,
		Occurrences:    h.count,
		LastOccurrence: h.last,
		Status:         k.status,
	}
	switch k.kind {
	case kindServerError:
		p.Title = fmt.Sprintf("Server Error on %s", k.path)
		p.Description = fmt.Sprintf("%s returning %d errors", endpoint, k.status)
		p.Severity = SeverityHigh
		if h.count >= 5 {
			p.Severity = SeverityCritical
		}
	case kindAuth:
		p.Title = "Unauthorized Access Attempts"
		p.Description = fmt.Sprintf("Multiple %d responses on %s", k.status, endpoint)
		p.Severity = SeverityMedium
	case kindClientError:
		p.Title = fmt.Sprintf("Client Error on %s", k.path)
		p.Description = fmt.Sprintf("%s returning %d errors", endpoint, k.status)
		p.Severity = SeverityLow
	case kindSlow:
		p.Title = fmt.Sprintf("High Response Time on %s", k.path)
		p.Description = fmt.Sprintf("%s consistently returns slow responses", endpoint)
		p.Severity = SeverityHigh
		p.Status = 200
	case kindBurst:
		p.Title = fmt.Sprintf("Traffic Spike on %s", k.path)
		p.Description = fmt.Sprintf("%d requests to %s within a short window", h.count, endpoint)
		p.Severity = SeverityMedium
		p.Status = 200
	}
	return p
}
