package domain

import (
	"strconv"
	"strings"
	"time"
)

type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodPatch  Method = "PATCH"
	MethodDelete Method = "DELETE"
)

var Methods = []Method{MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete}

func (m Method) Valid() bool {
	for _, known := range Methods {
		if m == known {
			return true
		}
	}
	return false
}

// ParseMethod accepts any letter case.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", invalid("method", s, "")
	}
	return m, nil
}

// Status is the response code of a request, restricted to the codes the
// monitor tracks.
type Status int

var Statuses = []Status{200, 201, 204, 400, 401, 403, 404, 500, 502, 503}

func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s Status) IsError() bool {
	return s >= 400
}

func (s Status) String() string {
	return strconv.Itoa(int(s))
}

func ParseStatus(s string) (Status, error) {
	code, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || !Status(code).Valid() {
		return 0, invalid("status", s, "")
	}
	return Status(code), nil
}

// Severity is ordered: low < medium < high < critical.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// Rank returns 0 for an unknown severity.
func (s Severity) Rank() int {
	for i, known := range Severities {
		if s == known {
			return i + 1
		}
	}
	return 0
}

func (s Severity) Valid() bool {
	return s.Rank() > 0
}

func ParseSeverity(s string) (Severity, error) {
	sev := Severity(strings.ToLower(strings.TrimSpace(s)))
	if !sev.Valid() {
		return "", invalid("severity", s, "")
	}
	return sev, nil
}

// Request is one logged API call.
type Request struct {
	ID           string    `json:"id" yaml:"id" db:"id"`
	Method       Method    `json:"method" yaml:"method" db:"method"`
	Path         string    `json:"path" yaml:"path" db:"path"`
	Status       Status    `json:"response" yaml:"response" db:"response"`
	ResponseTime int64     `json:"responseTime" yaml:"responseTime" db:"response_time"`
	CreatedAt    time.Time `json:"createdAt" yaml:"createdAt" db:"created_at"`
}

// Validate checks field constraints against the given instant.
func (r Request) Validate(now time.Time) error {
	switch {
	case r.ID == "":
		return invalid("request.id", r.ID, "must not be empty")
	case !r.Method.Valid():
		return invalid("request.method", string(r.Method), "")
	case !r.Status.Valid():
		return invalid("request.response", r.Status.String(), "")
	case r.ResponseTime < 0:
		return invalid("request.responseTime", strconv.FormatInt(r.ResponseTime, 10), "must be non-negative")
	case r.CreatedAt.After(now):
		return invalid("request.createdAt", r.CreatedAt.Format(time.RFC3339), "is in the future")
	}
	return nil
}

// Problem is a recurring error pattern derived from requests.
type Problem struct {
	ID             string    `json:"id" yaml:"id" db:"id"`
	Title          string    `json:"title" yaml:"title" db:"title"`
	Description    string    `json:"description" yaml:"description" db:"description"`
	Method         Method    `json:"method" yaml:"method" db:"method"`
	Path           string    `json:"path" yaml:"path" db:"path"`
	Occurrences    int64     `json:"occurrences" yaml:"occurrences" db:"occurrences"`
	LastOccurrence time.Time `json:"lastOccurrence" yaml:"lastOccurrence" db:"last_occurrence"`
	Severity       Severity  `json:"severity" yaml:"severity" db:"severity"`
	Status         Status    `json:"status" yaml:"status" db:"status"`
}

func (p Problem) Validate() error {
	switch {
	case p.ID == "":
		return invalid("problem.id", p.ID, "must not be empty")
	case strings.TrimSpace(p.Title) == "":
		return invalid("problem.title", p.Title, "must not be empty")
	case !p.Method.Valid():
		return invalid("problem.method", string(p.Method), "")
	case p.Occurrences <= 0:
		return invalid("problem.occurrences", strconv.FormatInt(p.Occurrences, 10), "must be positive")
	case !p.Severity.Valid():
		return invalid("problem.severity", string(p.Severity), "")
	case !p.Status.Valid():
		return invalid("problem.status", p.Status.String(), "")
	}
	return nil
}
