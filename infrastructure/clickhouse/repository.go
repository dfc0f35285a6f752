package clickhouse

import (
	"context"
	"database/sql"
	"fmt"

	"api-monitor/domain"
)

// Schema the repository reads from. Rows are written by the monitored
// backend's ingestion, never by this program.
const (
	requestsTable = "default.api_requests"
	problemsTable = "default.api_problems"
)

type MonitorRepository struct {
	db *sql.DB
}

func NewMonitorRepository(db *sql.DB) *MonitorRepository {
	return &MonitorRepository{db: db}
}

func (r *MonitorRepository) CountRequests(ctx context.Context) (int, error) {
	return r.count(ctx, requestsTable)
}

func (r *MonitorRepository) CountProblems(ctx context.Context) (int, error) {
	return r.count(ctx, problemsTable)
}

func (r *MonitorRepository) count(ctx context.Context, table string) (int, error) {
	var count int
	query := `SELECT count() FROM ` + table
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to execute count query on %s: %w", table, err)
	}
	return count, nil
}

// ListRequests pages in insertion order (created_at, id) so consecutive
// batches never overlap.
func (r *MonitorRepository) ListRequests(ctx context.Context, offset, limit int) ([]domain.Request, error) {
	query := `
        SELECT id, method, path, status, response_time, created_at
        FROM ` + requestsTable + `
        ORDER BY created_at, id
        LIMIT ? OFFSET ?
    `
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var requests []domain.Request
	for rows.Next() {
		var (
			entry  domain.Request
			method string
			status int
		)
		err := rows.Scan(&entry.ID, &method, &entry.Path, &status, &entry.ResponseTime, &entry.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request row: %w", err)
		}
		entry.Method = domain.Method(method)
		entry.Status = domain.Status(status)
		requests = append(requests, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating request rows: %w", err)
	}
	return requests, nil
}

func (r *MonitorRepository) ListProblems(ctx context.Context, offset, limit int) ([]domain.Problem, error) {
	query := `
        SELECT id, title, description, method, path, occurrences, last_occurrence, severity, status
        FROM ` + problemsTable + `
        ORDER BY last_occurrence, id
        LIMIT ? OFFSET ?
    `
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query problems: %w", err)
	}
	defer rows.Close()

	var problems []domain.Problem
	for rows.Next() {
		var (
			entry       domain.Problem
			description sql.NullString
			method      string
			severity    string
			status      int
		)
		err := rows.Scan(
			&entry.ID, &entry.Title, &description, &method, &entry.Path,
			&entry.Occurrences, &entry.LastOccurrence, &severity, &status,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan problem row: %w", err)
		}
		entry.Description = description.String
		entry.Method = domain.Method(method)
		entry.Severity = domain.Severity(severity)
		entry.Status = domain.Status(status)
		problems = append(problems, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating problem rows: %w", err)
	}
	return problems, nil
}
