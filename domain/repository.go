package domain

import (
	"context"
)

type RequestRepository interface {
	CountRequests(ctx context.Context) (int, error)
	ListRequests(ctx context.Context, offset, limit int) ([]Request, error)
}

type ProblemRepository interface {
	CountProblems(ctx context.Context) (int, error)
	ListProblems(ctx context.Context, offset, limit int) ([]Problem, error)
}
