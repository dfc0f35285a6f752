package clickhouse

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/rs/zerolog"

	"api-monitor/application"
	"api-monitor/domain"
	"api-monitor/infrastructure/logging"
)

// Open connects with the registered "clickhouse" database/sql driver and
// checks the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("clickhouse", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not ping ClickHouse: %w", err)
	}
	return db, nil
}

type repository interface {
	domain.RequestRepository
	domain.ProblemRepository
}

// Loader reads whole collections in batches of batchSize and implements
// application.Source.
type Loader struct {
	repo      repository
	progress  application.Progress
	batchSize int
	log       zerolog.Logger
}

func NewLoader(repo repository, progress application.Progress, batchSize int) *Loader {
	if batchSize <= 0 {
		batchSize = 5000
	}
	return &Loader{
		repo:      repo,
		progress:  progress,
		batchSize: batchSize,
		log:       logging.Component("clickhouse"),
	}
}

func (l *Loader) LoadRequests(ctx context.Context) ([]domain.Request, error) {
	return loadAll(ctx, l, "[LOADING REQUESTS]", l.repo.CountRequests, l.repo.ListRequests)
}

func (l *Loader) LoadProblems(ctx context.Context) ([]domain.Problem, error) {
	return loadAll(ctx, l, "[LOADING PROBLEMS]", l.repo.CountProblems, l.repo.ListProblems)
}

func loadAll[T any](
	ctx context.Context,
	l *Loader,
	description string,
	count func(context.Context) (int, error),
	list func(context.Context, int, int) ([]T, error),
) ([]T, error) {
	total, err := count(ctx)
	if err != nil {
		return nil, err
	}
	l.log.Debug().Int("total", total).Int("batch", l.batchSize).Msg(description)

	if l.progress != nil {
		l.progress.Init(total, description)
		defer l.progress.Close()
	}

	items := make([]T, 0, total)
	for offset := 0; offset < total; offset += l.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		batch, err := list(ctx, offset, l.batchSize)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		items = append(items, batch...)
		if l.progress != nil {
			l.progress.Update(len(items))
		}
	}
	return items, nil
}
