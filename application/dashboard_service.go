package application

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"api-monitor/domain"
)

type RequestSource interface {
	LoadRequests(ctx context.Context) ([]domain.Request, error)
}

type ProblemSource interface {
	LoadProblems(ctx context.Context) ([]domain.Problem, error)
}

// Source is the collection-source capability. The live backend, ClickHouse
// and fixture adapters all implement it.
type Source interface {
	RequestSource
	ProblemSource
}

// Progress reports batch-load progress to the user.
type Progress interface {
	Init(total int, description string)
	Update(current int)
	Close()
}

type DashboardService struct {
	source Source
	now    func() time.Time
	cache  *lru.Cache[uint64, any]
	log    zerolog.Logger
}

type Option func(*DashboardService) error

func WithClock(now func() time.Time) Option {
	return func(s *DashboardService) error {
		if now != nil {
			s.now = now
		}
		return nil
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *DashboardService) error {
		s.log = logger
		return nil
	}
}

// WithCache keeps up to size query results. Results are shared between
// callers and must be treated as read-only.
func WithCache(size int) Option {
	return func(s *DashboardService) error {
		if size <= 0 {
			s.cache = nil
			return nil
		}
		cache, err := lru.New[uint64, any](size)
		if err != nil {
			return fmt.Errorf("failed to create query cache: %w", err)
		}
		s.cache = cache
		return nil
	}
}

func NewDashboardService(source Source, opts ...Option) (*DashboardService, error) {
	s := &DashboardService{
		source: source,
		now:    time.Now,
		log:    log.With().Str("component", "dashboard").Logger(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *DashboardService) Requests(ctx context.Context, q domain.RequestQuery) (domain.Result[domain.Request], error) {
	items, err := s.loadRequests(ctx)
	if err != nil {
		return domain.Result[domain.Request]{}, err
	}

	now := s.now()
	key, cacheable := uint64(0), s.cache != nil && !q.TimeDependent()
	if cacheable {
		key = requestsKey(items, q)
		if hit, ok := s.cache.Get(key); ok {
			s.log.Debug().Uint64("key", key).Msg("request query served from cache")
			return hit.(domain.Result[domain.Request]), nil
		}
	}

	start := time.Now()
	res, err := domain.QueryRequests(items, q, now)
	if err != nil {
		return domain.Result[domain.Request]{}, err
	}
	s.log.Debug().
		Int("loaded", len(items)).
		Int("filtered", res.TotalFiltered).
		Int("page", res.Page.CurrentPage).
		Dur("took", time.Since(start)).
		Msg("request query")

	if cacheable {
		s.cache.Add(key, res)
	}
	return res, nil
}

func (s *DashboardService) Problems(ctx context.Context, q domain.ProblemQuery) (domain.Result[domain.Problem], error) {
	items, err := s.loadProblems(ctx)
	if err != nil {
		return domain.Result[domain.Problem]{}, err
	}

	now := s.now()
	key, cacheable := uint64(0), s.cache != nil && !q.TimeDependent()
	if cacheable {
		key = problemsKey(items, q)
		if hit, ok := s.cache.Get(key); ok {
			s.log.Debug().Uint64("key", key).Msg("problem query served from cache")
			return hit.(domain.Result[domain.Problem]), nil
		}
	}

	start := time.Now()
	res, err := domain.QueryProblems(items, q, now)
	if err != nil {
		return domain.Result[domain.Problem]{}, err
	}
	s.log.Debug().
		Int("loaded", len(items)).
		Int("filtered", res.TotalFiltered).
		Int("page", res.Page.CurrentPage).
		Dur("took", time.Since(start)).
		Msg("problem query")

	if cacheable {
		s.cache.Add(key, res)
	}
	return res, nil
}

// Timeline depends on the clock in every case and is never cached.
func (s *DashboardService) Timeline(ctx context.Context, q domain.RequestQuery) (domain.Timeline, error) {
	items, err := s.loadRequests(ctx)
	if err != nil {
		return domain.Timeline{}, err
	}
	tl, err := domain.RequestTimeline(items, q, s.now())
	if err != nil {
		return domain.Timeline{}, err
	}
	s.log.Debug().Int("total", tl.TotalCount).Int("peak", tl.PeakCount).Msg("request timeline")
	return tl, nil
}

func (s *DashboardService) loadRequests(ctx context.Context) ([]domain.Request, error) {
	start := time.Now()
	items, err := s.source.LoadRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load requests: %w", err)
	}
	s.log.Debug().Int("count", len(items)).Dur("took", time.Since(start)).Msg("requests loaded")
	return items, nil
}

func (s *DashboardService) loadProblems(ctx context.Context) ([]domain.Problem, error) {
	start := time.Now()
	items, err := s.source.LoadProblems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load problems: %w", err)
	}
	s.log.Debug().Int("count", len(items)).Dur("took", time.Since(start)).Msg("problems loaded")
	return items, nil
}
