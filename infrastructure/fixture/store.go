package fixture

import (
	"context"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"api-monitor/domain"
)

// Store holds fixed collections and implements application.Source.
type Store struct {
	requests []domain.Request
	problems []domain.Problem
}

func NewStore(requests []domain.Request, problems []domain.Problem) *Store {
	return &Store{requests: requests, problems: problems}
}

// Generate builds a Store of n random requests plus the canonical problems.
func Generate(g *Generator, n int) *Store {
	return NewStore(g.Requests(n), g.Problems())
}

func (s *Store) LoadRequests(ctx context.Context) ([]domain.Request, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(s.requests), nil
}

func (s *Store) LoadProblems(ctx context.Context) ([]domain.Problem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(s.problems), nil
}

type file struct {
	Requests []domain.Request `yaml:"requests"`
	Problems []domain.Problem `yaml:"problems"`
}

// LoadFile reads a YAML fixture with requests and problems sections. When
// the file lists no problems they are derived from the requests by analyzer.
func LoadFile(path string, now time.Time, analyzer *domain.Analyzer) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not open fixture file %s: %w", path, err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("error reading fixture file %s: %w", path, err)
	}

	for i, r := range f.Requests {
		if err := r.Validate(now); err != nil {
			return nil, fmt.Errorf("%s: request %d: %w", path, i, err)
		}
	}
	for i, p := range f.Problems {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%s: problem %d: %w", path, i, err)
		}
	}

	if len(f.Problems) == 0 && analyzer != nil {
		f.Problems = analyzer.Analyze(f.Requests)
	}

	log.Info().
		Str("file", path).
		Int("requests", len(f.Requests)).
		Int("problems", len(f.Problems)).
		Msg("fixture loaded")
	return NewStore(f.Requests, f.Problems), nil
}
