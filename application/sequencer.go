package application

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Sequencer orders overlapping fetches. Each fetch takes a ticket before it
// starts and commits it when done; a commit is accepted only if no later
// ticket has already been committed.
type Sequencer struct {
	mu        sync.Mutex
	issued    uint64
	committed uint64
}

func (s *Sequencer) Next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

func (s *Sequencer) Commit(ticket uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket <= s.committed || ticket > s.issued {
		return false
	}
	s.committed = ticket
	return true
}

// Watch runs load immediately and then every interval until ctx is done.
// Loads may overlap; deliver only sees a result when it is newer than the
// last one delivered. Watch blocks until ctx is done and all loads return.
func Watch[T any](ctx context.Context, interval time.Duration, load func(context.Context) (T, error), deliver func(T, error)) {
	var (
		seq Sequencer
		wg  sync.WaitGroup
		mu  sync.Mutex
	)
	logger := log.With().Str("component", "watch").Logger()

	run := func() {
		ticket := seq.Next()
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := load(ctx)
			if ctx.Err() != nil {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if !seq.Commit(ticket) {
				logger.Debug().Uint64("ticket", ticket).Msg("discarding superseded result")
				return
			}
			deliver(v, err)
		}()
	}

	run()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return
		case <-ticker.C:
			run()
		}
	}
}
