// Package jobs runs periodic maintenance against the meditation store.
package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// sweepTimeout bounds a single pass
const sweepTimeout = 30 * time.Second

// StaleSessionStore is implemented by *repository.MeditationRepository
type StaleSessionStore interface {
	AbandonStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweeper marks sessions that were started but never ended as abandoned,
// so they stop showing as in progress. Abandoned sessions never count
// toward a streak.
type Sweeper struct {
	store      StaleSessionStore
	staleAfter time.Duration
	now        func() time.Time
}

func NewSweeper(store StaleSessionStore, staleAfter time.Duration) *Sweeper {
	return &Sweeper{store: store, staleAfter: staleAfter, now: time.Now}
}

// Run performs one sweep and returns the number of abandoned sessions
func (s *Sweeper) Run(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.staleAfter)

	n, err := s.store.AbandonStale(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Printf("🧹 Abandoned %d stale meditation session(s) started before %s", n, cutoff.Format(time.RFC3339))
	}
	return n, nil
}

// Start schedules Run every interval on a new scheduler. The caller owns
// the returned scheduler and must Shutdown it.
func (s *Sweeper) Start(interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
			defer cancel()

			if _, err := s.Run(ctx); err != nil {
				log.Printf("[Sweeper] %v", err)
			}
		}),
		gocron.WithName("stale-session-sweeper"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to schedule sweeper: %w", err)
	}

	sched.Start()
	log.Printf("⏱️  Stale session sweeper running every %s (stale after %s)", interval, s.staleAfter)
	return sched, nil
}
