// Package service holds operations that span several repositories inside
// one transaction.
package service

import (
	"context"
	"log"
	"time"

	"github.com/Karansehgal0611/meditation-app/internal/models"
	"github.com/Karansehgal0611/meditation-app/internal/repository"
	"github.com/Karansehgal0611/meditation-app/internal/streak"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SessionService completes meditation sessions and folds them into streaks
type SessionService struct {
	db          repository.Pool
	users       *repository.UserRepository
	meditations *repository.MeditationRepository
	tracker     *streak.Tracker
	now         func() time.Time
}

func NewSessionService(db repository.Pool, tracker *streak.Tracker) *SessionService {
	return &SessionService{
		db:          db,
		users:       repository.NewUserRepository(db),
		meditations: repository.NewMeditationRepository(db),
		tracker:     tracker,
		now:         time.Now,
	}
}

// Complete ends one of the user's open sessions and updates the user's
// streak. Both writes commit together; the user row stays locked between
// reading and writing the streak so concurrent completions serialize.
func (s *SessionService) Complete(ctx context.Context, sessionID, userID uuid.UUID) (*models.CompletionResult, error) {
	var result models.CompletionResult

	err := repository.InTx(ctx, s.db, func(tx pgx.Tx) error {
		meditations := s.meditations.WithTx(tx)
		users := s.users.WithTx(tx)

		m, err := meditations.LockOpen(ctx, sessionID, userID)
		if err != nil {
			return err
		}

		end := s.now()
		m.EndTime = &end
		m.Duration = models.DurationMinutes(m.StartTime, end)
		if err := meditations.Complete(ctx, m); err != nil {
			return err
		}

		state, err := users.LockStreak(ctx, userID)
		if err != nil {
			return err
		}

		next := s.tracker.UpdateAt(state, end, end)
		if !sameState(state, next) {
			if err := users.SaveStreak(ctx, userID, next); err != nil {
				return err
			}
		}

		result = models.CompletionResult{Meditation: *m, Streak: next.Count}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🧘 Session %s completed by %s (%d min, streak %d)", sessionID, userID, result.Meditation.Duration, result.Streak)
	return &result, nil
}

func sameState(a, b streak.State) bool {
	if a.Count != b.Count {
		return false
	}
	if a.LastActivityDate == nil || b.LastActivityDate == nil {
		return a.LastActivityDate == b.LastActivityDate
	}
	return *a.LastActivityDate == *b.LastActivityDate
}
