package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Karansehgal0611/meditation-app/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrSessionNotFound       = errors.New("meditation session not found")
	ErrUnknownMeditationType = errors.New("unknown meditation type")
)

const meditationColumns = `
	id, user_id, start_time, end_time, duration, completed, abandoned,
	meditation_type, notes, created_at, updated_at
`

type MeditationRepository struct {
	db DBTX
}

func NewMeditationRepository(db DBTX) *MeditationRepository {
	return &MeditationRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *MeditationRepository) WithTx(tx DBTX) *MeditationRepository {
	return &MeditationRepository{db: tx}
}

func scanMeditation(row pgx.Row) (*models.Meditation, error) {
	var m models.Meditation
	err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.StartTime,
		&m.EndTime,
		&m.Duration,
		&m.Completed,
		&m.Abandoned,
		&m.MeditationType,
		&m.Notes,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &m, nil
}

// Start records a new open session
func (r *MeditationRepository) Start(ctx context.Context, m *models.Meditation) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.MeditationType == "" {
		m.MeditationType = models.MeditationMindfulness
	}
	if !models.ValidMeditationType(m.MeditationType) {
		return fmt.Errorf("%w: %q", ErrUnknownMeditationType, m.MeditationType)
	}

	query := `
		INSERT INTO meditations (id, user_id, start_time, meditation_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	if err := r.db.QueryRow(ctx, query, m.ID, m.UserID, m.StartTime, m.MeditationType).Scan(&m.CreatedAt, &m.UpdatedAt); err != nil {
		return fmt.Errorf("failed to start meditation: %w", err)
	}
	return nil
}

// LockOpen loads one of the user's open sessions and locks it for the
// surrounding transaction
func (r *MeditationRepository) LockOpen(ctx context.Context, id, userID uuid.UUID) (*models.Meditation, error) {
	query := `
		SELECT ` + meditationColumns + `
		FROM meditations
		WHERE id = $1 AND user_id = $2 AND completed = false AND abandoned = false
		FOR UPDATE
	`
	return scanMeditation(r.db.QueryRow(ctx, query, id, userID))
}

// Complete stores the end time and duration and marks the session completed
func (r *MeditationRepository) Complete(ctx context.Context, m *models.Meditation) error {
	query := `
		UPDATE meditations
		SET end_time = $2, duration = $3, completed = true, updated_at = NOW()
		WHERE id = $1 AND completed = false
		RETURNING updated_at
	`

	if err := r.db.QueryRow(ctx, query, m.ID, m.EndTime, m.Duration).Scan(&m.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to complete meditation: %w", err)
	}
	m.Completed = true
	return nil
}

// UpdateNotes sets the notes on one of the user's sessions
func (r *MeditationRepository) UpdateNotes(ctx context.Context, id, userID uuid.UUID, notes *string) (*models.Meditation, error) {
	query := `
		UPDATE meditations
		SET notes = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + meditationColumns

	return scanMeditation(r.db.QueryRow(ctx, query, id, userID, notes))
}

// History returns one page of the user's sessions, newest first, and the total count
func (r *MeditationRepository) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Meditation, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM meditations WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count meditations: %w", err)
	}

	query := `
		SELECT ` + meditationColumns + `
		FROM meditations
		WHERE user_id = $1
		ORDER BY start_time DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query meditations: %w", err)
	}
	defer rows.Close()

	meditations := []models.Meditation{}
	for rows.Next() {
		m, err := scanMeditation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to parse meditation: %w", err)
		}
		meditations = append(meditations, *m)
	}
	return meditations, total, rows.Err()
}

// Stats summarizes the user's completed sessions. since marks the start of today.
func (r *MeditationRepository) Stats(ctx context.Context, userID uuid.UUID, since time.Time) (*models.UserStats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(duration), 0),
			COUNT(*) FILTER (WHERE start_time >= $2),
			COALESCE(AVG(duration), 0)::float8
		FROM meditations
		WHERE user_id = $1 AND completed = true
	`

	var stats models.UserStats
	if err := r.db.QueryRow(ctx, query, userID, since).Scan(
		&stats.TotalSessions,
		&stats.TotalDuration,
		&stats.TodaySessions,
		&stats.AvgDuration,
	); err != nil {
		return nil, fmt.Errorf("failed to query meditation stats: %w", err)
	}
	return &stats, nil
}

// Active returns the user's most recent open session, or nil
func (r *MeditationRepository) Active(ctx context.Context, userID uuid.UUID) (*models.Meditation, error) {
	query := `
		SELECT ` + meditationColumns + `
		FROM meditations
		WHERE user_id = $1 AND completed = false AND abandoned = false
		ORDER BY start_time DESC
		LIMIT 1
	`

	m, err := scanMeditation(r.db.QueryRow(ctx, query, userID))
	if errors.Is(err, ErrSessionNotFound) {
		return nil, nil
	}
	return m, err
}

// AbandonStale marks open sessions started before cutoff as abandoned
func (r *MeditationRepository) AbandonStale(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(ctx, `
		UPDATE meditations
		SET abandoned = true, updated_at = NOW()
		WHERE completed = false AND abandoned = false AND start_time < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to abandon stale sessions: %w", err)
	}
	return result.RowsAffected(), nil
}
