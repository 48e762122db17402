package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/Karansehgal0611/meditation-app/internal/models"
	"github.com/Karansehgal0611/meditation-app/internal/streak"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrUsernameTaken = errors.New("username already taken")
)

const userColumns = `
	id, username, email, password_hash, daily_goal, preferred_meditation_type,
	streak, longest_streak, last_meditation_date, created_at, updated_at
`

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *UserRepository) WithTx(tx DBTX) *UserRepository {
	return &UserRepository{db: tx}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.DailyGoal,
		&u.PreferredMeditationType,
		&u.Streak,
		&u.LongestStreak,
		&u.LastMeditationDate,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user with a zero streak
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.DailyGoal == 0 {
		user.DailyGoal = models.DefaultDailyGoal
	}
	if user.PreferredMeditationType == "" {
		user.PreferredMeditationType = models.MeditationMindfulness
	}

	query := `
		INSERT INTO users (id, username, email, password_hash, daily_goal, preferred_meditation_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.DailyGoal,
		user.PreferredMeditationType,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			if strings.Contains(constraintName(err), "username") {
				return ErrUsernameTaken
			}
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.Streak = 0
	user.LastMeditationDate = nil
	user.Groups = []uuid.UUID{}
	return nil
}

// GetByID retrieves a user and their group memberships
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	if user.Groups, err = r.groupIDs(ctx, id); err != nil {
		return nil, err
	}
	return user, nil
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getByLower(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = $1`, email)
}

// GetByUsername retrieves a user by username, case-insensitively
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getByLower(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(username) = $1`, username)
}

func (r *UserRepository) getByLower(ctx context.Context, query, value string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(value))))
	if err != nil {
		return nil, err
	}

	if user.Groups, err = r.groupIDs(ctx, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies the non-nil fields of update
func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, update models.ProfileUpdate) (*models.User, error) {
	query := `
		UPDATE users
		SET daily_goal = COALESCE($2, daily_goal),
			preferred_meditation_type = COALESCE($3, preferred_meditation_type),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(ctx, query, id, update.DailyGoal, update.PreferredMeditationType))
	if err != nil {
		return nil, err
	}

	if user.Groups, err = r.groupIDs(ctx, id); err != nil {
		return nil, err
	}
	return user, nil
}

// LockStreak reads a user's streak state and locks the row until the
// surrounding transaction ends
func (r *UserRepository) LockStreak(ctx context.Context, id uuid.UUID) (streak.State, error) {
	query := `SELECT streak, last_meditation_date FROM users WHERE id = $1 FOR UPDATE`

	var count int
	var last *time.Time
	if err := r.db.QueryRow(ctx, query, id).Scan(&count, &last); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return streak.State{}, ErrUserNotFound
		}
		return streak.State{}, fmt.Errorf("failed to lock streak: %w", err)
	}

	state := streak.State{Count: count}
	if last != nil {
		d := civil.DateOf(*last)
		state.LastActivityDate = &d
	}
	return state, nil
}

// SaveStreak persists a streak state and raises the longest streak if needed
func (r *UserRepository) SaveStreak(ctx context.Context, id uuid.UUID, state streak.State) error {
	var last *time.Time
	if state.LastActivityDate != nil {
		t := state.LastActivityDate.In(time.UTC)
		last = &t
	}

	query := `
		UPDATE users
		SET streak = $2,
			last_meditation_date = $3,
			longest_streak = GREATEST(longest_streak, $2),
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id, state.Count, last)
	if err != nil {
		return fmt.Errorf("failed to save streak: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) groupIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT group_id FROM group_members WHERE user_id = $1 ORDER BY joined_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user groups: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("failed to parse user groups: %w", err)
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return ids, nil
}
