package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Karansehgal0611/meditation-app/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	ErrGroupNotFound     = errors.New("group not found")
	ErrInvalidJoinCode   = errors.New("invalid join code")
	ErrGroupFull         = errors.New("group is already full")
	ErrAlreadyMember     = errors.New("already a member of this group")
	ErrNotMember         = errors.New("not a member of this group")
	ErrNotGroupCreator   = errors.New("only the group creator can update settings")
	ErrJoinCodeExhausted = errors.New("could not allocate a unique join code")
)

const (
	joinCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	joinCodeLength   = 6
	joinCodeAttempts = 5
)

const groupColumns = `id, name, description, created_by, max_members, weekly_goal, join_code, created_at, updated_at`

type GroupRepository struct {
	db       Pool
	joinCode func() (string, error)
}

func NewGroupRepository(db Pool) *GroupRepository {
	return &GroupRepository{db: db, joinCode: NewJoinCode}
}

// NewJoinCode returns a random 6-character alphanumeric join code
func NewJoinCode() (string, error) {
	return gonanoid.Generate(joinCodeAlphabet, joinCodeLength)
}

func scanGroup(row pgx.Row) (*models.Group, error) {
	var g models.Group
	err := row.Scan(
		&g.ID,
		&g.Name,
		&g.Description,
		&g.CreatedBy,
		&g.MaxMembers,
		&g.WeeklyGoal,
		&g.JoinCode,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return &g, nil
}

// Create inserts a group with a fresh join code and makes the creator its first member
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	if group.ID == uuid.Nil {
		group.ID = uuid.New()
	}
	if group.MaxMembers <= 0 {
		group.MaxMembers = models.DefaultMaxMembers
	}

	return InTx(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO groups (id, name, description, created_by, max_members, weekly_goal, join_code, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
			ON CONFLICT (join_code) DO NOTHING
			RETURNING created_at, updated_at
		`

		inserted := false
		for attempt := 0; attempt < joinCodeAttempts; attempt++ {
			code, err := r.joinCode()
			if err != nil {
				return fmt.Errorf("failed to generate join code: %w", err)
			}

			err = tx.QueryRow(ctx, query,
				group.ID,
				group.Name,
				group.Description,
				group.CreatedBy,
				group.MaxMembers,
				group.WeeklyGoal,
				code,
			).Scan(&group.CreatedAt, &group.UpdatedAt)

			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to create group: %w", err)
			}

			group.JoinCode = code
			inserted = true
			break
		}
		if !inserted {
			return ErrJoinCodeExhausted
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO group_members (group_id, user_id, joined_at) VALUES ($1, $2, NOW())`,
			group.ID, group.CreatedBy,
		); err != nil {
			return fmt.Errorf("failed to add creator to group: %w", err)
		}

		return nil
	})
}

// GetByID retrieves a group with its members and creator
func (r *GroupRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	group, err := scanGroup(r.db.QueryRow(ctx, `SELECT `+groupColumns+` FROM groups WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadMembers(ctx, r.db, group); err != nil {
		return nil, err
	}
	return group, nil
}

// ListForUser returns every group the user belongs to
func (r *GroupRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Group, error) {
	query := `
		SELECT g.id, g.name, g.description, g.created_by, g.max_members, g.weekly_goal, g.join_code, g.created_at, g.updated_at
		FROM groups g
		JOIN group_members gm ON gm.group_id = g.id
		WHERE gm.user_id = $1
		ORDER BY gm.joined_at ASC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}

	groups := []models.Group{}
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to parse group: %w", err)
		}
		groups = append(groups, *g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range groups {
		if err := r.loadMembers(ctx, r.db, &groups[i]); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

// Join adds userID to the group identified by joinCode. The group row is
// locked so concurrent joins cannot exceed capacity.
func (r *GroupRepository) Join(ctx context.Context, joinCode string, userID uuid.UUID) (*models.Group, error) {
	var group *models.Group

	err := InTx(ctx, r.db, func(tx pgx.Tx) error {
		g, err := scanGroup(tx.QueryRow(ctx, `SELECT `+groupColumns+` FROM groups WHERE join_code = $1 FOR UPDATE`, joinCode))
		if err != nil {
			if errors.Is(err, ErrGroupNotFound) {
				return ErrInvalidJoinCode
			}
			return err
		}

		if err := r.loadMembers(ctx, tx, g); err != nil {
			return err
		}
		if g.IsFull() {
			return ErrGroupFull
		}
		if g.HasMember(userID) {
			return ErrAlreadyMember
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO group_members (group_id, user_id, joined_at) VALUES ($1, $2, NOW())`,
			g.ID, userID,
		); err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyMember
			}
			return fmt.Errorf("failed to join group: %w", err)
		}

		if err := r.loadMembers(ctx, tx, g); err != nil {
			return err
		}
		group = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// Leave removes userID from the group
func (r *GroupRepository) Leave(ctx context.Context, groupID, userID uuid.UUID) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM groups WHERE id = $1)`, groupID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to query group: %w", err)
	}
	if !exists {
		return ErrGroupNotFound
	}

	result, err := r.db.Exec(ctx, `DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`, groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to leave group: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotMember
	}
	return nil
}

// Update changes group settings; only the creator may do so
func (r *GroupRepository) Update(ctx context.Context, groupID, userID uuid.UUID, update models.GroupUpdate) (*models.Group, error) {
	var group *models.Group

	err := InTx(ctx, r.db, func(tx pgx.Tx) error {
		var createdBy uuid.UUID
		err := tx.QueryRow(ctx, `SELECT created_by FROM groups WHERE id = $1 FOR UPDATE`, groupID).Scan(&createdBy)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrGroupNotFound
			}
			return fmt.Errorf("failed to query group: %w", err)
		}
		if createdBy != userID {
			return ErrNotGroupCreator
		}

		query := `
			UPDATE groups
			SET name = COALESCE($2, name),
				description = COALESCE($3, description),
				weekly_goal = COALESCE($4, weekly_goal),
				updated_at = NOW()
			WHERE id = $1
			RETURNING ` + groupColumns

		g, err := scanGroup(tx.QueryRow(ctx, query, groupID, update.Name, update.Description, update.WeeklyGoal))
		if err != nil {
			return err
		}
		if err := r.loadMembers(ctx, tx, g); err != nil {
			return err
		}
		group = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// IsMember reports whether userID belongs to groupID
func (r *GroupRepository) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	var isMember bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)`,
		groupID, userID,
	).Scan(&isMember)
	return isMember, err
}

// Progress aggregates completed sessions per member. since marks the start
// of "today" for the today_sessions count.
func (r *GroupRepository) Progress(ctx context.Context, groupID uuid.UUID, since time.Time) ([]models.MemberProgress, error) {
	query := `
		SELECT
			u.id,
			u.username,
			u.streak,
			COUNT(m.id) FILTER (WHERE m.completed) AS total_sessions,
			COALESCE(SUM(m.duration) FILTER (WHERE m.completed), 0) AS total_duration,
			COUNT(m.id) FILTER (WHERE m.completed AND m.start_time >= $2) AS today_sessions,
			MAX(m.end_time) FILTER (WHERE m.completed) AS last_meditation,
			COALESCE(BOOL_OR(NOT m.completed AND NOT m.abandoned), false) AS is_active
		FROM group_members gm
		JOIN users u ON u.id = gm.user_id
		LEFT JOIN meditations m ON m.user_id = u.id
		WHERE gm.group_id = $1
		GROUP BY u.id, u.username, u.streak
		ORDER BY today_sessions DESC, total_duration DESC, u.username ASC
	`

	rows, err := r.db.Query(ctx, query, groupID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query group progress: %w", err)
	}
	defer rows.Close()

	progress := []models.MemberProgress{}
	rank := 1
	for rows.Next() {
		p := models.MemberProgress{Rank: rank}
		if err := rows.Scan(
			&p.UserID,
			&p.Username,
			&p.Streak,
			&p.TotalSessions,
			&p.TotalDuration,
			&p.TodaySessions,
			&p.LastMeditation,
			&p.IsActive,
		); err != nil {
			return nil, fmt.Errorf("failed to parse group progress: %w", err)
		}
		progress = append(progress, p)
		rank++
	}
	return progress, rows.Err()
}

func (r *GroupRepository) loadMembers(ctx context.Context, db DBTX, group *models.Group) error {
	query := `
		SELECT u.id, u.username
		FROM group_members gm
		JOIN users u ON u.id = gm.user_id
		WHERE gm.group_id = $1
		ORDER BY gm.joined_at ASC
	`

	rows, err := db.Query(ctx, query, group.ID)
	if err != nil {
		return fmt.Errorf("failed to query group members: %w", err)
	}

	members, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.UserSummary, error) {
		var m models.UserSummary
		err := row.Scan(&m.ID, &m.Username)
		return m, err
	})
	if err != nil {
		return fmt.Errorf("failed to parse group members: %w", err)
	}

	group.Members = []models.UserSummary{}
	group.Creator = nil
	for _, m := range members {
		group.Members = append(group.Members, m)
		if m.ID == group.CreatedBy {
			creator := m
			group.Creator = &creator
		}
	}
	return nil
}
