package service

import (
	"context"
	"testing"
	"time"

	"github.com/Karansehgal0611/meditation-app/internal/repository"
	"github.com/Karansehgal0611/meditation-app/internal/streak"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var meditationCols = []string{
	"id", "user_id", "start_time", "end_time", "duration", "completed", "abandoned",
	"meditation_type", "notes", "created_at", "updated_at",
}

func newTestService(t *testing.T, now time.Time) (*SessionService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	svc := NewSessionService(mock, streak.NewTracker(time.UTC, streak.ContinuityToday))
	svc.now = func() time.Time { return now }
	return svc, mock
}

func openSessionRow(sessionID, userID uuid.UUID, start time.Time) *pgxmock.Rows {
	return pgxmock.NewRows(meditationCols).AddRow(
		sessionID, userID, start, (*time.Time)(nil), 0, false, false,
		"mindfulness", (*string)(nil), start, start,
	)
}

func TestComplete_ExtendsStreak(t *testing.T) {
	end := time.Date(2024, 1, 11, 7, 30, 0, 0, time.UTC)
	start := end.Add(-20*time.Minute - 20*time.Second)
	svc, mock := newTestService(t, end)
	sessionID, userID := uuid.New(), uuid.New()
	yesterday := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM meditations").
		WithArgs(sessionID, userID).
		WillReturnRows(openSessionRow(sessionID, userID, start))
	mock.ExpectQuery("UPDATE meditations").
		WithArgs(sessionID, pgxmock.AnyArg(), 20).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(end))
	mock.ExpectQuery("SELECT streak, last_meditation_date FROM users").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"streak", "last_meditation_date"}).AddRow(3, &yesterday))
	mock.ExpectExec("UPDATE users").
		WithArgs(userID, 4, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	result, err := svc.Complete(context.Background(), sessionID, userID)
	require.NoError(t, err)

	assert.Equal(t, 4, result.Streak)
	assert.Equal(t, 20, result.Meditation.Duration)
	assert.True(t, result.Meditation.Completed)
	require.NotNil(t, result.Meditation.EndTime)
	assert.True(t, end.Equal(*result.Meditation.EndTime))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplete_FirstSessionStartsStreak(t *testing.T) {
	end := time.Date(2024, 1, 10, 21, 0, 0, 0, time.UTC)
	svc, mock := newTestService(t, end)
	sessionID, userID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM meditations").
		WithArgs(sessionID, userID).
		WillReturnRows(openSessionRow(sessionID, userID, end.Add(-10*time.Minute)))
	mock.ExpectQuery("UPDATE meditations").
		WithArgs(sessionID, pgxmock.AnyArg(), 10).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(end))
	mock.ExpectQuery("SELECT streak, last_meditation_date FROM users").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"streak", "last_meditation_date"}).AddRow(0, (*time.Time)(nil)))
	mock.ExpectExec("UPDATE users").
		WithArgs(userID, 1, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	result, err := svc.Complete(context.Background(), sessionID, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Streak)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplete_SameDaySkipsStreakWrite(t *testing.T) {
	end := time.Date(2024, 1, 10, 21, 0, 0, 0, time.UTC)
	svc, mock := newTestService(t, end)
	sessionID, userID := uuid.New(), uuid.New()
	today := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM meditations").
		WithArgs(sessionID, userID).
		WillReturnRows(openSessionRow(sessionID, userID, end.Add(-5*time.Minute)))
	mock.ExpectQuery("UPDATE meditations").
		WithArgs(sessionID, pgxmock.AnyArg(), 5).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(end))
	mock.ExpectQuery("SELECT streak, last_meditation_date FROM users").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"streak", "last_meditation_date"}).AddRow(3, &today))
	mock.ExpectCommit()

	result, err := svc.Complete(context.Background(), sessionID, userID)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Streak)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplete_SessionNotFound(t *testing.T) {
	svc, mock := newTestService(t, time.Now())
	sessionID, userID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM meditations").
		WithArgs(sessionID, userID).
		WillReturnRows(pgxmock.NewRows(meditationCols))
	mock.ExpectRollback()

	_, err := svc.Complete(context.Background(), sessionID, userID)
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSameState(t *testing.T) {
	a := streak.State{}
	assert.True(t, sameState(a, streak.State{}))

	d := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	tr := streak.NewTracker(time.UTC, streak.ContinuityToday)
	b := tr.UpdateAt(a, d, d)
	assert.False(t, sameState(a, b))
	assert.True(t, sameState(b, tr.UpdateAt(b, d, d)))
}
