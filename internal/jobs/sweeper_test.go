package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockStaleSessionStore struct {
	AbandonStaleFunc func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *MockStaleSessionStore) AbandonStale(ctx context.Context, cutoff time.Time) (int64, error) {
	return m.AbandonStaleFunc(ctx, cutoff)
}

func TestSweeperRun_Cutoff(t *testing.T) {
	now := time.Date(2024, 1, 11, 12, 0, 0, 0, time.UTC)
	var gotCutoff time.Time
	store := &MockStaleSessionStore{
		AbandonStaleFunc: func(_ context.Context, cutoff time.Time) (int64, error) {
			gotCutoff = cutoff
			return 2, nil
		},
	}

	s := NewSweeper(store, 12*time.Hour)
	s.now = func() time.Time { return now }

	n, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.True(t, gotCutoff.Equal(time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)))
}

func TestSweeperRun_Error(t *testing.T) {
	store := &MockStaleSessionStore{
		AbandonStaleFunc: func(context.Context, time.Time) (int64, error) {
			return 0, errors.New("db down")
		},
	}

	_, err := NewSweeper(store, time.Hour).Run(context.Background())
	assert.EqualError(t, err, "db down")
}

func TestSweeperStart_RunsOnSchedule(t *testing.T) {
	var calls atomic.Int32
	store := &MockStaleSessionStore{
		AbandonStaleFunc: func(context.Context, time.Time) (int64, error) {
			calls.Add(1)
			return 0, nil
		},
	}

	sched, err := NewSweeper(store, time.Hour).Start(50 * time.Millisecond)
	require.NoError(t, err)
	defer func() { assert.NoError(t, sched.Shutdown()) }()

	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}
