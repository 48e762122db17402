package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Karansehgal0611/meditation-app/internal/auth"
	"github.com/Karansehgal0611/meditation-app/internal/middleware"
	"github.com/Karansehgal0611/meditation-app/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testTokens = auth.NewJWTService("test-secret", "meditation-app", time.Hour)

type MockUserStore struct {
	CreateFunc        func(ctx context.Context, user *models.User) error
	GetByIDFunc       func(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmailFunc    func(ctx context.Context, email string) (*models.User, error)
	GetByUsernameFunc func(ctx context.Context, username string) (*models.User, error)
	UpdateProfileFunc func(ctx context.Context, id uuid.UUID, update models.ProfileUpdate) (*models.User, error)
}

func (m *MockUserStore) Create(ctx context.Context, user *models.User) error {
	return m.CreateFunc(ctx, user)
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.GetByEmailFunc(ctx, email)
}

func (m *MockUserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.GetByUsernameFunc(ctx, username)
}

func (m *MockUserStore) UpdateProfile(ctx context.Context, id uuid.UUID, update models.ProfileUpdate) (*models.User, error) {
	return m.UpdateProfileFunc(ctx, id, update)
}

type MockGroupStore struct {
	CreateFunc      func(ctx context.Context, group *models.Group) error
	GetByIDFunc     func(ctx context.Context, id uuid.UUID) (*models.Group, error)
	ListForUserFunc func(ctx context.Context, userID uuid.UUID) ([]models.Group, error)
	JoinFunc        func(ctx context.Context, joinCode string, userID uuid.UUID) (*models.Group, error)
	LeaveFunc       func(ctx context.Context, groupID, userID uuid.UUID) error
	UpdateFunc      func(ctx context.Context, groupID, userID uuid.UUID, update models.GroupUpdate) (*models.Group, error)
	ProgressFunc    func(ctx context.Context, groupID uuid.UUID, since time.Time) ([]models.MemberProgress, error)
}

func (m *MockGroupStore) Create(ctx context.Context, group *models.Group) error {
	return m.CreateFunc(ctx, group)
}

func (m *MockGroupStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *MockGroupStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Group, error) {
	return m.ListForUserFunc(ctx, userID)
}

func (m *MockGroupStore) Join(ctx context.Context, joinCode string, userID uuid.UUID) (*models.Group, error) {
	return m.JoinFunc(ctx, joinCode, userID)
}

func (m *MockGroupStore) Leave(ctx context.Context, groupID, userID uuid.UUID) error {
	return m.LeaveFunc(ctx, groupID, userID)
}

func (m *MockGroupStore) Update(ctx context.Context, groupID, userID uuid.UUID, update models.GroupUpdate) (*models.Group, error) {
	return m.UpdateFunc(ctx, groupID, userID, update)
}

func (m *MockGroupStore) Progress(ctx context.Context, groupID uuid.UUID, since time.Time) ([]models.MemberProgress, error) {
	return m.ProgressFunc(ctx, groupID, since)
}

type MockMeditationStore struct {
	StartFunc       func(ctx context.Context, m *models.Meditation) error
	UpdateNotesFunc func(ctx context.Context, id, userID uuid.UUID, notes *string) (*models.Meditation, error)
	HistoryFunc     func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Meditation, int, error)
	StatsFunc       func(ctx context.Context, userID uuid.UUID, since time.Time) (*models.UserStats, error)
	ActiveFunc      func(ctx context.Context, userID uuid.UUID) (*models.Meditation, error)
}

func (m *MockMeditationStore) Start(ctx context.Context, med *models.Meditation) error {
	return m.StartFunc(ctx, med)
}

func (m *MockMeditationStore) UpdateNotes(ctx context.Context, id, userID uuid.UUID, notes *string) (*models.Meditation, error) {
	return m.UpdateNotesFunc(ctx, id, userID, notes)
}

func (m *MockMeditationStore) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Meditation, int, error) {
	return m.HistoryFunc(ctx, userID, limit, offset)
}

func (m *MockMeditationStore) Stats(ctx context.Context, userID uuid.UUID, since time.Time) (*models.UserStats, error) {
	return m.StatsFunc(ctx, userID, since)
}

func (m *MockMeditationStore) Active(ctx context.Context, userID uuid.UUID) (*models.Meditation, error) {
	return m.ActiveFunc(ctx, userID)
}

type MockSessionCompleter struct {
	CompleteFunc func(ctx context.Context, sessionID, userID uuid.UUID) (*models.CompletionResult, error)
}

func (m *MockSessionCompleter) Complete(ctx context.Context, sessionID, userID uuid.UUID) (*models.CompletionResult, error) {
	return m.CompleteFunc(ctx, sessionID, userID)
}

type fixedClock time.Time

func (c fixedClock) StartOfToday() time.Time { return time.Time(c) }

// newRouter mounts h behind RequireAuth at method/path
func newRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Handle(method, path, middleware.RequireAuth(testTokens), h)
	return r
}

// serve performs a request as userID; uuid.Nil sends no token
func serve(t *testing.T, r *gin.Engine, method, target string, body any, userID uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		token, err := testTokens.GenerateToken(userID, "tester")
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
