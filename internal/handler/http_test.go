package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pet-progression/internal/clock"
	"github.com/pet-progression/internal/domain"
	"github.com/pet-progression/internal/events"
	"github.com/pet-progression/internal/service"
	"github.com/pet-progression/internal/store"
	"github.com/pet-progression/internal/websocket"
)

type stubLeaderboard struct {
	entries []domain.LeaderboardEntry
	limit   int
}

func (s *stubLeaderboard) GetTopN(_ context.Context, n int) ([]domain.LeaderboardEntry, error) {
	s.limit = n
	return s.entries, nil
}

func (s *stubLeaderboard) GetPlayerRank(_ context.Context, playerID string) (*domain.LeaderboardEntry, error) {
	for _, e := range s.entries {
		if e.PlayerID == playerID {
			e := e
			return &e, nil
		}
	}
	return nil, domain.ErrNotFound
}

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newRouter(t *testing.T, lb Leaderboard) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg, err := service.NewRegistry(store.NewMemory(), events.NewBus(logger), service.Options{
		Clock:    clock.NewFake(time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC)),
		Location: time.UTC,
		Seed:     7,
	}, logger)
	require.NoError(t, err)
	return NewHandler(reg, lb, websocket.NewHub(logger), logger).Router()
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) (int, response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp
}

func TestHealthCheck(t *testing.T) {
	code, resp := do(t, newRouter(t, nil), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Success)
}

func TestAdoptAndFeed(t *testing.T) {
	h := newRouter(t, nil)

	code, resp := do(t, h, http.MethodPost, "/api/v1/players/p1/pets", AdoptRequest{PetID: "rex"})
	require.Equal(t, http.StatusCreated, code, resp.Error)

	code, resp = do(t, h, http.MethodPost, "/api/v1/players/p1/pets", AdoptRequest{PetID: "rex"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.False(t, resp.Success)

	code, resp = do(t, h, http.MethodPost, "/api/v1/players/p1/pets/rex/actions", ActionRequest{Action: "FEED", StatBoost: 2})
	require.Equal(t, http.StatusOK, code, resp.Error)

	var out service.ActionOutcome
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	assert.True(t, out.Success)
	assert.Equal(t, 1, out.FeedsToday)
	require.NotNil(t, out.Points)
	assert.Positive(t, out.Points.Total)

	code, resp = do(t, h, http.MethodGet, "/api/v1/players/p1/points", nil)
	require.Equal(t, http.StatusOK, code)
	var acct domain.PointsAccount
	require.NoError(t, json.Unmarshal(resp.Data, &acct))
	assert.Equal(t, out.Points.Total, acct.TotalPoints)
}

func TestRecordAction_Validation(t *testing.T) {
	h := newRouter(t, nil)

	code, resp := do(t, h, http.MethodPost, "/api/v1/players/p1/pets/rex/actions", ActionRequest{Action: "dance"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, domain.ErrInvalidAction.Error(), resp.Error)

	code, resp = do(t, h, http.MethodPost, "/api/v1/players/p1/pets/ghost/actions", ActionRequest{Action: "play"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, resp.Error, "not found")

	code, _ = do(t, h, http.MethodGet, "/api/v1/players/p1/pets/ghost", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCurrencyRoutes(t *testing.T) {
	h := newRouter(t, nil)

	code, resp := do(t, h, http.MethodPost, "/api/v1/players/p1/spend", SpendRequest{Amount: 0})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, domain.ErrInvalidAmount.Error(), resp.Error)

	code, resp = do(t, h, http.MethodPost, "/api/v1/players/p1/spend", SpendRequest{Amount: 10, Description: "hat"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "Not enough star fragments: have 0, need 10.", resp.Error)

	code, _ = do(t, h, http.MethodPost, "/api/v1/players/p1/login", nil)
	assert.Equal(t, http.StatusOK, code)
	code, resp = do(t, h, http.MethodPost, "/api/v1/players/p1/login", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "Daily bonus already claimed today.", resp.Error)

	code, resp = do(t, h, http.MethodGet, "/api/v1/players/p1/balance", nil)
	require.Equal(t, http.StatusOK, code)
	var bal map[string]int
	require.NoError(t, json.Unmarshal(resp.Data, &bal))
	assert.Equal(t, 25, bal["balance"])
}

func TestMissionAndAchievementRoutes(t *testing.T) {
	h := newRouter(t, nil)

	code, resp := do(t, h, http.MethodGet, "/api/v1/players/p1/missions", nil)
	require.Equal(t, http.StatusOK, code)
	var missions []domain.Mission
	require.NoError(t, json.Unmarshal(resp.Data, &missions))
	assert.NotEmpty(t, missions)

	code, resp = do(t, h, http.MethodPost, "/api/v1/players/p1/missions/nope/complete", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, `Unknown mission "nope".`, resp.Error)

	code, _ = do(t, h, http.MethodPut, "/api/v1/players/p1/achievements/nope/progress", ProgressRequest{Value: 1})
	assert.Equal(t, http.StatusNotFound, code)

	code, resp = do(t, h, http.MethodPost, "/api/v1/players/p1/achievements/custom", map[string]interface{}{
		"title":  "Walk daily",
		"target": 3,
	})
	require.Equal(t, http.StatusCreated, code, resp.Error)
	var custom domain.Achievement
	require.NoError(t, json.Unmarshal(resp.Data, &custom))
	assert.Equal(t, domain.CategoryCustom, custom.Category)

	code, _ = do(t, h, http.MethodDelete, "/api/v1/players/p1/achievements/custom/"+custom.ID, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestLeaderboardRoutes(t *testing.T) {
	code, resp := do(t, newRouter(t, nil), http.MethodGet, "/api/v1/leaderboard", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, domain.ErrStoreUnavailable.Error(), resp.Error)

	lb := &stubLeaderboard{entries: []domain.LeaderboardEntry{{Rank: 1, PlayerID: "p1", Score: 42}}}
	h := newRouter(t, lb)

	code, resp = do(t, h, http.MethodGet, "/api/v1/leaderboard?limit=500", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, maxLeaderboardLimit, lb.limit)
	var entries []domain.LeaderboardEntry
	require.NoError(t, json.Unmarshal(resp.Data, &entries))
	assert.Equal(t, int64(42), entries[0].Score)

	code, _ = do(t, h, http.MethodGet, "/api/v1/leaderboard?limit=x", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, h, http.MethodGet, "/api/v1/leaderboard/nobody", nil)
	assert.Equal(t, http.StatusNotFound, code)
}
