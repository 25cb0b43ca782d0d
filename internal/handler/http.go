package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pet-progression/internal/achievement"
	"github.com/pet-progression/internal/discovery"
	"github.com/pet-progression/internal/domain"
	"github.com/pet-progression/internal/service"
	"github.com/pet-progression/internal/websocket"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// Sessions resolves the per-player session for a request.
type Sessions interface {
	Session(playerID string) (*service.Session, error)
}

// Leaderboard serves ranked points totals.
type Leaderboard interface {
	GetTopN(ctx context.Context, n int) ([]domain.LeaderboardEntry, error)
	GetPlayerRank(ctx context.Context, playerID string) (*domain.LeaderboardEntry, error)
}

// Handler provides HTTP handlers for the progression API
type Handler struct {
	sessions     Sessions
	leaderboard  Leaderboard
	hub          *websocket.Hub
	logger       *slog.Logger
	defaultLimit int
	maxLimit     int
}

// Option configures a Handler
type Option func(*Handler)

// WithLeaderboardLimits overrides the default and maximum leaderboard page
// sizes. Non-positive values keep the defaults.
func WithLeaderboardLimits(defaultLimit, maxLimit int) Option {
	return func(h *Handler) {
		if defaultLimit > 0 {
			h.defaultLimit = defaultLimit
		}
		if maxLimit > 0 {
			h.maxLimit = maxLimit
		}
	}
}

// NewHandler creates a new HTTP handler. A nil leaderboard disables the
// leaderboard routes.
func NewHandler(sessions Sessions, leaderboard Leaderboard, hub *websocket.Hub, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		sessions:     sessions,
		leaderboard:  leaderboard,
		hub:          hub,
		logger:       logger,
		defaultLimit: defaultLeaderboardLimit,
		maxLimit:     maxLeaderboardLimit,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Router creates and configures the HTTP router
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(corsMiddleware)

	r.Get("/health", h.HealthCheck)
	r.Get("/ready", h.ReadyCheck)
	r.Get("/ws", h.HandleWebSocket)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/players/{playerID}", func(r chi.Router) {
			r.Get("/pets", h.ListPets)
			r.Post("/pets", h.AdoptPet)
			r.Get("/pets/{petID}", h.GetPetStats)
			r.Post("/pets/{petID}/actions", h.RecordAction)

			r.Post("/discover", h.Discover)
			r.Get("/discovery", h.GetDiscoveryHistory)
			r.Get("/discovery/settings", h.GetDiscoverySettings)
			r.Put("/discovery/settings", h.UpdateDiscoverySettings)
			r.Get("/inventory", h.GetInventory)

			r.Get("/missions", h.ListMissions)
			r.Post("/missions/{missionID}/complete", h.CompleteMission)
			r.Get("/progress", h.GetProgress)

			r.Get("/achievements", h.ListAchievements)
			r.Put("/achievements/{achievementID}/progress", h.UpdateAchievement)
			r.Post("/achievements/custom", h.AddCustomAchievement)
			r.Delete("/achievements/custom/{achievementID}", h.RemoveCustomAchievement)

			r.Get("/points", h.GetPoints)
			r.Get("/balance", h.GetBalance)
			r.Get("/ledger", h.GetLedger)
			r.Post("/spend", h.Spend)
			r.Post("/login", h.ClaimDailyLogin)
		})

		r.Get("/leaderboard", h.GetLeaderboard)
		r.Get("/leaderboard/{playerID}", h.GetPlayerRank)

		r.Get("/ws/stats", h.GetWebSocketStats)
	})

	return r
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn("failed to encode response", "error", err)
	}
}

// writeSuccess writes a successful JSON response
func (h *Handler) writeSuccess(w http.ResponseWriter, data interface{}) {
	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

// writeError writes an error JSON response
func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, APIResponse{
		Success: false,
		Error:   err.Error(),
	})
}

// writeResult reports a rule outcome. Rule violations are 422 with the
// outcome still attached so clients can show the current state.
func (h *Handler) writeResult(w http.ResponseWriter, res domain.Result, data interface{}) {
	if res.Success {
		h.writeSuccess(w, data)
		return
	}
	h.writeJSON(w, http.StatusUnprocessableEntity, APIResponse{
		Success: false,
		Data:    data,
		Error:   res.Message,
	})
}

// session resolves the {playerID} session, writing the error response itself
// when it cannot.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*service.Session, bool) {
	s, err := h.sessions.Session(chi.URLParam(r, "playerID"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			h.writeError(w, http.StatusBadRequest, err)
			return nil, false
		}
		h.logger.Error("failed to open session", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return nil, false
	}
	return s, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return false
	}
	return true
}

// HandleWebSocket handles WebSocket upgrade requests
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWs(h.hub, h.logger, w, r)
}

// GetWebSocketStats returns WebSocket connection statistics
func (h *Handler) GetWebSocketStats(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]interface{}{
		"total_connections":  h.hub.GetTotalConnections(),
		"subscribed_players": len(h.hub.SubscribedPlayers()),
	})
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]string{"status": "healthy"})
}

// ReadyCheck returns service readiness status
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]string{"status": "ready"})
}

// AdoptRequest is the body of POST /pets
type AdoptRequest struct {
	PetID string `json:"pet_id"`
}

// ListPets returns the current stats of every adopted pet
func (h *Handler) ListPets(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.writeSuccess(w, s.AllStats(r.Context()))
}

// AdoptPet adds a pet to the player's roster
func (h *Handler) AdoptPet(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req AdoptRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.PetID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	res := s.AdoptPet(r.Context(), req.PetID)
	if !res.Success {
		h.writeResult(w, res, nil)
		return
	}
	stats, _ := s.Stats(r.Context(), req.PetID)
	h.writeJSON(w, http.StatusCreated, APIResponse{Success: true, Data: stats})
}

// GetPetStats returns one pet's derived stats
func (h *Handler) GetPetStats(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	stats, found := s.Stats(r.Context(), chi.URLParam(r, "petID"))
	if !found {
		h.writeError(w, http.StatusNotFound, domain.ErrPetNotFound)
		return
	}
	h.writeSuccess(w, stats)
}

// ActionRequest is the body of POST /pets/{petID}/actions
type ActionRequest struct {
	Action       string `json:"action"`
	StatBoost    int    `json:"stat_boost"`
	AchievedGoal bool   `json:"achieved_goal"`
}

// RecordAction applies a care action to a pet
func (h *Handler) RecordAction(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req ActionRequest
	if !h.decode(w, r, &req) {
		return
	}
	action, err := domain.ParseActionType(req.Action)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidAction)
		return
	}

	out := s.RecordAction(r.Context(), service.ActionRequest{
		PetID:        chi.URLParam(r, "petID"),
		Action:       action,
		StatBoost:    req.StatBoost,
		AchievedGoal: req.AchievedGoal,
	})
	h.writeResult(w, out.Result, out)
}

// Discover rolls for a discovery when the gate is open
func (h *Handler) Discover(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.writeSuccess(w, s.Discover(r.Context()))
}

// GetDiscoveryHistory returns the recent discovery records
func (h *Handler) GetDiscoveryHistory(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.writeSuccess(w, map[string]interface{}{
		"ready":   s.ShouldDiscover(r.Context()),
		"history": s.DiscoveryHistory(r.Context()),
	})
}

// GetDiscoverySettings returns the player's discovery settings
func (h *Handler) GetDiscoverySettings(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.writeSuccess(w, s.DiscoverySettings(r.Context()))
}

// UpdateDiscoverySettings applies a partial settings update
func (h *Handler) UpdateDiscoverySettings(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req discovery.SettingsUpdate
	if !h.decode(w, r, &req) {
		return
	}
	res := s.UpdateDiscoverySettings(r.Context(), req)
	h.writeResult(w, res, s.DiscoverySettings(r.Context()))
}

// GetInventory returns the player's inventory
func (h *Handler) GetInventory(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.writeSuccess(w, s.Inventory(r.Context()))
}

// ListMissions returns the hydrated missions of the current windows
func (h *Handler) ListMissions(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.writeSuccess(w, s.Missions(r.Context()))
}

// CompleteMission claims a finished mission's rewards
func (h *Handler) CompleteMission(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	res := s.CompleteMission(r.Context(), chi.URLParam(r, "missionID"))
	h.writeResult(w, res.Result, res)
}

// GetProgress returns the player's experience and level
func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.writeSuccess(w, s.Progress(r.Context()))
}

// ListAchievements returns every achievement with its progress
func (h *Handler) ListAchievements(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.writeSuccess(w, s.Achievements(r.Context()))
}

// ProgressRequest is the body of PUT /achievements/{id}/progress
type ProgressRequest struct {
	Value int `json:"value"`
}

// UpdateAchievement sets an achievement's progress value
func (h *Handler) UpdateAchievement(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req ProgressRequest
	if !h.decode(w, r, &req) {
		return
	}
	upd := s.UpdateAchievement(r.Context(), chi.URLParam(r, "achievementID"), req.Value)
	if upd.Achievement == nil {
		h.writeError(w, http.StatusNotFound, domain.ErrNotFound)
		return
	}
	h.writeSuccess(w, upd)
}

// AddCustomAchievement creates a player-defined achievement
func (h *Handler) AddCustomAchievement(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req achievement.CustomSpec
	if !h.decode(w, r, &req) {
		return
	}
	a, res := s.AddCustomAchievement(r.Context(), req)
	if !res.Success {
		h.writeResult(w, res, nil)
		return
	}
	h.writeJSON(w, http.StatusCreated, APIResponse{Success: true, Data: a})
}

// RemoveCustomAchievement deletes a player-defined achievement
func (h *Handler) RemoveCustomAchievement(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	res := s.RemoveCustomAchievement(r.Context(), chi.URLParam(r, "achievementID"))
	h.writeResult(w, res, res)
}

// GetPoints returns the player's points account
func (h *Handler) GetPoints(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.writeSuccess(w, s.Points(r.Context()))
}

// GetBalance returns the star fragment balance
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.writeSuccess(w, map[string]int{"balance": s.Balance(r.Context())})
}

// GetLedger returns the currency ledger with its transactions
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.writeSuccess(w, s.Ledger(r.Context()))
}

// SpendRequest is the body of POST /spend
type SpendRequest struct {
	Amount      int    `json:"amount"`
	Description string `json:"description"`
}

// Spend debits star fragments
func (h *Handler) Spend(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req SpendRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Amount <= 0 {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidAmount)
		return
	}
	res := s.Spend(r.Context(), req.Amount, req.Description)
	h.writeResult(w, res.Result, res)
}

// ClaimDailyLogin credits the once-per-day login bonus
func (h *Handler) ClaimDailyLogin(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	res := s.ClaimDailyLogin(r.Context())
	h.writeResult(w, res.Result, res)
}

// GetLeaderboard returns the top players by total points
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if h.leaderboard == nil {
		h.writeError(w, http.StatusServiceUnavailable, domain.ErrStoreUnavailable)
		return
	}

	limit := h.defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
			return
		}
		limit = min(n, h.maxLimit)
	}

	entries, err := h.leaderboard.GetTopN(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to get leaderboard", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}
	h.writeSuccess(w, entries)
}

// GetPlayerRank returns a player's position on the points leaderboard
func (h *Handler) GetPlayerRank(w http.ResponseWriter, r *http.Request) {
	if h.leaderboard == nil {
		h.writeError(w, http.StatusServiceUnavailable, domain.ErrStoreUnavailable)
		return
	}

	entry, err := h.leaderboard.GetPlayerRank(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		if domain.IsNotFoundError(err) {
			h.writeError(w, http.StatusNotFound, err)
			return
		}
		h.logger.Error("failed to get player rank", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}
	h.writeSuccess(w, entry)
}
