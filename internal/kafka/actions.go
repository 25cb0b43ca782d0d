package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/pet-progression/internal/domain"
	"github.com/pet-progression/internal/service"
)

// ActionMessage is the wire format of a pet-action command
type ActionMessage struct {
	PlayerID     string `json:"player_id"`
	PetID        string `json:"pet_id"`
	Action       string `json:"action"`
	StatBoost    int    `json:"stat_boost,omitempty"`
	AchievedGoal bool   `json:"achieved_goal,omitempty"`
}

// ActionCommand is a validated ActionMessage
type ActionCommand struct {
	PlayerID string
	Request  service.ActionRequest
}

// DecodeAction parses and validates one action message.
func DecodeAction(data []byte) (ActionCommand, error) {
	var msg ActionMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ActionCommand{}, fmt.Errorf("unmarshal action: %w", err)
	}
	if msg.PlayerID == "" || msg.PetID == "" {
		return ActionCommand{}, fmt.Errorf("%w: player_id and pet_id are required", domain.ErrInvalidRequest)
	}
	action, err := domain.ParseActionType(msg.Action)
	if err != nil {
		return ActionCommand{}, err
	}
	return ActionCommand{
		PlayerID: msg.PlayerID,
		Request: service.ActionRequest{
			PetID:        msg.PetID,
			Action:       action,
			StatBoost:    msg.StatBoost,
			AchievedGoal: msg.AchievedGoal,
		},
	}, nil
}

// Sessions resolves per-player sessions
type Sessions interface {
	Session(playerID string) (*service.Session, error)
}

// SessionHandler applies action commands through player sessions
type SessionHandler struct {
	sessions Sessions
	logger   *slog.Logger
}

// NewSessionHandler creates an ActionHandler backed by sessions
func NewSessionHandler(sessions Sessions, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, logger: logger}
}

// HandleActions records every command in order and returns how many were
// accepted. Rejected actions (caps, unknown pets) are logged and skipped.
func (h *SessionHandler) HandleActions(ctx context.Context, batch []ActionCommand) int {
	applied := 0
	for _, cmd := range batch {
		s, err := h.sessions.Session(cmd.PlayerID)
		if err != nil {
			h.logger.Warn("failed to open session", "player_id", cmd.PlayerID, "error", err)
			continue
		}
		out := s.RecordAction(ctx, cmd.Request)
		if !out.Success {
			h.logger.Debug("action rejected",
				"player_id", cmd.PlayerID,
				"pet_id", cmd.Request.PetID,
				"action", cmd.Request.Action,
				"reason", out.Message,
			)
			continue
		}
		applied++
	}
	return applied
}
