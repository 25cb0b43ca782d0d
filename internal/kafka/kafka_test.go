package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pet-progression/internal/clock"
	"github.com/pet-progression/internal/domain"
	"github.com/pet-progression/internal/events"
	"github.com/pet-progression/internal/service"
	"github.com/pet-progression/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDecodeAction(t *testing.T) {
	cmd, err := DecodeAction([]byte(`{"player_id":"p1","pet_id":"rex","action":"Play","achieved_goal":true}`))
	require.NoError(t, err)
	assert.Equal(t, "p1", cmd.PlayerID)
	assert.Equal(t, domain.ActionPlay, cmd.Request.Action)
	assert.True(t, cmd.Request.AchievedGoal)

	_, err = DecodeAction([]byte(`{"player_id":"p1","action":"feed"}`))
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = DecodeAction([]byte(`{"player_id":"p1","pet_id":"rex","action":"juggle"}`))
	assert.ErrorIs(t, err, domain.ErrInvalidAction)

	_, err = DecodeAction([]byte(`not json`))
	assert.Error(t, err)
}

func TestSessionHandler_AppliesInOrder(t *testing.T) {
	logger := testLogger()
	reg, err := service.NewRegistry(store.NewMemory(), events.NewBus(logger), service.Options{
		Clock: clock.NewFake(time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC)),
		Seed:  3,
	}, logger)
	require.NoError(t, err)

	s, err := reg.Session("p1")
	require.NoError(t, err)
	require.True(t, s.AdoptPet(context.Background(), "rex").Success)

	feed := ActionCommand{PlayerID: "p1", Request: service.ActionRequest{PetID: "rex", Action: domain.ActionFeed}}
	batch := []ActionCommand{feed, feed, feed, feed, feed,
		{PlayerID: "p1", Request: service.ActionRequest{PetID: "ghost", Action: domain.ActionChat}},
		{PlayerID: "", Request: service.ActionRequest{PetID: "rex", Action: domain.ActionChat}},
	}

	applied := NewSessionHandler(reg, logger).HandleActions(context.Background(), batch)
	assert.Equal(t, 4, applied)
	assert.Equal(t, 4, s.Points(context.Background()).Pets["rex"].InteractionCount)
}

func TestRewardProducer_ForwardsEvents(t *testing.T) {
	cfg := mocks.NewTestConfig()
	cfg.Producer.Return.Successes = true
	mp := mocks.NewAsyncProducer(t, cfg)
	mp.ExpectInputWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "pet-rewards" {
			return errors.New("wrong topic " + msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != "p1" {
			return errors.New("wrong key " + string(key))
		}
		data, _ := msg.Value.Encode()
		var evt struct {
			Kind    events.Kind `json:"kind"`
			Payload struct {
				MissionID string `json:"mission_id"`
			} `json:"payload"`
		}
		if err := json.Unmarshal(data, &evt); err != nil {
			return err
		}
		if evt.Kind != events.KindMissionCompleted || evt.Payload.MissionID != "daily_feed" {
			return errors.New("unexpected payload " + string(data))
		}
		return nil
	})

	p := newRewardProducer(mp, "pet-rewards", testLogger())
	bus := events.NewBus(testLogger())
	bus.Subscribe(p.Listener(), RewardKinds...)

	header := events.Header{PlayerID: "p1", Timestamp: time.Now()}
	bus.Publish(events.PointsAwarded{Header: header})
	bus.Publish(events.MissionCompleted{Header: header, MissionID: "daily_feed"})
	p.Close()

	sent, failed, dropped := p.Stats()
	assert.Equal(t, int64(1), sent)
	assert.Zero(t, failed)
	assert.Zero(t, dropped)
}
