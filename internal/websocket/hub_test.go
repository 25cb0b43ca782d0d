package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pet-progression/internal/domain"
	"github.com/pet-progression/internal/events"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(testLogger())
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub
}

func TestHub_RoutesEventsToPlayerSubscribers(t *testing.T) {
	hub := startHub(t)

	alice := &Client{id: "alice", hub: hub, send: make(chan []byte, 8), logger: testLogger()}
	bob := &Client{id: "bob", hub: hub, send: make(chan []byte, 8), logger: testLogger()}
	hub.Register(alice)
	hub.Register(bob)
	hub.Subscribe(alice, "p1")
	hub.Subscribe(bob, "p2")
	require.Eventually(t, func() bool {
		return hub.GetSubscriberCount("p1") == 1 && hub.GetSubscriberCount("p2") == 1
	}, time.Second, 5*time.Millisecond)

	hub.Listener()(events.MissionCompleted{
		Header:    events.Header{PlayerID: "p1", Timestamp: time.Now()},
		MissionID: "daily_feed",
	})

	select {
	case data := <-alice.send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, MessageTypeEvent, msg.Type)
		assert.Equal(t, events.KindMissionCompleted, msg.Kind)
		assert.Equal(t, "p1", msg.PlayerID)
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive event")
	}

	select {
	case <-bob.send:
		t.Fatal("event leaked to another player's subscriber")
	case <-time.After(50 * time.Millisecond):
	}

	assert.Equal(t, []string{"p1", "p2"}, hub.SubscribedPlayers())

	hub.Unregister(alice)
	require.Eventually(t, func() bool { return hub.GetSubscriberCount("p1") == 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, hub.GetTotalConnections())
}

func TestServeWs_SubscribesFromQueryAndPushesStats(t *testing.T) {
	hub := startHub(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, testLogger(), w, r)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?player_id=p1"
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.GetSubscriberCount("p1") == 1 }, time.Second, 5*time.Millisecond)

	hub.BroadcastStats("p1", []domain.PetStats{{PetID: "rex", Mood: 5}})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type string       `json:"type"`
		Data StatsRefresh `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, MessageTypeStatsRefreshed, msg.Type)
	require.Len(t, msg.Data.Pets, 1)
	assert.Equal(t, "rex", msg.Data.Pets[0].PetID)
}

func TestHub_OnSubscribeHook(t *testing.T) {
	hub := startHub(t)
	seen := make(chan string, 1)
	hub.OnSubscribe(func(playerID string) { seen <- playerID })

	c := &Client{id: "c", hub: hub, send: make(chan []byte, 8), logger: testLogger()}
	hub.Register(c)
	hub.Subscribe(c, "p9")

	select {
	case id := <-seen:
		assert.Equal(t, "p9", id)
	case <-time.After(time.Second):
		t.Fatal("subscribe hook not called")
	}
}

func TestClient_HandleMessage(t *testing.T) {
	hub := startHub(t)
	c := &Client{id: "c", hub: hub, send: make(chan []byte, 8), logger: testLogger()}
	hub.Register(c)

	c.handleMessage(ClientMessage{Type: MessageTypeSubscribe})
	var msg Message
	require.NoError(t, json.Unmarshal(<-c.send, &msg))
	assert.Equal(t, MessageTypeError, msg.Type)

	c.handleMessage(ClientMessage{Type: MessageTypeSubscribe, PlayerID: "p1"})
	require.NoError(t, json.Unmarshal(<-c.send, &msg))
	assert.Equal(t, "subscribed", msg.Type)
	require.Eventually(t, func() bool { return hub.GetSubscriberCount("p1") == 1 }, time.Second, 5*time.Millisecond)

	c.handleMessage(ClientMessage{Type: MessageTypePing})
	require.NoError(t, json.Unmarshal(<-c.send, &msg))
	assert.Equal(t, MessageTypePong, msg.Type)
}
