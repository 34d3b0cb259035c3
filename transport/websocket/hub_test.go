package websocket

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/wricardo/mcp-training/hazardmaze/game/engine"
)

func newTestHub() *Hub {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return NewHub(logger)
}

func newTestClient(hub *Hub, userID string, buffer int) *Client {
	return &Client{
		hub:    hub,
		userID: userID,
		send:   make(chan []byte, buffer),
	}
}

// waitFor polls cond until it holds or the deadline passes
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestNewHub(t *testing.T) {
	hub := NewHub(nil)

	if hub.rooms == nil {
		t.Error("Hub rooms map is nil")
	}
	if hub.broadcast == nil || hub.register == nil || hub.unregister == nil {
		t.Error("Hub channels not initialized")
	}
	if cap(hub.broadcast) != engine.WebSocketBufferSize {
		t.Errorf("Expected buffered broadcast channel, got cap %d", cap(hub.broadcast))
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := newTestHub()
	client1 := newTestClient(hub, "alice", 1)
	client2 := newTestClient(hub, "alice", 1)

	hub.registerClient(client1)
	hub.registerClient(client2)
	if hub.ClientCount("alice") != 2 {
		t.Errorf("Expected 2 clients, got %d", hub.ClientCount("alice"))
	}

	hub.unregisterClient(client1)
	if hub.ClientCount("alice") != 1 || !hub.rooms["alice"][client2] {
		t.Error("Expected client2 to remain")
	}
	if _, ok := <-client1.send; ok {
		t.Error("Expected client1 send channel to be closed")
	}

	hub.unregisterClient(client2)
	if _, exists := hub.rooms["alice"]; exists {
		t.Error("Room should be cleaned up after last client left")
	}

	// Unregistering twice is a no-op
	hub.unregisterClient(client2)
}

func TestHubBroadcastMessage(t *testing.T) {
	hub := newTestHub()
	alice := newTestClient(hub, "alice", 4)
	bob := newTestClient(hub, "bob", 4)
	hub.registerClient(alice)
	hub.registerClient(bob)

	state := &engine.GameState{PlayerPos: engine.Position{X: 5, Y: 3}}
	hub.broadcastMessage(&Message{UserID: "alice", GameState: state, Event: EventStateUpdate})

	select {
	case data := <-alice.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.UserID != "alice" || message.Event != EventStateUpdate {
			t.Errorf("Unexpected message %+v", message)
		}
		if message.GameState.PlayerPos != (engine.Position{X: 5, Y: 3}) {
			t.Error("GameState not correctly transmitted")
		}
	default:
		t.Fatal("Expected a message for alice")
	}

	select {
	case <-bob.send:
		t.Error("Bob received alice's update")
	default:
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := newTestHub()
	slow := newTestClient(hub, "alice", 1)
	hub.registerClient(slow)

	hub.broadcastMessage(&Message{UserID: "alice", Event: "one"})
	hub.broadcastMessage(&Message{UserID: "alice", Event: "two"})

	if hub.ClientCount("alice") != 0 {
		t.Error("Expected slow client to be dropped")
	}
}

func TestHubRunBroadcasts(t *testing.T) {
	hub := newTestHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := newTestClient(hub, "alice", 4)
	hub.register <- client

	hub.BroadcastEvent("alice", EventGoalReached, map[string]int{"x": 1})

	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.Event != EventGoalReached {
			t.Errorf("Expected %s event, got %s", EventGoalReached, message.Event)
		}
	case <-time.After(time.Second):
		t.Fatal("No message received within timeout")
	}

	cancel()
	waitFor(t, func() bool { return hub.ClientCount("alice") == 0 })
}

func TestWebSocketRoundTrip(t *testing.T) {
	hub := newTestHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("user"))
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?user=alice"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	waitFor(t, func() bool { return hub.ClientCount("alice") == 1 })

	hub.BroadcastToUser("alice", &engine.GameState{PlayerPos: engine.Position{X: 10, Y: 15}, Deaths: 2})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}

	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	if message.UserID != "alice" || message.GameState.PlayerPos != (engine.Position{X: 10, Y: 15}) || message.GameState.Deaths != 2 {
		t.Errorf("Unexpected message %+v", message)
	}

	conn.Close()
	waitFor(t, func() bool { return hub.ClientCount("alice") == 0 })
}
