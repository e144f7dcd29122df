package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/We-are-incomplete/war-record-only-read/internal/logging"
)

func newTestHub(t *testing.T, origins ...string) *Hub {
	t.Helper()
	hub := NewHub(logging.NewNop(), origins...)
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	return conn
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Expected %d clients, got %d", want, hub.ClientCount())
}

func TestNewHub(t *testing.T) {
	hub := NewHub(nil)

	if hub.clients == nil {
		t.Error("Hub clients map is nil")
	}
	if hub.logger == nil {
		t.Error("Hub logger is nil")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("Expected 0 clients, got %d", hub.ClientCount())
	}
}

func TestHub_BroadcastWithoutClients(t *testing.T) {
	hub := newTestHub(t)

	if !hub.BroadcastEvent(Event{Type: "records:reloaded"}) {
		t.Error("Expected broadcast to be accepted by a running hub")
	}
}

func TestHub_StopIsIdempotent(t *testing.T) {
	hub := NewHub(logging.NewNop())
	done := make(chan struct{})
	go func() {
		hub.Run()
		close(done)
	}()

	hub.Stop()
	hub.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}

	if !hub.IsStopped() {
		t.Error("Expected hub to report stopped")
	}
	if hub.BroadcastEvent(Event{Type: "x"}) {
		t.Error("Expected broadcast on a stopped hub to fail")
	}
}

func TestHub_MultipleClients(t *testing.T) {
	hub := newTestHub(t)
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	defer server.Close()

	var conns []*websocket.Conn
	for i := 0; i < 3; i++ {
		conns = append(conns, dial(t, server))
	}
	defer func() {
		for _, conn := range conns {
			conn.Close()
		}
	}()

	waitForClients(t, hub, 3)

	hub.BroadcastEvent(Event{
		Type: "records:reloaded",
		Data: map[string]int{"version": 2},
	})

	for i, conn := range conns {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, message, err := conn.ReadMessage()
		if err != nil {
			t.Errorf("Client %d failed to read message: %v", i, err)
			continue
		}

		var received Event
		if err := json.Unmarshal(message, &received); err != nil {
			t.Errorf("Client %d failed to unmarshal message: %v", i, err)
			continue
		}
		if received.Type != "records:reloaded" {
			t.Errorf("Client %d expected type records:reloaded, got %s", i, received.Type)
		}
	}
}

func TestHub_Greeting(t *testing.T) {
	hub := NewHub(logging.NewNop())
	var calls atomic.Int32
	hub.SetGreeting(func() Event {
		return Event{Type: "records:current", Data: map[string]int{"version": int(calls.Add(1))}}
	})
	go hub.Run()
	t.Cleanup(hub.Stop)

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	defer server.Close()

	for want := 1; want <= 2; want++ {
		conn := dial(t, server)
		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, message, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("Failed to read greeting: %v", err)
		}
		var received struct {
			Type string         `json:"type"`
			Data map[string]int `json:"data"`
		}
		if err := json.Unmarshal(message, &received); err != nil {
			t.Fatalf("Failed to unmarshal greeting: %v", err)
		}
		if received.Type != "records:current" || received.Data["version"] != want {
			t.Errorf("greeting = %+v, want version %d", received, want)
		}
		conn.Close()
	}
}

func TestHub_GreetingFollowsRegistration(t *testing.T) {
	hub := NewHub(logging.NewNop())
	var version atomic.Int32
	version.Store(1)
	registered := make(chan int, 1)
	hub.SetGreeting(func() Event {
		registered <- hub.ClientCount()
		return Event{Type: "records:current", Data: map[string]int{"version": int(version.Load())}}
	})
	go hub.Run()
	t.Cleanup(hub.Stop)

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	defer server.Close()

	conn := dial(t, server)
	defer conn.Close()

	select {
	case n := <-registered:
		if n != 1 {
			t.Errorf("greeting built with %d registered clients, want 1", n)
		}
	case <-time.After(time.Second):
		t.Fatal("greeting was never built")
	}

	version.Store(2)
	if !hub.BroadcastEvent(Event{Type: "records:reloaded", Data: map[string]int{"version": 2}}) {
		t.Fatal("BroadcastEvent returned false")
	}

	for _, want := range []string{"records:current", "records:reloaded"} {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, message, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("Failed to read %s: %v", want, err)
		}
		var received Event
		if err := json.Unmarshal(message, &received); err != nil {
			t.Fatalf("Failed to unmarshal: %v", err)
		}
		if received.Type != want {
			t.Errorf("message type = %q, want %q", received.Type, want)
		}
	}
}

func TestHub_ClientDisconnect(t *testing.T) {
	hub := newTestHub(t)
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	defer server.Close()

	conn := dial(t, server)
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}

func TestOriginChecker(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"no origin header", []string{"https://a.example"}, "", true},
		{"no restriction", nil, "https://evil.example", true},
		{"wildcard", []string{"*"}, "https://b.example", true},
		{"listed", []string{"https://a.example"}, "https://A.example", true},
		{"unlisted", []string{"https://a.example"}, "https://b.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if got := originChecker(tt.allowed)(r); got != tt.want {
				t.Errorf("originChecker() = %v, want %v", got, tt.want)
			}
		})
	}
}
