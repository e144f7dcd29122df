package api

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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/We-are-incomplete/war-record-only-read/internal/analysis"
	"github.com/We-are-incomplete/war-record-only-read/internal/events"
	"github.com/We-are-incomplete/war-record-only-read/internal/logging"
	"github.com/We-are-incomplete/war-record-only-read/internal/metrics"
	"github.com/We-are-incomplete/war-record-only-read/internal/snapshot"
	"github.com/We-are-incomplete/war-record-only-read/internal/storage"
	"github.com/We-are-incomplete/war-record-only-read/internal/storage/models"
)

const testPassword = "open sesame"

func testRecords() []models.MatchRecord {
	return []models.MatchRecord{
		{Season: "S1", MyDeck: "Dragon", OpponentDeck: "Witch", FirstSecond: models.SeatFirst, Result: models.ResultWin},
		{Season: "S1", MyDeck: "Witch", OpponentDeck: "Dragon", FirstSecond: models.SeatSecond, Result: models.ResultLoss},
	}
}

func newTestServer(t *testing.T, cfg *Config) (*Server, *metrics.Metrics) {
	t.Helper()
	holder := snapshot.NewHolder()
	holder.Publish(testRecords(), "test")
	m := metrics.New()

	server := NewServer(cfg, Deps{
		Analyzer: analysis.NewService(holder, m),
		Store:    storage.NewService(storage.OpenTestDB(t)),
		Metrics:  m,
		Logger:   logging.NewNop(),
	})
	return server, m
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func do(t *testing.T, h http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 8080, cfg.Port)
	assert.Empty(t, cfg.PasswordHash)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
}

func TestNewServer_NilConfig(t *testing.T) {
	server, _ := newTestServer(t, nil)
	assert.Equal(t, 8080, server.Port())
	assert.NotNil(t, server.WebSocketHub())
}

func TestServer_Routes(t *testing.T) {
	server, _ := newTestServer(t, &Config{})
	h := server.Handler()

	tests := []struct {
		method string
		path   string
		body   string
		code   int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodGet, "/api/v1/options", "", http.StatusOK},
		{http.MethodGet, "/api/v1/status", "", http.StatusOK},
		{http.MethodPost, "/api/v1/archetypes", `{}`, http.StatusOK},
		{http.MethodPost, "/api/v1/archetypes/types", `{"archetype":"Dragon"}`, http.StatusOK},
		{http.MethodPost, "/api/v1/overview", `{"season":"S1"}`, http.StatusOK},
		{http.MethodPost, "/api/v1/focus", `{"archetype":"Dragon"}`, http.StatusOK},
		{http.MethodPost, "/api/v1/records", "", http.StatusOK},
		{http.MethodPost, "/api/v1/export/overview", `{"format":"csv"}`, http.StatusOK},
		{http.MethodPost, "/api/v1/charts/overview", `{}`, http.StatusOK},
		{http.MethodPost, "/api/v1/charts/focus", `{"archetype":"Witch"}`, http.StatusOK},
		{http.MethodGet, "/api/v1/players?q=x", "", http.StatusOK},
		{http.MethodGet, "/api/v1/overview", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/v1/nothing", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := do(t, h, tt.method, tt.path, tt.body, nil)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
		})
	}
}

func TestServer_JSONContentType(t *testing.T) {
	server, _ := newTestServer(t, &Config{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/overview", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/overview", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	w = httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_PasswordAuth(t *testing.T) {
	server, _ := newTestServer(t, &Config{PasswordHash: hashFor(t, testPassword)})
	h := server.Handler()

	// Health and metrics stay open.
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/metrics", "", nil).Code)

	w := do(t, h, http.MethodGet, "/api/v1/options", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Header().Get("WWW-Authenticate"), "Basic")

	w = do(t, h, http.MethodGet, "/api/v1/options", "", map[string]string{passwordHeader: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/options", "", map[string]string{passwordHeader: testPassword})
	assert.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/options", nil)
	req.SetBasicAuth("anyone", testPassword)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPasswordAuth_CachesVerifiedPasswords(t *testing.T) {
	auth := newPasswordAuth(hashFor(t, testPassword))

	assert.False(t, auth.check(""))
	assert.False(t, auth.check("nope"))
	assert.True(t, auth.check(testPassword))

	// A cached digest still only accepts the same password.
	assert.True(t, auth.check(testPassword))
	assert.False(t, auth.check(testPassword+" "))
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword(testPassword)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(testPassword)))

	_, err = HashPassword("")
	assert.Error(t, err)
}

func TestServer_RateLimit(t *testing.T) {
	server, _ := newTestServer(t, &Config{RateLimit: 1, RateBurst: 2})
	h := server.Handler()

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, do(t, h, http.MethodGet, "/health", "", nil).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiter_PerClient(t *testing.T) {
	rl := newRateLimiter(1, 1)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allow("a"))
	assert.False(t, rl.allow("a"))
	assert.True(t, rl.allow("b"))

	now = now.Add(time.Second)
	assert.True(t, rl.allow("a"))

	// Idle clients are forgotten.
	now = now.Add(idleClient + 2*time.Minute)
	rl.allow("c")
	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Len(t, rl.visitors, 1)
}

func TestServer_HTTPMetricsUseRoutePattern(t *testing.T) {
	server, _ := newTestServer(t, &Config{})
	h := server.Handler()

	do(t, h, http.MethodPost, "/api/v1/export/records", `{}`, nil)
	do(t, h, http.MethodPost, "/api/v1/export/memos", `{}`, nil)

	body := do(t, h, http.MethodGet, "/metrics", "", nil).Body.String()
	assert.Contains(t, body, `war_record_http_requests_total{code="200",route="/api/v1/export/{table}"} 1`)
	assert.Contains(t, body, `war_record_http_requests_total{code="400",route="/api/v1/export/{table}"} 1`)
	assert.Contains(t, body, `war_record_queries_total{kind="records"} 1`)
}

func TestServer_StartBroadcastShutdown(t *testing.T) {
	server, _ := newTestServer(t, &Config{Port: 0})
	require.NoError(t, server.Start())

	addr := server.Addr()
	require.NotEmpty(t, addr)

	resp, err := http.Get("http://" + addr + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return server.WebSocketHub().ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	type message struct {
		Type string                      `json:"type"`
		Data events.RecordsReloadedEvent `json:"data"`
	}
	read := func() message {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		var m message
		require.NoError(t, json.Unmarshal(msg, &m))
		return m
	}

	// New clients first learn which snapshot is in service.
	greeting := read()
	assert.Equal(t, events.RecordsCurrent, greeting.Type)
	assert.Equal(t, uint64(1), greeting.Data.Version)
	assert.Equal(t, 2, greeting.Data.Records)

	dispatcher := events.NewDispatcher(logging.NewNop())
	dispatcher.Register(server.NewWebSocketObserver())
	dispatcher.Dispatch(events.NewEvent(context.Background(), events.RecordsReloaded, events.RecordsReloadedEvent{Version: 2, Records: 2}))

	reloaded := read()
	assert.Equal(t, events.RecordsReloaded, reloaded.Type)
	assert.Equal(t, uint64(2), reloaded.Data.Version)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(ctx))
}
