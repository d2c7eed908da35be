package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coocood/freecache"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/infigaming-com/gold-monitor/cache"
	"github.com/infigaming-com/gold-monitor/history"
	"github.com/infigaming-com/gold-monitor/hub"
	"github.com/infigaming-com/gold-monitor/rate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEnv struct {
	store    *history.Store
	registry *hub.Registry
	latest   *cache.LatestReading
	server   *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	lg := zap.NewNop()
	store := history.NewStore()
	registry := hub.NewRegistry(store.Snapshot, hub.WithLogger(lg))
	latest := cache.NewLatestReading(cache.NewFreeCache(freecache.NewCache(1024*1024)), "", 0)

	handler := NewHandler(store, registry, WithHandlerLogger(lg), WithLatest(latest))
	s := NewServer(WithLogger(lg), WithMode(gin.TestMode), WithRoutes(handler.Register))
	server := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		registry.Close()
		server.Close()
	})
	return &testEnv{store: store, registry: registry, latest: latest, server: server}
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(e.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, b
}

func (e *testEnv) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readHistory(t *testing.T, conn *websocket.Conn) []hub.Record {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg hub.HistoryMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg.History
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get(t, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(body), "MONITORING Harga Emas Treasury")
	assert.Contains(t, string(body), "/ws")
}

func TestWebsocketSession(t *testing.T) {
	env := newTestEnv(t)
	env.store.Append(rate.Reading{BuyRate: 1953000, SellRate: 1890000, Trend: rate.TrendFlat, UpdatedAt: "t1"})

	conn := env.dial(t)

	snapshot := readHistory(t, conn)
	require.Len(t, snapshot, 1)
	assert.Equal(t, "1.953.000", snapshot[0].BuyingRate)
	assert.Equal(t, "t1", snapshot[0].CreatedAt)

	require.Eventually(t, func() bool { return env.registry.Len() == 1 }, time.Second, 10*time.Millisecond)

	env.store.Append(rate.Reading{BuyRate: 1955000, SellRate: 1892000, Trend: rate.TrendUp, UpdatedAt: "t2"})
	broadcaster := hub.NewBroadcaster(zap.NewNop(), env.registry)
	require.NoError(t, broadcaster.Publish(context.Background(), env.store.Snapshot()))

	update := readHistory(t, conn)
	require.Len(t, update, 2)
	assert.Equal(t, "🚀 Naik", update[1].Status)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return env.registry.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestWebsocketRegistryClosed(t *testing.T) {
	env := newTestEnv(t)
	env.registry.Close()

	conn := env.dial(t)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestGetHistory(t *testing.T) {
	env := newTestEnv(t)
	env.store.Append(rate.Reading{BuyRate: 100, SellRate: 90, Trend: rate.TrendFlat, UpdatedAt: "t1"})
	env.store.Append(rate.Reading{BuyRate: 95, SellRate: 85, Trend: rate.TrendDown, UpdatedAt: "t2"})

	resp, body := env.get(t, "/api/history")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var msg hub.HistoryMessage
	require.NoError(t, json.Unmarshal(body, &msg))
	require.Len(t, msg.History, 2)
	assert.Equal(t, "t1", msg.History[0].CreatedAt)
	assert.Equal(t, "down", msg.History[1].Trend)
}

func TestGetLatest(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get(t, "/api/latest")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), `"code":14000`)

	require.NoError(t, env.latest.Put(context.Background(), rate.Reading{BuyRate: 1953000, SellRate: 1890000, Trend: rate.TrendUp, UpdatedAt: "t9"}))

	resp, body = env.get(t, "/api/latest")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var record hub.Record
	require.NoError(t, json.Unmarshal(body, &record))
	assert.Equal(t, hub.Record{
		BuyingRate:  "1.953.000",
		SellingRate: "1.890.000",
		Status:      "🚀 Naik",
		Trend:       "up",
		CreatedAt:   "t9",
	}, record)
}

func TestGetLatestWithoutCache(t *testing.T) {
	store := history.NewStore()
	handler := NewHandler(store, hub.NewRegistry(store.Snapshot), WithHandlerLogger(zap.NewNop()))
	s := NewServer(WithLogger(zap.NewNop()), WithMode(gin.TestMode), WithRoutes(handler.Register))

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/latest", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExports(t *testing.T) {
	env := newTestEnv(t)
	env.store.Append(rate.Reading{BuyRate: 1953000, SellRate: 1890000, Trend: rate.TrendFlat, UpdatedAt: "t1"})
	env.store.Append(rate.Reading{BuyRate: 1955000, SellRate: 1892000, Trend: rate.TrendUp, UpdatedAt: "t2"})

	tests := []struct {
		path        string
		contentType string
		check       func(t *testing.T, body []byte)
	}{
		{
			path:        "/api/history.csv",
			contentType: "text/csv",
			check: func(t *testing.T, body []byte) {
				lines := strings.Split(strings.TrimSpace(string(body)), "\n")
				require.Len(t, lines, 3)
				assert.Equal(t, "Waktu,Harga Beli,Harga Jual,Status", lines[0])
				assert.True(t, strings.HasPrefix(lines[1], "t2,"))
			},
		},
		{
			path:        "/api/history.xlsx",
			contentType: "spreadsheetml",
			check: func(t *testing.T, body []byte) {
				assert.True(t, strings.HasPrefix(string(body), "PK"))
			},
		},
		{
			path:        "/api/history.pdf",
			contentType: "application/pdf",
			check: func(t *testing.T, body []byte) {
				assert.True(t, strings.HasPrefix(string(body), "%PDF-"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := env.get(t, tt.path)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, resp.Header.Get("Content-Type"), tt.contentType)
			assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
			tt.check(t, body)
		})
	}
}

func TestWebsocketAllowedOrigins(t *testing.T) {
	store := history.NewStore()
	registry := hub.NewRegistry(store.Snapshot, hub.WithLogger(zap.NewNop()))
	handler := NewHandler(store, registry,
		WithHandlerLogger(zap.NewNop()),
		WithAllowedOrigins("https://emas.example.com"),
	)
	s := NewServer(WithLogger(zap.NewNop()), WithMode(gin.TestMode), WithRoutes(handler.Register))
	server := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		registry.Close()
		server.Close()
	})
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"

	tests := []struct {
		name    string
		origin  string
		wantErr bool
	}{
		{name: "allowed origin", origin: "https://emas.example.com"},
		{name: "no origin header"},
		{name: "foreign origin", origin: "https://evil.example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.origin != "" {
				header.Set("Origin", tt.origin)
			}
			conn, resp, err := websocket.DefaultDialer.Dial(url, header)
			if tt.wantErr {
				require.Error(t, err)
				require.NotNil(t, resp)
				assert.Equal(t, http.StatusForbidden, resp.StatusCode)
				return
			}
			require.NoError(t, err)
			defer conn.Close()
			assert.Empty(t, readHistory(t, conn))
		})
	}
}

func TestHandlerOptions(t *testing.T) {
	store := history.NewStore()
	registry := hub.NewRegistry(store.Snapshot)

	assert.Equal(t, "Harga Emas Treasury", NewHandler(store, registry).reportTitle)
	assert.Equal(t, "Riwayat Emas", NewHandler(store, registry, WithReportTitle("Riwayat Emas")).reportTitle)
	assert.Equal(t, "Harga Emas Treasury", NewHandler(store, registry, WithReportTitle("")).reportTitle)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")
	assert.True(t, NewHandler(store, registry, WithAllowedOrigins()).upgrader.CheckOrigin(req))
}
