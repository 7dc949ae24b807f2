package status

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readStatus(t *testing.T, conn *websocket.Conn) Status {
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var s Status
	require.NoError(t, json.Unmarshal(data, &s))
	return s
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	hub.Info("ready")
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	// new clients get the last message first
	s := readStatus(t, conn)
	assert.Equal(t, "ready", s.Message)
	assert.Equal(t, INFO, s.Type)

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 5*time.Second, 10*time.Millisecond)
	hub.MergeProgress("man.json")(3, 4)
	s = readStatus(t, conn)
	assert.Equal(t, PROGRESS, s.Type)
	assert.Equal(t, float32(0.75), s.Progress)
	assert.Equal(t, "man.json: bone 3 of 4", s.Message)
}

func TestHubDropsClosedClients(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 5*time.Second, 10*time.Millisecond)
	conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 5*time.Second, 10*time.Millisecond)

	hub.Error("after close")
}

func TestStatusSanitizesProgress(t *testing.T) {
	hub := NewHub()
	hub.MergeProgress("x")(0, 0)
	var s Status
	require.NoError(t, json.Unmarshal(hub.lastMessage, &s))
	assert.Equal(t, float32(0), s.Progress)
}
