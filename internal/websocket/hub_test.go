package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/internal/pipeline"
)

func startTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(hub, w, r, nil)
	}))
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var env Envelope
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(payload, &env))
	return env
}

func TestHubBroadcastsToConnectedClients(t *testing.T) {
	hub := NewHub(nil)
	hub.Start()
	defer hub.Stop()

	server := startTestServer(t, hub)
	conn := dial(t, server)

	env := readEnvelope(t, conn)
	assert.Equal(t, TypeConnection, env.Type)

	hub.Broadcast("test", map[string]string{"hello": "world"})

	env = readEnvelope(t, conn)
	assert.Equal(t, "test", env.Type)
	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "world", data["hello"])
}

func TestHubNotifyCarriesPipelineEvent(t *testing.T) {
	hub := NewHub(nil)
	hub.Start()
	defer hub.Stop()

	server := startTestServer(t, hub)
	conn := dial(t, server)
	readEnvelope(t, conn) // connection message

	hub.Notify(pipeline.Event{
		RunID:    "run-1",
		StepID:   "clean",
		Status:   string(pipeline.StepStatusActive),
		Progress: 0,
	})

	env := readEnvelope(t, conn)
	assert.Equal(t, TypePipelineProgress, env.Type)
	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "run-1", data["run_id"])
	assert.Equal(t, "clean", data["step_id"])
}

func TestHubClientCountTracksDisconnects(t *testing.T) {
	hub := NewHub(nil)
	hub.Start()
	defer hub.Stop()

	server := startTestServer(t, hub)
	conn := dial(t, server)
	readEnvelope(t, conn)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 },
		2*time.Second, 10*time.Millisecond)
}

func TestHubStopIsIdempotent(t *testing.T) {
	hub := NewHub(nil)
	hub.Start()
	hub.Stop()
	hub.Stop()
}
