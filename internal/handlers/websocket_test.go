package handlers

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
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/carto/internal/models"
)

func httpHandler(handler *WebSocketHandler) http.Handler {
	return http.HandlerFunc(handler.HandleWebSocket)
}

func wsURL(serverURL string) string {
	return "ws" + strings.TrimPrefix(serverURL, "http")
}

func readMessage(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg WSMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestWebSocketHandler_SendsStatusOnConnect(t *testing.T) {
	handler := NewWebSocketHandler(arbor.NewLogger())
	srv := httptest.NewServer(httpHandler(handler))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv.URL), nil)
	require.NoError(t, err)
	defer conn.Close()

	msg := readMessage(t, conn)
	assert.Equal(t, "status", msg.Type)

	payload := msg.Payload.(map[string]interface{})
	assert.Equal(t, "carto", payload["service"])
	assert.Equal(t, "running", payload["status"])
	assert.NotEmpty(t, payload["serverInstanceId"])
}

func TestWebSocketHandler_RenderLayerBroadcasts(t *testing.T) {
	handler := NewWebSocketHandler(arbor.NewLogger())
	srv := httptest.NewServer(httpHandler(handler))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv.URL), nil)
	require.NoError(t, err)
	defer conn.Close()

	// Drain the initial status message
	readMessage(t, conn)

	collection := models.NewFeatureCollection()
	collection.Append(models.NewFeature(models.NewPoint(2.3522, 48.8566), map[string]any{
		"display_name": "Paris",
	}))
	handler.RenderLayer("places", collection)

	msg := readMessage(t, conn)
	assert.Equal(t, "map_layer", msg.Type)

	payload := msg.Payload.(map[string]interface{})
	assert.Equal(t, "places", payload["layer"])

	bounds := payload["bounds"].([]interface{})
	require.Len(t, bounds, 4)
	assert.InDelta(t, 2.3522, bounds[0].(float64), 1e-9)
	assert.InDelta(t, 48.8566, bounds[1].(float64), 1e-9)

	raw, err := json.Marshal(payload["collection"])
	require.NoError(t, err)
	var got models.FeatureCollection
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Len(t, got.Features, 1)
	assert.Equal(t, "Paris", got.Features[0].Properties["display_name"])
}

func TestWebSocketHandler_RenderErrorBroadcasts(t *testing.T) {
	handler := NewWebSocketHandler(arbor.NewLogger())
	srv := httptest.NewServer(httpHandler(handler))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv.URL), nil)
	require.NoError(t, err)
	defer conn.Close()

	// Drain the initial status message
	readMessage(t, conn)

	handler.RenderError("Nominatim error (HTTP 503)")

	msg := readMessage(t, conn)
	assert.Equal(t, "chat_error", msg.Type)

	payload := msg.Payload.(map[string]interface{})
	assert.Equal(t, "Nominatim error (HTTP 503)", payload["message"])
}

func TestWebSocketHandler_ClientCountTracksConnections(t *testing.T) {
	handler := NewWebSocketHandler(arbor.NewLogger())
	srv := httptest.NewServer(httpHandler(handler))
	defer srv.Close()

	assert.Equal(t, 0, handler.ClientCount())

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv.URL), nil)
	require.NoError(t, err)

	// Drain the status message so the handler has finished registration
	readMessage(t, conn)
	assert.Equal(t, 1, handler.ClientCount())

	conn.Close()
	require.Eventually(t, func() bool {
		return handler.ClientCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocketHandler_RenderLayerWithoutClients(t *testing.T) {
	handler := NewWebSocketHandler(arbor.NewLogger())

	// Broadcasting into an empty hub must not panic
	handler.RenderLayer("places", models.NewFeatureCollection())
	assert.Equal(t, 0, handler.ClientCount())
}
