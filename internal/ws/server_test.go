package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatroomgo/internal/domain"
	"chatroomgo/internal/repository/inmemory"
	"chatroomgo/internal/services/room"
)

func newTestServer(t *testing.T, participantCap int) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := inmemory.NewRoomRepository(
		domain.NewRoom(domain.NewRoomID(), domain.Now(), participantCap, 100))
	hub := NewHub()
	svc := room.NewRoomService(repo, hub)
	wsSrv := NewWsServer(hub, svc, 100, 100)

	engine := gin.New()
	engine.GET("/ws", wsSrv.Handle)

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, clientID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?client_id=" + clientID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var frame map[string]any
	require.NoError(t, json.Unmarshal(raw, &frame))
	return frame
}

func TestSessionLifecycle(t *testing.T) {
	srv := newTestServer(t, 10)

	alice := dial(t, srv, "alice")
	snapshot := readFrame(t, alice)
	require.Equal(t, TypeRoomConnected, snapshot["type"])
	require.Len(t, snapshot["participants"], 1)

	bob := dial(t, srv, "bob")
	bobSnapshot := readFrame(t, bob)
	require.Equal(t, TypeRoomConnected, bobSnapshot["type"])
	participants := bobSnapshot["participants"].([]any)
	require.Len(t, participants, 2)
	// Snapshot is sorted by handle.
	assert.Equal(t, "alice", participants[0].(map[string]any)["client_id"])
	assert.Equal(t, "bob", participants[1].(map[string]any)["client_id"])

	joined := readFrame(t, alice)
	require.Equal(t, TypeParticipantJoined, joined["type"])
	assert.Equal(t, "bob", joined["client_id"])

	// Bob chats; alice receives the relay, bob does not hear himself.
	require.NoError(t, bob.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"chat","client_id":"bob","content":"hi alice","timestamp":1}`)))
	chat := readFrame(t, alice)
	require.Equal(t, TypeChat, chat["type"])
	assert.Equal(t, "bob", chat["client_id"])
	assert.Equal(t, "hi alice", chat["content"])

	// Bob leaves; alice gets the leave notice.
	require.NoError(t, bob.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	left := readFrame(t, alice)
	require.Equal(t, TypeParticipantLeft, left["type"])
	assert.Equal(t, "bob", left["client_id"])
}

func TestAdmissionRejectsDuplicateHandle(t *testing.T) {
	srv := newTestServer(t, 10)

	alice := dial(t, srv, "alice")
	readFrame(t, alice) // room_connected

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?client_id=alice"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAdmissionRejectsWhenRoomFull(t *testing.T) {
	srv := newTestServer(t, 1)

	alice := dial(t, srv, "alice")
	readFrame(t, alice)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?client_id=bob"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestAdmissionRejectsInvalidHandle(t *testing.T) {
	srv := newTestServer(t, 10)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?client_id="
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPlainTextIsRelayedAsUnknownSender(t *testing.T) {
	srv := newTestServer(t, 10)

	alice := dial(t, srv, "alice")
	readFrame(t, alice)
	bob := dial(t, srv, "bob")
	readFrame(t, bob)
	readFrame(t, alice) // bob joined

	require.NoError(t, bob.WriteMessage(websocket.TextMessage, []byte("not json at all")))

	chat := readFrame(t, alice)
	require.Equal(t, TypeChat, chat["type"])
	assert.Equal(t, "unknown", chat["client_id"])
	assert.Equal(t, "not json at all", chat["content"])
}
