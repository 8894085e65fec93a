package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatroomgo/internal/domain"
	"chatroomgo/internal/repository/inmemory"
	"chatroomgo/internal/services/room"
	"chatroomgo/internal/ws"
)

// lockedBuffer makes the output writer safe for the read loop goroutine.
type lockedBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *lockedBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.String()
}

func newChatServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := inmemory.NewRoomRepository(
		domain.NewRoom(domain.NewRoomID(), domain.Now(), 10, 100))
	hub := ws.NewHub()
	svc := room.NewRoomService(repo, hub)
	wsSrv := ws.NewWsServer(hub, svc, 100, 100)

	engine := gin.New()
	engine.GET("/ws", wsSrv.Handle)

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestRunStopsOnDuplicateHandle(t *testing.T) {
	srv := newChatServer(t)

	// Occupy the handle with a raw connection.
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv)+"?client_id=alice", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	c := New(wsURL(srv), "alice", strings.NewReader(""), &lockedBuffer{})
	c.retryInterval = time.Millisecond

	err = c.Run(context.Background())
	assert.ErrorIs(t, err, ErrDuplicateClientID)
}

func TestRunGivesUpAfterBoundedRetries(t *testing.T) {
	// Nothing listens here; every dial fails as a transport error.
	srv := newChatServer(t)
	url := wsURL(srv)
	srv.Close()

	c := New(url, "alice", strings.NewReader(""), &lockedBuffer{})
	c.retryInterval = time.Millisecond

	err := c.Run(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateClientID)
	assert.Contains(t, err.Error(), "giving up after 5 attempts")
}

func TestRunSendsChatAndEndsOnInputEOF(t *testing.T) {
	srv := newChatServer(t)

	// A raw peer observes what the client broadcasts.
	peer, _, err := websocket.DefaultDialer.Dial(wsURL(srv)+"?client_id=dave", nil)
	require.NoError(t, err)
	t.Cleanup(func() { peer.Close() })
	readPeerFrame := func() map[string]any {
		require.NoError(t, peer.SetReadDeadline(time.Now().Add(3*time.Second)))
		_, raw, err := peer.ReadMessage()
		require.NoError(t, err)
		var frame map[string]any
		require.NoError(t, json.Unmarshal(raw, &frame))
		return frame
	}
	require.Equal(t, ws.TypeRoomConnected, readPeerFrame()["type"])

	out := &lockedBuffer{}
	c := New(wsURL(srv), "carol", strings.NewReader("hello\n"), out)

	require.NoError(t, c.Run(context.Background()))

	joined := readPeerFrame()
	require.Equal(t, ws.TypeParticipantJoined, joined["type"])
	assert.Equal(t, "carol", joined["client_id"])

	chat := readPeerFrame()
	require.Equal(t, ws.TypeChat, chat["type"])
	assert.Equal(t, "carol", chat["client_id"])
	assert.Equal(t, "hello", chat["content"])

	assert.Contains(t, out.String(), "You are 'carol'")
	assert.Contains(t, out.String(), "sent at")
}

func TestRenderDispatch(t *testing.T) {
	c := New("ws://unused", "alice", strings.NewReader(""), &lockedBuffer{})

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "chat frame",
			raw:  `{"type":"chat","client_id":"bob","content":"hi","timestamp":1672498800000}`,
			want: "@bob: hi",
		},
		{
			name: "room connected",
			raw:  `{"type":"room_connected","participants":[{"client_id":"alice","connected_at":1672498800000}]}`,
			want: "alice (me)",
		},
		{
			name: "participant joined",
			raw:  `{"type":"participant_joined","client_id":"bob","connected_at":1672498800000}`,
			want: "+ bob entered at",
		},
		{
			name: "participant left",
			raw:  `{"type":"participant_left","client_id":"bob","disconnected_at":1672498800000}`,
			want: "- bob left at",
		},
		{
			name: "error frame",
			raw:  `{"type":"error","error":"message history full"}`,
			want: "! server: message history full",
		},
		{
			name: "unknown type falls back to raw",
			raw:  `{"type":"mystery"}`,
			want: `Received: {"type":"mystery"}`,
		},
		{
			name: "invalid json falls back to raw",
			raw:  `not json`,
			want: "Received: not json",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, c.render([]byte(tt.raw)), tt.want)
		})
	}
}
