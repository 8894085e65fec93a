package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"chatroomgo/internal/domain"
	"chatroomgo/internal/services/room"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10 // must be < pongWait
	maxMessageSize = 4096
	sendBuffer     = 256

	dispatchTimeout = 2 * time.Second
	teardownTimeout = 5 * time.Second
)

// session drives one admitted connection: snapshot + join notice, then the
// two pumps, then a single teardown. Whichever pump stops first cancels the
// other; the counterpart is aborted, not drained.
type session struct {
	clientID    domain.ClientID
	connectedAt domain.Timestamp
	conn        *clientConn
	recv        domain.PusherChannel
	svc         room.IRoomService
	pusher      domain.MessagePusher
	limiter     *rate.Limiter

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func newSession(clientID domain.ClientID, connectedAt domain.Timestamp, rawConn *websocket.Conn, recv domain.PusherChannel, svc room.IRoomService, pusher domain.MessagePusher, limiter *rate.Limiter) *session {
	ctx, cancel := context.WithCancel(context.Background())
	return &session{
		clientID:    clientID,
		connectedAt: connectedAt,
		conn:        &clientConn{rawConn: rawConn},
		recv:        recv,
		svc:         svc,
		pusher:      pusher,
		limiter:     limiter,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// run blocks until the inbound pump stops.
func (s *session) run() {
	// The joining client must see the snapshot before anything else.
	// Broadcasts addressed to this client may already be queued on its
	// delivery channel (it is registered during Connect), so the
	// snapshot is written straight to the socket before the writer pump
	// starts draining, making it frame #1 unconditionally.
	participants := s.svc.ParticipantList(s.ctx)
	infos := make([]ParticipantInfo, 0, len(participants))
	for _, p := range participants {
		infos = append(infos, ParticipantInfo{
			ClientID:    p.ID.String(),
			ConnectedAt: p.ConnectedAt.Millis(),
		})
	}
	snapshot, err := json.Marshal(RoomConnectedFrame{Type: TypeRoomConnected, Participants: infos})
	if err != nil {
		zap.L().Error("ws.snapshot_encode", zap.Error(err))
		s.teardown()
		return
	}
	if err := s.conn.write(websocket.TextMessage, snapshot); err != nil {
		zap.L().Error("ws.snapshot_write", zap.Error(err))
		s.teardown()
		return
	}

	joined, _ := json.Marshal(ParticipantJoinedFrame{
		Type:        TypeParticipantJoined,
		ClientID:    s.clientID.String(),
		ConnectedAt: s.connectedAt.Millis(),
	})
	if err := s.svc.NotifyJoined(s.ctx, s.clientID, joined); err != nil {
		zap.L().Warn("ws.notify_joined", zap.Error(err))
	}

	go s.writer()
	s.reader()
}

// reader is the inbound pump: network frames in, SendMessage out.
func (s *session) reader() {
	defer s.teardown()

	s.conn.rawConn.SetReadLimit(maxMessageSize)
	_ = s.conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.rawConn.SetPongHandler(func(string) error {
		return s.conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		mt, raw, err := s.conn.rawConn.ReadMessage()
		if err != nil {
			// Close frame or transport error: drain and shut down.
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		s.handleText(raw)
	}
}

func (s *session) handleText(raw []byte) {
	if !s.limiter.Allow() {
		incr(metricInboundThrottled, 1)
		s.pushError("message rate limit exceeded")
		return
	}

	frame := decodeChatFrame(raw)

	from, err := domain.NewClientID(frame.ClientID)
	if err != nil {
		zap.L().Warn("ws.invalid_client_id", zap.String("client_id", frame.ClientID))
		return
	}
	content, err := domain.NewMessageContent(frame.Content)
	if err != nil {
		zap.L().Warn("ws.invalid_content", zap.Int("length", len(frame.Content)))
		return
	}

	payload, err := json.Marshal(frame)
	if err != nil {
		zap.L().Warn("ws.chat_encode", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, dispatchTimeout)
	_, err = s.svc.SendMessage(ctx, from, content, payload)
	cancel()

	switch {
	case errors.Is(err, domain.ErrMessageCapacityExceeded):
		// Recovered locally: the message is dropped, the connection
		// stays open, the sender is told why.
		s.pushError("message history full")
	case err != nil:
		zap.L().Warn("ws.send_message", zap.Error(err))
	}
}

// writer is the outbound pump: it drains the delivery channel in FIFO order
// and keeps the peer alive with pings.
func (s *session) writer() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer s.teardown()

	for {
		select {
		case <-s.ctx.Done():
			_ = s.conn.write(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case payload := <-s.recv:
			if err := s.conn.write(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			if err := s.conn.ping(); err != nil {
				return
			}
		}
	}
}

// teardown runs exactly once per session: cancel the sibling pump, remove
// the participant, notify the remaining clients, release the socket.
func (s *session) teardown() {
	s.closeOnce.Do(func() {
		s.cancel()
		_ = s.conn.close()

		ctx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
		defer cancel()

		targets, err := s.svc.Disconnect(ctx, s.clientID)
		if err != nil {
			zap.L().Warn("ws.disconnect", zap.String("client_id", s.clientID.String()), zap.Error(err))
			return
		}

		left, _ := json.Marshal(ParticipantLeftFrame{
			Type:           TypeParticipantLeft,
			ClientID:       s.clientID.String(),
			DisconnectedAt: domain.Now().Millis(),
		})
		if err := s.svc.NotifyLeft(ctx, targets, left); err != nil {
			zap.L().Warn("ws.notify_left", zap.Error(err))
		}
	})
}

// pushError queues an error frame for this client only, best effort.
func (s *session) pushError(msg string) {
	payload, _ := json.Marshal(ErrorFrame{Type: TypeError, Error: msg})
	if err := s.pusher.PushTo(s.clientID, payload); err != nil {
		zap.L().Debug("ws.push_error", zap.Error(err))
	}
}
