package ws

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"chatroomgo/internal/domain"
	"chatroomgo/internal/services/room"
)

type WsServer struct {
	hub      *Hub
	roomSvc  room.IRoomService
	upgrader websocket.Upgrader
	msgRate  rate.Limit
	msgBurst int
}

func NewWsServer(h *Hub, roomSvc room.IRoomService, msgRate float64, msgBurst int) *WsServer {
	return &WsServer{
		hub:     h,
		roomSvc: roomSvc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true }, // dev-only
		},
		msgRate:  rate.Limit(msgRate),
		msgBurst: msgBurst,
	}
}

// Handle admits and runs one websocket connection. Admission failures are
// rejected before the upgrade so the client can tell "duplicate handle"
// (409, do not retry) from "room full" (503, retry with backoff).
func (s *WsServer) Handle(ginCtx *gin.Context) {
	clientID, err := domain.NewClientID(ginCtx.Query("client_id"))
	if err != nil {
		ginCtx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recv := make(domain.PusherChannel, sendBuffer)
	connectedAt, err := s.roomSvc.Connect(ginCtx.Request.Context(), clientID, recv)
	switch {
	case errors.Is(err, room.ErrDuplicateClientID):
		ginCtx.JSON(http.StatusConflict, gin.H{"error": "client_id already connected"})
		return
	case errors.Is(err, domain.ErrRoomCapacityExceeded):
		ginCtx.JSON(http.StatusServiceUnavailable, gin.H{"error": "room is full"})
		return
	case err != nil:
		zap.L().Error("ws.connect", zap.Error(err))
		ginCtx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	rawConn, err := s.upgrader.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
	if err != nil {
		// Admitted but the socket never came up: compensate so the room
		// and the hub stay consistent.
		zap.L().Warn("ws.upgrade", zap.Error(err))
		if _, derr := s.roomSvc.Disconnect(context.Background(), clientID); derr != nil {
			zap.L().Warn("ws.upgrade_rollback", zap.Error(derr))
		}
		return
	}

	sess := newSession(clientID, connectedAt, rawConn, recv, s.roomSvc, s.hub,
		rate.NewLimiter(s.msgRate, s.msgBurst))
	go sess.run()
}
