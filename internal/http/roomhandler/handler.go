package roomhandler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"chatroomgo/internal/domain"
	"chatroomgo/internal/services/room"
)

// Handler serves the read-only projection over the room store. It holds no
// state of its own; every response is a fresh snapshot.
type Handler struct {
	svc room.IRoomService
}

func New(svc room.IRoomService) *Handler { return &Handler{svc: svc} }

func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/healthz", h.health)
	r.GET("/rooms", h.list)
	r.GET("/rooms/:id", h.detail)
	r.GET("/debug/room", h.debugRoomState)
}

// @Summary		Health check
// @Tags			Rooms
// @Success		200	{object}	map[string]string
// @Router			/healthz [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary		List rooms
// @Description	Returns a snapshot of every room with its participant handles.
// @Tags			Rooms
// @Success		200	{array}		RoomSummary
// @Failure		500	{object}	ErrorResponse
// @Router			/rooms [get]
func (h *Handler) list(c *gin.Context) {
	snap, err := h.svc.GetRoom(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, []RoomSummary{toSummary(snap)})
}

// @Summary		Get room detail
// @Description	Returns a room with per-participant connect timestamps.
// @Tags			Rooms
// @Param			id	path		string	true	"Room ID"
// @Success		200	{object}	RoomDetail
// @Failure		404	{object}	ErrorResponse
// @Router			/rooms/{id} [get]
func (h *Handler) detail(c *gin.Context) {
	snap, err := h.svc.GetRoomByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, toDetail(snap))
}

// @Summary		Dump room state
// @Description	Returns the full room state including the retained message history. Intended for debugging.
// @Tags			Debug
// @Success		200	{object}	RoomState
// @Failure		500	{object}	ErrorResponse
// @Router			/debug/room [get]
func (h *Handler) debugRoomState(c *gin.Context) {
	snap, err := h.svc.GetRoom(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, toState(snap))
}

func toSummary(snap domain.RoomSnapshot) RoomSummary {
	return RoomSummary{
		ID: snap.ID,
		Participants: lo.Map(snap.Participants, func(p domain.Participant, _ int) string {
			return p.ID.String()
		}),
		CreatedAt: snap.CreatedAt.RFC3339(),
	}
}

func toState(snap domain.RoomSnapshot) RoomState {
	detail := toDetail(snap)
	return RoomState{
		ID:           detail.ID,
		Participants: detail.Participants,
		CreatedAt:    detail.CreatedAt,
		Messages: lo.Map(snap.Messages, func(m domain.ChatMessage, _ int) MessageDetail {
			return MessageDetail{
				ClientID:  m.From.String(),
				Content:   m.Content.String(),
				Timestamp: m.Timestamp.RFC3339(),
			}
		}),
	}
}

func toDetail(snap domain.RoomSnapshot) RoomDetail {
	return RoomDetail{
		ID: snap.ID,
		Participants: lo.Map(snap.Participants, func(p domain.Participant, _ int) ParticipantDetail {
			return ParticipantDetail{
				ClientID:    p.ID.String(),
				ConnectedAt: p.ConnectedAt.RFC3339(),
			}
		}),
		CreatedAt: snap.CreatedAt.RFC3339(),
	}
}
