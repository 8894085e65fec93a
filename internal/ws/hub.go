package ws

import (
	"sync"

	"go.uber.org/zap"

	"chatroomgo/internal/domain"
)

// Hub maps connected client ids to their outbound delivery channels. It
// decouples "who is logically connected" (the room repository) from "how to
// reach them"; the two are kept in lockstep by the use-case ordering.
type Hub struct {
	mu      sync.RWMutex
	clients map[domain.ClientID]domain.PusherChannel
}

func NewHub() *Hub {
	return &Hub{clients: make(map[domain.ClientID]domain.PusherChannel)}
}

var _ domain.MessagePusher = (*Hub)(nil)

// Register overwrites any prior association for the id; duplicate exclusion
// is the Connect use case's job.
func (h *Hub) Register(id domain.ClientID, ch domain.PusherChannel) {
	h.mu.Lock()
	h.clients[id] = ch
	h.mu.Unlock()
	incr(metricWebsockets, 1)
	zap.L().Debug("hub_register", zap.String("client_id", id.String()))
}

func (h *Hub) Unregister(id domain.ClientID) {
	h.mu.Lock()
	_, ok := h.clients[id]
	delete(h.clients, id)
	h.mu.Unlock()
	if ok {
		decr(metricWebsockets, 1)
	}
	zap.L().Debug("hub_unregister", zap.String("client_id", id.String()))
}

// PushTo delivers to a single client. The send never blocks: a full channel
// means the peer's writer pump is wedged, the payload is dropped and the
// drop is reported to the caller.
func (h *Hub) PushTo(id domain.ClientID, payload []byte) error {
	h.mu.RLock()
	ch, ok := h.clients[id]
	h.mu.RUnlock()
	if !ok {
		incr(metricPushMissed, 1)
		return domain.ErrClientNotFound
	}
	select {
	case ch <- payload:
	default:
		incr(metricPushDropped, 1)
		zap.L().Warn("hub_push_dropped", zap.String("client_id", id.String()))
		return domain.ErrPushDropped
	}
	return nil
}

// Broadcast delivers best-effort to every target. A missing or wedged
// target is counted and skipped so it never poisons delivery to the rest;
// the call itself always succeeds.
func (h *Hub) Broadcast(targets []domain.ClientID, payload []byte) error {
	h.mu.RLock()
	channels := make([]domain.PusherChannel, len(targets))
	for i, id := range targets {
		channels[i] = h.clients[id]
	}
	h.mu.RUnlock()

	// Sends happen outside the lock.
	for i, ch := range channels {
		if ch == nil {
			incr(metricBroadcastMissed, 1)
			zap.L().Warn("hub_broadcast_miss", zap.String("client_id", targets[i].String()))
			continue
		}
		select {
		case ch <- payload:
			incr(metricBroadcastDelivered, 1)
		default:
			incr(metricBroadcastDropped, 1)
			zap.L().Warn("hub_broadcast_dropped", zap.String("client_id", targets[i].String()))
		}
	}
	return nil
}
