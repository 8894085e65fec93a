package domain

import (
	"context"
	"errors"
)

var (
	// ErrClientNotFound is returned by single-target push when the id has
	// no live delivery channel.
	ErrClientNotFound = errors.New("client not registered")
	// ErrPushDropped is returned by single-target push when the client's
	// delivery channel is full and the payload was discarded.
	ErrPushDropped = errors.New("push dropped: delivery channel full")
)

// PusherChannel is the outbound delivery handle for one connected client.
// The session's writer pump drains it in FIFO order.
type PusherChannel chan []byte

// RoomSnapshot is a consistent read-only view of the room taken under the
// repository's lock. Mutating it never touches room state.
type RoomSnapshot struct {
	ID           string
	CreatedAt    Timestamp
	Participants []Participant
	Messages     []ChatMessage
}

// RoomRepository serializes all access to the Room aggregate. Every call is
// atomic end-to-end; no caller holds the lock across calls. It is the only
// component allowed to mutate room state.
type RoomRepository interface {
	AddParticipant(ctx context.Context, id ClientID, at Timestamp) error
	RemoveParticipant(ctx context.Context, id ClientID) error
	AddMessage(ctx context.Context, from ClientID, content MessageContent, at Timestamp) error

	ConnectedClientIDs(ctx context.Context) []ClientID
	CountConnected(ctx context.Context) int
	Participants(ctx context.Context) []Participant

	GetRoom(ctx context.Context) (RoomSnapshot, error)
	GetRoomByID(ctx context.Context, id string) (RoomSnapshot, error)
}

// MessagePusher maps live client handles to their delivery channels. It is
// kept in lockstep with room membership by the use-case ordering, not by a
// joint transaction.
type MessagePusher interface {
	// Register associates the id with the channel, overwriting any prior
	// association for that id.
	Register(id ClientID, ch PusherChannel)
	// Unregister removes the association; no-op if absent.
	Unregister(id ClientID)
	// PushTo delivers to a single client and fails loudly when the id has
	// no live channel.
	PushTo(id ClientID, payload []byte) error
	// Broadcast delivers best-effort to each target. Per-target failures
	// are counted and logged, never escalated; a dead peer must not block
	// delivery to healthy peers.
	Broadcast(targets []ClientID, payload []byte) error
}
