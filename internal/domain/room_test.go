package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoom(participantCap, messageCap int) *Room {
	return NewRoom(NewRoomID(), Now(), participantCap, messageCap)
}

func TestRoomAddParticipantWithinCapacity(t *testing.T) {
	r := testRoom(2, 10)

	require.NoError(t, r.AddParticipant(Participant{ID: "alice", ConnectedAt: 1000}))
	require.NoError(t, r.AddParticipant(Participant{ID: "bob", ConnectedAt: 2000}))
	assert.Equal(t, 2, r.ParticipantCount())
}

func TestRoomAddParticipantCapacityExceeded(t *testing.T) {
	r := testRoom(2, 10)

	require.NoError(t, r.AddParticipant(Participant{ID: "alice", ConnectedAt: 1000}))
	require.NoError(t, r.AddParticipant(Participant{ID: "bob", ConnectedAt: 2000}))

	err := r.AddParticipant(Participant{ID: "charlie", ConnectedAt: 3000})
	assert.ErrorIs(t, err, ErrRoomCapacityExceeded)
	// Rejected, not truncated.
	assert.Equal(t, 2, r.ParticipantCount())
}

func TestRoomReinsertAtCapacityIsNotRejected(t *testing.T) {
	r := testRoom(1, 10)

	require.NoError(t, r.AddParticipant(Participant{ID: "alice", ConnectedAt: 1000}))
	// Same key at capacity: the keyed container overwrites, no overflow.
	require.NoError(t, r.AddParticipant(Participant{ID: "alice", ConnectedAt: 5000}))
	assert.Equal(t, 1, r.ParticipantCount())
}

func TestRoomRemoveParticipantIsIdempotent(t *testing.T) {
	r := testRoom(2, 10)
	require.NoError(t, r.AddParticipant(Participant{ID: "alice", ConnectedAt: 1000}))

	r.RemoveParticipant("alice")
	assert.Equal(t, 0, r.ParticipantCount())
	r.RemoveParticipant("alice")
	r.RemoveParticipant("ghost")
	assert.Equal(t, 0, r.ParticipantCount())
}

func TestRoomAddMessageCapacityExceeded(t *testing.T) {
	r := testRoom(10, 2)

	require.NoError(t, r.AddMessage(ChatMessage{From: "alice", Content: "one", Timestamp: 1}))
	require.NoError(t, r.AddMessage(ChatMessage{From: "alice", Content: "two", Timestamp: 2}))

	err := r.AddMessage(ChatMessage{From: "alice", Content: "three", Timestamp: 3})
	assert.ErrorIs(t, err, ErrMessageCapacityExceeded)

	// The newest message was dropped, not the oldest evicted.
	msgs := r.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, MessageContent("one"), msgs[0].Content)
	assert.Equal(t, MessageContent("two"), msgs[1].Content)
}

func TestRoomAccessorsReturnCopies(t *testing.T) {
	r := testRoom(10, 10)
	require.NoError(t, r.AddParticipant(Participant{ID: "alice", ConnectedAt: 1000}))
	require.NoError(t, r.AddMessage(ChatMessage{From: "alice", Content: "hi", Timestamp: 1}))

	participants := r.Participants()
	participants[0].ID = "mallory"
	msgs := r.Messages()
	msgs[0].Content = "tampered"

	assert.Equal(t, ClientID("alice"), r.Participants()[0].ID)
	assert.Equal(t, MessageContent("hi"), r.Messages()[0].Content)
}

func TestRoomIdentityIsImmutable(t *testing.T) {
	id := NewRoomID()
	createdAt := Now()
	r := NewRoom(id, createdAt, 10, 10)

	assert.Equal(t, id, r.ID())
	assert.Equal(t, createdAt, r.CreatedAt())
}
