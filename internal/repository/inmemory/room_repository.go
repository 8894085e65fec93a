// Package inmemory holds the process-local RoomRepository implementation.
// It is the single choke-point for concurrent access to the one Room this
// server owns.
package inmemory

import (
	"context"
	"sync"

	"chatroomgo/internal/domain"
)

type roomRepository struct {
	mu   sync.Mutex
	room *domain.Room
}

func NewRoomRepository(room *domain.Room) domain.RoomRepository {
	return &roomRepository{room: room}
}

func (r *roomRepository) AddParticipant(_ context.Context, id domain.ClientID, at domain.Timestamp) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.room.AddParticipant(domain.Participant{ID: id, ConnectedAt: at})
}

func (r *roomRepository) RemoveParticipant(_ context.Context, id domain.ClientID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.room.RemoveParticipant(id)
	return nil
}

func (r *roomRepository) AddMessage(_ context.Context, from domain.ClientID, content domain.MessageContent, at domain.Timestamp) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.room.AddMessage(domain.ChatMessage{From: from, Content: content, Timestamp: at})
}

func (r *roomRepository) ConnectedClientIDs(_ context.Context) []domain.ClientID {
	r.mu.Lock()
	defer r.mu.Unlock()
	participants := r.room.Participants()
	ids := make([]domain.ClientID, 0, len(participants))
	for _, p := range participants {
		ids = append(ids, p.ID)
	}
	return ids
}

func (r *roomRepository) CountConnected(_ context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.room.ParticipantCount()
}

func (r *roomRepository) Participants(_ context.Context) []domain.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.room.Participants()
}

func (r *roomRepository) GetRoom(_ context.Context) (domain.RoomSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked(), nil
}

func (r *roomRepository) GetRoomByID(_ context.Context, id string) (domain.RoomSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id != r.room.ID() {
		return domain.RoomSnapshot{}, domain.ErrRoomNotFound
	}
	return r.snapshotLocked(), nil
}

// snapshotLocked copies the aggregate while the lock is held so readers
// never observe a torn state.
func (r *roomRepository) snapshotLocked() domain.RoomSnapshot {
	return domain.RoomSnapshot{
		ID:           r.room.ID(),
		CreatedAt:    r.room.CreatedAt(),
		Participants: r.room.Participants(),
		Messages:     r.room.Messages(),
	}
}
