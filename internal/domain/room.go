package domain

import "errors"

var (
	ErrRoomCapacityExceeded    = errors.New("room participant capacity exceeded")
	ErrMessageCapacityExceeded = errors.New("room message capacity exceeded")
	ErrRoomNotFound            = errors.New("room not found")
)

// Participant is a connected client's membership record.
type Participant struct {
	ID          ClientID  `json:"client_id"`
	ConnectedAt Timestamp `json:"connected_at"`
}

// ChatMessage is one append-only history entry.
type ChatMessage struct {
	From      ClientID       `json:"client_id"`
	Content   MessageContent `json:"content"`
	Timestamp Timestamp      `json:"timestamp"`
}

// Room is the authoritative aggregate of connected participants and the
// bounded message history. It is not safe for concurrent use on its own;
// all access goes through a RoomRepository.
type Room struct {
	id        string
	createdAt Timestamp

	participants map[ClientID]Participant
	messages     []ChatMessage

	participantCapacity int
	messageCapacity     int
}

func NewRoom(id string, createdAt Timestamp, participantCapacity, messageCapacity int) *Room {
	return &Room{
		id:                  id,
		createdAt:           createdAt,
		participants:        make(map[ClientID]Participant),
		participantCapacity: participantCapacity,
		messageCapacity:     messageCapacity,
	}
}

func (r *Room) ID() string            { return r.id }
func (r *Room) CreatedAt() Timestamp  { return r.createdAt }
func (r *Room) ParticipantCount() int { return len(r.participants) }
func (r *Room) MessageCount() int     { return len(r.messages) }

// AddParticipant enforces the participant capacity; an insert that would
// exceed it is rejected, not truncated. Duplicate handling is a caller
// precondition, the keyed map only guarantees uniqueness.
func (r *Room) AddParticipant(p Participant) error {
	if _, ok := r.participants[p.ID]; !ok && len(r.participants) >= r.participantCapacity {
		return ErrRoomCapacityExceeded
	}
	r.participants[p.ID] = p
	return nil
}

// RemoveParticipant is idempotent; removing an absent id is not an error.
func (r *Room) RemoveParticipant(id ClientID) {
	delete(r.participants, id)
}

// AddMessage rejects the newest message once the history is full. Overflow
// surfaces to the caller instead of silently evicting the oldest entry.
func (r *Room) AddMessage(m ChatMessage) error {
	if len(r.messages) >= r.messageCapacity {
		return ErrMessageCapacityExceeded
	}
	r.messages = append(r.messages, m)
	return nil
}

// Participants returns a copy; callers never see the live map.
func (r *Room) Participants() []Participant {
	out := make([]Participant, 0, len(r.participants))
	for _, p := range r.participants {
		out = append(out, p)
	}
	return out
}

// Messages returns a copy of the history in insertion order.
func (r *Room) Messages() []ChatMessage {
	out := make([]ChatMessage, len(r.messages))
	copy(out, r.messages)
	return out
}
