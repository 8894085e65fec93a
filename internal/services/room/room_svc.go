package room

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"chatroomgo/internal/domain"
)

var (
	ErrDuplicateClientID = errors.New("client id already connected")
	ErrNotConnected      = errors.New("client id not connected")
	ErrBroadcastFailed   = errors.New("broadcast failed")
)

type IRoomService interface {
	// Connect admits a client: duplicate check, participant insert, hub
	// registration, in that order. A duplicate or over-capacity attempt
	// never reaches the hub.
	Connect(ctx context.Context, id domain.ClientID, ch domain.PusherChannel) (domain.Timestamp, error)
	// Disconnect removes a connected client and returns the pre-removal
	// notify-target list for the leave broadcast.
	Disconnect(ctx context.Context, id domain.ClientID) ([]domain.ClientID, error)
	// SendMessage appends to the history and fans the pre-serialized
	// payload out to everyone except the sender. Returns the targets
	// addressed; hub-level partial failures are not escalated.
	SendMessage(ctx context.Context, from domain.ClientID, content domain.MessageContent, payload []byte) ([]domain.ClientID, error)
	// ParticipantList returns the current participants sorted by handle.
	ParticipantList(ctx context.Context) []domain.Participant
	// NotifyJoined broadcasts the join payload to everyone but the joiner.
	NotifyJoined(ctx context.Context, joined domain.ClientID, payload []byte) error
	// NotifyLeft broadcasts the leave payload to the given targets.
	NotifyLeft(ctx context.Context, targets []domain.ClientID, payload []byte) error

	GetRoom(ctx context.Context) (domain.RoomSnapshot, error)
	GetRoomByID(ctx context.Context, id string) (domain.RoomSnapshot, error)
}

type roomService struct {
	repo   domain.RoomRepository
	pusher domain.MessagePusher
}

func NewRoomService(repo domain.RoomRepository, pusher domain.MessagePusher) IRoomService {
	return &roomService{repo: repo, pusher: pusher}
}

func (svc *roomService) Connect(ctx context.Context, id domain.ClientID, ch domain.PusherChannel) (domain.Timestamp, error) {
	if lo.Contains(svc.repo.ConnectedClientIDs(ctx), id) {
		return 0, ErrDuplicateClientID
	}

	connectedAt := domain.Now()
	if err := svc.repo.AddParticipant(ctx, id, connectedAt); err != nil {
		// No hub registration happened, nothing to roll back.
		return 0, err
	}

	svc.pusher.Register(id, ch)
	zap.L().Info("participant_connected", zap.String("client_id", id.String()))
	return connectedAt, nil
}

func (svc *roomService) Disconnect(ctx context.Context, id domain.ClientID) ([]domain.ClientID, error) {
	ids := svc.repo.ConnectedClientIDs(ctx)
	if !lo.Contains(ids, id) {
		return nil, ErrNotConnected
	}

	// Targets are evaluated before removal.
	targets := lo.Filter(ids, func(other domain.ClientID, _ int) bool { return other != id })

	if err := svc.repo.RemoveParticipant(ctx, id); err != nil {
		return nil, err
	}
	svc.pusher.Unregister(id)
	zap.L().Info("participant_disconnected", zap.String("client_id", id.String()))
	return targets, nil
}

func (svc *roomService) SendMessage(ctx context.Context, from domain.ClientID, content domain.MessageContent, payload []byte) ([]domain.ClientID, error) {
	// A full history is a hard backpressure signal; nothing is broadcast.
	if err := svc.repo.AddMessage(ctx, from, content, domain.Now()); err != nil {
		return nil, err
	}

	targets := lo.Filter(svc.repo.ConnectedClientIDs(ctx), func(other domain.ClientID, _ int) bool {
		return other != from
	})

	if err := svc.pusher.Broadcast(targets, payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBroadcastFailed, err)
	}
	return targets, nil
}

func (svc *roomService) ParticipantList(ctx context.Context) []domain.Participant {
	participants := svc.repo.Participants(ctx)
	// Lexicographic order keeps snapshot listings deterministic.
	sortParticipants(participants)
	return participants
}

func (svc *roomService) NotifyJoined(ctx context.Context, joined domain.ClientID, payload []byte) error {
	targets := lo.Filter(svc.repo.ConnectedClientIDs(ctx), func(other domain.ClientID, _ int) bool {
		return other != joined
	})
	return svc.pusher.Broadcast(targets, payload)
}

func (svc *roomService) NotifyLeft(ctx context.Context, targets []domain.ClientID, payload []byte) error {
	return svc.pusher.Broadcast(targets, payload)
}

func (svc *roomService) GetRoom(ctx context.Context) (domain.RoomSnapshot, error) {
	snap, err := svc.repo.GetRoom(ctx)
	if err != nil {
		return domain.RoomSnapshot{}, err
	}
	sortParticipants(snap.Participants)
	return snap, nil
}

func (svc *roomService) GetRoomByID(ctx context.Context, id string) (domain.RoomSnapshot, error) {
	snap, err := svc.repo.GetRoomByID(ctx, id)
	if err != nil {
		return domain.RoomSnapshot{}, err
	}
	sortParticipants(snap.Participants)
	return snap, nil
}

func sortParticipants(participants []domain.Participant) {
	sort.Slice(participants, func(i, j int) bool {
		return participants[i].ID < participants[j].ID
	})
}
