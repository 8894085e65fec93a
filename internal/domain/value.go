package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxClientIDLength bounds the handle a client may connect with.
	MaxClientIDLength = 64
	// MaxMessageContentLength bounds a single chat message body.
	MaxMessageContentLength = 1024
)

var (
	ErrEmptyClientID         = errors.New("client id must not be empty")
	ErrClientIDTooLong       = errors.New("client id exceeds max length")
	ErrEmptyMessageContent   = errors.New("message content must not be empty")
	ErrMessageContentTooLong = errors.New("message content exceeds max length")
)

// ClientID is a validated client handle. Construct it with NewClientID;
// a zero value is never produced by the constructor.
type ClientID string

func NewClientID(s string) (ClientID, error) {
	if s == "" {
		return "", ErrEmptyClientID
	}
	if len(s) > MaxClientIDLength {
		return "", ErrClientIDTooLong
	}
	return ClientID(s), nil
}

func (id ClientID) String() string { return string(id) }

// MessageContent is a validated chat message body.
type MessageContent string

func NewMessageContent(s string) (MessageContent, error) {
	if s == "" {
		return "", ErrEmptyMessageContent
	}
	if len(s) > MaxMessageContentLength {
		return "", ErrMessageContentTooLong
	}
	return MessageContent(s), nil
}

func (c MessageContent) String() string { return string(c) }

// Timestamp is milliseconds since the Unix epoch. It is attached when an
// event is recorded and never mutated afterwards.
type Timestamp int64

// jst is the fixed zone the room presents timestamps in.
var jst = time.FixedZone("JST", 9*60*60)

func Now() Timestamp { return Timestamp(time.Now().UnixMilli()) }

func (t Timestamp) Millis() int64 { return int64(t) }

func (t Timestamp) Time() time.Time { return time.UnixMilli(int64(t)).In(jst) }

// RFC3339 renders the timestamp in the room's fixed zone.
func (t Timestamp) RFC3339() string { return t.Time().Format(time.RFC3339) }

// NewRoomID generates the identity for a new room.
func NewRoomID() string { return uuid.NewString() }
