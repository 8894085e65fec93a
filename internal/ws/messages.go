package ws

import "encoding/json"

// Frame types exchanged over the socket.
const (
	TypeChat              = "chat"
	TypeRoomConnected     = "room_connected"
	TypeParticipantJoined = "participant_joined"
	TypeParticipantLeft   = "participant_left"
	TypeError             = "error"
)

// ChatFrame is both the inbound chat payload and the outbound relay.
type ChatFrame struct {
	Type      string `json:"type"`
	ClientID  string `json:"client_id"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// ParticipantInfo is one entry of the room snapshot.
type ParticipantInfo struct {
	ClientID    string `json:"client_id"`
	ConnectedAt int64  `json:"connected_at"`
}

// RoomConnectedFrame is sent once, to the newly admitted client only.
type RoomConnectedFrame struct {
	Type         string            `json:"type"`
	Participants []ParticipantInfo `json:"participants"`
}

// ParticipantJoinedFrame goes to every client except the one that joined.
type ParticipantJoinedFrame struct {
	Type        string `json:"type"`
	ClientID    string `json:"client_id"`
	ConnectedAt int64  `json:"connected_at"`
}

// ParticipantLeftFrame goes to every remaining client.
type ParticipantLeftFrame struct {
	Type           string `json:"type"`
	ClientID       string `json:"client_id"`
	DisconnectedAt int64  `json:"disconnected_at"`
}

// ErrorFrame informs the sender about a locally recovered failure, e.g. a
// message rejected because the history is full.
type ErrorFrame struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// decodeChatFrame applies the lenient-decode policy: text that is not a
// well-formed chat frame is wrapped as a chat payload from an "unknown"
// sender instead of being dropped.
func decodeChatFrame(raw []byte) ChatFrame {
	var frame ChatFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return ChatFrame{
			Type:     TypeChat,
			ClientID: "unknown",
			Content:  string(raw),
		}
	}
	frame.Type = TypeChat
	return frame
}
