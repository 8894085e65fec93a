package roomhandler

// RoomSummary lists a room with its participant handles only.
type RoomSummary struct {
	ID           string   `json:"id"`
	Participants []string `json:"participants"`
	CreatedAt    string   `json:"created_at" example:"2025-07-27T16:05:05+09:00"`
} // @name RoomSummary

type ParticipantDetail struct {
	ClientID    string `json:"client_id"    example:"alice"`
	ConnectedAt string `json:"connected_at" example:"2025-07-27T16:05:05+09:00"`
} // @name ParticipantDetail

type RoomDetail struct {
	ID           string              `json:"id"`
	Participants []ParticipantDetail `json:"participants"`
	CreatedAt    string              `json:"created_at" example:"2025-07-27T16:05:05+09:00"`
} // @name RoomDetail

type MessageDetail struct {
	ClientID  string `json:"client_id" example:"alice"`
	Content   string `json:"content"   example:"hello"`
	Timestamp string `json:"timestamp" example:"2025-07-27T16:05:05+09:00"`
} // @name MessageDetail

// RoomState is the full dump served by the debug endpoint: participants
// plus the retained message history.
type RoomState struct {
	ID           string              `json:"id"`
	Participants []ParticipantDetail `json:"participants"`
	Messages     []MessageDetail     `json:"messages"`
	CreatedAt    string              `json:"created_at" example:"2025-07-27T16:05:05+09:00"`
} // @name RoomState

type ErrorResponse struct {
	Error string `json:"error"`
} // @name ErrorResponse
