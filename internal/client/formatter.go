package client

import (
	"fmt"
	"strings"

	"chatroomgo/internal/domain"
	"chatroomgo/internal/ws"
)

const (
	bannerLine  = "============================================================"
	dividerLine = "------------------------------------------------------------"
)

// FormatRoomConnected renders the admission snapshot as a participant
// roster, marking the caller's own handle.
func FormatRoomConnected(participants []ws.ParticipantInfo, me string) string {
	var b strings.Builder
	b.WriteString("\n\n" + bannerLine + "\n")
	b.WriteString("Participants:\n")
	if len(participants) == 0 {
		b.WriteString("(No participants)\n")
	}
	for _, p := range participants {
		suffix := ""
		if p.ClientID == me {
			suffix = " (me)"
		}
		fmt.Fprintf(&b, "%s%s - entered at %s\n",
			p.ClientID, suffix, domain.Timestamp(p.ConnectedAt).RFC3339())
	}
	b.WriteString(bannerLine + "\n")
	return b.String()
}

func FormatParticipantJoined(clientID string, connectedAt int64) string {
	return fmt.Sprintf("\n+ %s entered at %s\n",
		clientID, domain.Timestamp(connectedAt).RFC3339())
}

func FormatParticipantLeft(clientID string, disconnectedAt int64) string {
	return fmt.Sprintf("\n- %s left at %s\n",
		clientID, domain.Timestamp(disconnectedAt).RFC3339())
}

func FormatChatMessage(from, content string, sentAt int64) string {
	return fmt.Sprintf("\n\n%s\n@%s: %s\nsent at %s\n%s\n",
		dividerLine, from, content, domain.Timestamp(sentAt).RFC3339(), dividerLine)
}

func FormatSentConfirmation(sentAt int64) string {
	return fmt.Sprintf("sent at %s\n", domain.Timestamp(sentAt).RFC3339())
}

func FormatServerError(msg string) string {
	return fmt.Sprintf("\n! server: %s\n", msg)
}

func FormatBinaryMessage(byteCount int) string {
	return fmt.Sprintf("\n<- Received %d bytes of binary data\n", byteCount)
}

// FormatRawMessage covers frames that fail to decode.
func FormatRawMessage(text string) string {
	return fmt.Sprintf("\n<- Received: %s\n", text)
}
