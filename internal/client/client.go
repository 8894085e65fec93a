package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"chatroomgo/internal/domain"
	"chatroomgo/internal/ws"
)

var (
	// ErrDuplicateClientID means the server rejected the handshake with 409;
	// the handle is taken and retrying cannot help.
	ErrDuplicateClientID = errors.New("client id already connected")
	// ErrHandleRejected means the server rejected the handle itself (400).
	ErrHandleRejected = errors.New("client id rejected")
)

const (
	maxConnectAttempts   = 5
	defaultRetryInterval = 5 * time.Second
)

// Client is the terminal chat client: one websocket session at a time, a
// stdin line pump, and bounded reconnection when the connection drops.
type Client struct {
	serverURL     string
	clientID      domain.ClientID
	in            io.Reader
	out           io.Writer
	dialer        *websocket.Dialer
	retryInterval time.Duration
}

func New(serverURL string, clientID domain.ClientID, in io.Reader, out io.Writer) *Client {
	return &Client{
		serverURL:     serverURL,
		clientID:      clientID,
		in:            in,
		out:           out,
		dialer:        websocket.DefaultDialer,
		retryInterval: defaultRetryInterval,
	}
}

// Run connects and pumps until the input stream ends, the context is
// cancelled, or the connection is lost too many times. Admission rejections
// (duplicate or invalid handle) are permanent and end the run immediately.
func (c *Client) Run(ctx context.Context) error {
	lines := make(chan string)
	go c.pumpInput(lines)

	for attempt := 1; ; attempt++ {
		zap.L().Info("client_connect",
			zap.String("url", c.serverURL),
			zap.String("client_id", c.clientID.String()),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxConnectAttempts))

		err := c.runSession(ctx, lines)
		if err == nil {
			zap.L().Info("client_session_ended")
			return nil
		}
		if errors.Is(err, ErrDuplicateClientID) || errors.Is(err, ErrHandleRejected) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		zap.L().Warn("client_connection_lost", zap.Error(err))
		if attempt >= maxConnectAttempts {
			return fmt.Errorf("giving up after %d attempts: %w", maxConnectAttempts, err)
		}

		zap.L().Info("client_reconnect_wait", zap.Duration("interval", c.retryInterval))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.retryInterval):
		}
	}
}

// pumpInput feeds trimmed non-empty stdin lines into the channel and closes
// it on EOF. It outlives individual sessions so a reconnect keeps the pump.
func (c *Client) pumpInput(lines chan<- string) {
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines <- line
	}
	close(lines)
}

func (c *Client) runSession(ctx context.Context, lines <-chan string) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Fprintf(c.out, "\nYou are '%s'. Type messages and press Enter to send. Press Ctrl+C to exit.\n\n",
		c.clientID.String())
	c.prompt()

	readDone := make(chan error, 1)
	go func() { readDone <- c.readLoop(conn) }()

	for {
		select {
		case <-ctx.Done():
			c.sendClose(conn)
			return nil
		case err := <-readDone:
			return err
		case line, ok := <-lines:
			if !ok {
				c.sendClose(conn)
				return nil
			}
			frame := ws.ChatFrame{
				Type:      ws.TypeChat,
				ClientID:  c.clientID.String(),
				Content:   line,
				Timestamp: domain.Now().Millis(),
			}
			payload, err := json.Marshal(frame)
			if err != nil {
				zap.L().Error("client_marshal", zap.Error(err))
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return fmt.Errorf("send: %w", err)
			}
			fmt.Fprint(c.out, "\n"+FormatSentConfirmation(frame.Timestamp))
			c.prompt()
		}
	}
}

// dial performs the handshake and classifies admission rejections by HTTP
// status before the connection is ever used.
func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	u := fmt.Sprintf("%s?client_id=%s", c.serverURL, url.QueryEscape(c.clientID.String()))
	conn, resp, err := c.dialer.DialContext(ctx, u, nil)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			switch resp.StatusCode {
			case http.StatusConflict:
				return nil, fmt.Errorf("%w: %q", ErrDuplicateClientID, c.clientID.String())
			case http.StatusBadRequest:
				return nil, fmt.Errorf("%w: %q", ErrHandleRejected, c.clientID.String())
			}
		}
		return nil, fmt.Errorf("dial %s: %w", c.serverURL, err)
	}
	return conn, nil
}

func (c *Client) readLoop(conn *websocket.Conn) error {
	for {
		mt, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("connection lost: %w", err)
		}
		switch mt {
		case websocket.BinaryMessage:
			fmt.Fprint(c.out, FormatBinaryMessage(len(raw)))
			c.prompt()
		case websocket.TextMessage:
			fmt.Fprint(c.out, c.render(raw))
			c.prompt()
		}
	}
}

// render picks the display format by frame type; anything undecodable is
// shown raw rather than dropped.
func (c *Client) render(raw []byte) string {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return FormatRawMessage(string(raw))
	}

	switch head.Type {
	case ws.TypeRoomConnected:
		var f ws.RoomConnectedFrame
		if err := json.Unmarshal(raw, &f); err == nil {
			return FormatRoomConnected(f.Participants, c.clientID.String())
		}
	case ws.TypeParticipantJoined:
		var f ws.ParticipantJoinedFrame
		if err := json.Unmarshal(raw, &f); err == nil {
			return FormatParticipantJoined(f.ClientID, f.ConnectedAt)
		}
	case ws.TypeParticipantLeft:
		var f ws.ParticipantLeftFrame
		if err := json.Unmarshal(raw, &f); err == nil {
			return FormatParticipantLeft(f.ClientID, f.DisconnectedAt)
		}
	case ws.TypeChat:
		var f ws.ChatFrame
		if err := json.Unmarshal(raw, &f); err == nil {
			return FormatChatMessage(f.ClientID, f.Content, f.Timestamp)
		}
	case ws.TypeError:
		var f ws.ErrorFrame
		if err := json.Unmarshal(raw, &f); err == nil {
			return FormatServerError(f.Error)
		}
	}
	return FormatRawMessage(string(raw))
}

func (c *Client) prompt() {
	fmt.Fprintf(c.out, "%s> ", c.clientID.String())
}

func (c *Client) sendClose(conn *websocket.Conn) {
	deadline := time.Now().Add(time.Second)
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := conn.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
		zap.L().Debug("client_close", zap.Error(err))
	}
}
