package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/raphaelgruber/omnimind/internal/metrics"
)

// voiceHandshakeTimeout bounds the WebSocket upgrade.
const voiceHandshakeTimeout = 10 * time.Second

// OpenVoiceSocket dials the voice endpoint and returns the live connection.
// The caller owns the connection and must close it.
func (c *Client) OpenVoiceSocket(ctx context.Context) (conn *websocket.Conn, err error) {
	start := time.Now()
	defer func() {
		c.metrics.RecordCall(metrics.OpVoice, time.Since(start), err)
	}()

	u, err := url.Parse(c.voiceURL)
	if err != nil {
		return nil, fmt.Errorf("parse voice url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("parse voice url: unsupported scheme %q", u.Scheme)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: voiceHandshakeTimeout,
	}

	header := http.Header{}
	header.Set("X-Request-ID", uuid.New().String())

	conn, _, err = dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		return nil, fmt.Errorf("websocket connect: %w", err)
	}

	c.logger.Debug("voice socket opened", "url", u.String())
	return conn, nil
}

// PingVoice opens the voice socket, sends text, and waits for the first event.
// It is a connectivity check; the voice protocol itself lives on the service.
func (c *Client) PingVoice(ctx context.Context, text string) (*VoiceEvent, error) {
	conn, err := c.OpenVoiceSocket(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
		_ = conn.SetWriteDeadline(deadline)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		return nil, fmt.Errorf("send voice message: %w", err)
	}

	var event VoiceEvent
	if err := conn.ReadJSON(&event); err != nil {
		return nil, fmt.Errorf("read voice event: %w", err)
	}

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"),
		time.Now().Add(time.Second))
	return &event, nil
}
