package livestream

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"SmartCVD/internal/domain/models"
	drepo "SmartCVD/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Client implements a LiveStream against the /api/assessments/live endpoint.
type Client struct {
	url            string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	mu        sync.Mutex // guards conn writes
	conn      *websocket.Conn
	connected bool
}

// New creates a new live assessment stream client.
func New(url string, reconnectDelay, pingInterval time.Duration) drepo.LiveStream {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Client{
		url:            url,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("live connect: %w", err)
	}
	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()
	return nil
}

// Send writes one assessment request.
func (c *Client) Send(ctx context.Context, req models.AssessmentRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || !c.connected {
		return fmt.Errorf("live stream not connected")
	}
	if dl, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(dl)
		defer c.conn.SetWriteDeadline(time.Time{})
	}
	if err := c.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("live send: %w", err)
	}
	return nil
}

// Read streams frames and the terminal error. Both channels close when the
// connection ends or ctx is cancelled.
func (c *Client) Read(ctx context.Context) (<-chan models.LiveFrame, <-chan error) {
	frames := make(chan models.LiveFrame, 64)
	errs := make(chan error, 1)

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	// the ping loop lives as long as this read loop
	ctx, stop := context.WithCancel(ctx)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.mu.Lock()
				if c.conn == conn && conn != nil {
					_ = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
				}
				c.mu.Unlock()
			}
		}
	}()

	// read loop
	go func() {
		defer stop()
		defer close(frames)
		defer close(errs)
		if conn == nil {
			errs <- fmt.Errorf("live conn nil")
			return
		}
		for {
			_, b, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					errs <- fmt.Errorf("live read: %w", err)
				}
				return
			}
			var f models.LiveFrame
			if err := json.Unmarshal(b, &f); err != nil {
				// ignore frames we do not understand
				continue
			}
			select {
			case frames <- f:
			case <-ctx.Done():
				return
			}
		}
	}()

	return frames, errs
}

// Reconnect closes the current connection, waits reconnectDelay and dials again.
// Callers must call Read again afterwards.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	select {
	case <-time.After(c.reconnectDelay):
	case <-ctx.Done():
		return ctx.Err()
	}
	return c.Connect(ctx)
}

// Close sends a close frame and closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	if c.conn == nil {
		return nil
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	err := c.conn.Close()
	c.conn = nil
	return err
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}
