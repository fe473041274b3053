// Package signalr implements the slice of the SignalR JSON hub protocol the
// Stop game server speaks: a handshake, 0x1e-delimited JSON records, and
// non-blocking invocations in both directions. Streaming and MessagePack are
// not needed and not implemented.
package signalr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrNotConnected = errors.New("hub connection is not active")

const (
	recordSeparator = 0x1e

	msgTypeInvocation = 1
	msgTypePing       = 6
	msgTypeClose      = 7

	writeTimeout = 5 * time.Second
	pingInterval = 15 * time.Second
)

// InvocationHandler receives every inbound hub invocation.
type InvocationHandler = func(target string, args []json.RawMessage)

// ClosedHandler fires once per connection when the read loop ends, with the
// reason if the server supplied one.
type ClosedHandler = func(err error)

type hubMessage struct {
	Type         int               `json:"type"`
	InvocationID string            `json:"invocationId,omitempty"`
	Target       string            `json:"target,omitempty"`
	Arguments    []json.RawMessage `json:"arguments,omitempty"`
	Error        string            `json:"error,omitempty"`
}

type handshakeRequest struct {
	Protocol string `json:"protocol"`
	Version  int    `json:"version"`
}

type handshakeResponse struct {
	Error string `json:"error,omitempty"`
}

// Client is a hub connection to a single endpoint. Start/Stop may be called
// repeatedly; each Start opens a fresh websocket.
type Client struct {
	url      string
	log      *zap.Logger
	onInvoke InvocationHandler
	onClosed ClosedHandler

	mu       sync.Mutex
	conn     *websocket.Conn
	stopPing context.CancelFunc
	closed   bool // closed handler already fired for the current conn
}

func NewClient(url string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{url: url, log: log}
}

// Subscribe registers the inbound handlers. Must be called before Start.
func (c *Client) Subscribe(onInvoke InvocationHandler, onClosed ClosedHandler) {
	c.onInvoke = onInvoke
	c.onClosed = onClosed
}

// Start dials the hub and completes the protocol handshake. On success the
// read and ping loops run until the connection drops or Stop is called.
func (c *Client) Start(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.url, err)
	}
	// Room snapshots can be large; don't let the default cap kill the conn.
	conn.SetReadLimit(1 << 20)

	if err := c.handshake(dialCtx, conn); err != nil {
		conn.Close(websocket.StatusProtocolError, "handshake failed")
		return err
	}

	pingCtx, stopPing := context.WithCancel(context.Background())

	c.mu.Lock()
	c.conn = conn
	c.stopPing = stopPing
	c.closed = false
	c.mu.Unlock()

	go c.readLoop(conn)
	go c.pingLoop(pingCtx, conn)

	c.log.Info("hub connected", zap.String("url", c.url))
	return nil
}

// Stop closes the connection. The closed handler does not fire for an
// explicit stop; lifecycle teardown is the caller's business.
func (c *Client) Stop(ctx context.Context) error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.closed = true
	if c.stopPing != nil {
		c.stopPing()
		c.stopPing = nil
	}
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close(websocket.StatusNormalClosure, "client stop")
}

// Send issues a non-blocking hub invocation. Fails fast when the connection
// is down; nothing is queued.
func (c *Client) Send(ctx context.Context, target string, args ...any) error {
	rawArgs := make([]json.RawMessage, 0, len(args))
	for _, a := range args {
		b, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("marshal %s argument: %w", target, err)
		}
		rawArgs = append(rawArgs, b)
	}
	msg := hubMessage{
		Type:         msgTypeInvocation,
		InvocationID: uuid.NewString(),
		Target:       target,
		Arguments:    rawArgs,
	}
	return c.writeRecord(ctx, msg)
}

func (c *Client) handshake(ctx context.Context, conn *websocket.Conn) error {
	req, _ := json.Marshal(handshakeRequest{Protocol: "json", Version: 1})
	req = append(req, recordSeparator)
	if err := conn.Write(ctx, websocket.MessageText, req); err != nil {
		return fmt.Errorf("send handshake: %w", err)
	}

	_, data, err := conn.Read(ctx)
	if err != nil {
		return fmt.Errorf("read handshake response: %w", err)
	}
	data = bytes.TrimSuffix(data, []byte{recordSeparator})
	var resp handshakeResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("parse handshake response: %w", err)
	}
	if resp.Error != "" {
		return fmt.Errorf("handshake rejected: %s", resp.Error)
	}
	return nil
}

func (c *Client) writeRecord(ctx context.Context, msg hubMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	payload = append(payload, recordSeparator)

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := conn.Write(wctx, websocket.MessageText, payload); err != nil {
		return fmt.Errorf("send %s: %w", msg.Target, err)
	}
	return nil
}

func (c *Client) readLoop(conn *websocket.Conn) {
	ctx := context.Background()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			c.fireClosed(conn, err)
			return
		}
		for _, record := range bytes.Split(data, []byte{recordSeparator}) {
			if len(record) == 0 {
				continue
			}
			c.handleRecord(conn, record)
		}
	}
}

func (c *Client) handleRecord(conn *websocket.Conn, record []byte) {
	var msg hubMessage
	if err := json.Unmarshal(record, &msg); err != nil {
		c.log.Warn("dropping malformed hub record", zap.Error(err))
		return
	}

	switch msg.Type {
	case msgTypeInvocation:
		if c.onInvoke != nil {
			c.onInvoke(msg.Target, msg.Arguments)
		}
	case msgTypePing:
		// Server keepalive, nothing to do.
	case msgTypeClose:
		var reason error
		if msg.Error != "" {
			reason = errors.New(msg.Error)
		}
		conn.Close(websocket.StatusNormalClosure, "server close")
		c.fireClosed(conn, reason)
	default:
		c.log.Debug("ignoring hub message", zap.Int("type", msg.Type))
	}
}

func (c *Client) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.writeRecord(ctx, hubMessage{Type: msgTypePing}); err != nil {
				return
			}
		}
	}
}

// fireClosed normalizes the one-shot closed notification. An explicit Stop
// marks the connection closed first, so the read loop's exit stays silent.
func (c *Client) fireClosed(conn *websocket.Conn, reason error) {
	c.mu.Lock()
	if c.closed || c.conn != conn {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.conn = nil
	if c.stopPing != nil {
		c.stopPing()
		c.stopPing = nil
	}
	c.mu.Unlock()

	c.log.Info("hub connection closed", zap.Error(reason))
	if c.onClosed != nil {
		c.onClosed(reason)
	}
}
