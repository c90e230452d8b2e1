package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second

	sendBufferSize = 256
)

// Close codes used when the server terminates a connection.
const (
	// CloseInvalidToken is sent when a frame carries a credential that fails
	// verification. The reason names the offending token.
	CloseInvalidToken = websocket.CloseUnsupportedData // 1003
	// CloseSuperseded is sent to the older connection when the same user
	// authenticates on a newer one.
	CloseSuperseded = 4000
)

// SupersededReason is the fixed reason accompanying CloseSuperseded.
const SupersededReason = "connection superseded by a newer connection for this user"

var (
	errClientClosed = errors.New("client closed")
	errBufferFull   = errors.New("send buffer full")
)

// Client wraps one websocket connection. Frames are read and dispatched
// strictly one at a time by ReadPump; outbound frames from the handler and
// from broadcasts funnel through the buffered send channel into WritePump.
type Client struct {
	conn       *websocket.Conn
	send       chan []byte
	done       chan struct{}
	registry   *Registry
	dispatcher *Dispatcher
	log        zerolog.Logger

	sessionID  string
	remoteAddr string

	mu       sync.Mutex
	identity string

	closeOnce sync.Once
}

// NewClient builds a client for an upgraded connection. conn may be nil in
// tests; such a client exchanges frames only through its send channel.
func NewClient(conn *websocket.Conn, registry *Registry, dispatcher *Dispatcher, log zerolog.Logger) *Client {
	c := &Client{
		conn:       conn,
		send:       make(chan []byte, sendBufferSize),
		done:       make(chan struct{}),
		registry:   registry,
		dispatcher: dispatcher,
		sessionID:  uuid.NewString(),
	}
	if conn != nil {
		c.remoteAddr = conn.RemoteAddr().String()
	}
	c.log = log.With().Str("session", c.sessionID).Str("remote", c.remoteAddr).Logger()
	return c
}

// Identity returns the user this connection is currently bound to, or "".
func (c *Client) Identity() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity
}

func (c *Client) setIdentity(userID string) {
	c.mu.Lock()
	c.identity = userID
	c.mu.Unlock()
}

// Send marshals v and queues it for delivery. Failures are logged, never
// returned: a slow or dead peer must not propagate errors into handlers.
func (c *Client) Send(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to marshal outbound frame")
		return
	}
	if err := c.enqueue(data); err != nil {
		c.log.Warn().Err(err).Msg("dropping outbound frame")
	}
}

func (c *Client) enqueue(data []byte) error {
	select {
	case <-c.done:
		return errClientClosed
	default:
	}
	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return errClientClosed
	default:
		return errBufferFull
	}
}

// Close tears the connection down once. Safe to call from any goroutine and
// any number of times.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

// CloseWithCode sends a close frame with the given code and reason, then
// closes the connection.
func (c *Client) CloseWithCode(code int, reason string) {
	if c.conn != nil {
		msg := websocket.FormatCloseMessage(code, reason)
		deadline := time.Now().Add(writeWait)
		if err := c.conn.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
			c.log.Debug().Err(err).Msg("failed to write close frame")
		}
	}
	c.Close()
}

// ReadPump reads frames and dispatches them sequentially: a frame is fully
// handled, handler included, before the next read. It unbinds the client from
// the registry on exit.
func (c *Client) ReadPump() {
	defer func() {
		c.registry.Remove(c)
		c.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.log.Warn().Err(err).Msg("websocket read error")
			}
			return
		}
		c.dispatcher.Dispatch(context.Background(), c, messageType, data)
	}
}

// WritePump drains the send channel onto the wire and keeps the connection
// alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Warn().Err(err).Msg("websocket write error")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}
