package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	maxMessageBytes = 4 << 10
	pongWait        = 60 * time.Second
)

// MessageProcessor handles raw form messages of one session.
type MessageProcessor interface {
	Process(ctx context.Context, raw []byte) ([]byte, error)
}

// Connection is one browser calculator session. Messages are processed one at a time
// from the read loop, so the session never sees concurrent events.
type Connection struct {
	id           string
	ws           *websocket.Conn
	send         chan []byte
	done         chan struct{}
	closeOnce    sync.Once
	logger       *zap.Logger
	processor    MessageProcessor
	writeTimeout time.Duration
	onClose      func(id string)
}

// NewConnection builds connection wrapper.
func NewConnection(id string, ws *websocket.Conn, processor MessageProcessor, writeTimeout time.Duration, logger *zap.Logger, onClose func(string)) *Connection {
	return &Connection{
		id:           id,
		ws:           ws,
		send:         make(chan []byte, 16),
		done:         make(chan struct{}),
		logger:       logger.With(zap.String("session_id", id)),
		processor:    processor,
		writeTimeout: writeTimeout,
		onClose:      onClose,
	}
}

// ID returns the session identifier.
func (c *Connection) ID() string {
	return c.id
}

// Start launches the write pump and blocks in the read loop.
func (c *Connection) Start(ctx context.Context) {
	go c.writePump(ctx)
	c.readPump(ctx)
}

func (c *Connection) readPump(ctx context.Context) {
	defer c.Close()
	c.ws.SetReadLimit(maxMessageBytes)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			c.logger.Debug("connection read closed", zap.Error(err))
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))

		response, err := c.processor.Process(ctx, message)
		if err != nil {
			c.logger.Warn("failed to process message", zap.Error(err))
			continue
		}
		if response != nil {
			c.Send(response)
		}

		if ctx.Err() != nil {
			return
		}
	}
}

func (c *Connection) writePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			_ = c.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(c.writeTimeout))
			c.Close()
			return
		case <-c.done:
			return
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				c.logger.Debug("connection write failed", zap.Error(err))
				c.Close()
				return
			}
		}
	}
}

// Send enqueues a message for writing; it never blocks.
func (c *Connection) Send(msg []byte) {
	select {
	case <-c.done:
	case c.send <- msg:
	default:
		c.logger.Warn("dropping outgoing message, buffer full")
	}
}

// Ping sends a keepalive ping. Safe to call alongside the write pump.
func (c *Connection) Ping() error {
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeTimeout))
}

func (c *Connection) write(messageType int, data []byte) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.ws.WriteMessage(messageType, data)
}

// Close tears the connection down once.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.ws.Close()
		if c.onClose != nil {
			c.onClose(c.id)
		}
	})
}
