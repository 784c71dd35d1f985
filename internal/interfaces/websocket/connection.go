package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"go-catalog-live/internal/infrastructure/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	pendingLimit   = 16
)

// connection serves one client. Frames are read on one goroutine and
// answered in arrival order on another, so a close is noticed while a
// lookup is still running.
type connection struct {
	id      string
	conn    *websocket.Conn
	service *Service
	logger  logger.Logger

	writeMu sync.Mutex
}

func newConnection(id string, conn *websocket.Conn, service *Service) *connection {
	return &connection{
		id:      id,
		conn:    conn,
		service: service,
		logger:  service.logger.WithField("connection_id", id),
	}
}

func (c *connection) serve(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	defer func() {
		cancel()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	if err := c.write(welcomeResponse()); err != nil {
		c.logger.Errorf("Failed to send welcome: %v", err)
		return
	}

	requests := make(chan []byte, pendingLimit)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.respond(ctx, requests)
	}()
	go func() {
		defer wg.Done()
		c.ping(ctx)
	}()

	c.read(requests)
	cancel()
	close(requests)
	wg.Wait()
}

func (c *connection) read(requests chan<- []byte) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Errorf("WebSocket error: %v", err)
			} else {
				c.logger.Debugf("WebSocket closed: %v", err)
			}
			return
		}
		requests <- data
	}
}

func (c *connection) respond(ctx context.Context, requests <-chan []byte) {
	for data := range requests {
		if ctx.Err() != nil {
			continue
		}
		resp := c.service.handle(ctx, data)
		if err := c.write(resp); err != nil {
			// The client went away mid-request; its reply is dropped.
			c.logger.Debugf("Dropping %s reply: %v", resp.Type, err)
		}
	}
}

func (c *connection) ping(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.logger.Debugf("Failed to send ping: %v", err)
			}
		case <-ctx.Done():
			// Unblocks read when the server shuts down.
			_ = c.conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(writeWait),
			)
			_ = c.conn.Close()
			return
		}
	}
}

func (c *connection) write(resp Response) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}
