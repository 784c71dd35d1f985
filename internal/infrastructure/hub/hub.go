package hub

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"go-catalog-live/internal/infrastructure/logger"
)

type Config struct {
	// FanoutLimit caps concurrent writes during one broadcast.
	FanoutLimit int `env:"HUB_FANOUT_LIMIT" envDefault:"64"`
}

type client struct {
	id     string
	stream Stream
	topics map[string]struct{}
}

func (c *client) matches(topic string) bool {
	if _, ok := c.topics[TopicAll]; ok {
		return true
	}
	_, ok := c.topics[topic]
	return ok
}

// Hub is the registry of live SSE clients and their topic subscriptions.
type Hub struct {
	clients   map[string]*client
	clientsMu sync.RWMutex

	fanoutLimit int
	logger      logger.Logger
}

var _ Broadcaster = (*Hub)(nil)

// New creates an empty Hub.
func New(cfg Config, log logger.Logger) *Hub {
	if cfg.FanoutLimit <= 0 {
		cfg.FanoutLimit = 64
	}
	return &Hub{
		clients:     make(map[string]*client),
		fanoutLimit: cfg.FanoutLimit,
		logger:      log.WithField("component", "hub"),
	}
}

// AddClient opens stream, sends the connected event and registers the
// client under id. A client already registered under id is replaced and its
// stream closed. The client is removed automatically once stream.Done fires.
func (h *Hub) AddClient(id string, stream Stream, topics []string) error {
	if err := stream.Open(); err != nil {
		return err
	}

	// Written before registration so no broadcast can precede it.
	frame, err := EncodeFrame(ConnectedEvent(id))
	if err != nil {
		_ = stream.Close()
		return err
	}
	if err := stream.Write(frame); err != nil {
		_ = stream.Close()
		return err
	}

	c := &client{
		id:     id,
		stream: stream,
		topics: normalizeTopics(topics),
	}

	h.clientsMu.Lock()
	previous := h.clients[id]
	h.clients[id] = c
	count := len(h.clients)
	h.clientsMu.Unlock()

	if previous != nil {
		h.logger.Warnf("Client %s re-registered, closing previous stream", id)
		_ = previous.stream.Close()
	}
	h.logger.Infof("Client %s connected. Active clients: %d", id, count)

	go func() {
		<-stream.Done()
		h.removeStream(id, stream)
	}()

	return nil
}

// RemoveClient closes and forgets the client. Unknown ids are ignored.
func (h *Hub) RemoveClient(id string) {
	h.clientsMu.Lock()
	c, exists := h.clients[id]
	if exists {
		delete(h.clients, id)
	}
	count := len(h.clients)
	h.clientsMu.Unlock()

	if exists {
		_ = c.stream.Close()
		h.logger.Infof("Client %s disconnected. Active clients: %d", id, count)
	}
}

// removeStream removes id only while it still maps to stream, so a stale
// watcher cannot evict a client that re-registered under the same id.
func (h *Hub) removeStream(id string, stream Stream) {
	h.clientsMu.Lock()
	c, exists := h.clients[id]
	owned := exists && c.stream == stream
	if owned {
		delete(h.clients, id)
	}
	count := len(h.clients)
	h.clientsMu.Unlock()

	_ = stream.Close()
	if owned {
		h.logger.Infof("Client %s disconnected. Active clients: %d", id, count)
	}
}

// SendToClient delivers data to one client. Delivery is best effort: an
// unknown id is ignored and a failed write drops the client.
func (h *Hub) SendToClient(id string, data any) {
	c, exists := h.getClient(id)
	if !exists {
		return
	}

	frame, err := EncodeFrame(data)
	if err != nil {
		h.logger.Errorf("Failed to encode event for client %s: %v", id, err)
		return
	}
	h.send(c, frame)
}

// Broadcast delivers data to every client subscribed to topic or to "all"
// and returns how many writes succeeded. Clients are written concurrently;
// one failing client does not affect the others.
func (h *Hub) Broadcast(data any, topic string) int {
	if topic == "" {
		topic = TopicAll
	}

	frame, err := EncodeFrame(data)
	if err != nil {
		h.logger.Errorf("Failed to encode broadcast on topic %s: %v", topic, err)
		return 0
	}

	targets := h.matching(topic)

	var (
		eg        errgroup.Group
		sentMu    sync.Mutex
		sentCount int
	)
	eg.SetLimit(h.fanoutLimit)
	for _, c := range targets {
		eg.Go(func() error {
			if h.send(c, frame) {
				sentMu.Lock()
				sentCount++
				sentMu.Unlock()
			}
			return nil
		})
	}
	_ = eg.Wait()

	h.logger.Debugf("Broadcast to %d clients on topic: %s", sentCount, topic)
	return sentCount
}

// SubscribeToTopic adds topic to the client's set. Unknown ids are ignored.
func (h *Hub) SubscribeToTopic(id, topic string) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	if c, exists := h.clients[id]; exists {
		c.topics[topic] = struct{}{}
	}
}

// UnsubscribeFromTopic removes topic from the client's set.
func (h *Hub) UnsubscribeFromTopic(id, topic string) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	if c, exists := h.clients[id]; exists {
		delete(c.topics, topic)
	}
}

// Topics returns a copy of the client's topic set.
func (h *Hub) Topics(id string) ([]string, bool) {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()

	c, exists := h.clients[id]
	if !exists {
		return nil, false
	}
	topics := make([]string, 0, len(c.topics))
	for t := range c.topics {
		topics = append(topics, t)
	}
	return topics, true
}

// ActiveClientsCount returns the number of registered clients.
func (h *Hub) ActiveClientsCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// Stop closes every registered stream.
func (h *Hub) Stop(ctx context.Context) error {
	h.clientsMu.Lock()
	clients := h.clients
	h.clients = make(map[string]*client)
	h.clientsMu.Unlock()

	for id, c := range clients {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.stream.Close(); err != nil {
			h.logger.Errorf("Failed to close client %s: %v", id, err)
		}
	}

	h.logger.Infof("Hub stopped, closed %d clients", len(clients))
	return nil
}

func (h *Hub) getClient(id string) (*client, bool) {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()

	c, exists := h.clients[id]
	return c, exists
}

func (h *Hub) matching(topic string) []*client {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()

	targets := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		if c.matches(topic) {
			targets = append(targets, c)
		}
	}
	return targets
}

func (h *Hub) send(c *client, frame []byte) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Errorf("Panic while writing to client %s: %v", c.id, r)
			h.removeStream(c.id, c.stream)
			ok = false
		}
	}()

	if err := c.stream.Write(frame); err != nil {
		h.logger.Warnf("Failed to write to client %s, dropping it: %v", c.id, err)
		h.removeStream(c.id, c.stream)
		return false
	}
	return true
}

func normalizeTopics(topics []string) map[string]struct{} {
	set := make(map[string]struct{}, len(topics))
	for _, t := range topics {
		if t = strings.TrimSpace(t); t != "" {
			set[t] = struct{}{}
		}
	}
	if len(set) == 0 {
		set[TopicAll] = struct{}{}
	}
	return set
}
