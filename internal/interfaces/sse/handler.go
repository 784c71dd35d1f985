package sse

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"go-catalog-live/internal/infrastructure/hub"
	"go-catalog-live/internal/infrastructure/logger"
)

type ServerSentEventHandler struct {
	hub    *hub.Hub
	logger logger.Logger
}

func NewServerSentEventHandler(hubInstance *hub.Hub, logger logger.Logger) *ServerSentEventHandler {
	return &ServerSentEventHandler{
		hub:    hubInstance,
		logger: logger.WithField("handler", "sse"),
	}
}

// Connect opens an event stream. The optional topics query parameter is a
// comma separated list; the default is "all". The first frame carries the
// generated client id.
func (h *ServerSentEventHandler) Connect(c *gin.Context) {
	clientID := uuid.NewString()
	topics := parseTopics(c.Query("topics"))

	stream := hub.NewSSEStream(c.Request.Context(), c.Writer)
	if err := h.hub.AddClient(clientID, stream, topics); err != nil {
		h.logger.Errorf("Failed to register client %s: %v", clientID, err)
		_ = c.Error(err)
		return
	}

	<-stream.Done()
	// Fences off any write still in flight before the handler returns.
	_ = stream.Close()
}

// Stats reports how many SSE clients are connected.
func (h *ServerSentEventHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"activeConnections": h.hub.ActiveClientsCount(),
	})
}

// Subscribe adds a topic to a client. Stale ids still get 200.
func (h *ServerSentEventHandler) Subscribe(c *gin.Context) {
	topic := c.Param("topic")
	h.hub.SubscribeToTopic(c.Param("clientId"), topic)
	c.JSON(http.StatusOK, gin.H{"message": "Subscribed to topic: " + topic})
}

// Unsubscribe removes a topic from a client. Stale ids still get 200.
func (h *ServerSentEventHandler) Unsubscribe(c *gin.Context) {
	topic := c.Param("topic")
	h.hub.UnsubscribeFromTopic(c.Param("clientId"), topic)
	c.JSON(http.StatusOK, gin.H{"message": "Unsubscribed from topic: " + topic})
}

func parseTopics(raw string) []string {
	if raw == "" {
		return []string{hub.TopicAll}
	}
	return strings.Split(raw, ",")
}
