package websocket

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"go-catalog-live/internal/infrastructure/logger"
)

type Options struct {
	LookupTimeout time.Duration
	// AllowedOrigin is matched against the Origin header; "*" allows any.
	AllowedOrigin string
}

// Service answers getMovieDetails requests over WebSocket. It is
// independent of the SSE hub.
type Service struct {
	finder        MovieFinder
	logger        logger.Logger
	upgrader      websocket.Upgrader
	lookupTimeout time.Duration

	clients atomic.Int64
}

func NewService(finder MovieFinder, log logger.Logger, opts Options) *Service {
	if opts.LookupTimeout <= 0 {
		opts.LookupTimeout = 10 * time.Second
	}
	if opts.AllowedOrigin == "" {
		opts.AllowedOrigin = "*"
	}

	return &Service{
		finder:        finder,
		logger:        log.WithField("component", "websocket"),
		lookupTimeout: opts.LookupTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(opts.AllowedOrigin),
		},
	}
}

// ConnectedClients returns the number of open connections.
func (s *Service) ConnectedClients() int {
	return int(s.clients.Load())
}

// Connect upgrades the request and serves the connection until it closes.
func (s *Service) Connect(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		s.logger.Warnf("Failed to upgrade connection: %v", err)
		return
	}

	s.clients.Add(1)
	defer s.clients.Add(-1)

	id := "ws-" + uuid.NewString()
	s.logger.Infof("WebSocket client %s connected", id)

	newConnection(id, conn, s).serve(c.Request.Context())

	s.logger.Infof("WebSocket client %s disconnected", id)
}

// Stats reports the open connection count.
func (s *Service) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"connectedClients": s.ConnectedClients()})
}

func originChecker(allowed string) func(*http.Request) bool {
	if allowed == "*" {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || origin == allowed
	}
}
