package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-catalog-live/internal/application/service"
	"go-catalog-live/internal/infrastructure/hub"
	"go-catalog-live/internal/infrastructure/logger"
	"go-catalog-live/internal/interfaces/rest/middleware"
	"go-catalog-live/internal/interfaces/rest/v1/handler"
	"go-catalog-live/internal/interfaces/sse"
	"go-catalog-live/internal/interfaces/websocket"
)

// StoreCheck reports the health of a backing store. nil means the store is not
// in use.
type StoreCheck func(ctx context.Context) error

type routerDeps struct {
	hub      *hub.Hub
	ws       *websocket.Service
	movies   *service.MovieService
	comments *service.CommentService
	store    string
	check    StoreCheck
}

func InitRouter(deps routerDeps, log logger.Logger) http.Handler {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Errors(log))

	rootGroup := router.Group("")

	rootGroup.GET("/health", func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		storeStatus := "up"
		if deps.check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := deps.check(ctx); err != nil {
				log.Warnf("Health check failed: %v", err)
				status, code, storeStatus = "degraded", http.StatusServiceUnavailable, "down"
			}
		}
		c.JSON(code, gin.H{
			"status":           status,
			"store":            deps.store,
			"storeStatus":      storeStatus,
			"sseConnections":   deps.hub.ActiveClientsCount(),
			"websocketClients": deps.ws.ConnectedClients(),
		})
	})

	handler.InitCatalogRouter(log, deps.movies, deps.comments, rootGroup)
	sse.InitSSERouter(log, deps.hub, rootGroup)
	deps.ws.Initialize(rootGroup)

	return router
}
