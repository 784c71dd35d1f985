package sse

import (
	"github.com/gin-gonic/gin"

	"go-catalog-live/internal/infrastructure/hub"
	"go-catalog-live/internal/infrastructure/logger"
)

func InitSSERouter(logger logger.Logger, hubInstance *hub.Hub, rg *gin.RouterGroup) {
	sseHandler := NewServerSentEventHandler(hubInstance, logger)

	sseGroup := rg.Group("/sse")
	sseGroup.GET("/events", sseHandler.Connect)
	sseGroup.GET("/stats", sseHandler.Stats)
	sseGroup.POST("/subscribe/:clientId/:topic", sseHandler.Subscribe)
	sseGroup.POST("/unsubscribe/:clientId/:topic", sseHandler.Unsubscribe)
}
