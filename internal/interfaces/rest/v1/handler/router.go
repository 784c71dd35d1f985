package handler

import (
	"github.com/gin-gonic/gin"

	"go-catalog-live/internal/application/service"
	"go-catalog-live/internal/infrastructure/logger"
)

// InitCatalogRouter mounts the /movies and /comments resources.
func InitCatalogRouter(
	log logger.Logger,
	movies *service.MovieService,
	comments *service.CommentService,
	rg *gin.RouterGroup,
) {
	movieHandler := NewMovieHandler(movies, log)
	movieGroup := rg.Group("/movies")
	{
		movieGroup.GET("", movieHandler.List)
		movieGroup.GET("/paginated", movieHandler.ListPaginated)
		movieGroup.GET("/:id", movieHandler.Get)
		movieGroup.POST("", movieHandler.Create)
		movieGroup.PUT("/:id", movieHandler.Update)
		movieGroup.DELETE("/:id", movieHandler.Delete)
	}

	commentHandler := NewCommentHandler(comments, log)
	commentGroup := rg.Group("/comments")
	{
		commentGroup.GET("", commentHandler.List)
		commentGroup.GET("/paginated", commentHandler.ListPaginated)
		commentGroup.GET("/:id", commentHandler.Get)
		commentGroup.POST("", commentHandler.Create)
		commentGroup.PUT("/:id", commentHandler.Update)
		commentGroup.DELETE("/:id", commentHandler.Delete)
	}
}
