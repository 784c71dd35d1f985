package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-catalog-live/internal/application/service"
	"go-catalog-live/internal/domain/catalog"
	"go-catalog-live/internal/infrastructure/logger"
	"go-catalog-live/internal/interfaces/rest/middleware"
)

type MovieHandler struct {
	movies *service.MovieService
	logger logger.Logger
}

func NewMovieHandler(movies *service.MovieService, logger logger.Logger) *MovieHandler {
	return &MovieHandler{
		movies: movies,
		logger: logger.WithField("handler", "movies"),
	}
}

func (h *MovieHandler) List(c *gin.Context) {
	movies, err := h.movies.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, movies)
}

func (h *MovieHandler) ListPaginated(c *gin.Context) {
	movies, err := h.movies.ListPage(c.Request.Context(), pageFromQuery(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, movies)
}

// Get returns one movie; ?includeComments=true embeds its comments.
func (h *MovieHandler) Get(c *gin.Context) {
	movie, err := h.movies.Get(c.Request.Context(), c.Param("id"), c.Query("includeComments") == "true")
	if errors.Is(err, catalog.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Movie not found"})
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, movie)
}

func (h *MovieHandler) Create(c *gin.Context) {
	var req catalog.Movie
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(middleware.BadRequest{Err: err})
		return
	}

	movie, err := h.movies.Create(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, movie)
}

func (h *MovieHandler) Update(c *gin.Context) {
	var req catalog.MovieUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(middleware.BadRequest{Err: err})
		return
	}

	movie, err := h.movies.Update(c.Request.Context(), c.Param("id"), req)
	if errors.Is(err, catalog.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Movie not found"})
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, movie)
}

func (h *MovieHandler) Delete(c *gin.Context) {
	message, err := h.movies.Delete(c.Request.Context(), c.Param("id"))
	if errors.Is(err, catalog.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Movie not found"})
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}
