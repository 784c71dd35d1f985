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

type CommentHandler struct {
	comments *service.CommentService
	logger   logger.Logger
}

// CreateCommentRequest is the body of POST /comments.
type CreateCommentRequest struct {
	Name    string `json:"name"     binding:"required"`
	Email   string `json:"email"    binding:"required,email"`
	MovieID string `json:"movie_id" binding:"required"`
	Text    string `json:"text"     binding:"required"`
}

func NewCommentHandler(comments *service.CommentService, logger logger.Logger) *CommentHandler {
	return &CommentHandler{
		comments: comments,
		logger:   logger.WithField("handler", "comments"),
	}
}

func (h *CommentHandler) List(c *gin.Context) {
	comments, err := h.comments.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *CommentHandler) ListPaginated(c *gin.Context) {
	comments, err := h.comments.ListPage(c.Request.Context(), pageFromQuery(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *CommentHandler) Get(c *gin.Context) {
	comment, err := h.comments.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, catalog.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// Create stores a comment; the service publishes it to SSE subscribers of
// the comments topic.
func (h *CommentHandler) Create(c *gin.Context) {
	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debugf("Invalid comment payload: %v", err)
		_ = c.Error(middleware.BadRequest{Err: err})
		return
	}

	movieID, err := catalog.ParseID(req.MovieID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), catalog.Comment{
		Name:    req.Name,
		Email:   req.Email,
		MovieID: movieID,
		Text:    req.Text,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *CommentHandler) Update(c *gin.Context) {
	var req catalog.CommentUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(middleware.BadRequest{Err: err})
		return
	}

	comment, err := h.comments.Update(c.Request.Context(), c.Param("id"), req)
	if errors.Is(err, catalog.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	message, err := h.comments.Delete(c.Request.Context(), c.Param("id"))
	if errors.Is(err, catalog.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}
