package handlers

import (
	"net/http"

	"blogapi/internal/middleware"
	"blogapi/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CommentHandler struct {
	comments *services.CommentService
	log      *zap.Logger
}

func NewCommentHandler(comments *services.CommentService, log *zap.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, log: log}
}

// Create POST /api/comments
func (h *CommentHandler) Create(c *gin.Context) {
	var in services.CreateCommentInput
	if !bind(c, &in) {
		return
	}
	comment, err := h.comments.Create(c.Request.Context(), middleware.Claims(c).UserID, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// List GET /api/comments (admin)
func (h *CommentHandler) List(c *gin.Context) {
	comments, err := h.comments.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// Delete DELETE /api/comments/:id (admin or author)
func (h *CommentHandler) Delete(c *gin.Context) {
	if err := h.comments.Delete(c.Request.Context(), middleware.Actor(c), middleware.ID(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	message(c, http.StatusOK, services.MsgCommentDeleted)
}

// Update PUT /api/comments/:id (author)
func (h *CommentHandler) Update(c *gin.Context) {
	var in services.UpdateCommentInput
	if !bind(c, &in) {
		return
	}
	comment, err := h.comments.Update(c.Request.Context(), middleware.Actor(c), middleware.ID(c), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}
