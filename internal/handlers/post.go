package handlers

import (
	"net/http"

	"blogapi/internal/middleware"
	"blogapi/internal/services"
	"blogapi/internal/store"
	"blogapi/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const msgNoImage = "No Image Provided"

type PostHandler struct {
	posts          *services.PostService
	uploadMaxBytes int64
	log            *zap.Logger
}

func NewPostHandler(posts *services.PostService, uploadMaxBytes int64, log *zap.Logger) *PostHandler {
	return &PostHandler{posts: posts, uploadMaxBytes: uploadMaxBytes, log: log}
}

// Create POST /api/posts (multipart: image, title, description, category)
func (h *PostHandler) Create(c *gin.Context) {
	img, closeFn, ok := formImage(c, h.uploadMaxBytes, msgNoImage)
	if !ok {
		return
	}
	defer closeFn()

	var in services.CreatePostInput
	if !bind(c, &in) {
		return
	}

	post, err := h.posts.Create(c.Request.Context(), middleware.Claims(c).UserID, in, img)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": services.MsgPostCreated, "post": post})
}

// List GET /api/posts?pageNumber=N or ?category=X
func (h *PostHandler) List(c *gin.Context) {
	q := store.PostQuery{
		Page:     utils.StringToInt(c.Query("pageNumber")),
		Category: c.Query("category"),
	}
	posts, err := h.posts.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// Get GET /api/posts/:id
func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.posts.Get(c.Request.Context(), middleware.ID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// Count GET /api/posts/count
func (h *PostHandler) Count(c *gin.Context) {
	n, err := h.posts.Count(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// Delete DELETE /api/posts/:id (admin or owner)
func (h *PostHandler) Delete(c *gin.Context) {
	id := middleware.ID(c)
	if err := h.posts.Delete(c.Request.Context(), middleware.Actor(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": services.MsgPostDeleted, "postId": id})
}

// Update PUT /api/posts/:id (owner)
func (h *PostHandler) Update(c *gin.Context) {
	var in services.UpdatePostInput
	if !bind(c, &in) {
		return
	}
	post, err := h.posts.Update(c.Request.Context(), middleware.Actor(c), middleware.ID(c), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// UpdateImage PUT /api/posts/update-image/:id (owner)
func (h *PostHandler) UpdateImage(c *gin.Context) {
	img, closeFn, ok := formImage(c, h.uploadMaxBytes, msgNoImage)
	if !ok {
		return
	}
	defer closeFn()

	post, err := h.posts.UpdateImage(c.Request.Context(), middleware.Actor(c), middleware.ID(c), img)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// ToggleLike PUT /api/posts/like/:id
func (h *PostHandler) ToggleLike(c *gin.Context) {
	post, err := h.posts.ToggleLike(c.Request.Context(), middleware.Actor(c), middleware.ID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, post)
}
