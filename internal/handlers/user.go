package handlers

import (
	"net/http"

	"blogapi/internal/middleware"
	"blogapi/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	users          *services.UserService
	uploadMaxBytes int64
	log            *zap.Logger
}

func NewUserHandler(users *services.UserService, uploadMaxBytes int64, log *zap.Logger) *UserHandler {
	return &UserHandler{users: users, uploadMaxBytes: uploadMaxBytes, log: log}
}

// List GET /api/users/profile (admin)
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// Profile GET /api/users/profile/:id
func (h *UserHandler) Profile(c *gin.Context) {
	user, err := h.users.Profile(c.Request.Context(), middleware.ID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Update PUT /api/users/profile/:id (only the user)
func (h *UserHandler) Update(c *gin.Context) {
	var in services.UpdateUserInput
	if !bind(c, &in) {
		return
	}
	user, err := h.users.Update(c.Request.Context(), middleware.ID(c), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Count GET /api/users/count (admin)
func (h *UserHandler) Count(c *gin.Context) {
	n, err := h.users.Count(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// UploadPhoto POST /api/users/profile/profile-photo-upload
func (h *UserHandler) UploadPhoto(c *gin.Context) {
	img, closeFn, ok := formImage(c, h.uploadMaxBytes, "no file provided")
	if !ok {
		return
	}
	defer closeFn()

	photo, err := h.users.UploadPhoto(c.Request.Context(), middleware.Claims(c).UserID, img.Body, img.Size, img.ContentType, img.Filename)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      services.MsgPhotoUploaded,
		"profilePhoto": photo,
	})
}

// Delete DELETE /api/users/profile/:id (admin or the user)
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), middleware.ID(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	message(c, http.StatusOK, services.MsgUserDeleted)
}
