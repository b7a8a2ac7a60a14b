package handlers

import (
	"net/http"

	"blogapi/internal/apperr"
	"blogapi/internal/services"
	"blogapi/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PasswordHandler struct {
	auth *services.AuthService
	log  *zap.Logger
}

func NewPasswordHandler(auth *services.AuthService, log *zap.Logger) *PasswordHandler {
	return &PasswordHandler{auth: auth, log: log}
}

// SendResetLink POST /api/password/reset-password-link
func (h *PasswordHandler) SendResetLink(c *gin.Context) {
	var in services.EmailInput
	if !bind(c, &in) {
		return
	}
	msg, err := h.auth.RequestPasswordReset(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	message(c, http.StatusOK, msg)
}

// ValidateLink GET /api/password/reset-password/:userId/:token
func (h *PasswordHandler) ValidateLink(c *gin.Context) {
	userID, ok := utils.ParseID(c.Param("userId"))
	if !ok {
		respondError(c, h.log, apperr.InvalidLink())
		return
	}
	msg, err := h.auth.ValidateResetLink(c.Request.Context(), userID, c.Param("token"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	message(c, http.StatusOK, msg)
}

// ResetPassword POST /api/password/reset-password/:userId/:token
func (h *PasswordHandler) ResetPassword(c *gin.Context) {
	var in services.NewPasswordInput
	if !bind(c, &in) {
		return
	}
	userID, ok := utils.ParseID(c.Param("userId"))
	if !ok {
		respondError(c, h.log, apperr.InvalidLink())
		return
	}
	msg, err := h.auth.ResetPassword(c.Request.Context(), userID, c.Param("token"), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	message(c, http.StatusOK, msg)
}
