package handlers

import (
	"net/http"

	"blogapi/internal/apperr"
	"blogapi/internal/services"
	"blogapi/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	auth *services.AuthService
	log  *zap.Logger
}

func NewAuthHandler(auth *services.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var in services.RegisterInput
	if !bind(c, &in) {
		return
	}
	msg, err := h.auth.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	message(c, http.StatusCreated, msg)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var in services.LoginInput
	if !bind(c, &in) {
		return
	}
	session, err := h.auth.Login(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// VerifyEmail GET /api/auth/:userId/verify/:token
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	userID, ok := utils.ParseID(c.Param("userId"))
	if !ok {
		respondError(c, h.log, apperr.InvalidLink())
		return
	}
	msg, err := h.auth.VerifyEmail(c.Request.Context(), userID, c.Param("token"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	message(c, http.StatusOK, msg)
}
