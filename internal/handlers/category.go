package handlers

import (
	"net/http"

	"blogapi/internal/middleware"
	"blogapi/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CategoryHandler struct {
	categories *services.CategoryService
	log        *zap.Logger
}

func NewCategoryHandler(categories *services.CategoryService, log *zap.Logger) *CategoryHandler {
	return &CategoryHandler{categories: categories, log: log}
}

// Create POST /api/categories (admin)
func (h *CategoryHandler) Create(c *gin.Context) {
	var in services.CreateCategoryInput
	if !bind(c, &in) {
		return
	}
	category, err := h.categories.Create(c.Request.Context(), middleware.Claims(c).UserID, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// List GET /api/categories
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// Delete DELETE /api/categories/:id (admin)
func (h *CategoryHandler) Delete(c *gin.Context) {
	id := middleware.ID(c)
	if err := h.categories.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": services.MsgCategoryDeleted, "categoryId": id})
}
