package middleware

import (
	"net/http"

	"blogapi/internal/utils"

	"github.com/gin-gonic/gin"
)

// IDKey holds the parsed :id parameter as a uint.
const IDKey = "id"

// ValidateID rejects requests whose :id parameter is not a positive integer.
func ValidateID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := utils.ParseID(c.Param("id"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid Id"})
			return
		}
		c.Set(IDKey, id)
		c.Next()
	}
}

// ID returns the id stored by ValidateID.
func ID(c *gin.Context) uint {
	return c.GetUint(IDKey)
}
