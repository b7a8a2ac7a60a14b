package middleware

import (
	"net/http"
	"strings"

	"blogapi/internal/services"
	"blogapi/internal/utils"

	"github.com/gin-gonic/gin"
)

// ClaimsKey holds the *services.SessionClaims of the authenticated caller.
const ClaimsKey = "claims"

type SessionVerifier interface {
	Verify(token string) (*services.SessionClaims, error)
}

// VerifyToken requires a valid bearer session token.
func VerifyToken(sessions SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No Token Provided!"})
			return
		}

		claims, err := sessions.Verify(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid Token!"})
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// Claims returns the caller set by VerifyToken.
func Claims(c *gin.Context) *services.SessionClaims {
	if v, ok := c.Get(ClaimsKey); ok {
		if claims, ok := v.(*services.SessionClaims); ok {
			return claims
		}
	}
	return nil
}

// Actor returns the caller as a services.Actor.
func Actor(c *gin.Context) services.Actor {
	claims := Claims(c)
	if claims == nil {
		return services.Actor{}
	}
	return services.Actor{ID: claims.UserID, IsAdmin: claims.IsAdmin}
}

// AdminOnly must run after VerifyToken.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims := Claims(c); claims == nil || !claims.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Allow for Admins Only"})
			return
		}
		c.Next()
	}
}

// OnlyUser lets through the user whose id is in the :id parameter.
func OnlyUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isSelf(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Allow for User himself Only"})
			return
		}
		c.Next()
	}
}

// AdminOrUser lets through admins and the user in the :id parameter.
func AdminOrUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil || !(claims.IsAdmin || isSelf(c)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Allow for User himself Or Admins Only"})
			return
		}
		c.Next()
	}
}

func isSelf(c *gin.Context) bool {
	claims := Claims(c)
	if claims == nil {
		return false
	}
	id, ok := utils.ParseID(c.Param("id"))
	return ok && id == claims.UserID
}
