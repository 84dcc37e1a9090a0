package middleware

import (
	"net/http"
	"strings"

	"quizhub/apperrors"
	"quizhub/models"
	"quizhub/services"

	"github.com/gin-gonic/gin"
)

const currentUserKey = "current_user"

// Auth resolves the bearer token to a user and stores it on the context.
// Requests without a usable token are rejected before reaching handlers.
func Auth(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			if apperrors.Is(err, apperrors.KindAuth) {
				c.Header("WWW-Authenticate", "Bearer")
			}
			c.AbortWithStatusJSON(apperrors.HTTPStatus(err), gin.H{"error": apperrors.PublicMessage(err)})
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by Auth.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(currentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}
