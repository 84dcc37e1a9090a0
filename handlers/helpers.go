package handlers

import (
	"net/http"

	"quizhub/apperrors"
	"quizhub/authz"
	"quizhub/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondError writes err as {"error": message}. Internal failures are
// attached to the context for the request logger and never leak details.
func respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"error": apperrors.PublicMessage(err)})
}

func currentPrincipal(c *gin.Context) (authz.Principal, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return authz.Principal{}, false
	}
	return authz.PrincipalOf(user), true
}

func pathID(c *gin.Context, param, invalidMessage string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidMessage})
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return false
	}
	return true
}
