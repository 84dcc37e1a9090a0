package handlers

import (
	"net/http"

	"quizhub/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func (h *UserHandler) GetUser(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "id", "Invalid user ID")
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), p, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "id", "Invalid user ID")
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), p, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

func (h *UserHandler) UpdatePassword(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "id", "Invalid user ID")
	if !ok {
		return
	}

	var req services.UpdatePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdatePassword(c.Request.Context(), p, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
