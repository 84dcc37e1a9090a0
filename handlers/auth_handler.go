package handlers

import (
	"net/http"

	"quizhub/middleware"
	"quizhub/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

type loginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

// Login takes form-encoded credentials and returns a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil || form.Username == "" || form.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	token, err := h.authService.Login(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, token)
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	c.JSON(http.StatusOK, user)
}
