package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"piano-quest/internal/common/errors"
	"piano-quest/internal/common/middleware"
	"piano-quest/internal/features/auth/models"
	"piano-quest/internal/features/auth/service"
)

type AuthHandler struct {
	service *service.AuthService
}

func NewAuthHandler(service *service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// RegisterRoutes mounts the login endpoints publicly and the session endpoints behind requireAuth.
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	auth := router.Group("/auth")
	{
		auth.POST("/social", h.socialLogin)
		auth.POST("/dev", h.devLogin)
		auth.GET("/verify", requireAuth, h.verify)
	}

	router.GET("/users/me", requireAuth, h.getMe)
}

func (h *AuthHandler) socialLogin(c *gin.Context) {
	var input models.SocialLoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		middleware.Fail(c, errors.Wrap(err, errors.ErrCodeBadRequest, "Invalid request body"))
		return
	}

	resp, err := h.service.SocialLogin(c.Request.Context(), input)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) devLogin(c *gin.Context) {
	var input models.DevLoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		middleware.Fail(c, errors.Wrap(err, errors.ErrCodeBadRequest, "Invalid request body"))
		return
	}

	resp, err := h.service.DevLogin(c.Request.Context(), input)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) verify(c *gin.Context) {
	user, expiresAt, ok := middleware.CurrentUser(c)
	if !ok {
		middleware.Fail(c, errors.NewUnauthorizedError("no session"))
		return
	}
	c.JSON(http.StatusOK, models.VerifyResponse{Valid: true, User: *user, ExpiresAt: expiresAt})
}

func (h *AuthHandler) getMe(c *gin.Context) {
	user, _, ok := middleware.CurrentUser(c)
	if !ok {
		middleware.Fail(c, errors.NewUnauthorizedError("no session"))
		return
	}
	c.JSON(http.StatusOK, user)
}
