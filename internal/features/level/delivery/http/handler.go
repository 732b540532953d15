package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"piano-quest/internal/common/middleware"
	"piano-quest/internal/features/level/service"
)

type LevelHandler struct {
	service *service.ProgressService
}

func NewLevelHandler(service *service.ProgressService) *LevelHandler {
	return &LevelHandler{service: service}
}

// RegisterRoutes mounts the level endpoints. router must already require a session.
func (h *LevelHandler) RegisterRoutes(router *gin.RouterGroup) {
	levels := router.Group("/levels")
	{
		levels.GET("", h.list)
		levels.GET("/unlocked", h.listUnlocked)
		levels.GET("/progress", h.progress)
		levels.GET("/:id", h.getByID)
		levels.GET("/:id/sublevels", h.listSublevels)
	}
}

func (h *LevelHandler) list(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Levels(c.Request.Context(), middleware.GetUserID(c)))
}

func (h *LevelHandler) listUnlocked(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.UnlockedLevels(c.Request.Context(), middleware.GetUserID(c)))
}

func (h *LevelHandler) progress(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.LevelProgress(c.Request.Context(), middleware.GetUserID(c)))
}

func (h *LevelHandler) getByID(c *gin.Context) {
	level, err := h.service.Level(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, level)
}

func (h *LevelHandler) listSublevels(c *gin.Context) {
	sublevels, err := h.service.Sublevels(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sublevels)
}
