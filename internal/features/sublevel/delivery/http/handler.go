package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"piano-quest/internal/common/errors"
	"piano-quest/internal/common/middleware"
	"piano-quest/internal/features/sublevel/models"
)

// ProgressService is the part of the progress tracker the sublevel endpoints use.
type ProgressService interface {
	Sublevel(ctx context.Context, userID, id string) (*models.Sublevel, error)
	SublevelProgress(ctx context.Context, userID string) []models.SublevelProgress
	Submit(ctx context.Context, userID, id string, req models.SubmitProgressRequest) (*models.SublevelProgress, error)
}

type SublevelHandler struct {
	service ProgressService
}

func NewSublevelHandler(service ProgressService) *SublevelHandler {
	return &SublevelHandler{service: service}
}

// RegisterRoutes mounts the sublevel endpoints. router must already require a session.
func (h *SublevelHandler) RegisterRoutes(router *gin.RouterGroup) {
	sublevels := router.Group("/sublevels")
	{
		sublevels.GET("/progress", h.progress)
		sublevels.GET("/:id", h.getByID)
		sublevels.POST("/:id/progress", h.submit)
	}
}

func (h *SublevelHandler) progress(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.SublevelProgress(c.Request.Context(), middleware.GetUserID(c)))
}

func (h *SublevelHandler) getByID(c *gin.Context) {
	sublevel, err := h.service.Sublevel(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sublevel)
}

func (h *SublevelHandler) submit(c *gin.Context) {
	var input models.SubmitProgressRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		middleware.Fail(c, errors.Wrap(err, errors.ErrCodeBadRequest, "Invalid request body"))
		return
	}

	progress, err := h.service.Submit(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), input)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}
