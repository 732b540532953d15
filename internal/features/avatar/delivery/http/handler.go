package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"piano-quest/internal/common/errors"
	"piano-quest/internal/common/middleware"
	"piano-quest/internal/features/avatar/models"
	"piano-quest/internal/features/avatar/service"
)

type AvatarHandler struct {
	service *service.AvatarService
}

func NewAvatarHandler(service *service.AvatarService) *AvatarHandler {
	return &AvatarHandler{service: service}
}

// RegisterRoutes mounts the avatar endpoints. router must already require a session.
func (h *AvatarHandler) RegisterRoutes(router *gin.RouterGroup) {
	avatars := router.Group("/avatars")
	{
		avatars.POST("", h.create)
		avatars.GET("", h.list)
		avatars.GET("/active", h.getActive)
		avatars.GET("/:id", h.getByID)
		avatars.PUT("/:id", h.update)
		avatars.DELETE("/:id", h.delete)
		avatars.POST("/:id/activate", h.activate)
		avatars.POST("/:id/outfits/:outfit/unlock", h.unlockOutfit)
		avatars.POST("/:id/outfits/:outfit/equip", h.equipOutfit)
		avatars.POST("/:id/energy", h.adjustEnergy)
		avatars.POST("/:id/experience", h.adjustExperience)
	}

	router.GET("/outfits", h.listOutfits)
}

func (h *AvatarHandler) create(c *gin.Context) {
	var input models.CreateAvatarRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		middleware.Fail(c, errors.Wrap(err, errors.ErrCodeBadRequest, "Invalid request body"))
		return
	}
	h.respond(c, http.StatusCreated)(h.service.Create(c.Request.Context(), middleware.GetUserID(c), input))
}

func (h *AvatarHandler) list(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.List(c.Request.Context(), middleware.GetUserID(c)))
}

func (h *AvatarHandler) getActive(c *gin.Context) {
	h.respond(c, http.StatusOK)(h.service.Active(c.Request.Context(), middleware.GetUserID(c)))
}

func (h *AvatarHandler) getByID(c *gin.Context) {
	h.respond(c, http.StatusOK)(h.service.Get(c.Request.Context(), middleware.GetUserID(c), c.Param("id")))
}

func (h *AvatarHandler) update(c *gin.Context) {
	var input models.UpdateAvatarRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		middleware.Fail(c, errors.Wrap(err, errors.ErrCodeBadRequest, "Invalid request body"))
		return
	}
	h.respond(c, http.StatusOK)(h.service.Update(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), input))
}

func (h *AvatarHandler) delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), middleware.GetUserID(c), c.Param("id")); err != nil {
		middleware.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AvatarHandler) activate(c *gin.Context) {
	h.respond(c, http.StatusOK)(h.service.SetActive(c.Request.Context(), middleware.GetUserID(c), c.Param("id")))
}

func (h *AvatarHandler) unlockOutfit(c *gin.Context) {
	h.respond(c, http.StatusOK)(h.service.UnlockOutfit(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), c.Param("outfit")))
}

func (h *AvatarHandler) equipOutfit(c *gin.Context) {
	h.respond(c, http.StatusOK)(h.service.EquipOutfit(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), c.Param("outfit")))
}

func (h *AvatarHandler) adjustEnergy(c *gin.Context) {
	var input models.StatAdjustment
	if err := c.ShouldBindJSON(&input); err != nil {
		middleware.Fail(c, errors.Wrap(err, errors.ErrCodeBadRequest, "Invalid request body"))
		return
	}
	h.respond(c, http.StatusOK)(h.service.AdjustEnergy(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), input.Amount))
}

func (h *AvatarHandler) adjustExperience(c *gin.Context) {
	var input models.StatAdjustment
	if err := c.ShouldBindJSON(&input); err != nil {
		middleware.Fail(c, errors.Wrap(err, errors.ErrCodeBadRequest, "Invalid request body"))
		return
	}
	h.respond(c, http.StatusOK)(h.service.AdjustExperience(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), input.Amount))
}

func (h *AvatarHandler) listOutfits(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Outfits(c.Request.Context()))
}

// respond writes an avatar result or fails with its error.
func (h *AvatarHandler) respond(c *gin.Context, status int) func(*models.Avatar, error) {
	return func(a *models.Avatar, err error) {
		if err != nil {
			middleware.Fail(c, err)
			return
		}
		c.JSON(status, a)
	}
}
