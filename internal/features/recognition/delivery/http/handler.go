package http

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"piano-quest/internal/common/errors"
	"piano-quest/internal/common/middleware"
	"piano-quest/internal/features/recognition/models"
	"piano-quest/internal/features/recognition/service"
)

type RecognitionHandler struct {
	service  *service.RecognitionService
	maxBytes int64
}

func NewRecognitionHandler(service *service.RecognitionService, maxBytes int64) *RecognitionHandler {
	return &RecognitionHandler{service: service, maxBytes: maxBytes}
}

// RegisterRoutes mounts the recognition endpoint. router must already require a session.
func (h *RecognitionHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/recognition", h.recognize)
}

func (h *RecognitionHandler) recognize(c *gin.Context) {
	// room for the multipart envelope around the recording
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+64<<10)

	file, _, err := c.Request.FormFile(models.AudioField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			middleware.Fail(c, errors.New(errors.ErrCodeTooLarge, "Recording is too large"))
			return
		}
		middleware.Fail(c, errors.Wrap(err, errors.ErrCodeBadRequest, "Missing audio upload"))
		return
	}
	defer file.Close()

	match, err := h.service.Recognize(c.Request.Context(), middleware.GetUserID(c), file)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, match)
}
