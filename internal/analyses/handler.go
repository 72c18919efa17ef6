package analyses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"callcoach-backend/internal/shared/server/middleware"
	"callcoach-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the analysis service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/audios/:id/analyze", h.analyze)
	rg.GET("/audios", h.list)
}

func (h *Handler) analyze(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	audioID := c.Param("id")

	audio, analysis, err := h.Svc.Analyze(c.Request.Context(), userID, audioID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "audio not found", nil)
		case errors.Is(err, ErrTranscriptMissing):
			respond.Error(c, http.StatusBadRequest, "transcript_missing", "transcript not available for this audio", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to analyze audio", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"audio":    audio,
		"analysis": analysis,
	})
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	combined, err := h.Svc.ListWithAudios(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list audios", nil)
		return
	}
	if combined == nil {
		combined = []Combined{}
	}
	respond.JSON(c, http.StatusOK, combined)
}
