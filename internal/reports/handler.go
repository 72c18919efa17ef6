package reports

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"callcoach-backend/internal/analyses"
	"callcoach-backend/internal/shared/server/middleware"
	"callcoach-backend/internal/shared/server/respond"
	"callcoach-backend/internal/shared/telemetry"
)

// Handler streams XLSX score reports.
type Handler struct {
	Svc *analyses.Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *analyses.Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches report routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/audios/export", h.export)
}

func (h *Handler) export(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	combined, err := h.Svc.ListWithAudios(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load audios", nil)
		return
	}

	workbook, err := BuildWorkbook(combined)
	if err != nil {
		telemetry.Error("reports.export.failed", map[string]any{
			"err":        err.Error(),
			"request_id": middleware.RequestIDFromContext(c),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to build report", nil)
		return
	}
	defer workbook.Close()

	fileName := fmt.Sprintf("call-scores-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Status(http.StatusOK)
	if _, err := workbook.WriteTo(c.Writer); err != nil {
		telemetry.Error("reports.export.write_failed", map[string]any{
			"err": err.Error(),
		})
	}
}
