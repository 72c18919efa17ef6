package audios

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"callcoach-backend/internal/shared/server/middleware"
	"callcoach-backend/internal/shared/server/respond"
)

const (
	maxUploadFiles = 5
	maxUploadSize  = 100 << 20 // whole multipart body
)

// Handler wires HTTP handlers to the upload service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches upload routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/audios/upload", h.upload)
}

// upload accepts up to 5 files in the multipart field "audios". The batch
// always returns 200 with both the succeeded records and the per-file
// failures; one bad file never fails the batch.
func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	form, err := c.MultipartForm()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid multipart body", nil)
		return
	}
	headers := form.File["audios"]
	if len(headers) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "no files uploaded", nil)
		return
	}
	if len(headers) > maxUploadFiles {
		respond.Error(c, http.StatusBadRequest, "validation_error", "too many files, maximum is 5", nil)
		return
	}

	files := make([]UploadFile, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read uploaded file", nil)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read uploaded file", nil)
			return
		}
		files = append(files, UploadFile{Name: header.Filename, Data: data})
	}

	result, err := h.Svc.UploadBatch(c.Request.Context(), userID, files)
	if err != nil {
		if errors.Is(err, ErrNoFiles) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "no files uploaded", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process upload", nil)
		return
	}

	respond.JSON(c, http.StatusOK, result)
}
