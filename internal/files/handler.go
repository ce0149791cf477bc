package files

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobboard-backend/internal/blob"
	"jobboard-backend/internal/shared/metrics"
	"jobboard-backend/internal/shared/server/middleware"
	"jobboard-backend/internal/shared/server/respond"
	"jobboard-backend/internal/shared/telemetry"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches file routes to the router group. Uploads require a
// session; retrieval is open so stored ids can be embedded in markup.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload", middleware.RequireAuth(), h.upload)
	rg.GET("/files/:id", h.download)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	metrics.IncUploadStarted()

	// MaxBytesReader caps the whole request body one chunk above the policy
	// limit so the service can distinguish too-large from truncated.
	if h.Svc.Policy.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.Svc.Policy.MaxUploadBytes+copyBufferSize)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		metrics.IncUploadRejected()
		// Parsing the form reads the whole body, so a request past the
		// transport cap surfaces here rather than during streaming.
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "File too large. Maximum size is 10MB")
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "File is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		metrics.IncUploadRejected()
		respond.Error(c, http.StatusBadRequest, "validation_error", "Unable to read file")
		return
	}
	defer file.Close()

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = blob.DefaultMimeType
	}

	stored, err := h.Svc.Ingest(c.Request.Context(), userID, fileHeader.Filename, mimeType, file)
	if err != nil {
		h.writeIngestError(c, err)
		return
	}

	metrics.IncUploadCompleted(stored.Size)
	respond.JSON(c, http.StatusCreated, UploadResponse{
		ID:       stored.ID,
		Filename: stored.OriginalName,
		MimeType: stored.MimeType,
		Size:     stored.Size,
		Category: string(stored.Category),
		Success:  true,
	})
}

func (h *Handler) writeIngestError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUnsupportedMediaType):
		metrics.IncUploadRejected()
		respond.Error(c, http.StatusBadRequest, "unsupported_media_type", "Only images (JPEG, PNG, GIF) and PDF files are allowed")
	case errors.Is(err, ErrPayloadTooLarge):
		metrics.IncUploadRejected()
		respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "File too large. Maximum size is 10MB")
	case errors.Is(err, ErrInvalidInput):
		metrics.IncUploadRejected()
		respond.Error(c, http.StatusBadRequest, "validation_error", "Invalid file name")
	default:
		metrics.IncUploadFailed()
		respond.Error(c, http.StatusInternalServerError, "upload_failed", "Failed to store file")
	}
}

func (h *Handler) download(c *gin.Context) {
	id := c.Param("id")

	rc, meta, err := h.Svc.Fetch(c.Request.Context(), id)
	if err != nil {
		metrics.IncDownloadFailed()
		switch {
		case errors.Is(err, blob.ErrInvalidID):
			respond.Error(c, http.StatusBadRequest, "invalid_id", "Invalid file id")
		case errors.Is(err, blob.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "File not found")
		default:
			respond.Error(c, http.StatusInternalServerError, "storage_error", "Failed to retrieve file")
		}
		return
	}
	defer rc.Close()

	mimeType := meta.MimeType
	if mimeType == "" {
		mimeType = blob.DefaultMimeType
	}
	c.Header("Content-Type", mimeType)
	if meta.Length > 0 {
		c.Header("Content-Length", fmt.Sprintf("%d", meta.Length))
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", downloadName(meta)))
	c.Status(http.StatusOK)

	// Headers are committed once streaming starts, so a mid-stream failure
	// can only be surfaced by truncating the body and logging.
	written, err := io.Copy(c.Writer, rc)
	if err != nil {
		metrics.IncDownloadFailed()
		telemetry.Error("files.download.stream_failed", map[string]any{
			"blob_id":   id,
			"bytes_out": written,
			"err":       err.Error(),
		})
		return
	}
	metrics.IncDownload(written)
	c.Set("blobId", id)
	c.Set("bytesOut", written)
}

func downloadName(meta blob.Metadata) string {
	if meta.OriginalName != "" {
		return meta.OriginalName
	}
	if meta.StoredName != "" {
		return meta.StoredName
	}
	return "file"
}
