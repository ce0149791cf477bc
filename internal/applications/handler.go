package applications

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobboard-backend/internal/jobs"
	"jobboard-backend/internal/shared/server/middleware"
	"jobboard-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/application/apply/:jobId", middleware.RequireAuth(), h.apply)
	rg.GET("/application", middleware.RequireAuth(), h.listOwn)
	recruiter := rg.Group("", middleware.RequireRole("recruiter"))
	recruiter.GET("/application/:jobId/applicants", h.listApplicants)
	recruiter.PUT("/application/status/:id", h.updateStatus)
}

func (h *Handler) apply(c *gin.Context) {
	app, err := h.Svc.Apply(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("jobId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, gin.H{
		"message":     "Job applied successfully",
		"success":     true,
		"application": app,
	})
}

func (h *Handler) listOwn(c *gin.Context) {
	list, err := h.Svc.ListOwn(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"applications": list, "success": true})
}

func (h *Handler) listApplicants(c *gin.Context) {
	list, err := h.Svc.ListApplicants(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("jobId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"applicants": list, "success": true})
}

func (h *Handler) updateStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Status is required")
		return
	}
	app, err := h.Svc.UpdateStatus(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), body.Status)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"message":     "Status updated successfully",
		"success":     true,
		"application": app,
	})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrAlreadyApplied):
		respond.Error(c, http.StatusBadRequest, "already_applied", "You have already applied for this job")
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "You do not own this job posting")
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Application not found")
	case errors.Is(err, jobs.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Job not found")
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
	}
}
