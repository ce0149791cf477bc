package jobs

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

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
	rg.GET("/job", middleware.RequireAuth(), h.search)
	rg.GET("/job/:id", middleware.RequireAuth(), h.get)
	recruiter := rg.Group("", middleware.RequireRole("recruiter"))
	recruiter.POST("/job/post", h.post)
	recruiter.GET("/job/admin", h.listOwn)
}

type postRequest struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Requirements    []string `json:"requirements"`
	Salary          int64    `json:"salary"`
	ExperienceLevel int      `json:"experienceLevel"`
	Location        string   `json:"location"`
	JobType         string   `json:"jobType"`
	Positions       int      `json:"positions"`
	CompanyID       string   `json:"companyId"`
}

func (h *Handler) post(c *gin.Context) {
	var body postRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Malformed job payload")
		return
	}
	job, err := h.Svc.Post(c.Request.Context(), middleware.UserIDFromContext(c), PostInput{
		Title:           body.Title,
		Description:     body.Description,
		Requirements:    body.Requirements,
		Salary:          body.Salary,
		ExperienceLevel: body.ExperienceLevel,
		Location:        body.Location,
		JobType:         body.JobType,
		Positions:       body.Positions,
		CompanyID:       body.CompanyID,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, gin.H{
		"message": "New job created successfully",
		"success": true,
		"job":     job,
	})
}

func (h *Handler) search(c *gin.Context) {
	list, err := h.Svc.Search(c.Request.Context(), c.Query("keyword"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"jobs": list, "success": true})
}

func (h *Handler) get(c *gin.Context) {
	job, err := h.Svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"job": job, "success": true})
}

func (h *Handler) listOwn(c *gin.Context) {
	list, err := h.Svc.ListOwn(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"jobs": list, "success": true})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Job not found")
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
	}
}
