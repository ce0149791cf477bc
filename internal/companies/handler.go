package companies

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobboard-backend/internal/blob"
	"jobboard-backend/internal/files"
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
	recruiter := rg.Group("", middleware.RequireRole("recruiter"))
	recruiter.POST("/company/register", h.register)
	recruiter.PUT("/company/update/:id", h.update)
	recruiter.GET("/company", h.listOwn)
	rg.GET("/company/:id", middleware.RequireAuth(), h.get)
}

type registerRequest struct {
	CompanyName string `json:"companyName"`
}

func (h *Handler) register(c *gin.Context) {
	var body registerRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Company name is required")
		return
	}
	company, err := h.Svc.Register(c.Request.Context(), middleware.UserIDFromContext(c), body.CompanyName)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, gin.H{
		"message": "Company registered successfully",
		"success": true,
		"company": company,
	})
}

func (h *Handler) update(c *gin.Context) {
	in := UpdateInput{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Website:     c.PostForm("website"),
		Location:    c.PostForm("location"),
	}
	if fileHeader, err := c.FormFile("file"); err == nil {
		file, openErr := fileHeader.Open()
		if openErr != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "Unable to read file")
			return
		}
		defer file.Close()
		in.LogoName = fileHeader.Filename
		in.LogoMime = fileHeader.Header.Get("Content-Type")
		if in.LogoMime == "" {
			in.LogoMime = blob.DefaultMimeType
		}
		in.Logo = file
	}

	company, err := h.Svc.Update(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"message": "Company information updated",
		"success": true,
		"company": company,
	})
}

func (h *Handler) get(c *gin.Context) {
	company, err := h.Svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"company": company, "success": true})
}

func (h *Handler) listOwn(c *gin.Context) {
	list, err := h.Svc.ListOwn(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"companies": list, "success": true})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNameTaken):
		respond.Error(c, http.StatusBadRequest, "name_taken", "You can't register the same company twice")
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Company not found")
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, files.ErrUnsupportedMediaType):
		respond.Error(c, http.StatusBadRequest, "unsupported_media_type", "Only images (JPEG, PNG, GIF) and PDF files are allowed")
	case errors.Is(err, files.ErrPayloadTooLarge):
		respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "File too large. Maximum size is 10MB")
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
	}
}
