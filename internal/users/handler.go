package users

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobboard-backend/internal/blob"
	"jobboard-backend/internal/files"
	"jobboard-backend/internal/shared/auth"
	"jobboard-backend/internal/shared/server/middleware"
	"jobboard-backend/internal/shared/server/respond"
)

const tokenTTLSeconds = 24 * 60 * 60

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/user/register", h.register)
	rg.POST("/user/login", h.login)
	rg.GET("/user/logout", h.logout)
	rg.POST("/user/profile/update", middleware.RequireAuth(), h.updateProfile)
	rg.GET("/user/me", middleware.RequireAuth(), h.me)
}

func (h *Handler) register(c *gin.Context) {
	in := RegisterInput{
		FullName:    c.PostForm("fullname"),
		Email:       c.PostForm("email"),
		PhoneNumber: c.PostForm("phoneNumber"),
		Password:    c.PostForm("password"),
		Role:        c.PostForm("role"),
	}

	if fileHeader, err := c.FormFile("file"); err == nil {
		file, openErr := fileHeader.Open()
		if openErr != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "Unable to read file")
			return
		}
		defer file.Close()
		in.File = &FileUpload{
			OriginalName: fileHeader.Filename,
			MimeType:     partMimeType(fileHeader),
			Reader:       file,
		}
	}

	user, err := h.Svc.Register(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, UserResponse{
		Message: "Account created successfully",
		Success: true,
		User:    ToDTO(user),
	})
}

func (h *Handler) login(c *gin.Context) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Email, password and role are required")
		return
	}

	user, err := h.Svc.Login(c.Request.Context(), body.Email, body.Password, body.Role)
	if err != nil {
		h.writeError(c, err)
		return
	}

	token, err := auth.SignJWT(auth.Claims{
		Sub:      user.ID,
		Email:    user.Email,
		Role:     user.Role,
		FullName: user.FullName,
	})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "token_error", "Failed to issue session token")
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.TokenCookie, token, tokenTTLSeconds, "/", "", false, true)
	respond.JSON(c, http.StatusOK, UserResponse{
		Message: "Welcome back " + user.FullName,
		Success: true,
		User:    ToDTO(user),
	})
}

func (h *Handler) logout(c *gin.Context) {
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", false, true)
	respond.Success(c, http.StatusOK, "Logged out successfully")
}

func (h *Handler) me(c *gin.Context) {
	user, err := h.Svc.GetByID(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, UserResponse{
		Message: "OK",
		Success: true,
		User:    ToDTO(user),
	})
}

func (h *Handler) updateProfile(c *gin.Context) {
	in := UpdateInput{
		FullName:    c.PostForm("fullname"),
		Email:       c.PostForm("email"),
		PhoneNumber: c.PostForm("phoneNumber"),
		Bio:         c.PostForm("bio"),
	}
	if raw := c.PostForm("skills"); raw != "" {
		in.Skills = strings.Split(raw, ",")
	}

	if fileHeader, err := c.FormFile("file"); err == nil {
		file, openErr := fileHeader.Open()
		if openErr != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "Unable to read file")
			return
		}
		defer file.Close()
		in.File = &FileUpload{
			OriginalName: fileHeader.Filename,
			MimeType:     partMimeType(fileHeader),
			Reader:       file,
		}
	}

	user, err := h.Svc.UpdateProfile(c.Request.Context(), middleware.UserIDFromContext(c), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, UserResponse{
		Message: "Profile updated successfully",
		Success: true,
		User:    ToDTO(user),
	})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrBadCredentials):
		respond.Error(c, http.StatusBadRequest, "bad_credentials", "Incorrect email, password or role")
	case errors.Is(err, ErrEmailTaken):
		respond.Error(c, http.StatusBadRequest, "email_taken", "User already exists with this email")
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "User not found")
	case errors.Is(err, files.ErrUnsupportedMediaType):
		respond.Error(c, http.StatusBadRequest, "unsupported_media_type", "Only images (JPEG, PNG, GIF) and PDF files are allowed")
	case errors.Is(err, files.ErrPayloadTooLarge):
		respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "File too large. Maximum size is 10MB")
	case errors.Is(err, files.ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", "Invalid file name")
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
	}
}

func partMimeType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return blob.DefaultMimeType
}
