package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"serrano/api/internal/apperr"
	"serrano/api/internal/middleware"
	"serrano/api/internal/models"
	"serrano/api/internal/service"
)

type adminResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	AvatarURL   *string   `json:"avatarUrl"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toAdminResponse(admin models.Admin) adminResponse {
	return adminResponse{
		ID:          admin.ID,
		Name:        admin.Name,
		Email:       admin.Email,
		PhoneNumber: admin.PhoneNumber,
		AvatarURL:   admin.AvatarURL,
		Role:        string(admin.Role),
		CreatedAt:   admin.CreatedAt,
	}
}

func currentAdmin(c *gin.Context) models.Admin {
	return c.MustGet(middleware.CtxAdmin).(models.Admin)
}

// CreateAdmin registers an admin account from a multipart form with an
// optional avatar.
func (h HandlerSet) CreateAdmin(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form is required"})
		return
	}

	input := service.CreateAdminInput{
		Name:        formValue(form, "name"),
		Email:       formValue(form, "email"),
		Password:    formValue(form, "password"),
		PhoneNumber: formValue(form, "phoneNumber"),
	}
	if input.AvatarURL, err = h.uploadFormFile(c, form, "avatar", true); err != nil {
		h.respondError(c, err)
		return
	}

	admin, err := h.auth.CreateAdmin(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"admin": toAdminResponse(admin)})
}

type loginAdminRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) LoginAdmin(c *gin.Context) {
	var req loginAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	admin, token, err := h.auth.LoginAdmin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.setSessionCookie(c, models.RoleAdmin, token)
	c.JSON(http.StatusOK, gin.H{"admin": toAdminResponse(admin)})
}

func (h HandlerSet) LogoutAdmin(c *gin.Context) {
	h.clearSessionCookie(c, models.RoleAdmin)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h HandlerSet) UpdateAdminAvatar(c *gin.Context) {
	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "avatar file is required"})
		return
	}
	defer file.Close()

	admin := currentAdmin(c)
	url, err := h.upload.UploadAvatar(c.Request.Context(), file, header, admin.AvatarURL)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.admins.UpdateAvatar(c.Request.Context(), admin.ID, url); err != nil {
		h.respondError(c, apperr.Wrap(apperr.KindInternal, "update avatar", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatarUrl": url})
}

type updateAdminProfileRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phoneNumber"`
}

func (h HandlerSet) UpdateAdminProfile(c *gin.Context) {
	var req updateAdminProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	admin := currentAdmin(c)
	admin.Name = req.Name
	admin.Email = req.Email
	admin.PhoneNumber = req.PhoneNumber

	if err := h.admins.UpdateProfile(c.Request.Context(), admin); err != nil {
		h.respondError(c, apperr.Wrap(apperr.KindInternal, "update admin", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"admin": toAdminResponse(admin)})
}

func (h HandlerSet) UpdateAdminPassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	admin := currentAdmin(c)
	err := h.auth.ChangeAdminPassword(c.Request.Context(), admin.ID, service.ChangePasswordInput{
		OldPassword:     req.OldPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

func (h HandlerSet) ForgotAdminPassword(c *gin.Context) {
	h.forgotPassword(c, models.RoleAdmin)
}

func (h HandlerSet) ResetAdminPassword(c *gin.Context) {
	h.resetPassword(c)
}
