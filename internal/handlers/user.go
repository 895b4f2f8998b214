package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"serrano/api/internal/apperr"
	"serrano/api/internal/ids"
	"serrano/api/internal/middleware"
	"serrano/api/internal/models"
	"serrano/api/internal/repository"
	"serrano/api/internal/service"
)

type userResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       *string   `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	AvatarURL   *string   `json:"avatarUrl"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toUserResponse(user models.User) userResponse {
	return userResponse{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
		AvatarURL:   user.AvatarURL,
		Role:        string(user.Role),
		CreatedAt:   user.CreatedAt,
	}
}

func currentUser(c *gin.Context) models.User {
	return c.MustGet(middleware.CtxUser).(models.User)
}

type loginUserRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

// LoginUser signs a customer in by phone number. An unknown number creates
// the account on the spot.
func (h HandlerSet) LoginUser(c *gin.Context) {
	var req loginUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.auth.LoginUser(c.Request.Context(), req.PhoneNumber, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.setSessionCookie(c, models.RoleUser, token)
	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}

func (h HandlerSet) LogoutUser(c *gin.Context) {
	h.clearSessionCookie(c, models.RoleUser)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h HandlerSet) GetUser(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(currentUser(c))})
}

type updateUserInfoRequest struct {
	Name  string  `json:"name" binding:"required"`
	Email *string `json:"email"`
}

func (h HandlerSet) UpdateUserInfo(c *gin.Context) {
	var req updateUserInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := currentUser(c)
	if err := h.users.UpdateProfile(c.Request.Context(), user.ID, req.Name, req.Email); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			h.respondError(c, apperr.New(apperr.KindConflict, "email already in use"))
			return
		}
		h.respondError(c, apperr.Wrap(apperr.KindInternal, "update user", err))
		return
	}

	updated, err := h.users.GetByID(c.Request.Context(), user.ID)
	if err != nil {
		h.respondError(c, apperr.Wrap(apperr.KindInternal, "load user", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(updated)})
}

func (h HandlerSet) UpdateUserAvatar(c *gin.Context) {
	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "avatar file is required"})
		return
	}
	defer file.Close()

	user := currentUser(c)
	url, err := h.upload.UploadAvatar(c.Request.Context(), file, header, user.AvatarURL)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.users.UpdateAvatar(c.Request.Context(), user.ID, url); err != nil {
		h.respondError(c, apperr.Wrap(apperr.KindInternal, "update avatar", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatarUrl": url})
}

type addressRequest struct {
	Country     string `json:"country" binding:"required"`
	City        string `json:"city" binding:"required"`
	Address1    string `json:"address1" binding:"required"`
	Address2    string `json:"address2"`
	ZipCode     string `json:"zipCode"`
	AddressType string `json:"addressType" binding:"required"`
}

type addressResponse struct {
	ID          string `json:"id"`
	Country     string `json:"country"`
	City        string `json:"city"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2"`
	ZipCode     string `json:"zipCode"`
	AddressType string `json:"addressType"`
}

func (h HandlerSet) UpdateUserAddresses(c *gin.Context) {
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := currentUser(c)
	address := models.Address{
		ID:          ids.New(),
		UserID:      user.ID,
		Country:     req.Country,
		City:        req.City,
		Address1:    req.Address1,
		Address2:    req.Address2,
		ZipCode:     req.ZipCode,
		AddressType: req.AddressType,
	}
	if err := h.users.AddAddress(c.Request.Context(), address); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			h.respondError(c, apperr.New(apperr.KindConflict, req.AddressType+" address already exists"))
			return
		}
		h.respondError(c, apperr.Wrap(apperr.KindInternal, "add address", err))
		return
	}

	h.respondAddresses(c, user.ID)
}

func (h HandlerSet) DeleteUserAddress(c *gin.Context) {
	user := currentUser(c)
	if err := h.users.DeleteAddress(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrAddressNotFound) {
			h.respondError(c, apperr.New(apperr.KindNotFound, "address not found"))
			return
		}
		h.respondError(c, apperr.Wrap(apperr.KindInternal, "delete address", err))
		return
	}

	h.respondAddresses(c, user.ID)
}

func (h HandlerSet) respondAddresses(c *gin.Context, userID string) {
	addresses, err := h.users.ListAddresses(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, apperr.Wrap(apperr.KindInternal, "list addresses", err))
		return
	}

	resp := make([]addressResponse, 0, len(addresses))
	for _, a := range addresses {
		resp = append(resp, addressResponse{
			ID:          a.ID,
			Country:     a.Country,
			City:        a.City,
			Address1:    a.Address1,
			Address2:    a.Address2,
			ZipCode:     a.ZipCode,
			AddressType: a.AddressType,
		})
	}
	c.JSON(http.StatusOK, gin.H{"addresses": resp})
}

type changePasswordRequest struct {
	OldPassword     string `json:"oldPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

func (h HandlerSet) UpdateUserPassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := currentUser(c)
	err := h.auth.ChangeUserPassword(c.Request.Context(), user.ID, service.ChangePasswordInput{
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

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h HandlerSet) ForgotUserPassword(c *gin.Context) {
	h.forgotPassword(c, models.RoleUser)
}

type resetPasswordRequest struct {
	Token           string `json:"token" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

func (h HandlerSet) ResetUserPassword(c *gin.Context) {
	h.resetPassword(c)
}

func (h HandlerSet) forgotPassword(c *gin.Context, role models.Role) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.activation.ForgotPassword(c.Request.Context(), role, req.Email); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "reset link sent"})
}

func (h HandlerSet) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.activation.ResetPassword(c.Request.Context(), req.Token, req.NewPassword, req.ConfirmPassword); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password reset"})
}

// UserInfo is the public profile lookup used on review widgets.
func (h HandlerSet) UserInfo(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			h.respondError(c, apperr.New(apperr.KindNotFound, "user not found"))
			return
		}
		h.respondError(c, apperr.Wrap(apperr.KindInternal, "load user", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}

func (h HandlerSet) AdminListUsers(c *gin.Context) {
	limit, offset := pagination(c)
	users, err := h.users.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.respondError(c, apperr.Wrap(apperr.KindInternal, "list users", err))
		return
	}

	resp := make([]userResponse, 0, len(users))
	for _, user := range users {
		resp = append(resp, toUserResponse(user))
	}
	c.JSON(http.StatusOK, gin.H{"users": resp})
}

func (h HandlerSet) AdminDeleteUser(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			h.respondError(c, apperr.New(apperr.KindNotFound, "user not found"))
			return
		}
		h.respondError(c, apperr.Wrap(apperr.KindInternal, "delete user", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
