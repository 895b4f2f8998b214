package handlers

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"serrano/api/internal/apperr"
	"serrano/api/internal/middleware"
	"serrano/api/internal/models"
	"serrano/api/internal/repository"
	"serrano/api/internal/service"
)

type shopResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	PhoneNumber string          `json:"phoneNumber"`
	Description *string         `json:"description"`
	Address     string          `json:"address"`
	ZipCode     string          `json:"zipCode"`
	AvatarURL   *string         `json:"avatarUrl"`
	Status      string          `json:"status"`
	Withdraw    json.RawMessage `json:"withdrawMethod,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func toShopResponse(shop models.Shop) shopResponse {
	return shopResponse{
		ID:          shop.ID,
		Name:        shop.Name,
		Email:       shop.Email,
		PhoneNumber: shop.PhoneNumber,
		Description: shop.Description,
		Address:     shop.Address,
		ZipCode:     shop.ZipCode,
		AvatarURL:   shop.AvatarURL,
		Status:      string(shop.Status),
		Withdraw:    shop.WithdrawMethod,
		CreatedAt:   shop.CreatedAt,
	}
}

// publicShopResponse omits the withdraw method and identity documents.
func toPublicShopResponse(shop models.Shop) shopResponse {
	resp := toShopResponse(shop)
	resp.Withdraw = nil
	return resp
}

func currentShop(c *gin.Context) models.Shop {
	return c.MustGet(middleware.CtxSeller).(models.Shop)
}

// CreateShop stages a shop registration from a multipart form: profile
// fields plus avatar and identity documents. Nothing is persisted until the
// emailed activation token comes back.
func (h HandlerSet) CreateShop(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form is required"})
		return
	}

	input := service.RegisterShopInput{
		Name:        formValue(form, "name"),
		Email:       formValue(form, "email"),
		Password:    formValue(form, "password"),
		PhoneNumber: formValue(form, "phoneNumber"),
		Address:     formValue(form, "address"),
		ZipCode:     formValue(form, "zipCode"),
	}

	if input.AvatarURL, err = h.uploadFormFile(c, form, "avatar", true); err != nil {
		h.respondError(c, err)
		return
	}
	if input.AadharCardURL, err = h.uploadFormFile(c, form, "aadharCard", false); err != nil {
		h.respondError(c, err)
		return
	}
	if input.PanCardURL, err = h.uploadFormFile(c, form, "panCard", false); err != nil {
		h.respondError(c, err)
		return
	}
	if input.ShopLicenseURL, err = h.uploadFormFile(c, form, "shopLicense", false); err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.activation.RegisterShop(c.Request.Context(), input); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "please check your email to activate your shop",
	})
}

// uploadFormFile stores a single named file from the form. avatar=true
// routes it through the avatar pipeline, otherwise the document one.
func (h HandlerSet) uploadFormFile(c *gin.Context, form *multipart.Form, field string, avatar bool) (*string, error) {
	headers := form.File[field]
	if len(headers) == 0 {
		return nil, nil
	}
	header := headers[0]

	file, err := header.Open()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "open uploaded file", err)
	}
	defer file.Close()

	var url string
	if avatar {
		url, err = h.upload.UploadAvatar(c.Request.Context(), file, header, nil)
	} else {
		url, err = h.upload.UploadDocument(c.Request.Context(), file, header)
	}
	if err != nil {
		return nil, err
	}
	return &url, nil
}

func formValue(form *multipart.Form, field string) string {
	values := form.Value[field]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

type activationRequest struct {
	ActivationToken string `json:"activationToken" binding:"required"`
}

// ActivateShop exchanges the emailed token for a pending shop record.
func (h HandlerSet) ActivateShop(c *gin.Context) {
	var req activationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shop, token, err := h.activation.ActivateShop(c.Request.Context(), req.ActivationToken)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.setSessionCookie(c, models.RoleSeller, token)
	c.JSON(http.StatusCreated, gin.H{"seller": toShopResponse(shop)})
}

type loginShopRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) LoginShop(c *gin.Context) {
	var req loginShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shop, token, err := h.auth.LoginSeller(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.setSessionCookie(c, models.RoleSeller, token)
	c.JSON(http.StatusOK, gin.H{"seller": toShopResponse(shop)})
}

func (h HandlerSet) GetSeller(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"seller": toShopResponse(currentShop(c))})
}

func (h HandlerSet) LogoutShop(c *gin.Context) {
	h.clearSessionCookie(c, models.RoleSeller)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h HandlerSet) ShopInfo(c *gin.Context) {
	shop, err := h.shops.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrShopNotFound) {
			h.respondError(c, apperr.New(apperr.KindNotFound, "shop not found"))
			return
		}
		h.respondError(c, apperr.Wrap(apperr.KindInternal, "load shop", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"shop": toPublicShopResponse(shop)})
}

func (h HandlerSet) UpdateShopAvatar(c *gin.Context) {
	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "avatar file is required"})
		return
	}
	defer file.Close()

	shop := currentShop(c)
	url, err := h.upload.UploadAvatar(c.Request.Context(), file, header, shop.AvatarURL)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.shops.UpdateAvatar(c.Request.Context(), shop.ID, url); err != nil {
		h.respondError(c, apperr.Wrap(apperr.KindInternal, "update avatar", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatarUrl": url})
}

type updateShopInfoRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Address     string  `json:"address" binding:"required"`
	PhoneNumber string  `json:"phoneNumber" binding:"required"`
	ZipCode     string  `json:"zipCode" binding:"required"`
}

func (h HandlerSet) UpdateShopInfo(c *gin.Context) {
	var req updateShopInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shop := currentShop(c)
	shop.Name = req.Name
	shop.Description = req.Description
	shop.Address = req.Address
	shop.PhoneNumber = req.PhoneNumber
	shop.ZipCode = req.ZipCode

	if err := h.shops.UpdateProfile(c.Request.Context(), shop); err != nil {
		h.respondError(c, apperr.Wrap(apperr.KindInternal, "update shop", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"shop": toShopResponse(shop)})
}

type withdrawMethodRequest struct {
	WithdrawMethod json.RawMessage `json:"withdrawMethod" binding:"required"`
}

func (h HandlerSet) UpdateWithdrawMethod(c *gin.Context) {
	var req withdrawMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shop := currentShop(c)
	if err := h.shops.UpdateWithdrawMethod(c.Request.Context(), shop.ID, req.WithdrawMethod); err != nil {
		h.respondError(c, apperr.Wrap(apperr.KindInternal, "update withdraw method", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "withdraw method updated"})
}

func (h HandlerSet) DeleteWithdrawMethod(c *gin.Context) {
	shop := currentShop(c)
	if err := h.shops.UpdateWithdrawMethod(c.Request.Context(), shop.ID, nil); err != nil {
		h.respondError(c, apperr.Wrap(apperr.KindInternal, "delete withdraw method", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "withdraw method deleted"})
}

func (h HandlerSet) UpdateShopPassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shop := currentShop(c)
	err := h.auth.ChangeSellerPassword(c.Request.Context(), shop.ID, service.ChangePasswordInput{
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

func (h HandlerSet) ForgotShopPassword(c *gin.Context) {
	h.forgotPassword(c, models.RoleSeller)
}

func (h HandlerSet) ResetShopPassword(c *gin.Context) {
	h.resetPassword(c)
}

func (h HandlerSet) ShopOrders(c *gin.Context) {
	shop := currentShop(c)
	orders, err := h.orders.ListByShop(c.Request.Context(), shop.ID)
	if err != nil {
		h.respondError(c, apperr.Wrap(apperr.KindInternal, "list orders", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": toOrderResponses(orders)})
}

func (h HandlerSet) ShopProducts(c *gin.Context) {
	shop := currentShop(c)
	products, err := h.products.ListByShop(c.Request.Context(), shop.ID)
	if err != nil {
		h.respondError(c, apperr.Wrap(apperr.KindInternal, "list products", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": toProductResponses(products)})
}

type restockRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// RestockProduct adds the seller's units to a product's stock.
func (h HandlerSet) RestockProduct(c *gin.Context) {
	var req restockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be positive"})
		return
	}

	shop := currentShop(c)
	product, err := h.products.AddStock(c.Request.Context(), c.Param("id"), shop.ID, req.Quantity)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			h.respondError(c, apperr.New(apperr.KindNotFound, "product not found"))
			return
		}
		h.respondError(c, apperr.Wrap(apperr.KindInternal, "restock product", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": toProductResponse(product)})
}

func (h HandlerSet) AdminListShops(c *gin.Context) {
	limit, offset := pagination(c)
	shops, err := h.shops.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.respondError(c, apperr.Wrap(apperr.KindInternal, "list shops", err))
		return
	}

	resp := make([]shopResponse, 0, len(shops))
	for _, shop := range shops {
		resp = append(resp, toShopResponse(shop))
	}
	c.JSON(http.StatusOK, gin.H{"sellers": resp})
}

func (h HandlerSet) AdminDeleteShop(c *gin.Context) {
	if err := h.shops.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrShopNotFound) {
			h.respondError(c, apperr.New(apperr.KindNotFound, "shop not found"))
			return
		}
		h.respondError(c, apperr.Wrap(apperr.KindInternal, "delete shop", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "seller deleted"})
}

type updateShopStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AdminUpdateShopStatus flips a shop between pending and approved. Approval
// is what unlocks seller login.
func (h HandlerSet) AdminUpdateShopStatus(c *gin.Context) {
	var req updateShopStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := models.ShopStatus(req.Status)
	if status != models.ShopStatusPending && status != models.ShopStatusApproved {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be pending or approved"})
		return
	}

	if err := h.shops.UpdateStatus(c.Request.Context(), c.Param("id"), status); err != nil {
		if errors.Is(err, repository.ErrShopNotFound) {
			h.respondError(c, apperr.New(apperr.KindNotFound, "shop not found"))
			return
		}
		h.respondError(c, apperr.Wrap(apperr.KindInternal, "update shop status", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "shop status updated"})
}
