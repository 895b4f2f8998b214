package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"serrano/api/internal/apperr"
	"serrano/api/internal/ids"
	"serrano/api/internal/models"
	"serrano/api/internal/repository"
)

type productResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	OriginalPrice int64     `json:"originalPrice"`
	DiscountPrice int64     `json:"discountPrice"`
	Stock         int       `json:"stock"`
	ImageURLs     []string  `json:"imageUrls"`
	CreatedAt     time.Time `json:"createdAt"`
}

func toProductResponse(product models.Product) productResponse {
	return productResponse{
		ID:            product.ID,
		Name:          product.Name,
		Description:   product.Description,
		Category:      product.Category,
		OriginalPrice: product.OriginalPrice,
		DiscountPrice: product.DiscountPrice,
		Stock:         product.Stock,
		ImageURLs:     product.ImageURLs,
		CreatedAt:     product.CreatedAt,
	}
}

func toProductResponses(products []models.Product) []productResponse {
	resp := make([]productResponse, 0, len(products))
	for _, product := range products {
		resp = append(resp, toProductResponse(product))
	}
	return resp
}

// CreateProduct adds a catalog product from a multipart form with up to
// five images.
func (h HandlerSet) CreateProduct(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form is required"})
		return
	}

	name := formValue(form, "name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	originalPrice, err := strconv.ParseInt(formValue(form, "originalPrice"), 10, 64)
	if err != nil || originalPrice <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "originalPrice must be a positive number"})
		return
	}
	discountPrice, err := strconv.ParseInt(formValue(form, "discountPrice"), 10, 64)
	if err != nil || discountPrice <= 0 {
		discountPrice = originalPrice
	}

	imageURLs, err := h.upload.UploadProductImages(c.Request.Context(), form.File["images"])
	if err != nil {
		h.respondError(c, err)
		return
	}

	product := models.Product{
		ID:            ids.New(),
		Name:          name,
		Description:   formValue(form, "description"),
		Category:      formValue(form, "category"),
		OriginalPrice: originalPrice,
		DiscountPrice: discountPrice,
		ImageURLs:     imageURLs,
	}
	if err := h.products.Create(c.Request.Context(), product); err != nil {
		h.respondError(c, apperr.Wrap(apperr.KindInternal, "create product", err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": toProductResponse(product)})
}

func (h HandlerSet) ListProducts(c *gin.Context) {
	limit, offset := pagination(c)
	products, err := h.products.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.respondError(c, apperr.Wrap(apperr.KindInternal, "list products", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": toProductResponses(products)})
}

func (h HandlerSet) AdminListProducts(c *gin.Context) {
	h.ListProducts(c)
}

func (h HandlerSet) ProductInfo(c *gin.Context) {
	product, err := h.products.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			h.respondError(c, apperr.New(apperr.KindNotFound, "product not found"))
			return
		}
		h.respondError(c, apperr.Wrap(apperr.KindInternal, "load product", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": toProductResponse(product)})
}
