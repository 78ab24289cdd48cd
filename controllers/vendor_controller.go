package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"marketplace-service/services"
)

type VendorController struct {
	vendors *services.VendorService
}

func NewVendorController(vendors *services.VendorService) *VendorController {
	return &VendorController{vendors: vendors}
}

type storeRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email" binding:"required"`
	IsActive    *bool  `json:"is_active"`
}

func (r storeRequest) input() services.StoreInput {
	return services.StoreInput{
		Name:        r.Name,
		Description: r.Description,
		Address:     r.Address,
		PhoneNumber: r.PhoneNumber,
		Email:       r.Email,
		IsActive:    r.IsActive,
	}
}

type productRequest struct {
	CategoryID      *int64          `json:"category_id"`
	Name            string          `json:"name" binding:"required"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	QuantityInStock int             `json:"quantity_in_stock"`
	ImageURL        string          `json:"image_url"`
	IsActive        *bool           `json:"is_active"`
}

func (r productRequest) input() services.ProductInput {
	return services.ProductInput{
		CategoryID:      r.CategoryID,
		Name:            r.Name,
		Description:     r.Description,
		Price:           r.Price,
		QuantityInStock: r.QuantityInStock,
		ImageURL:        r.ImageURL,
		IsActive:        r.IsActive,
	}
}

func (vc *VendorController) Dashboard(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	dash, err := vc.vendors.Dashboard(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

func (vc *VendorController) ListStores(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	stores, err := vc.vendors.ListStores(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stores)
}

func (vc *VendorController) CreateStore(c *gin.Context) {
	defer record(c, "create_store")

	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req storeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	store, err := vc.vendors.CreateStore(c.Request.Context(), actor, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, store)
}

func (vc *VendorController) UpdateStore(c *gin.Context) {
	defer record(c, "update_store")

	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req storeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	store, err := vc.vendors.UpdateStore(c.Request.Context(), actor, id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, store)
}

func (vc *VendorController) DeleteStore(c *gin.Context) {
	defer record(c, "delete_store")

	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	store, err := vc.vendors.DeleteStore(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Store \"" + store.Name + "\" deleted successfully!"})
}

func (vc *VendorController) StoreProducts(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	store, products, err := vc.vendors.StoreProducts(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"store": store, "products": products})
}

func (vc *VendorController) CreateProduct(c *gin.Context) {
	defer record(c, "create_product")

	actor, ok := currentActor(c)
	if !ok {
		return
	}
	storeID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	product, err := vc.vendors.CreateProduct(c.Request.Context(), actor, storeID, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (vc *VendorController) UpdateProduct(c *gin.Context) {
	defer record(c, "update_product")

	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	product, err := vc.vendors.UpdateProduct(c.Request.Context(), actor, id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (vc *VendorController) DeleteProduct(c *gin.Context) {
	defer record(c, "delete_product")

	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	product, err := vc.vendors.DeleteProduct(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product \"" + product.Name + "\" deleted successfully!"})
}
