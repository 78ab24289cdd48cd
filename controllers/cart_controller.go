package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"marketplace-service/middlewares"
	"marketplace-service/models"
	"marketplace-service/services"
)

type CartController struct {
	carts *services.CartService
}

func NewCartController(carts *services.CartService) *CartController {
	return &CartController{carts: carts}
}

type cartResponse struct {
	Items      []models.CartItem `json:"items"`
	TotalItems int               `json:"total_items"`
	TotalPrice decimal.Decimal   `json:"total_price"`
}

func newCartResponse(cart *models.Cart) cartResponse {
	return cartResponse{Items: cart.Items, TotalItems: cart.TotalItems(), TotalPrice: cart.TotalPrice()}
}

func (cc *CartController) GetCart(c *gin.Context) {
	cart, err := cc.carts.GetCart(c.Request.Context(), middlewares.SessionKey(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartResponse(cart))
}

func (cc *CartController) Count(c *gin.Context) {
	n, err := cc.carts.Count(c.Request.Context(), middlewares.SessionKey(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (cc *CartController) AddItem(c *gin.Context) {
	defer record(c, "cart_add")

	var req struct {
		ProductID int64 `json:"product_id" binding:"required"`
		Quantity  *int  `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	cart, err := cc.carts.AddItem(c.Request.Context(), middlewares.SessionKey(c), req.ProductID, quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Product added to cart",
		"cart_count": cart.TotalItems(),
		"cart":       newCartResponse(cart),
	})
}

func (cc *CartController) UpdateItem(c *gin.Context) {
	defer record(c, "cart_update")

	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Quantity *int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cart, err := cc.carts.UpdateItem(c.Request.Context(), middlewares.SessionKey(c), id, *req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartResponse(cart))
}

func (cc *CartController) RemoveItem(c *gin.Context) {
	defer record(c, "cart_remove")

	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	item, err := cc.carts.RemoveItem(c.Request.Context(), middlewares.SessionKey(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "\"" + item.Product.Name + "\" removed from cart."})
}
