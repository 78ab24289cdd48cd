package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-service/middlewares"
	"marketplace-service/services"
)

type OrderController struct {
	checkout *services.CheckoutService
	orders   *services.OrderService
}

func NewOrderController(checkout *services.CheckoutService, orders *services.OrderService) *OrderController {
	return &OrderController{checkout: checkout, orders: orders}
}

func (oc *OrderController) Checkout(c *gin.Context) {
	defer record(c, "checkout")

	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req struct {
		ShippingAddress string `json:"shipping_address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := oc.checkout.FinalizeCheckout(c.Request.Context(), actor, middlewares.SessionKey(c), req.ShippingAddress)
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.RecordOrderPlaced(order.TotalAmount)
	c.JSON(http.StatusCreated, gin.H{
		"message": "Order #" + order.OrderID + " placed successfully!",
		"order":   order,
	})
}

func (oc *OrderController) ListOrders(c *gin.Context) {
	defer record(c, "list_orders")

	actor, ok := currentActor(c)
	if !ok {
		return
	}
	page, err := oc.orders.ListOrders(c.Request.Context(), actor, queryInt(c, "page"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (oc *OrderController) GetOrder(c *gin.Context) {
	defer record(c, "order_details")

	actor, ok := currentActor(c)
	if !ok {
		return
	}
	order, err := oc.orders.OrderDetail(c.Request.Context(), actor, c.Param("order_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (oc *OrderController) Confirmation(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	order, err := oc.orders.OrderDetail(c.Request.Context(), actor, c.Param("order_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Thank you! Your order has been placed.",
		"order":   order,
	})
}

func (oc *OrderController) UpdateStatus(c *gin.Context) {
	defer record(c, "update_status")

	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required,oneof=pending processing shipped delivered cancelled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := oc.orders.UpdateStatus(c.Request.Context(), actor, c.Param("order_id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "order_id": order.OrderID, "status": order.Status})
}
