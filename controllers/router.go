package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marketplace-service/middlewares"
	"marketplace-service/models"
)

type Controllers struct {
	Auth    *AuthController
	Catalog *CatalogController
	Cart    *CartController
	Orders  *OrderController
	Vendor  *VendorController
}

type RouterConfig struct {
	JWTSecret    string
	CookieSecure bool
	Logger       *slog.Logger
}

func SetupRouter(cfg RouterConfig, h Controllers) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middlewares.RequestLogger(cfg.Logger),
		middlewares.SecurityHeaders(),
		middlewares.PrometheusMiddleware(),
		middlewares.CartSession(cfg.CookieSecure),
	)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/home", h.Catalog.Home)
		api.GET("/categories", h.Catalog.ListCategories)
		api.GET("/products", h.Catalog.ListProducts)
		api.GET("/products/:id", h.Catalog.GetProduct)
		api.GET("/cart/count", h.Cart.Count)

		auth := api.Group("/auth")
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/logout", h.Auth.Logout)
		auth.POST("/password-reset", h.Auth.RequestPasswordReset)
		auth.POST("/password-reset/confirm", h.Auth.ConfirmPasswordReset)
	}

	authed := api.Group("")
	authed.Use(middlewares.AuthMiddleware(cfg.JWTSecret))
	{
		authed.GET("/profile", h.Auth.GetProfile)
		authed.PUT("/profile", h.Auth.UpdateProfile)
		authed.PUT("/orders/:order_id/status",
			middlewares.RequireRole(models.RoleBuyer, models.RoleVendor), h.Orders.UpdateStatus)
	}

	buyer := authed.Group("")
	buyer.Use(middlewares.RequireRole(models.RoleBuyer))
	{
		buyer.POST("/products/:id/reviews", h.Catalog.AddReview)

		buyer.GET("/cart", h.Cart.GetCart)
		buyer.POST("/cart/items", h.Cart.AddItem)
		buyer.PUT("/cart/items/:id", h.Cart.UpdateItem)
		buyer.DELETE("/cart/items/:id", h.Cart.RemoveItem)

		buyer.POST("/checkout", h.Orders.Checkout)
		buyer.GET("/orders", h.Orders.ListOrders)
		buyer.GET("/orders/:order_id", h.Orders.GetOrder)
		buyer.GET("/orders/:order_id/confirmation", h.Orders.Confirmation)
	}

	vendor := authed.Group("/vendor")
	vendor.Use(middlewares.RequireRole(models.RoleVendor))
	{
		vendor.GET("/dashboard", h.Vendor.Dashboard)
		vendor.GET("/stores", h.Vendor.ListStores)
		vendor.POST("/stores", h.Vendor.CreateStore)
		vendor.PUT("/stores/:id", h.Vendor.UpdateStore)
		vendor.DELETE("/stores/:id", h.Vendor.DeleteStore)
		vendor.GET("/stores/:id/products", h.Vendor.StoreProducts)
		vendor.POST("/stores/:id/products", h.Vendor.CreateProduct)
		vendor.PUT("/products/:id", h.Vendor.UpdateProduct)
		vendor.DELETE("/products/:id", h.Vendor.DeleteProduct)
	}

	return r
}
