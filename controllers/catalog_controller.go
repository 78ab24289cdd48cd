package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"marketplace-service/models"
	"marketplace-service/services"
)

type CatalogController struct {
	catalog *services.CatalogService
	reviews *services.ReviewService
}

func NewCatalogController(catalog *services.CatalogService, reviews *services.ReviewService) *CatalogController {
	return &CatalogController{catalog: catalog, reviews: reviews}
}

func (cc *CatalogController) Home(c *gin.Context) {
	featured, err := cc.catalog.Featured(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	categories, err := cc.catalog.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"featured_products": featured, "categories": categories})
}

func (cc *CatalogController) ListCategories(c *gin.Context) {
	categories, err := cc.catalog.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// ListProducts supports ?q=, ?category=, ?sort=, ?page= and ?page_size=.
func (cc *CatalogController) ListProducts(c *gin.Context) {
	defer record(c, "list_products")

	q := services.ProductQuery{
		Text:     c.Query("q"),
		Sort:     models.ParseProductSort(c.Query("sort")),
		Page:     queryInt(c, "page"),
		PageSize: queryInt(c, "page_size"),
	}
	if raw := c.Query("category"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
			return
		}
		q.CategoryID = &id
	}

	page, err := cc.catalog.ListProducts(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (cc *CatalogController) GetProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	detail, err := cc.catalog.ProductDetail(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (cc *CatalogController) AddReview(c *gin.Context) {
	defer record(c, "add_review")

	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Rating  int    `json:"rating" binding:"required"`
		Comment string `json:"comment" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := cc.reviews.AddReview(c.Request.Context(), actor, id, req.Rating, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}
