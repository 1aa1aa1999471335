package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gnithesh/productowl/internal/models"
	"github.com/gnithesh/productowl/internal/scrape"
	"github.com/gnithesh/productowl/internal/store"
	"github.com/gnithesh/productowl/internal/tracker"
)

// ProductHandler serves the product CRUD surface over the pipeline.
type ProductHandler struct {
	products *store.ProductRepository
	subs     *store.SubscriptionRepository
	tracker  *tracker.Tracker
}

func NewProductHandler(products *store.ProductRepository, subs *store.SubscriptionRepository, tr *tracker.Tracker) *ProductHandler {
	return &ProductHandler{products: products, subs: subs, tracker: tr}
}

// List returns all products, or the caller's tracked products (newest
// subscription first) when a valid token is presented.
func (h *ProductHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	if user := currentUser(c); user != nil {
		subs, err := h.subs.FindByUser(ctx, user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch products"})
			return
		}
		tracked := make([]models.Product, 0, len(subs))
		for _, sub := range subs {
			if !sub.IsActive {
				continue
			}
			p, err := h.products.FindByID(ctx, sub.ProductID)
			if err != nil {
				continue
			}
			tracked = append(tracked, *p)
		}
		c.JSON(http.StatusOK, tracked)
		return
	}

	products, err := h.products.FindAll(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch products"})
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
		return
	}
	p, err := h.products.FindByID(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch product"})
		return
	}
	c.JSON(http.StatusOK, p)
}

type scrapeRequest struct {
	AmazonURL string `json:"amazonUrl" binding:"required,url"`
}

// Scrape creates a product from a URL, returning the existing document when
// the URL is already tracked.
func (h *ProductHandler) Scrape(c *gin.Context) {
	var req scrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amazon URL is required"})
		return
	}
	ctx := c.Request.Context()

	if existing, err := h.products.FindByURL(ctx, req.AmazonURL); err == nil {
		c.JSON(http.StatusOK, gin.H{"message": "Product already exists", "product": existing})
		return
	}

	log.Printf("api: scraping product from %s", req.AmazonURL)
	p, err := h.tracker.ScrapeAndCreate(ctx, req.AmazonURL)
	if err != nil {
		var se *scrape.ScrapeError
		if errors.As(err, &se) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scrape product", "details": se.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scrape product"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Product scraped and saved successfully", "product": p})
}

// Refresh re-scrapes the current price and applies the update rule.
func (h *ProductHandler) Refresh(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
		return
	}

	p, err := h.tracker.RefreshPrice(c.Request.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	case errors.Is(err, tracker.ErrPriceUnavailable):
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to get current price"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update product price"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Product price updated successfully", "product": p})
	}
}

// Delete removes a product and every subscription referencing it.
func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
		return
	}

	err = h.tracker.DeleteProduct(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete product"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product and associated tracking entries deleted successfully"})
}
