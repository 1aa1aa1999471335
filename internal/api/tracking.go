package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gnithesh/productowl/internal/store"
	"github.com/gnithesh/productowl/internal/tracker"
)

// TrackingHandler serves subscription management.
type TrackingHandler struct {
	subs     *store.SubscriptionRepository
	products *store.ProductRepository
	tracker  *tracker.Tracker
}

func NewTrackingHandler(subs *store.SubscriptionRepository, products *store.ProductRepository, tr *tracker.Tracker) *TrackingHandler {
	return &TrackingHandler{subs: subs, products: products, tracker: tr}
}

type subscribeRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

// Subscribe starts tracking a product for the authenticated user, capturing
// the current price as the notification baseline.
func (h *TrackingHandler) Subscribe(c *gin.Context) {
	user := currentUser(c)

	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product ID is required"})
		return
	}
	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID format"})
		return
	}

	sub, err := h.tracker.Subscribe(c.Request.Context(), user, productID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	case errors.Is(err, tracker.ErrAlreadyTracking):
		c.JSON(http.StatusConflict, gin.H{"error": "Already tracking this product"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	default:
		c.JSON(http.StatusCreated, gin.H{"message": "Subscribed to product tracking", "tracking": sub})
	}
}

// ListUser returns the caller's subscriptions with their products resolved.
func (h *TrackingHandler) ListUser(c *gin.Context) {
	user := currentUser(c)
	ctx := c.Request.Context()

	subs, err := h.subs.FindByUser(ctx, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch tracked products"})
		return
	}
	for i := range subs {
		if p, err := h.products.FindByID(ctx, subs[i].ProductID); err == nil {
			subs[i].Product = p
		}
	}
	c.JSON(http.StatusOK, subs)
}

// Delete removes a product and all tracking entries that reference it.
func (h *TrackingHandler) Delete(c *gin.Context) {
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
