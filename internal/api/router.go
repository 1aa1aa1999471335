// Package api exposes the REST surface consumed by the ProductOwl frontend.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gnithesh/productowl/internal/store"
	"github.com/gnithesh/productowl/internal/tracker"
)

// NewRouter builds the gin engine with all routes registered.
func NewRouter(st *store.Store, tr *tracker.Tracker, jwtSecret string) *gin.Engine {
	r := gin.Default()

	auth := NewAuthHandler(st.Users, jwtSecret)
	products := NewProductHandler(st.Products, st.Subscriptions, tr)
	tracking := NewTrackingHandler(st.Subscriptions, st.Products, tr)

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "OK", "message": "ProductOwl API is running"})
		})

		api.POST("/auth/register", auth.Register)
		api.POST("/auth/login", auth.Login)

		api.GET("/products", OptionalAuth(st.Users, jwtSecret), products.List)
		api.GET("/products/:id", products.Get)
		api.POST("/products/scrape", products.Scrape)
		api.PUT("/products/:id/price", products.Refresh)
		api.DELETE("/products/:id", products.Delete)

		api.POST("/tracking/subscribe", RequireAuth(st.Users, jwtSecret), tracking.Subscribe)
		api.GET("/tracking/user", RequireAuth(st.Users, jwtSecret), tracking.ListUser)
		api.DELETE("/tracking/:id", tracking.Delete)
	}

	return r
}
