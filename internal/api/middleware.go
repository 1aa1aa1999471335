package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gnithesh/productowl/internal/models"
	"github.com/gnithesh/productowl/internal/store"
)

const userContextKey = "authUser"

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

func resolveUser(c *gin.Context, users *store.UserRepository, secret []byte) *models.User {
	token := bearerToken(c)
	if token == "" {
		return nil
	}
	claims, err := parseToken(secret, token)
	if err != nil {
		return nil
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil
	}
	user, err := users.FindByID(c.Request.Context(), id)
	if err != nil {
		return nil
	}
	return user
}

// RequireAuth rejects requests without a valid bearer token and puts the
// authenticated user on the context.
func RequireAuth(users *store.UserRepository, secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		user := resolveUser(c, users, key)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Set(userContextKey, user)
		c.Next()
	}
}

// OptionalAuth resolves the user when a valid token is present and continues
// anonymously otherwise.
func OptionalAuth(users *store.UserRepository, secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		if user := resolveUser(c, users, key); user != nil {
			c.Set(userContextKey, user)
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
