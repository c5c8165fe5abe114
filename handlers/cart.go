package handlers

import (
	"errors"
	"net/http"

	"campflow/middleware"
	"campflow/models"
	"campflow/services/cart"
	"campflow/utils"

	"github.com/gin-gonic/gin"
)

// cartOwnerKey derives the durable slot key for the caller's cart. An
// authenticated user and a guest land on different keys; an anonymous
// caller with neither identity gets nothing to key on.
func cartOwnerKey(c *gin.Context) (string, bool) {
	if profile := middleware.UserFromContext(c); profile != nil {
		return "cart:" + profile.Sub, true
	}
	return "", false
}

// ownerQueue rehydrates the caller's cart queue from its slot.
func ownerQueue(c *gin.Context, store cart.Store) (*cart.Queue, bool) {
	key, ok := cartOwnerKey(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "No cart owner", "supply a bearer token or a guest id header")
		return nil, false
	}
	return cart.NewQueue(c.Request.Context(), store, key, getLogger(c)), true
}

// AddCartItem appends an item to the caller's cart and returns it with its
// assigned id.
func AddCartItem(store cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		queue, ok := ownerQueue(c, store)
		if !ok {
			return
		}

		var item models.CartItem
		if err := c.ShouldBindJSON(&item); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}

		stored := queue.Add(c.Request.Context(), item)
		c.JSON(http.StatusCreated, stored)
	}
}

// ListCartItems returns the caller's cart contents.
func ListCartItems(store cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		queue, ok := ownerQueue(c, store)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": queue.Items()})
	}
}

// UpdateCartItem shallow-merges the given fields into an item.
func UpdateCartItem(store cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		queue, ok := ownerQueue(c, store)
		if !ok {
			return
		}

		var patch models.CartItemPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}

		updated, err := queue.Update(c.Request.Context(), c.Param("itemId"), patch)
		if err != nil {
			if errors.Is(err, cart.ErrItemNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "cart item not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

// RemoveCartItem drops an item from the cart.
func RemoveCartItem(store cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		queue, ok := ownerQueue(c, store)
		if !ok {
			return
		}

		if !queue.Remove(c.Request.Context(), c.Param("itemId")) {
			c.JSON(http.StatusNotFound, gin.H{"error": "cart item not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"removed": true, "remaining": queue.Len()})
	}
}
