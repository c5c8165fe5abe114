package middleware

import (
	"net/http"
	"strings"

	"campflow/models"
	"campflow/utils"

	"github.com/gin-gonic/gin"
)

const (
	// ContextUserProfile is the gin context key holding the resolved profile.
	ContextUserProfile = "userProfile"
	// ContextUserSub is the gin context key holding the caller's subject.
	ContextUserSub = "userSub"

	guestIDHeader = "X-Guest-Id"
)

// ResolveUser attaches the caller's identity to the request context. A valid
// bearer token yields the full profile; a guest header yields a guest
// profile; neither leaves the request anonymous. It never rejects.
func ResolveUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if profile := profileFromRequest(c); profile != nil {
			c.Set(ContextUserProfile, profile)
			c.Set(ContextUserSub, profile.Sub)
		}
		c.Next()
	}
}

// RequireUser rejects requests that carry no resolvable identity. Guests
// pass: the checkout flow supports anonymous bookings.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		profile := profileFromRequest(c)
		if profile == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Insufficient authorization",
				"code":  0,
			})
			return
		}
		c.Set(ContextUserProfile, profile)
		c.Set(ContextUserSub, profile.Sub)
		c.Next()
	}
}

func profileFromRequest(c *gin.Context) *models.UserProfile {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString != "" {
			profile, err := utils.ParseProfileFromToken(tokenString)
			if err == nil {
				return profile
			}
			utils.GetLogger().Debug("rejected bearer token on request")
		}
	}

	if guestID := c.GetHeader(guestIDHeader); guestID != "" {
		return &models.UserProfile{Sub: "guest-" + guestID}
	}
	return nil
}

// UserFromContext returns the profile set by ResolveUser, if any.
func UserFromContext(c *gin.Context) *models.UserProfile {
	val, ok := c.Get(ContextUserProfile)
	if !ok {
		return nil
	}
	profile, ok := val.(*models.UserProfile)
	if !ok {
		return nil
	}
	return profile
}
