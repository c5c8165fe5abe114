package utils

import (
	"errors"
	"time"

	"campflow/config"
	"campflow/models"

	"github.com/golang-jwt/jwt"
)

// secretKey reads the signing secret from the loaded config on every use so
// token operations pick it up regardless of init order. Fallback to a
// default (not recommended in production).
func secretKey() []byte {
	secret := config.AppConfig.JWTSecret
	if secret == "" {
		secret = "campflow-dev"
	}
	return []byte(secret)
}

// GenerateToken creates a signed JWT token carrying the user's identity
// claims. The token expires after the specified duration.
func GenerateToken(profile models.UserProfile, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":         profile.Sub,
		"email":       profile.Email,
		"firstName":   profile.FirstName,
		"lastName":    profile.LastName,
		"phoneNumber": profile.PhoneNumber,
		"iat":         time.Now().Unix(),
		"exp":         time.Now().Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey())
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey(), nil
	})
}

// ParseProfileFromToken extracts the user profile claims from a valid token.
func ParseProfileFromToken(tokenString string) (*models.UserProfile, error) {
	token, err := ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, errors.New("token does not contain a valid 'sub' claim")
	}

	profile := &models.UserProfile{Sub: sub}
	if email, ok := claims["email"].(string); ok {
		profile.Email = email
	}
	if first, ok := claims["firstName"].(string); ok {
		profile.FirstName = first
	}
	if last, ok := claims["lastName"].(string); ok {
		profile.LastName = last
	}
	if phone, ok := claims["phoneNumber"].(string); ok {
		profile.PhoneNumber = phone
	}
	return profile, nil
}
