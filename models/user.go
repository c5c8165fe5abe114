package models

import "strings"

// UserProfile is the authenticated user's profile as carried in the auth
// token claims. A nil *UserProfile means signed out.
type UserProfile struct {
	Sub         string `json:"sub"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

// IsGuest reports whether the profile belongs to an anonymous guest session.
func (u UserProfile) IsGuest() bool {
	return strings.HasPrefix(u.Sub, "guest")
}
