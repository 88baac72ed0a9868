package types

import "github.com/golang-jwt/jwt/v5"

// Claims is the subset of an identity provider session token the API reads.
// Email is only present when the session token template exposes it.
type Claims struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Image    string `json:"image_url,omitempty"`
	jwt.RegisteredClaims
}
