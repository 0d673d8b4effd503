package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenClaims inspects the access token without verifying its signature.
// Verification is the backend's job; the client only wants the expiry for
// display and the role claim as a fallback when the user record is absent.
func tokenClaims(token string) (jwt.MapClaims, bool) {
	if token == "" {
		return nil, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}

// TokenExpiry returns the access token's expiration time when the token
// carries an exp claim.
func TokenExpiry(token string) (time.Time, bool) {
	claims, ok := tokenClaims(token)
	if !ok {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// TokenRole returns the role claim embedded in the access token.
func TokenRole(token string) string {
	claims, ok := tokenClaims(token)
	if !ok {
		return ""
	}
	role, _ := claims["role"].(string)
	return role
}
