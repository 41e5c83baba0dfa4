package utils

import (
	"errors" // Claim mismatch errors
	"time"   // Time for token expiration

	"github.com/golang-jwt/jwt/v5" // JWT library
)

// ErrBlobTokenMismatch is returned when a valid token names another object
var ErrBlobTokenMismatch = errors.New("token does not grant this object")

// BlobClaims grants read access to exactly one object
type BlobClaims struct {
	Container            string `json:"ctr"` // Container the token grants
	Key                  string `json:"key"` // Object key the token grants
	jwt.RegisteredClaims        // Standard JWT claims
}

// GenerateBlobToken creates a read token for container/key that expires after ttl
func GenerateBlobToken(container, key, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	// Set token claims
	claims := BlobClaims{
		Container: container, // Granted container
		Key:       key,       // Granted key
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)), // Read window
			IssuedAt:  jwt.NewNumericDate(now),          // Issued at current time
			NotBefore: jwt.NewNumericDate(now),          // Not valid before issuance
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	return token.SignedString([]byte(secret))                  // Sign the token with the secret
}

// ParseBlobToken validates a token and checks it grants container/key
func ParseBlobToken(tokenStr, secret, container, key string) (*BlobClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &BlobClaims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil // Return the secret key for validation
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	// Check for parsing errors
	if err != nil {
		return nil, err // Return error if parsing fails
	}
	claims, ok := token.Claims.(*BlobClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	if claims.Container != container || claims.Key != key {
		return nil, ErrBlobTokenMismatch
	}
	return claims, nil
}
