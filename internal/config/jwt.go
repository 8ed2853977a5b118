package config

import (
	"fmt"
	"time"
)

// DefaultJWTExpirationHours is the session token lifetime when unset.
const DefaultJWTExpirationHours = 24

// JWTConfig holds configuration for JWT token generation and validation.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

// NewJWTConfig returns the token config for the auth section.
// The secret is required; a zero expiration selects DefaultJWTExpirationHours.
func NewJWTConfig(auth AuthConfig) (*JWTConfig, error) {
	if auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}
	hours := auth.JWTExpirationHours
	if hours == 0 {
		hours = DefaultJWTExpirationHours
	}
	if hours < 1 {
		return nil, fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", hours)
	}
	return &JWTConfig{Secret: auth.JWTSecret, ExpirationHours: hours}, nil
}

// Expiration returns the token lifetime.
func (c *JWTConfig) Expiration() time.Duration {
	return time.Duration(c.ExpirationHours) * time.Hour
}
