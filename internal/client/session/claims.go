package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of token claims shown by the status command.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// ParseClaims decodes a JWT access token without verifying its signature.
// The client cannot verify tokens and must not act on the result; it is for
// display only. Non-JWT tokens return an error.
func ParseClaims(token string) (*Claims, error) {
	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &rc); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}

	c := &Claims{Subject: rc.Subject}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	return c, nil
}
