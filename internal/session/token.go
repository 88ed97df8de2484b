package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoExpiry means the token carries no exp claim.
var ErrNoExpiry = errors.New("token has no expiry")

// TokenExpiry reads the exp claim of a JWT without verifying its
// signature. The client can't verify tokens; the value is informational
// and never used to refuse a request.
func TokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("parse token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("read exp: %w", err)
	}
	if exp == nil {
		return time.Time{}, ErrNoExpiry
	}
	return exp.Time, nil
}

// Expiry returns the expiry of the held token.
func (s *Store) Expiry() (time.Time, error) {
	tok := s.Token()
	if tok == "" {
		return time.Time{}, errors.New("no token")
	}
	return TokenExpiry(tok)
}
