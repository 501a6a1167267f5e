package security

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// SessionClaims are the claims the booking backend puts in its bearer tokens
type SessionClaims struct {
	UserID string `json:"user_id,omitempty"`
	Role   string `json:"role,omitempty"` // "tenant" or "borrower"
	jwt.RegisteredClaims
}

// TokenInspector reads a bearer token without verifying its signature.
// The backend verifies; the client only needs to know when to stop sending it.
type TokenInspector interface {
	Inspect(token string) (*SessionClaims, error)
	ExpiresWithin(token string, d time.Duration) (bool, error)
	CheckUsable(token string) error
}

type tokenInspector struct {
	parser *jwt.Parser
	now    func() time.Time
}

func NewTokenInspector() TokenInspector {
	return &tokenInspector{
		parser: jwt.NewParser(),
		now:    time.Now,
	}
}

func (i *tokenInspector) Inspect(token string) (*SessionClaims, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return nil, ErrInvalidToken
	}
	claims := &SessionClaims{}
	if _, _, err := i.parser.ParseUnverified(token, claims); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (i *tokenInspector) ExpiresWithin(token string, d time.Duration) (bool, error) {
	claims, err := i.Inspect(token)
	if err != nil {
		return false, err
	}
	if claims.ExpiresAt == nil {
		return false, nil
	}
	return claims.ExpiresAt.Time.Before(i.now().Add(d)), nil
}

// CheckUsable accepts opaque (non-JWT) tokens and rejects expired JWTs
func (i *tokenInspector) CheckUsable(token string) error {
	claims, err := i.Inspect(token)
	if err != nil {
		// opaque API keys are fine, the server decides
		return nil
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.Time.After(i.now()) {
		return ErrExpiredToken
	}
	return nil
}
