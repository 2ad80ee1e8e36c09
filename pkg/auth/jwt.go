package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("authorization token not provided")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims carries the identity issued by the auth service
type Claims struct {
	EntityID string `json:"entityId"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the entity id, falling back to the subject claim
func (c *Claims) UserID() string {
	if c.EntityID != "" {
		return c.EntityID
	}
	return c.Subject
}

// TokenValidator validates HS256 bearer tokens
type TokenValidator struct {
	secret []byte
}

// NewTokenValidator creates a validator for the shared secret
func NewTokenValidator(secret string) *TokenValidator {
	return &TokenValidator{secret: []byte(secret)}
}

// ValidateToken parses and verifies a raw token
func (v *TokenValidator) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID() == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// ValidateHeader validates a "Bearer <token>" authorization value
func (v *TokenValidator) ValidateHeader(header string) (*Claims, error) {
	if header == "" {
		return nil, ErrMissingToken
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return nil, fmt.Errorf("%w: expected bearer scheme", ErrInvalidToken)
	}
	return v.ValidateToken(strings.TrimSpace(token))
}

// GenerateToken issues a token for entityID, used by the dev CLI and tests
func (v *TokenValidator) GenerateToken(entityID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		EntityID: entityID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   entityID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
