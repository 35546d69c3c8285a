package jwtutil

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	// ErrInvalidToken is returned when a token cannot be decoded into claims.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned when a structurally valid token is past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

// JWTConfig holds JWT configuration
type JWTConfig struct {
	SigningKey      string
	ExpirationHours int
}

// UserMetadata carries the profile attributes embedded in the token by
// the identity provider.
type UserMetadata struct {
	Role   string `json:"role,omitempty"`
	Name   string `json:"name,omitempty"`
	Active *bool  `json:"active,omitempty"`
}

// UserClaims represents the JWT claims for an authenticated account.
// The subject is the identity-provider-issued account id.
type UserClaims struct {
	Email        string       `json:"email"`
	UID          string       `json:"user_id,omitempty"`
	UserMetadata UserMetadata `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}

// Codec encodes and decodes access tokens. Decoding is structural: the
// token's self-contained expiry is checked against the codec clock, but
// the signature is not re-verified on the read path (the identity
// provider is the only issuer).
type Codec struct {
	config *JWTConfig
	now    func() time.Time
}

// Option customizes codec construction.
type Option func(*Codec)

// WithClock injects a custom clock (useful for tests).
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCodec creates a token codec with the given configuration
func NewCodec(config *JWTConfig, opts ...Option) *Codec {
	c := &Codec{
		config: config,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GenerateToken creates a signed HS256 token for the given account.
func (c *Codec) GenerateToken(userID, email, name, role string) (string, error) {
	if c.config == nil {
		return "", errors.New("JWT configuration not provided")
	}

	// Only active accounts are issued tokens, and the resolver treats a
	// missing active claim as inactive, so the claim is always asserted.
	active := true

	now := c.now()
	claims := UserClaims{
		Email: email,
		UserMetadata: UserMetadata{
			Role:   role,
			Name:   name,
			Active: &active,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(c.config.ExpirationHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(c.config.SigningKey))
}

// Decode parses the token into claims and checks expiry. A missing or
// past exp yields ErrTokenExpired; anything that cannot be decoded
// yields ErrInvalidToken. Callers must treat both as unauthenticated.
func (c *Codec) Decode(tokenString string) (*UserClaims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := &UserClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, ErrInvalidToken
	}

	if claims.ExpiresAt == nil || !c.now().Before(claims.ExpiresAt.Time) {
		return nil, ErrTokenExpired
	}

	return claims, nil
}

// UserID returns the account id carried by the claims, preferring the
// standard subject field over the legacy user_id claim.
func (cl *UserClaims) UserID() string {
	if cl.Subject != "" {
		return cl.Subject
	}
	return cl.UID
}
