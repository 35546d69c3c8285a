// Package identity abstracts the identity provider that owns account
// credentials and issues account ids. The application store only keeps
// a mirror of provider accounts; ids are always provider-issued.
package identity

import (
	"context"
	"errors"
)

var (
	// ErrEmailTaken is returned when an account already exists for the email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned on authentication failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// NewAccount carries the attributes needed to provision an account.
type NewAccount struct {
	Email    string
	Password string
	Name     string
	Role     string
}

// Provider provisions and authenticates accounts.
type Provider interface {
	// CreateAccount provisions a new account and returns its
	// authoritative id. Fails with ErrEmailTaken on collision.
	CreateAccount(ctx context.Context, acc NewAccount) (string, error)
	// Authenticate verifies credentials and returns the account id.
	Authenticate(ctx context.Context, email, password string) (string, error)
}
