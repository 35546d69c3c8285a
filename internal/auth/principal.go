// Package auth derives a per-request principal from the access token
// and decides whether it may reach a route. Decisions are pure: no
// store or network access happens here.
package auth

import "github.com/fransouzacb/fenafar-plataforma/internal/model"

// Principal is the identity resolved for one request. It is rebuilt
// from token claims on every request and never cached or persisted.
type Principal struct {
	ID     string
	Email  string
	Name   string
	Role   string
	Active bool
}

// Defaults is the explicit fallback policy applied when token claims
// omit a field. Role falls back to the least-privileged role. Active
// falls back closed: a token that does not assert the account is
// active is treated as inactive.
type Defaults struct {
	Role   string
	Active bool
}

// DefaultClaimPolicy is the shipped fallback policy.
var DefaultClaimPolicy = Defaults{
	Role:   model.RoleMember,
	Active: false,
}
