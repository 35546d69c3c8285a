package auth

import (
	"strings"

	"github.com/fransouzacb/fenafar-plataforma/internal/model"
)

// RouteRule maps a path prefix to the roles allowed through it.
type RouteRule struct {
	Prefix string
	Roles  []string
}

// DefaultRouteRoles is the role table for gated routes. Order matters:
// the first matching prefix wins, so more specific prefixes come
// before broader ones.
var DefaultRouteRoles = []RouteRule{
	{Prefix: "/api/convites", Roles: []string{model.RoleFenafarAdmin}},
	{Prefix: "/api/sindicatos", Roles: []string{model.RoleFenafarAdmin, model.RoleSindicatoAdmin}},
	{Prefix: "/api/usuarios", Roles: []string{model.RoleFenafarAdmin, model.RoleSindicatoAdmin}},
	{Prefix: "/dashboard/convites", Roles: []string{model.RoleFenafarAdmin}},
	{Prefix: "/dashboard/sindicatos", Roles: []string{model.RoleFenafarAdmin, model.RoleSindicatoAdmin}},
	{Prefix: "/membro", Roles: []string{model.RoleMember, model.RoleSindicatoAdmin, model.RoleFenafarAdmin}},
}

// IsAllowed decides whether the principal satisfies the required role
// set. A nil or inactive principal is always denied. An empty required
// set only demands an authenticated active principal.
func IsAllowed(p *Principal, requiredRoles []string) bool {
	if p == nil || !p.Active {
		return false
	}
	if len(requiredRoles) == 0 {
		return true
	}
	for _, role := range requiredRoles {
		if p.Role == role {
			return true
		}
	}
	return false
}

// RolesForPath returns the required roles for a path from the rule
// table, first match wins. The second return reports whether any rule
// matched.
func RolesForPath(rules []RouteRule, path string) ([]string, bool) {
	for _, rule := range rules {
		if strings.HasPrefix(path, rule.Prefix) {
			return rule.Roles, true
		}
	}
	return nil, false
}
