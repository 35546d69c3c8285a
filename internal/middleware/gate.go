package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/fransouzacb/fenafar-plataforma/internal/auth"
	"github.com/fransouzacb/fenafar-plataforma/internal/model"
	"github.com/fransouzacb/fenafar-plataforma/pkg/logger"
	"github.com/fransouzacb/fenafar-plataforma/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Context keys set by the gate for downstream handlers.
const (
	PrincipalKey = "principal"
	UserIDKey    = "user_id"
	UserEmailKey = "email"
	UserRoleKey  = "user_role"
)

// PublicPaths are reachable without any token. The root path matches
// exactly; the rest are prefixes.
var PublicPaths = []string{
	"/health",
	"/metrics",
	"/login",
	"/auth/login",
	"/convites/aceitar",
}

// ClientManagedPaths defer authorization entirely to their handler.
var ClientManagedPaths = []string{
	"/api/auth/me",
	"/api/auth/logout",
}

// Gate is the composition root for per-request authorization: it
// classifies the route, resolves the principal and applies the role
// table, rejecting or forwarding the request.
type Gate struct {
	resolver      *auth.Resolver
	routeRoles    []auth.RouteRule
	public        []string
	clientManaged []string
}

// NewGate creates a gate over the default route classification tables.
func NewGate(resolver *auth.Resolver) *Gate {
	return &Gate{
		resolver:      resolver,
		routeRoles:    auth.DefaultRouteRoles,
		public:        PublicPaths,
		clientManaged: ClientManagedPaths,
	}
}

// Middleware returns the echo middleware enforcing the gate.
func (g *Gate) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path

			if g.isPublic(path) || g.isClientManaged(path) {
				return next(c)
			}

			log := logger.FromContext(c)

			principal := g.resolver.Resolve(c.Request())
			// An inactive principal is unauthenticated for every
			// policy decision.
			if principal == nil || !principal.Active {
				prometheus.RecordAuthError("unauthenticated")
				if isAPIPath(path) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
				}
				return c.Redirect(http.StatusFound, loginRedirect(path))
			}

			if roles, gated := auth.RolesForPath(g.routeRoles, path); gated {
				if !auth.IsAllowed(principal, roles) {
					log.Warn("role gate denied request",
						zap.String("path", path),
						zap.String("user_id", principal.ID),
						zap.String("role", principal.Role))
					prometheus.RecordAuthError("forbidden")
					if isAPIPath(path) {
						return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient permissions"})
					}
					return c.Redirect(http.StatusFound, landingFor(principal))
				}
			}

			c.Set(PrincipalKey, principal)
			c.Set(UserIDKey, principal.ID)
			c.Set(UserEmailKey, principal.Email)
			c.Set(UserRoleKey, principal.Role)

			return next(c)
		}
	}
}

func (g *Gate) isPublic(path string) bool {
	if path == "/" {
		return true
	}
	for _, p := range g.public {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func (g *Gate) isClientManaged(path string) bool {
	for _, p := range g.clientManaged {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func isAPIPath(path string) bool {
	return strings.HasPrefix(path, "/api")
}

// loginRedirect preserves the originally requested path as the return
// target after login.
func loginRedirect(path string) string {
	return "/login?redirect=" + url.QueryEscape(path)
}

// landingFor picks the landing page for a principal that failed a role
// gate: members go to the member area, everyone else to the dashboard.
func landingFor(p *auth.Principal) string {
	if p.Role == model.RoleMember {
		return "/membro"
	}
	return "/dashboard"
}

// PrincipalFromContext returns the principal annotated by the gate.
func PrincipalFromContext(c echo.Context) *auth.Principal {
	p, _ := c.Get(PrincipalKey).(*auth.Principal)
	return p
}
