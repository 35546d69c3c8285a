package handler

import (
	"net/http"

	"github.com/fransouzacb/fenafar-plataforma/internal/middleware"
	"github.com/labstack/echo/v4"
)

// Minimal page endpoints. The real front-end is served separately;
// these exist so that the request gate's page redirects resolve.

// LoginPage handles GET /login
func LoginPage(c echo.Context) error {
	return c.HTML(http.StatusOK, "<html><body><h1>FENAFAR — Login</h1></body></html>")
}

// DashboardPage handles GET /dashboard
func DashboardPage(c echo.Context) error {
	principal := middleware.PrincipalFromContext(c)
	if principal == nil {
		return c.Redirect(http.StatusFound, "/login")
	}
	return c.HTML(http.StatusOK, "<html><body><h1>Dashboard</h1></body></html>")
}

// MemberPage handles GET /membro
func MemberPage(c echo.Context) error {
	principal := middleware.PrincipalFromContext(c)
	if principal == nil {
		return c.Redirect(http.StatusFound, "/login")
	}
	return c.HTML(http.StatusOK, "<html><body><h1>Área do membro</h1></body></html>")
}
