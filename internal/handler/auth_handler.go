package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/fransouzacb/fenafar-plataforma/internal/auth"
	"github.com/fransouzacb/fenafar-plataforma/internal/identity"
	"github.com/fransouzacb/fenafar-plataforma/internal/model"
	"github.com/fransouzacb/fenafar-plataforma/pkg/jwtutil"
	"github.com/fransouzacb/fenafar-plataforma/pkg/logger"
	"github.com/fransouzacb/fenafar-plataforma/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthHandler owns login, logout and the who-am-I endpoint. The "me"
// and logout routes are client-managed: the request gate forwards them
// untouched and the handler resolves the principal itself.
type AuthHandler struct {
	db       *gorm.DB
	idp      identity.Provider
	codec    *jwtutil.Codec
	resolver *auth.Resolver
}

// NewAuthHandler creates the handler with its injected collaborators.
func NewAuthHandler(db *gorm.DB, idp identity.Provider, codec *jwtutil.Codec, resolver *auth.Resolver) *AuthHandler {
	return &AuthHandler{db: db, idp: idp, codec: codec, resolver: resolver}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	accountID, err := h.idp.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			log.Warn("Invalid credentials", zap.String("email", req.Email))
			prometheus.RecordAuthError("invalid_credentials")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		log.Error("Identity provider authentication failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	// Load the application mirror for role and profile. Login needs the
	// stored role, not a stale claim, so this read is mandatory.
	var user model.User
	if err := h.db.WithContext(c.Request().Context()).Where("id = ?", accountID).First(&user).Error; err != nil {
		log.Error("Account has no application user", zap.String("account_id", accountID), zap.Error(err))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if !user.Active {
		log.Warn("Inactive user attempted login", zap.String("user_id", user.ID))
		prometheus.RecordAuthError("inactive")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account is inactive"})
	}

	token, err := h.codec.GenerateToken(user.ID, user.Email, user.Name, user.Role)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	c.SetCookie(&http.Cookie{
		Name:     auth.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	log.Info("User logged in",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email),
		zap.String("role", user.Role))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user": echo.Map{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
			"role":  user.Role,
		},
	})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c echo.Context) error {
	principal := h.resolver.Resolve(c.Request())
	if principal == nil || !principal.Active {
		prometheus.RecordAuthError("unauthenticated")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":     principal.ID,
		"email":  principal.Email,
		"name":   principal.Name,
		"role":   principal.Role,
		"active": principal.Active,
	})
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     auth.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}
