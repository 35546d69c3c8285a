package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/fransouzacb/fenafar-plataforma/internal/middleware"
	"github.com/fransouzacb/fenafar-plataforma/internal/model"
	"github.com/fransouzacb/fenafar-plataforma/pkg/logger"
	"github.com/fransouzacb/fenafar-plataforma/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserHandler owns profile routes and the admin user listing.
type UserHandler struct {
	db *gorm.DB
}

// NewUserHandler creates the handler on the given store handle.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// GetProfile handles GET /api/perfil
func (h *UserHandler) GetProfile(c echo.Context) error {
	log := logger.FromContext(c)

	principal := middleware.PrincipalFromContext(c)
	if principal == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var user model.User
	if err := h.db.WithContext(c.Request().Context()).Preload("Sindicato").Where("id = ?", principal.ID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		log.Error("Failed to retrieve profile", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve profile"})
	}

	return c.JSON(http.StatusOK, user)
}

// UpdateProfile handles PATCH /api/perfil
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	log := logger.FromContext(c)

	principal := middleware.PrincipalFromContext(c)
	if principal == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		Name     string `json:"name,omitempty"`
		Telefone string `json:"telefone,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse profile update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Telefone != "" {
		updates["telefone"] = req.Telefone
	}
	if len(updates) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	res := h.db.WithContext(c.Request().Context()).
		Model(&model.User{}).
		Where("id = ?", principal.ID).
		Updates(updates)
	if res.Error != nil {
		log.Error("Failed to update profile", zap.Error(res.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "profile update failed"})
	}
	if res.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	log.Info("Profile updated", zap.String("user_id", principal.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "Profile updated"})
}

// List handles GET /api/usuarios
func (h *UserHandler) List(c echo.Context) error {
	log := logger.FromContext(c)

	principal := middleware.PrincipalFromContext(c)
	if principal == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	query := h.db.WithContext(c.Request().Context()).Preload("Sindicato")
	// Tenant admins only see members of their own sindicato.
	if principal.Role == model.RoleSindicatoAdmin {
		query = query.
			Joins("JOIN sindicatos ON sindicatos.id = users.sindicato_id").
			Where("sindicatos.admin_id = ?", principal.ID)
	}

	var users []model.User
	if err := query.Order("users.created_at DESC").Find(&users).Error; err != nil {
		log.Error("Failed to list users", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve users"})
	}

	return c.JSON(http.StatusOK, echo.Map{"users": users})
}
