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

// SindicatoHandler owns the sindicato CRUD routes. The request gate
// restricts /api/sindicatos to admin roles; platform-admin-only
// operations re-check the role here.
type SindicatoHandler struct {
	db *gorm.DB
}

// NewSindicatoHandler creates the handler on the given store handle.
func NewSindicatoHandler(db *gorm.DB) *SindicatoHandler {
	return &SindicatoHandler{db: db}
}

// Create handles POST /api/sindicatos
func (h *SindicatoHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordSindicatoOperation("create")

	principal := middleware.PrincipalFromContext(c)
	if principal == nil || principal.Role != model.RoleFenafarAdmin {
		prometheus.RecordAuthError("forbidden")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient permissions"})
	}

	var req struct {
		Name       string `json:"name"`
		CNPJ       string `json:"cnpj"`
		Email      string `json:"email,omitempty"`
		Telefone   string `json:"telefone,omitempty"`
		MaxMembers *int   `json:"max_members,omitempty"`
		AdminID    string `json:"admin_id,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse sindicato creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name == "" || req.CNPJ == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and cnpj are required"})
	}

	adminID := req.AdminID
	if adminID == "" {
		adminID = principal.ID
	}

	sindicato := model.Sindicato{
		Name:       req.Name,
		CNPJ:       req.CNPJ,
		Email:      req.Email,
		Telefone:   req.Telefone,
		MaxMembers: req.MaxMembers,
		AdminID:    adminID,
		Status:     model.SindicatoStatusPending,
		Active:     true,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.db.WithContext(c.Request().Context()).Create(&sindicato).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "cnpj already registered"})
		}
		log.Error("Failed to create sindicato", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sindicato creation failed"})
	}

	log.Info("Sindicato created",
		zap.String("id", sindicato.ID),
		zap.String("name", sindicato.Name),
		zap.String("cnpj", sindicato.CNPJ))

	return c.JSON(http.StatusCreated, echo.Map{
		"message":   "Sindicato created successfully",
		"sindicato": sindicato,
	})
}

// List handles GET /api/sindicatos
func (h *SindicatoHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordSindicatoOperation("list")

	principal := middleware.PrincipalFromContext(c)
	if principal == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	query := h.db.WithContext(c.Request().Context()).Preload("Admin")
	// Tenant admins only see their own sindicato.
	if principal.Role != model.RoleFenafarAdmin {
		query = query.Where("admin_id = ?", principal.ID)
	}

	var sindicatos []model.Sindicato
	if err := query.Order("created_at DESC").Find(&sindicatos).Error; err != nil {
		log.Error("Failed to list sindicatos", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve sindicatos"})
	}

	return c.JSON(http.StatusOK, echo.Map{"sindicatos": sindicatos})
}

// Get handles GET /api/sindicatos/:id
func (h *SindicatoHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordSindicatoOperation("access")

	principal := middleware.PrincipalFromContext(c)
	if principal == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var sindicato model.Sindicato
	if err := h.db.WithContext(c.Request().Context()).Preload("Admin").Where("id = ?", c.Param("id")).First(&sindicato).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "sindicato not found"})
		}
		log.Error("Failed to retrieve sindicato", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve sindicato"})
	}

	if principal.Role != model.RoleFenafarAdmin && sindicato.AdminID != principal.ID {
		log.Warn("Unauthorized sindicato access attempt",
			zap.String("user_id", principal.ID),
			zap.String("sindicato_id", sindicato.ID))
		prometheus.RecordAuthError("forbidden")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	return c.JSON(http.StatusOK, sindicato)
}

// Approve handles PATCH /api/sindicatos/:id/aprovar
func (h *SindicatoHandler) Approve(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordSindicatoOperation("approve")

	principal := middleware.PrincipalFromContext(c)
	if principal == nil || principal.Role != model.RoleFenafarAdmin {
		prometheus.RecordAuthError("forbidden")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient permissions"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	res := h.db.WithContext(c.Request().Context()).
		Model(&model.Sindicato{}).
		Where("id = ?", c.Param("id")).
		Update("status", model.SindicatoStatusApproved)
	if res.Error != nil {
		log.Error("Failed to approve sindicato", zap.Error(res.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "approval failed"})
	}
	if res.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "sindicato not found"})
	}

	log.Info("Sindicato approved", zap.String("id", c.Param("id")))
	return c.JSON(http.StatusOK, echo.Map{"message": "Sindicato approved"})
}

// Deactivate handles DELETE /api/sindicatos/:id
func (h *SindicatoHandler) Deactivate(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordSindicatoOperation("deactivate")

	principal := middleware.PrincipalFromContext(c)
	if principal == nil || principal.Role != model.RoleFenafarAdmin {
		prometheus.RecordAuthError("forbidden")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient permissions"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	res := h.db.WithContext(c.Request().Context()).
		Model(&model.Sindicato{}).
		Where("id = ?", c.Param("id")).
		Update("active", false)
	if res.Error != nil {
		log.Error("Failed to deactivate sindicato", zap.Error(res.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "deactivation failed"})
	}
	if res.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "sindicato not found"})
	}

	log.Info("Sindicato deactivated", zap.String("id", c.Param("id")))
	return c.JSON(http.StatusOK, echo.Map{"message": "Sindicato deactivated"})
}
