package handler

import (
	"errors"
	"net/http"

	"github.com/fransouzacb/fenafar-plataforma/internal/invite"
	"github.com/fransouzacb/fenafar-plataforma/internal/middleware"
	"github.com/fransouzacb/fenafar-plataforma/pkg/logger"
	"github.com/fransouzacb/fenafar-plataforma/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ConviteHandler exposes the invitation lifecycle over HTTP.
type ConviteHandler struct {
	svc *invite.Service
}

// NewConviteHandler creates the handler over the invitation service.
func NewConviteHandler(svc *invite.Service) *ConviteHandler {
	return &ConviteHandler{svc: svc}
}

// Create handles POST /api/convites
func (h *ConviteHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordConviteOperation("create")

	var req struct {
		Email       string  `json:"email"`
		Role        string  `json:"role"`
		SindicatoID *string `json:"sindicato_id,omitempty"`
		MaxMembers  *int    `json:"max_members,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse convite creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	convite, err := h.svc.Create(c.Request().Context(), middleware.PrincipalFromContext(c), invite.CreateInput{
		Email:       req.Email,
		Role:        req.Role,
		SindicatoID: req.SindicatoID,
		MaxMembers:  req.MaxMembers,
	})
	if err != nil {
		return h.renderError(c, err, "convite creation failed")
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Convite created successfully",
		"convite": convite,
	})
}

// List handles GET /api/convites
func (h *ConviteHandler) List(c echo.Context) error {
	prometheus.RecordConviteOperation("list")

	convites, err := h.svc.List(c.Request().Context(), middleware.PrincipalFromContext(c))
	if err != nil {
		return h.renderError(c, err, "convite listing failed")
	}

	return c.JSON(http.StatusOK, echo.Map{"convites": convites})
}

// Validate handles GET /convites/aceitar/:token
func (h *ConviteHandler) Validate(c echo.Context) error {
	prometheus.RecordConviteOperation("validate")

	convite, err := h.svc.Validate(c.Request().Context(), c.Param("token"))
	if err != nil {
		return h.renderError(c, err, "convite validation failed")
	}

	return c.JSON(http.StatusOK, echo.Map{"convite": convite})
}

// Accept handles POST /convites/aceitar/:token
func (h *ConviteHandler) Accept(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordConviteOperation("accept")

	var req struct {
		Name      string `json:"name"`
		Password  string `json:"password"`
		Telefone  string `json:"telefone,omitempty"`
		Sindicato *struct {
			Name       string `json:"name"`
			CNPJ       string `json:"cnpj"`
			Email      string `json:"email,omitempty"`
			Telefone   string `json:"telefone,omitempty"`
			MaxMembers *int   `json:"max_members,omitempty"`
		} `json:"sindicato,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse convite acceptance request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	in := invite.AcceptInput{
		Name:     req.Name,
		Password: req.Password,
		Telefone: req.Telefone,
	}
	if req.Sindicato != nil {
		in.Sindicato = &invite.SindicatoInput{
			Name:       req.Sindicato.Name,
			CNPJ:       req.Sindicato.CNPJ,
			Email:      req.Sindicato.Email,
			Telefone:   req.Sindicato.Telefone,
			MaxMembers: req.Sindicato.MaxMembers,
		}
	}

	result, err := h.svc.Accept(c.Request().Context(), c.Param("token"), in)
	if err != nil {
		return h.renderError(c, err, "convite acceptance failed")
	}

	resp := echo.Map{
		"message": "Convite accepted successfully",
		"user": echo.Map{
			"id":    result.User.ID,
			"email": result.User.Email,
			"name":  result.User.Name,
			"role":  result.User.Role,
		},
	}
	if result.Sindicato != nil {
		resp["sindicato"] = echo.Map{
			"id":   result.Sindicato.ID,
			"name": result.Sindicato.Name,
			"cnpj": result.Sindicato.CNPJ,
		}
	}

	return c.JSON(http.StatusCreated, resp)
}

// Reissue handles POST /api/convites/:id/reenviar
func (h *ConviteHandler) Reissue(c echo.Context) error {
	prometheus.RecordConviteOperation("reissue")

	messageID, err := h.svc.Reissue(c.Request().Context(), middleware.PrincipalFromContext(c), c.Param("id"))
	if err != nil {
		return h.renderError(c, err, "convite reissue failed")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":    "Convite re-sent successfully",
		"message_id": messageID,
	})
}

// renderError maps invitation-state errors to their 4xx responses.
// Anything unrecognized is logged in full and surfaced as a generic
// internal error.
func (h *ConviteHandler) renderError(c echo.Context, err error, msg string) error {
	log := logger.FromContext(c)

	switch {
	case errors.Is(err, invite.ErrForbidden):
		prometheus.RecordAuthError("forbidden")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient permissions"})
	case errors.Is(err, invite.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, invite.ErrNotFound):
		prometheus.RecordConviteError("not_found")
		return c.JSON(http.StatusNotFound, echo.Map{"error": "convite not found"})
	case errors.Is(err, invite.ErrExpired):
		prometheus.RecordConviteError("expired")
		return c.JSON(http.StatusGone, echo.Map{"error": "convite expired"})
	case errors.Is(err, invite.ErrAlreadyUsed):
		prometheus.RecordConviteError("already_used")
		return c.JSON(http.StatusConflict, echo.Map{"error": "convite already used"})
	case errors.Is(err, invite.ErrEmailRegistered):
		prometheus.RecordConviteError("email_registered")
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	case errors.Is(err, invite.ErrDuplicateInvitation):
		prometheus.RecordConviteError("duplicate_invitation")
		return c.JSON(http.StatusConflict, echo.Map{"error": "a pending convite already exists for this email"})
	case errors.Is(err, invite.ErrDuplicateCNPJ):
		prometheus.RecordConviteError("duplicate_cnpj")
		return c.JSON(http.StatusConflict, echo.Map{"error": "cnpj already registered"})
	default:
		log.Error(msg, zap.Error(err))
		prometheus.RecordConviteError("internal")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
