// Package invite owns the invitation lifecycle: creation, validity
// checks, single-use acceptance and reissue. No other component
// mutates invitation state.
package invite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fransouzacb/fenafar-plataforma/internal/auth"
	"github.com/fransouzacb/fenafar-plataforma/internal/identity"
	"github.com/fransouzacb/fenafar-plataforma/internal/model"
	"github.com/fransouzacb/fenafar-plataforma/pkg/mailer"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// creatorRoles gates who may create, list and reissue invitations.
var creatorRoles = []string{model.RoleFenafarAdmin}

// Service orchestrates invitation state transitions against the store,
// the identity provider and the mailer.
type Service struct {
	db      *gorm.DB
	idp     identity.Provider
	mailer  mailer.Mailer
	log     *zap.Logger
	baseURL string
	ttl     time.Duration
	now     func() time.Time
}

// Option customizes service construction.
type Option func(*Service)

// WithClock injects a custom clock (useful for tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates the invitation service.
func NewService(db *gorm.DB, idp identity.Provider, m mailer.Mailer, baseURL string, expirationDays int, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		db:      db,
		idp:     idp,
		mailer:  m,
		log:     log,
		baseURL: baseURL,
		ttl:     time.Duration(expirationDays) * 24 * time.Hour,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput carries the attributes of a new invitation.
type CreateInput struct {
	Email       string
	Role        string
	SindicatoID *string
	MaxMembers  *int
}

// Create persists a new invitation and dispatches the notification
// e-mail. Mail failure does not abort the creation; it is logged and
// the invitation stays valid.
func (s *Service) Create(ctx context.Context, requester *auth.Principal, in CreateInput) (*model.Convite, error) {
	if !auth.IsAllowed(requester, creatorRoles) {
		return nil, ErrForbidden
	}
	if in.Email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	switch in.Role {
	case model.RoleFenafarAdmin, model.RoleSindicatoAdmin, model.RoleMember:
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, in.Role)
	}

	convite := &model.Convite{
		Token:       uuid.New().String(),
		Email:       in.Email,
		Role:        in.Role,
		SindicatoID: in.SindicatoID,
		MaxMembers:  in.MaxMembers,
		CriadoPorID: requester.ID,
		ExpiresAt:   s.now().Add(s.ttl),
		Used:        false,
	}

	if err := s.db.WithContext(ctx).Create(convite).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateInvitation
		}
		return nil, err
	}

	// Dispatch is deliberately decoupled from the state change:
	// creation already succeeded, so a mail failure is only a warning.
	if _, err := s.dispatch(ctx, convite); err != nil {
		s.log.Warn("convite mail dispatch failed",
			zap.String("convite_id", convite.ID),
			zap.String("email", convite.Email),
			zap.Error(err))
	}

	s.log.Info("convite created",
		zap.String("convite_id", convite.ID),
		zap.String("email", convite.Email),
		zap.String("role", convite.Role))

	return convite, nil
}

// Validate looks up an invitation by token and reports its state. The
// used check runs before the expiry check.
func (s *Service) Validate(ctx context.Context, token string) (*model.Convite, error) {
	var convite model.Convite
	err := s.db.WithContext(ctx).
		Preload("Sindicato").
		Preload("CriadoPor").
		Where("token = ?", token).
		First(&convite).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if convite.Used {
		return nil, ErrAlreadyUsed
	}
	if !s.now().Before(convite.ExpiresAt) {
		return nil, ErrExpired
	}

	return &convite, nil
}

// AcceptInput carries the account details supplied by the invitee, plus
// the sindicato details when the invitation provisions a new tenant.
type AcceptInput struct {
	Password  string
	Name      string
	Telefone  string
	Sindicato *SindicatoInput
}

// SindicatoInput carries the details of a sindicato provisioned during
// acceptance of a SINDICATO_ADMIN invitation.
type SindicatoInput struct {
	Name       string
	CNPJ       string
	Email      string
	Telefone   string
	MaxMembers *int
}

// AcceptResult is the outcome of a successful acceptance.
type AcceptResult struct {
	User      *model.User
	Sindicato *model.Sindicato
}

// Accept consumes the invitation: it provisions the identity-provider
// account, then in one transaction mirrors the account locally,
// conditionally creates the sindicato, and flips used via a guarded
// update so that at most one concurrent acceptance wins.
//
// The identity-provider call is outside the transaction. A failure
// after it leaves an orphaned external account with no local record;
// that is an accepted failure mode, logged for reconciliation.
func (s *Service) Accept(ctx context.Context, token string, in AcceptInput) (*AcceptResult, error) {
	// Acceptance is a separate call from any earlier read, so the state
	// must be re-checked here.
	convite, err := s.Validate(ctx, token)
	if err != nil {
		return nil, err
	}

	if in.Password == "" || in.Name == "" {
		return nil, fmt.Errorf("%w: name and password are required", ErrInvalidInput)
	}

	var existing model.User
	err = s.db.WithContext(ctx).Where("email = ?", convite.Email).First(&existing).Error
	if err == nil {
		return nil, ErrEmailRegistered
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	accountID, err := s.idp.CreateAccount(ctx, identity.NewAccount{
		Email:    convite.Email,
		Password: in.Password,
		Name:     in.Name,
		Role:     convite.Role,
	})
	if err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			return nil, ErrEmailRegistered
		}
		return nil, fmt.Errorf("identity provider account creation: %w", err)
	}

	result := &AcceptResult{}
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Guarded update: the row only flips when still unused, so the
		// loser of a concurrent acceptance observes zero affected rows.
		res := tx.Model(&model.Convite{}).
			Where("id = ? AND used = ?", convite.ID, false).
			Update("used", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyUsed
		}

		user := &model.User{
			ID:       accountID,
			Email:    convite.Email,
			Name:     in.Name,
			Role:     convite.Role,
			Active:   true,
			Telefone: in.Telefone,
		}
		if convite.Role == model.RoleMember {
			user.SindicatoID = convite.SindicatoID
		}
		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailRegistered
			}
			return err
		}
		result.User = user

		if convite.Role == model.RoleSindicatoAdmin && in.Sindicato != nil {
			maxMembers := in.Sindicato.MaxMembers
			if maxMembers == nil {
				maxMembers = convite.MaxMembers
			}
			sindicato := &model.Sindicato{
				Name:       in.Sindicato.Name,
				CNPJ:       in.Sindicato.CNPJ,
				Email:      in.Sindicato.Email,
				Telefone:   in.Sindicato.Telefone,
				MaxMembers: maxMembers,
				AdminID:    user.ID,
				Status:     model.SindicatoStatusPending,
				Active:     true,
			}
			if err := tx.Create(sindicato).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrDuplicateCNPJ
				}
				return err
			}
			if err := tx.Model(user).Update("sindicato_id", sindicato.ID).Error; err != nil {
				return err
			}
			user.SindicatoID = &sindicato.ID
			result.Sindicato = sindicato
		}

		return nil
	})
	if txErr != nil {
		// The external account exists without a local mirror until the
		// acceptance is retried or reconciled.
		s.log.Warn("convite acceptance rolled back after identity account creation",
			zap.String("convite_id", convite.ID),
			zap.String("account_id", accountID),
			zap.Error(txErr))
		return nil, txErr
	}

	s.log.Info("convite accepted",
		zap.String("convite_id", convite.ID),
		zap.String("user_id", result.User.ID),
		zap.String("role", convite.Role))

	return result, nil
}

// Reissue re-sends the notification for a still-pending invitation and
// returns the mail message id. The token and expiry are unchanged: an
// expired invitation is not resurrected.
func (s *Service) Reissue(ctx context.Context, requester *auth.Principal, conviteID string) (string, error) {
	if !auth.IsAllowed(requester, creatorRoles) {
		return "", ErrForbidden
	}

	var convite model.Convite
	err := s.db.WithContext(ctx).Where("id = ?", conviteID).First(&convite).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}

	if convite.Used {
		return "", ErrAlreadyUsed
	}
	if !s.now().Before(convite.ExpiresAt) {
		return "", ErrExpired
	}

	messageID, err := s.dispatch(ctx, &convite)
	if err != nil {
		return "", fmt.Errorf("convite mail dispatch: %w", err)
	}

	s.log.Info("convite reissued",
		zap.String("convite_id", convite.ID),
		zap.String("message_id", messageID))

	return messageID, nil
}

// List returns all invitations with their tenant and creator
// projections, newest first.
func (s *Service) List(ctx context.Context, requester *auth.Principal) ([]model.Convite, error) {
	if !auth.IsAllowed(requester, creatorRoles) {
		return nil, ErrForbidden
	}

	var convites []model.Convite
	err := s.db.WithContext(ctx).
		Preload("Sindicato").
		Preload("CriadoPor").
		Order("created_at DESC").
		Find(&convites).Error
	if err != nil {
		return nil, err
	}
	return convites, nil
}

// AcceptURL returns the externally-facing acceptance URL for a token.
func (s *Service) AcceptURL(token string) string {
	return fmt.Sprintf("%s/convites/aceitar/%s", s.baseURL, token)
}

func (s *Service) dispatch(ctx context.Context, convite *model.Convite) (string, error) {
	subject := "Convite para a plataforma FENAFAR"
	body := fmt.Sprintf(
		"<p>Você foi convidado(a) para a plataforma FENAFAR.</p><p><a href=%q>Aceitar convite</a></p><p>O convite expira em %s.</p>",
		s.AcceptURL(convite.Token),
		convite.ExpiresAt.Format("02/01/2006"),
	)
	return s.mailer.Send(ctx, convite.Email, subject, body)
}
