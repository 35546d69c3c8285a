package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LocalProvider is a database-backed identity provider. A hosted
// provider can replace it behind the Provider interface; the rest of
// the system only sees provider-issued ids.
type LocalProvider struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewLocalProvider creates a local identity provider on the given handle.
func NewLocalProvider(db *gorm.DB, log *zap.Logger) *LocalProvider {
	return &LocalProvider{db: db, log: log}
}

// CreateAccount provisions a credential record and returns its id.
func (p *LocalProvider) CreateAccount(ctx context.Context, acc NewAccount) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(acc.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	record := Account{
		ID:           uuid.New().String(),
		Email:        acc.Email,
		PasswordHash: string(hash),
	}

	if err := p.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", ErrEmailTaken
		}
		return "", err
	}

	p.log.Info("identity account created",
		zap.String("account_id", record.ID),
		zap.String("email", record.Email))

	return record.ID, nil
}

// Authenticate verifies the credentials and returns the account id.
func (p *LocalProvider) Authenticate(ctx context.Context, email, password string) (string, error) {
	var record Account
	if err := p.db.WithContext(ctx).Where("email = ?", email).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return record.ID, nil
}
