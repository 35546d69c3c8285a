package identity_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fransouzacb/fenafar-plataforma/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupProvider(t *testing.T) *identity.LocalProvider {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&identity.Account{}))

	return identity.NewLocalProvider(db, zap.NewNop())
}

func TestLocalProvider_CreateAndAuthenticate(t *testing.T) {
	p := setupProvider(t)
	ctx := context.Background()

	id, err := p.CreateAccount(ctx, identity.NewAccount{
		Email:    "ana@example.com",
		Password: "senha-segura",
		Name:     "Ana",
		Role:     "MEMBER",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	got, err := p.Authenticate(ctx, "ana@example.com", "senha-segura")
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestLocalProvider_CreateAccount_EmailTaken(t *testing.T) {
	p := setupProvider(t)
	ctx := context.Background()

	_, err := p.CreateAccount(ctx, identity.NewAccount{Email: "ana@example.com", Password: "senha"})
	require.NoError(t, err)

	_, err = p.CreateAccount(ctx, identity.NewAccount{Email: "ana@example.com", Password: "outra"})
	assert.ErrorIs(t, err, identity.ErrEmailTaken)
}

func TestLocalProvider_Authenticate_Failures(t *testing.T) {
	p := setupProvider(t)
	ctx := context.Background()

	_, err := p.CreateAccount(ctx, identity.NewAccount{Email: "ana@example.com", Password: "senha-segura"})
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		_, err := p.Authenticate(ctx, "ana@example.com", "senha-errada")
		assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := p.Authenticate(ctx, "ninguem@example.com", "senha")
		assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
	})
}
