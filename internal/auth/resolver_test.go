package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fransouzacb/fenafar-plataforma/internal/auth"
	"github.com/fransouzacb/fenafar-plataforma/pkg/jwtutil"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSigningKey = "test-signing-key"

func testCodec() *jwtutil.Codec {
	return jwtutil.NewCodec(&jwtutil.JWTConfig{SigningKey: testSigningKey, ExpirationHours: 24})
}

func testResolver() *auth.Resolver {
	return auth.NewResolver(testCodec(), auth.DefaultClaimPolicy)
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSigningKey))
	require.NoError(t, err)
	return token
}

func fullToken(t *testing.T) string {
	t.Helper()
	return signedToken(t, jwt.MapClaims{
		"sub":   "user-1",
		"email": "ana@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"user_metadata": map[string]any{
			"role":   "SINDICATO_ADMIN",
			"name":   "Ana",
			"active": true,
		},
	})
}

func TestExtractToken_Precedence(t *testing.T) {
	token := fullToken(t)

	t.Run("cookie wins over headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/perfil", nil)
		req.AddCookie(&http.Cookie{Name: auth.AccessTokenCookie, Value: "cookie-token"})
		req.Header.Set("Authorization", "Bearer header-token")
		req.Header.Set(auth.AccessTokenHeader, "custom-token")
		assert.Equal(t, "cookie-token", auth.ExtractToken(req))
	})

	t.Run("authorization header wins over custom header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/perfil", nil)
		req.Header.Set("Authorization", "Bearer header-token")
		req.Header.Set(auth.AccessTokenHeader, "custom-token")
		assert.Equal(t, "header-token", auth.ExtractToken(req))
	})

	t.Run("custom header as last resort", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/perfil", nil)
		req.Header.Set(auth.AccessTokenHeader, "custom-token")
		assert.Equal(t, "custom-token", auth.ExtractToken(req))
	})

	t.Run("malformed authorization scheme is ignored", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/perfil", nil)
		req.Header.Set("Authorization", "Basic "+token)
		assert.Equal(t, "", auth.ExtractToken(req))
	})

	t.Run("no sources", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/perfil", nil)
		assert.Equal(t, "", auth.ExtractToken(req))
	})
}

func TestResolver_Resolve(t *testing.T) {
	resolver := testResolver()

	t.Run("full claims", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/perfil", nil)
		req.Header.Set("Authorization", "Bearer "+fullToken(t))

		p := resolver.Resolve(req)
		require.NotNil(t, p)
		assert.Equal(t, "user-1", p.ID)
		assert.Equal(t, "ana@example.com", p.Email)
		assert.Equal(t, "Ana", p.Name)
		assert.Equal(t, "SINDICATO_ADMIN", p.Role)
		assert.True(t, p.Active)
	})

	t.Run("no token yields nil", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/perfil", nil)
		assert.Nil(t, resolver.Resolve(req))
	})

	t.Run("garbage token yields nil", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/perfil", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		assert.Nil(t, resolver.Resolve(req))
	})

	t.Run("expired token yields nil", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/perfil", nil)
		req.Header.Set("Authorization", "Bearer "+signedToken(t, jwt.MapClaims{
			"sub": "user-1",
			"exp": time.Now().Add(-time.Minute).Unix(),
		}))
		assert.Nil(t, resolver.Resolve(req))
	})
}

func TestResolver_ClaimDefaults(t *testing.T) {
	resolver := testResolver()

	t.Run("missing role falls back to MEMBER", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/perfil", nil)
		req.Header.Set("Authorization", "Bearer "+signedToken(t, jwt.MapClaims{
			"sub":           "user-1",
			"email":         "ana@example.com",
			"exp":           time.Now().Add(time.Hour).Unix(),
			"user_metadata": map[string]any{"active": true},
		}))

		p := resolver.Resolve(req)
		require.NotNil(t, p)
		assert.Equal(t, "MEMBER", p.Role)
	})

	t.Run("missing active falls back closed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/perfil", nil)
		req.Header.Set("Authorization", "Bearer "+signedToken(t, jwt.MapClaims{
			"sub":           "user-1",
			"email":         "ana@example.com",
			"exp":           time.Now().Add(time.Hour).Unix(),
			"user_metadata": map[string]any{"role": "FENAFAR_ADMIN"},
		}))

		p := resolver.Resolve(req)
		require.NotNil(t, p)
		assert.False(t, p.Active)
	})

	t.Run("explicit active false is honored", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/perfil", nil)
		req.Header.Set("Authorization", "Bearer "+signedToken(t, jwt.MapClaims{
			"sub":           "user-1",
			"exp":           time.Now().Add(time.Hour).Unix(),
			"user_metadata": map[string]any{"role": "FENAFAR_ADMIN", "active": false},
		}))

		p := resolver.Resolve(req)
		require.NotNil(t, p)
		assert.False(t, p.Active)
	})

	t.Run("open active default can be configured", func(t *testing.T) {
		open := auth.NewResolver(testCodec(), auth.Defaults{Role: "MEMBER", Active: true})
		req := httptest.NewRequest(http.MethodGet, "/api/perfil", nil)
		req.Header.Set("Authorization", "Bearer "+signedToken(t, jwt.MapClaims{
			"sub": "user-1",
			"exp": time.Now().Add(time.Hour).Unix(),
		}))

		p := open.Resolve(req)
		require.NotNil(t, p)
		assert.True(t, p.Active)
	})
}
