package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fransouzacb/fenafar-plataforma/internal/auth"
	"github.com/fransouzacb/fenafar-plataforma/internal/middleware"
	"github.com/fransouzacb/fenafar-plataforma/internal/model"
	"github.com/fransouzacb/fenafar-plataforma/pkg/jwtutil"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGatedEcho(t *testing.T) (*echo.Echo, *jwtutil.Codec) {
	t.Helper()

	codec := jwtutil.NewCodec(&jwtutil.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})
	resolver := auth.NewResolver(codec, auth.DefaultClaimPolicy)
	gate := middleware.NewGate(resolver)

	e := echo.New()
	e.Use(gate.Middleware())

	ok := func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"user_id": c.Get(middleware.UserIDKey),
			"role":    c.Get(middleware.UserRoleKey),
		})
	}
	e.GET("/health", ok)
	e.GET("/api/auth/me", ok)
	e.GET("/api/convites", ok)
	e.GET("/api/sindicatos", ok)
	e.GET("/api/perfil", ok)
	e.GET("/dashboard/convites", ok)
	e.GET("/membro", ok)

	return e, codec
}

func tokenFor(t *testing.T, codec *jwtutil.Codec, role string) string {
	t.Helper()
	token, err := codec.GenerateToken("user-1", "ana@example.com", "Ana", role)
	require.NoError(t, err)
	return token
}

func doRequest(e *echo.Echo, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestGate_PublicAndClientManagedPathsBypass(t *testing.T) {
	e, _ := newGatedEcho(t)

	for _, path := range []string{"/health", "/api/auth/me"} {
		rec := doRequest(e, path, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestGate_RejectsUnauthenticated(t *testing.T) {
	e, _ := newGatedEcho(t)

	expiredCodec := jwtutil.NewCodec(&jwtutil.JWTConfig{SigningKey: "test-key", ExpirationHours: 1},
		jwtutil.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }))
	expired, err := expiredCodec.GenerateToken("user-1", "ana@example.com", "Ana", model.RoleFenafarAdmin)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"no token", ""},
		{"garbage token", "not-a-jwt"},
		{"expired token", expired},
	}

	for _, tt := range tests {
		t.Run(tt.name+" on api path", func(t *testing.T) {
			rec := doRequest(e, "/api/convites", tt.token)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})

		t.Run(tt.name+" on page path", func(t *testing.T) {
			rec := doRequest(e, "/dashboard/convites", tt.token)
			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/login?redirect=%2Fdashboard%2Fconvites", rec.Header().Get("Location"))
		})
	}
}

func TestGate_RoleGating(t *testing.T) {
	e, codec := newGatedEcho(t)

	t.Run("member denied on admin api path", func(t *testing.T) {
		rec := doRequest(e, "/api/convites", tokenFor(t, codec, model.RoleMember))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("platform admin allowed on admin api path", func(t *testing.T) {
		rec := doRequest(e, "/api/convites", tokenFor(t, codec, model.RoleFenafarAdmin))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("member allowed on member path", func(t *testing.T) {
		rec := doRequest(e, "/membro", tokenFor(t, codec, model.RoleMember))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("member denied on admin page redirects to member area", func(t *testing.T) {
		rec := doRequest(e, "/dashboard/convites", tokenFor(t, codec, model.RoleMember))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/membro", rec.Header().Get("Location"))
	})

	t.Run("tenant admin denied on admin page redirects to dashboard", func(t *testing.T) {
		rec := doRequest(e, "/dashboard/convites", tokenFor(t, codec, model.RoleSindicatoAdmin))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	})

	t.Run("unmapped path only requires authentication", func(t *testing.T) {
		rec := doRequest(e, "/api/perfil", tokenFor(t, codec, model.RoleMember))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestGate_AnnotatesPrincipal(t *testing.T) {
	e, codec := newGatedEcho(t)

	rec := doRequest(e, "/api/sindicatos", tokenFor(t, codec, model.RoleFenafarAdmin))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "user-1", body["user_id"])
	assert.Equal(t, model.RoleFenafarAdmin, body["role"])
}

func TestGate_InactivePrincipalIsUnauthenticated(t *testing.T) {
	e, _ := newGatedEcho(t)

	tests := []struct {
		name     string
		metadata map[string]any
	}{
		// A token that asserts active=false is rejected even for an
		// admin role; one that omits active hits the fail-closed default.
		{"explicit inactive", map[string]any{"role": model.RoleFenafarAdmin, "active": false}},
		{"missing active claim", map[string]any{"role": model.RoleFenafarAdmin}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
				"sub":           "user-1",
				"email":         "ana@example.com",
				"exp":           time.Now().Add(time.Hour).Unix(),
				"user_metadata": tt.metadata,
			})
			token, err := raw.SignedString([]byte("test-key"))
			require.NoError(t, err)

			rec := doRequest(e, "/api/convites", token)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}
