package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/auth"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtectedRouter(svc jwt.Service, final http.HandlerFunc) http.Handler {
	r := chi.NewRouter()
	r.Use(jwtauth.Verifier(svc.JWTAuth()))
	r.Use(AuthRequired)
	r.Get("/me", final)
	r.With(RequireManager).Get("/queue", final)
	return r
}

func bearer(t *testing.T, svc jwt.Service, p auth.Principal) string {
	t.Helper()
	token, _, err := svc.GenerateAccessToken(p, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAuthRequired(t *testing.T) {
	svc := jwt.NewJWTService("test-secret")

	var seen auth.Principal
	router := newProtectedRouter(svc, func(w http.ResponseWriter, r *http.Request) {
		seen, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("no token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("foreign signature", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", bearer(t, jwt.NewJWTService("other"), auth.Principal{UserID: "u1"}))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", bearer(t, svc, auth.Principal{UserID: "u1", Role: auth.RoleEmployee}))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "u1", seen.UserID)
	})
}

func TestRequireManager(t *testing.T) {
	svc := jwt.NewJWTService("test-secret")
	router := newProtectedRouter(svc, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		role auth.Role
		want int
	}{
		{auth.RoleEmployee, http.StatusForbidden},
		{auth.RoleManager, http.StatusNoContent},
		{auth.RoleOwner, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/queue", nil)
			req.Header.Set("Authorization", bearer(t, svc, auth.Principal{UserID: "u1", Role: tt.role}))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
