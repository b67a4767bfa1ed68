package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedAdminToken(t *testing.T, secret string, claims jwt.RegisteredClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims() jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   "ops",
		Audience:  jwt.ClaimStrings{AdminAudience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(5 * time.Minute)),
	}
}

func serveAdmin(secret, auth string) (*httptest.ResponseRecorder, bool) {
	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	called := false
	AdminJWT(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		claims, ok := AdminClaimsFromContext(r.Context())
		if ok {
			w.Header().Set("X-Subject", claims.Subject)
		}
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, req)
	return rec, called
}

func TestAdminJWT(t *testing.T) {
	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	wrongAudience := validClaims()
	wrongAudience.Audience = jwt.ClaimStrings{"someone-else"}
	noExpiry := validClaims()
	noExpiry.ExpiresAt = nil

	tests := []struct {
		name   string
		secret string
		auth   string
	}{
		{"auth disabled", "", "Bearer " + signedAdminToken(t, "secret", validClaims())},
		{"missing header", "secret", ""},
		{"not bearer", "secret", "Basic abc"},
		{"wrong secret", "secret", "Bearer " + signedAdminToken(t, "wrong", validClaims())},
		{"expired", "secret", "Bearer " + signedAdminToken(t, "secret", expired)},
		{"wrong audience", "secret", "Bearer " + signedAdminToken(t, "secret", wrongAudience)},
		{"no expiry", "secret", "Bearer " + signedAdminToken(t, "secret", noExpiry)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, called := serveAdmin(tt.secret, tt.auth)
			assert.False(t, called)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAdminJWTValidToken(t *testing.T) {
	rec, called := serveAdmin("secret", "Bearer "+signedAdminToken(t, "secret", validClaims()))

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ops", rec.Header().Get("X-Subject"))
}
