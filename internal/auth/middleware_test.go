package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protected(t *testing.T, issuer *Issuer) http.Handler {
	t.Helper()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		_, _ = w.Write([]byte(claims.Chain))
	})
	writeErr := func(w http.ResponseWriter, status int, code string) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(code))
	}
	return Middleware(issuer, writeErr)(next)
}

func TestMiddleware(t *testing.T) {
	issuer, err := NewIssuer(testSecret, nil)
	require.NoError(t, err)
	raw, err := issuer.Issue(testGrant)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"valid", "Bearer " + raw, http.StatusOK, "base"},
		{"lowercase scheme", "bearer " + raw, http.StatusOK, "base"},
		{"no header", "", http.StatusUnauthorized, "missing_token"},
		{"other scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, "missing_token"},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, "missing_token"},
		{"tampered", "Bearer " + raw + "x", http.StatusUnauthorized, "bad_token"},
	}

	h := protected(t, issuer)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestClaimsFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := ClaimsFromContext(req.Context())
	assert.False(t, ok)
}
