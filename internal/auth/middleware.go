package auth

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey struct{}

// ErrorWriter renders an auth failure with the given status and code.
type ErrorWriter func(w http.ResponseWriter, status int, code string)

// Middleware requires a valid bearer credential and places its claims on
// the request context.
func Middleware(issuer *Issuer, writeErr ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				writeErr(w, http.StatusUnauthorized, "missing_token")
				return
			}
			claims, err := issuer.Validate(raw)
			if err != nil {
				writeErr(w, http.StatusUnauthorized, "bad_token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, claims)
}

// ClaimsFromContext returns the claims placed by Middleware.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Claims)
	return c, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
