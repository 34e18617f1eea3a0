package auth

import (
	"context"
	"net/http"

	"github.com/followmee/crm/internal/httpx"
)

// Define a custom type for context keys
type contextKey string

const claimsContextKey contextKey = "auth.claims"

// Middleware guards protected routes by verifying the access-token
// cookie. Missing, malformed and expired tokens are all rejected with
// 401 so callers cannot distinguish the cases.
type Middleware struct {
	tokens *TokenIssuer
}

func NewMiddleware(tokens *TokenIssuer) *Middleware {
	return &Middleware{tokens: tokens}
}

func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(accessTokenCookie)
		if err != nil || cookie.Value == "" {
			httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		claims, err := m.tokens.VerifyAccessToken(cookie.Value)
		if err != nil {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
	})
}

func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext returns the verified token claims attached by the
// middleware.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	return claims, ok
}
