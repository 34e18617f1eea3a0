package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_Wrap(t *testing.T) {
	issuer := NewTokenIssuer(newTestConfig())
	middleware := NewMiddleware(issuer)

	user := &User{ID: 42, Email: "ana@example.com", Role: "user"}
	valid, err := issuer.IssueAccessToken(user, time.Now())
	require.NoError(t, err)
	expired, err := issuer.IssueAccessToken(user, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	var gotClaims *Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		token      string
		noCookie   bool
		wantStatus int
	}{
		{
			name:       "valid token",
			token:      valid,
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing cookie",
			noCookie:   true,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "empty cookie",
			token:      "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired token",
			token:      expired,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			token:      "not.a.jwt",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotClaims = nil

			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if !tt.noCookie {
				req.AddCookie(&http.Cookie{Name: accessTokenCookie, Value: tt.token})
			}

			rec := httptest.NewRecorder()
			middleware.Wrap(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				require.NotNil(t, gotClaims)
				assert.Equal(t, uint(42), gotClaims.UserID)
				assert.Equal(t, "ana@example.com", gotClaims.Email)
			} else {
				assert.Nil(t, gotClaims)
			}
		})
	}
}

func TestClaimsFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	claims, ok := ClaimsFromContext(req.Context())
	assert.False(t, ok)
	assert.Nil(t, claims)
}
