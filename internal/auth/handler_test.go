package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*Handler, *testEnv) {
	env := newTestEnv(t)
	handler := NewHandler(env.service, newTestConfig(), newTestLogger(t))
	handler.now = func() time.Time { return env.clock }
	return handler, env
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func cookieByName(t *testing.T, cookies []*http.Cookie, name string) *http.Cookie {
	t.Helper()
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestHandler_Register(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "valid registration",
			body:       `{"email":"ana@example.com","password":"testpass123","name":"Ana"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "short password",
			body:       `{"email":"ana@example.com","password":"short","name":"Ana"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid email",
			body:       `{"email":"not-an-email","password":"testpass123","name":"Ana"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing name",
			body:       `{"email":"ana@example.com","password":"testpass123"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown field",
			body:       `{"email":"ana@example.com","password":"testpass123","name":"Ana","admin":true}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed json",
			body:       `{"email":`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := newTestHandler(t)
			rec := httptest.NewRecorder()

			handler.Register(rec, postJSON("/api/auth/register", tt.body))
			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus == http.StatusCreated {
				assert.NotContains(t, rec.Body.String(), "password")
				cookieByName(t, rec.Result().Cookies(), accessTokenCookie)
				cookieByName(t, rec.Result().Cookies(), refreshTokenCookie)
			}
		})
	}
}

func TestHandler_Register_DuplicateEmail(t *testing.T) {
	handler, env := newTestHandler(t)
	env.registerUser(t, "ana@example.com", "testpass123")

	rec := httptest.NewRecorder()
	handler.Register(rec, postJSON("/api/auth/register",
		`{"email":"ana@example.com","password":"testpass123","name":"Ana"}`))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandler_Login(t *testing.T) {
	handler, env := newTestHandler(t)
	env.registerUser(t, "ana@example.com", "testpass123")

	rec := httptest.NewRecorder()
	handler.Login(rec, postJSON("/api/auth/login",
		`{"email":"ana@example.com","password":"testpass123"}`))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		User Summary `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ana@example.com", body.User.Email)
	assert.NotContains(t, rec.Body.String(), "passwordHash")

	access := cookieByName(t, rec.Result().Cookies(), accessTokenCookie)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, access.SameSite)
	assert.Equal(t, "/", access.Path)
	assert.NotEmpty(t, access.Value)

	refresh := cookieByName(t, rec.Result().Cookies(), refreshTokenCookie)
	assert.True(t, refresh.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, refresh.SameSite)
	assert.Equal(t, refreshCookiePath, refresh.Path)
	assert.NotEmpty(t, refresh.Value)
}

func TestHandler_Login_Failures(t *testing.T) {
	handler, env := newTestHandler(t)
	env.registerUser(t, "ana@example.com", "testpass123")

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "wrong password",
			body:       `{"email":"ana@example.com","password":"wrongpass123"}`,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unknown email",
			body:       `{"email":"nobody@example.com","password":"testpass123"}`,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing fields",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.Login(rec, postJSON("/api/auth/login", tt.body))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Empty(t, rec.Result().Cookies())
		})
	}
}

func TestHandler_Login_LockedAccount(t *testing.T) {
	handler, env := newTestHandler(t)
	env.registerUser(t, "ana@example.com", "testpass123")

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.Login(rec, postJSON("/api/auth/login",
			`{"email":"ana@example.com","password":"wrongpass123"}`))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := httptest.NewRecorder()
	handler.Login(rec, postJSON("/api/auth/login",
		`{"email":"ana@example.com","password":"testpass123"}`))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	// Lock lasts 15 minutes from the last failure; the header counts
	// down from the same clock the service locks with.
	assert.Equal(t, "900", rec.Header().Get("Retry-After"))
}

func TestHandler_Refresh(t *testing.T) {
	handler, env := newTestHandler(t)
	env.registerUser(t, "ana@example.com", "testpass123")

	loginRec := httptest.NewRecorder()
	handler.Login(loginRec, postJSON("/api/auth/login",
		`{"email":"ana@example.com","password":"testpass123"}`))
	require.Equal(t, http.StatusOK, loginRec.Code)
	refresh := cookieByName(t, loginRec.Result().Cookies(), refreshTokenCookie)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(refresh)
	rec := httptest.NewRecorder()
	handler.Refresh(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	rotated := cookieByName(t, rec.Result().Cookies(), refreshTokenCookie)
	assert.NotEqual(t, refresh.Value, rotated.Value)
}

func TestHandler_Refresh_MissingOrInvalidCookie(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.Refresh(rec, httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: refreshTokenCookie, Value: "bogus"})
	rec = httptest.NewRecorder()
	handler.Refresh(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Invalid tokens get the cookies cleared
	cleared := cookieByName(t, rec.Result().Cookies(), refreshTokenCookie)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
}

func TestHandler_Logout(t *testing.T) {
	handler, env := newTestHandler(t)
	env.registerUser(t, "ana@example.com", "testpass123")

	loginRec := httptest.NewRecorder()
	handler.Login(loginRec, postJSON("/api/auth/login",
		`{"email":"ana@example.com","password":"testpass123"}`))
	refresh := cookieByName(t, loginRec.Result().Cookies(), refreshTokenCookie)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(refresh)
	rec := httptest.NewRecorder()
	handler.Logout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	cleared := cookieByName(t, rec.Result().Cookies(), accessTokenCookie)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)

	// A second logout without any cookie still succeeds
	rec = httptest.NewRecorder()
	handler.Logout(rec, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_CurrentUser(t *testing.T) {
	handler, env := newTestHandler(t)
	user := env.registerUser(t, "ana@example.com", "testpass123")

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	claims := &Claims{UserID: user.ID, Email: user.Email, Role: user.Role}
	req = req.WithContext(ContextWithClaims(req.Context(), claims))

	rec := httptest.NewRecorder()
	handler.CurrentUser(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		User Summary `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, user.ID, body.User.ID)

	// No claims in context
	rec = httptest.NewRecorder()
	handler.CurrentUser(rec, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_UpdatePassword(t *testing.T) {
	handler, env := newTestHandler(t)
	user := env.registerUser(t, "ana@example.com", "testpass123")
	claims := &Claims{UserID: user.ID, Email: user.Email, Role: user.Role}

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "valid change",
			body:       `{"currentPassword":"testpass123","newPassword":"newpass12345"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "wrong current password",
			body:       `{"currentPassword":"testpass123","newPassword":"another12345"}`,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "short new password",
			body:       `{"currentPassword":"newpass12345","newPassword":"short"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := postJSON("/api/auth/update-password", tt.body)
			req = req.WithContext(ContextWithClaims(req.Context(), claims))

			rec := httptest.NewRecorder()
			handler.UpdatePassword(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandler_ForgotPassword(t *testing.T) {
	handler, env := newTestHandler(t)
	env.registerUser(t, "ana@example.com", "testpass123")

	// Known and unknown emails produce the same response
	known := httptest.NewRecorder()
	handler.ForgotPassword(known, postJSON("/api/auth/forgot-password",
		`{"email":"ana@example.com"}`))
	unknown := httptest.NewRecorder()
	handler.ForgotPassword(unknown, postJSON("/api/auth/forgot-password",
		`{"email":"nobody@example.com"}`))

	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, http.StatusOK, unknown.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())

	// Only the known email got a mail
	assert.Equal(t, []string{"ana@example.com"}, env.mailer.emails)
}

func TestHandler_ResetPassword(t *testing.T) {
	handler, env := newTestHandler(t)
	env.registerUser(t, "ana@example.com", "testpass123")

	require.NoError(t, env.service.RequestPasswordReset(
		context.Background(), "ana@example.com", RequestMeta{}))
	token := env.mailer.lastToken()

	rec := httptest.NewRecorder()
	handler.ResetPassword(rec, postJSON("/api/auth/reset-password",
		`{"token":"`+token+`","newPassword":"newpass12345"}`))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Reusing the consumed token fails
	rec = httptest.NewRecorder()
	handler.ResetPassword(rec, postJSON("/api/auth/reset-password",
		`{"token":"`+token+`","newPassword":"another12345"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
