package auth

import (
	"errors"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/followmee/crm/internal/config"
	"github.com/followmee/crm/internal/httpx"
)

const (
	accessTokenCookie  = "access_token"
	refreshTokenCookie = "refresh_token"

	// The refresh cookie is scoped to the auth endpoints so browsers only
	// attach the long-lived credential where it is actually consumed
	// (token refresh and logout).
	refreshCookiePath = "/api/auth"
)

type Handler struct {
	service *Service
	config  *config.AuthConfig
	log     *zap.Logger
	now     func() time.Time
}

func NewHandler(service *Service, cfg *config.AuthConfig, log *zap.Logger) *Handler {
	return &Handler{
		service: service,
		config:  cfg,
		log:     log,
		now:     time.Now,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	LastName string `json:"lastName"`
	Phone1   string `json:"phone1"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Register creates a user and logs them straight in.
// POST /api/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var body registerRequest
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	var errs []httpx.FieldError
	body.Email = strings.TrimSpace(body.Email)
	body.Name = strings.TrimSpace(body.Name)
	if body.Email == "" || !isValidEmail(body.Email) {
		errs = append(errs, httpx.FieldError{Field: "email", Message: "valid email is required"})
	}
	if len(body.Password) < 8 {
		errs = append(errs, httpx.FieldError{Field: "password", Message: "password must be at least 8 characters"})
	}
	if body.Name == "" || len(body.Name) > 50 {
		errs = append(errs, httpx.FieldError{Field: "name", Message: "name is required and must be at most 50 characters"})
	}
	if len(errs) > 0 {
		httpx.WriteValidationErrors(w, errs)
		return
	}

	user, pair, err := h.service.Register(r.Context(), RegisterInput{
		Email:    body.Email,
		Password: body.Password,
		Name:     body.Name,
		LastName: strings.TrimSpace(body.LastName),
		Phone1:   strings.TrimSpace(body.Phone1),
	}, requestMeta(r))
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			httpx.WriteError(w, http.StatusConflict, "email already registered")
			return
		}
		h.internalError(w, "failed to register user", err)
		return
	}

	h.setAuthCookies(w, pair)
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"user": user.Summary()})
}

// Login validates credentials and sets both auth cookies.
// POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	var errs []httpx.FieldError
	body.Email = strings.TrimSpace(body.Email)
	if body.Email == "" {
		errs = append(errs, httpx.FieldError{Field: "email", Message: "email is required"})
	}
	if body.Password == "" {
		errs = append(errs, httpx.FieldError{Field: "password", Message: "password is required"})
	}
	if len(errs) > 0 {
		httpx.WriteValidationErrors(w, errs)
		return
	}

	user, pair, err := h.service.Login(r.Context(), body.Email, body.Password, requestMeta(r))
	if err != nil {
		var locked AccountLockedError
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid email or password")
		case errors.As(err, &locked):
			retryAfter := int(locked.Until.Sub(h.now()).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			httpx.WriteError(w, http.StatusTooManyRequests, "account temporarily locked")
		case errors.Is(err, ErrAccountDeactivated):
			httpx.WriteError(w, http.StatusForbidden, "account is deactivated")
		default:
			h.internalError(w, "login failed", err)
		}
		return
	}

	h.setAuthCookies(w, pair)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"user": user.Summary()})
}

// Refresh exchanges a valid refresh-token cookie for a fresh token pair.
// POST /api/auth/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshTokenCookie)
	if err != nil || cookie.Value == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "missing refresh token")
		return
	}

	user, pair, err := h.service.Refresh(r.Context(), cookie.Value, requestMeta(r))
	if err != nil {
		switch {
		case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrUserNotFound):
			h.clearAuthCookies(w)
			httpx.WriteError(w, http.StatusUnauthorized, "invalid refresh token")
		case errors.Is(err, ErrAccountDeactivated):
			h.clearAuthCookies(w)
			httpx.WriteError(w, http.StatusForbidden, "account is deactivated")
		default:
			h.internalError(w, "failed to refresh token", err)
		}
		return
	}

	h.setAuthCookies(w, pair)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"user": user.Summary()})
}

// Logout revokes the current session and clears both cookies. It always
// succeeds from the client's point of view.
// POST /api/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var refreshToken string
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil {
		refreshToken = cookie.Value
	}

	var userID *uint
	if claims, ok := ClaimsFromContext(r.Context()); ok {
		userID = &claims.UserID
	}

	h.service.Logout(r.Context(), refreshToken, userID, requestMeta(r))

	h.clearAuthCookies(w)
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
}

// CurrentUser returns the authenticated user's summary.
// GET /api/auth/me
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	user, err := h.service.CurrentUser(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "user not found")
			return
		}
		h.internalError(w, "failed to load current user", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"user": user.Summary()})
}

// UpdatePassword changes the password after verifying the current one.
// PUT /api/auth/update-password
func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var body updatePasswordRequest
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	var errs []httpx.FieldError
	if body.CurrentPassword == "" {
		errs = append(errs, httpx.FieldError{Field: "currentPassword", Message: "current password is required"})
	}
	if len(body.NewPassword) < 8 {
		errs = append(errs, httpx.FieldError{Field: "newPassword", Message: "new password must be at least 8 characters"})
	}
	if len(errs) > 0 {
		httpx.WriteValidationErrors(w, errs)
		return
	}

	if err := h.service.UpdatePassword(r.Context(), claims.UserID, body.CurrentPassword, body.NewPassword); err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, "current password is incorrect")
		case errors.Is(err, ErrUserNotFound):
			httpx.WriteError(w, http.StatusNotFound, "user not found")
		default:
			h.internalError(w, "failed to update password", err)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "password updated successfully"})
}

// ForgotPassword always returns the same generic message, whether or not
// the email matched an account.
// POST /api/auth/forgot-password
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var body forgotPasswordRequest
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	body.Email = strings.TrimSpace(body.Email)
	if body.Email == "" || !isValidEmail(body.Email) {
		httpx.WriteValidationErrors(w, []httpx.FieldError{
			{Field: "email", Message: "valid email is required"},
		})
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), body.Email, requestMeta(r)); err != nil {
		h.internalError(w, "failed to process password reset request", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "if an account exists for that email, a reset link has been sent",
	})
}

// ResetPassword consumes a reset token and sets the new password.
// POST /api/auth/reset-password
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var body resetPasswordRequest
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	var errs []httpx.FieldError
	if strings.TrimSpace(body.Token) == "" {
		errs = append(errs, httpx.FieldError{Field: "token", Message: "token is required"})
	}
	if len(body.NewPassword) < 8 {
		errs = append(errs, httpx.FieldError{Field: "newPassword", Message: "new password must be at least 8 characters"})
	}
	if len(errs) > 0 {
		httpx.WriteValidationErrors(w, errs)
		return
	}

	if err := h.service.ResetPassword(r.Context(), body.Token, body.NewPassword, requestMeta(r)); err != nil {
		switch {
		case errors.Is(err, ErrTokenExpired):
			httpx.WriteError(w, http.StatusBadRequest, "reset token has expired")
		case errors.Is(err, ErrTokenInvalid):
			httpx.WriteError(w, http.StatusBadRequest, "invalid or expired reset token")
		default:
			h.internalError(w, "failed to reset password", err)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "password reset successfully"})
}

func (h *Handler) setAuthCookies(w http.ResponseWriter, pair *TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   int(h.config.AccessTokenDuration.Seconds()),
		HttpOnly: true,
		Secure:   h.config.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    pair.RefreshToken,
		Path:     refreshCookiePath,
		MaxAge:   int(h.config.RefreshTokenDuration.Seconds()),
		HttpOnly: true,
		Secure:   h.config.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) clearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) internalError(w http.ResponseWriter, message string, err error) {
	sentry.CaptureException(err)
	h.log.Error(message, zap.Error(err))
	httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
}

func requestMeta(r *http.Request) RequestMeta {
	return RequestMeta{
		IPAddress: httpx.ClientIP(r),
		UserAgent: r.UserAgent(),
	}
}

func isValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}
