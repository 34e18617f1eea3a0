package user

import (
	"errors"
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/followmee/crm/internal/auth"
	"github.com/followmee/crm/internal/httpx"
)

type Handler struct {
	service *Service
	log     *zap.Logger
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	return &Handler{service: service, log: log}
}

type createRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	LastName string `json:"lastName"`
	Phone1   string `json:"phone1"`
	Phone2   string `json:"phone2"`
	Role     string `json:"role"`
}

type updateRequest struct {
	Email    *string `json:"email"`
	Name     *string `json:"name"`
	LastName *string `json:"lastName"`
	Phone1   *string `json:"phone1"`
	Phone2   *string `json:"phone2"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
}

// GET /api/users
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		h.internalError(w, "failed to list users", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"users": users})
}

// GET /api/users/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "user id must be numeric")
		return
	}

	summary, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "user not found")
			return
		}
		h.internalError(w, "failed to load user", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"user": summary})
}

// POST /api/users
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var body createRequest
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	var errs []httpx.FieldError
	body.Email = strings.TrimSpace(body.Email)
	body.Name = strings.TrimSpace(body.Name)
	if !isValidEmail(body.Email) {
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

	summary, err := h.service.Create(r.Context(), CreateInput{
		Email:    body.Email,
		Password: body.Password,
		Name:     body.Name,
		LastName: strings.TrimSpace(body.LastName),
		Phone1:   body.Phone1,
		Phone2:   body.Phone2,
		Role:     body.Role,
	})
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			httpx.WriteError(w, http.StatusConflict, "a user with this email already exists")
			return
		}
		h.internalError(w, "failed to create user", err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"user": summary})
}

// PUT /api/users/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "user id must be numeric")
		return
	}

	var body updateRequest
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	if body.Email != nil && !isValidEmail(strings.TrimSpace(*body.Email)) {
		httpx.WriteValidationErrors(w, []httpx.FieldError{
			{Field: "email", Message: "valid email is required"},
		})
		return
	}

	summary, err := h.service.Update(r.Context(), id, UpdateInput{
		Email:    body.Email,
		Name:     body.Name,
		LastName: body.LastName,
		Phone1:   body.Phone1,
		Phone2:   body.Phone2,
		Role:     body.Role,
		IsActive: body.IsActive,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			httpx.WriteError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, auth.ErrUserExists):
			httpx.WriteError(w, http.StatusConflict, "email is already in use")
		default:
			h.internalError(w, "failed to update user", err)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"user": summary})
}

// Delete deactivates the account.
// DELETE /api/users/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "user id must be numeric")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "user not found")
			return
		}
		h.internalError(w, "failed to deactivate user", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "user deactivated successfully"})
}

func (h *Handler) internalError(w http.ResponseWriter, message string, err error) {
	sentry.CaptureException(err)
	h.log.Error(message, zap.Error(err))
	httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
}

func parseID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	return uint(id), err
}

func isValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}
