package customer

import (
	"errors"
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

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
	Name      string `json:"name"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone1    string `json:"phone1"`
	Phone2    string `json:"phone2"`
	Facebook  string `json:"facebook"`
	Instagram string `json:"instagram"`
	TikTok    string `json:"tikTok"`
	Line      string `json:"line"`
	X         string `json:"x"`
}

type updateRequest struct {
	Name      *string `json:"name"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Phone1    *string `json:"phone1"`
	Phone2    *string `json:"phone2"`
	Facebook  *string `json:"facebook"`
	Instagram *string `json:"instagram"`
	TikTok    *string `json:"tikTok"`
	Line      *string `json:"line"`
	X         *string `json:"x"`
	IsActive  *bool   `json:"isActive"`
}

// List returns active customers, paginated; a search query switches to
// name/email matching.
// GET /api/customers?search=&page=&limit=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if query := r.URL.Query().Get("search"); query != "" {
		customers, err := h.service.Search(r.Context(), query)
		if err != nil {
			h.internalError(w, "failed to search customers", err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"customers": customers})
		return
	}

	pageNumber, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	customers, total, err := h.service.List(r.Context(), Page{Number: pageNumber, Size: pageSize})
	if err != nil {
		h.internalError(w, "failed to list customers", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"customers": customers,
		"total":     total,
	})
}

// GET /api/customers/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	customer, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "customer not found")
			return
		}
		h.internalError(w, "failed to load customer", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"customer": customer})
}

// POST /api/customers
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var body createRequest
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	var errs []httpx.FieldError
	body.Name = strings.TrimSpace(body.Name)
	body.Email = strings.TrimSpace(body.Email)
	if body.Name == "" || len(body.Name) > 50 {
		errs = append(errs, httpx.FieldError{Field: "name", Message: "customer name is required"})
	}
	if !isValidEmail(body.Email) {
		errs = append(errs, httpx.FieldError{Field: "email", Message: "valid email is required"})
	}
	if len(errs) > 0 {
		httpx.WriteValidationErrors(w, errs)
		return
	}

	customer, err := h.service.Create(r.Context(), CreateInput{
		Name:      body.Name,
		LastName:  strings.TrimSpace(body.LastName),
		Email:     body.Email,
		Phone1:    body.Phone1,
		Phone2:    body.Phone2,
		Facebook:  body.Facebook,
		Instagram: body.Instagram,
		TikTok:    body.TikTok,
		Line:      body.Line,
		X:         body.X,
	})
	if err != nil {
		if errors.Is(err, ErrCustomerExists) {
			httpx.WriteError(w, http.StatusConflict, "a customer with this email already exists")
			return
		}
		h.internalError(w, "failed to create customer", err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"customer": customer})
}

// PUT /api/customers/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
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

	customer, err := h.service.Update(r.Context(), r.PathValue("id"), UpdateInput{
		Name:      body.Name,
		LastName:  body.LastName,
		Email:     body.Email,
		Phone1:    body.Phone1,
		Phone2:    body.Phone2,
		Facebook:  body.Facebook,
		Instagram: body.Instagram,
		TikTok:    body.TikTok,
		Line:      body.Line,
		X:         body.X,
		IsActive:  body.IsActive,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrCustomerNotFound):
			httpx.WriteError(w, http.StatusNotFound, "customer not found")
		case errors.Is(err, ErrCustomerExists):
			httpx.WriteError(w, http.StatusConflict, "email is already in use")
		default:
			h.internalError(w, "failed to update customer", err)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"customer": customer})
}

// Delete deactivates the customer.
// DELETE /api/customers/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "customer not found")
			return
		}
		h.internalError(w, "failed to deactivate customer", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "customer deactivated successfully"})
}

func (h *Handler) internalError(w http.ResponseWriter, message string, err error) {
	sentry.CaptureException(err)
	h.log.Error(message, zap.Error(err))
	httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
}

func isValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}
