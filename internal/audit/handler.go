package audit

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/followmee/crm/internal/httpx"
)

type Handler struct {
	recorder Recorder
	log      *zap.Logger
}

func NewHandler(recorder Recorder, log *zap.Logger) *Handler {
	return &Handler{recorder: recorder, log: log}
}

// List returns recent audit entries, optionally filtered to one user.
// GET /api/audit?limit=&userId=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	var (
		entries []Entry
		err     error
	)
	if rawID := r.URL.Query().Get("userId"); rawID != "" {
		userID, convErr := strconv.ParseUint(rawID, 10, 32)
		if convErr != nil {
			httpx.WriteError(w, http.StatusBadRequest, "userId must be numeric")
			return
		}
		entries, err = h.recorder.ForUser(r.Context(), uint(userID), limit)
	} else {
		entries, err = h.recorder.Recent(r.Context(), limit)
	}

	if err != nil {
		h.log.Error("failed to list audit entries", zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, "failed to list audit entries")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
