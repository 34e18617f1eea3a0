package audit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRecorder struct {
	entries []Entry
	err     error

	recentLimit  int
	forUserID    uint
	forUserLimit int
}

func (f *fakeRecorder) Record(context.Context, Event) {}

func (f *fakeRecorder) Recent(_ context.Context, limit int) ([]Entry, error) {
	f.recentLimit = limit
	return f.entries, f.err
}

func (f *fakeRecorder) ForUser(_ context.Context, userID uint, limit int) ([]Entry, error) {
	f.forUserID = userID
	f.forUserLimit = limit
	return f.entries, f.err
}

func newTestHandler(t *testing.T, recorder Recorder) *Handler {
	logger, err := zap.NewDevelopment()
	require.NoError(t, err)
	return NewHandler(recorder, logger)
}

func TestHandler_List(t *testing.T) {
	userID := uint(7)
	recorder := &fakeRecorder{entries: []Entry{
		{ID: 1, UserID: &userID, Action: ActionLogin, Status: StatusSuccess},
		{ID: 2, Action: ActionLogin, Status: StatusFailure},
	}}
	handler := newTestHandler(t, recorder)

	rec := httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/api/audit?limit=25", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 25, recorder.recentLimit)

	var body struct {
		Entries []Entry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Entries, 2)
	assert.Equal(t, ActionLogin, body.Entries[0].Action)
}

func TestHandler_List_ForUser(t *testing.T) {
	recorder := &fakeRecorder{}
	handler := newTestHandler(t, recorder)

	rec := httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/api/audit?userId=42&limit=10", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(42), recorder.forUserID)
	assert.Equal(t, 10, recorder.forUserLimit)
}

func TestHandler_List_BadUserID(t *testing.T) {
	handler := newTestHandler(t, &fakeRecorder{})

	rec := httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/api/audit?userId=abc", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_List_StoreError(t *testing.T) {
	handler := newTestHandler(t, &fakeRecorder{err: errors.New("connection refused")})

	rec := httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/api/audit", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
