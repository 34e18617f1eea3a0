package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{
			name:       "remote addr only",
			remoteAddr: "192.0.2.1:1234",
			want:       "192.0.2.1:1234",
		},
		{
			name:       "single forwarded",
			remoteAddr: "10.0.0.1:1234",
			forwarded:  "203.0.113.5",
			want:       "203.0.113.5",
		},
		{
			name:       "forwarded chain takes first hop",
			remoteAddr: "10.0.0.1:1234",
			forwarded:  "203.0.113.5, 10.0.0.2, 10.0.0.3",
			want:       "203.0.113.5",
		},
		{
			name: "nothing known",
			want: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.want, ClientIP(req))
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("valid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"ana"}`))
		var dst payload
		require.NoError(t, DecodeJSON(httptest.NewRecorder(), req, &dst))
		assert.Equal(t, "ana", dst.Name)
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"ana","extra":1}`))
		var dst payload
		assert.Error(t, DecodeJSON(httptest.NewRecorder(), req, &dst))
	})

	t.Run("oversized body rejected", func(t *testing.T) {
		big := `{"name":"` + strings.Repeat("a", maxJSONBodyBytes+1) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
		var dst payload
		assert.Error(t, DecodeJSON(httptest.NewRecorder(), req, &dst))
	})
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusTeapot, "short and stout")

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"short and stout"}`, rec.Body.String())
}
