package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecobalance/ecobalance/internal/api/middleware"
	"github.com/ecobalance/ecobalance/internal/api/models"
	"github.com/ecobalance/ecobalance/internal/api/response"
)

func request(method, path, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	return req.WithContext(middleware.WithRequestID(req.Context(), "req_test"))
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	response.JSON(rec, request(http.MethodGet, "/v1/dashboard", ""), http.StatusOK, map[string]int{"total": 9})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "req_test", rec.Header().Get("X-Request-Id"))
	assert.JSONEq(t, `{"total":9}`, rec.Body.String())
}

func TestSVG(t *testing.T) {
	rec := httptest.NewRecorder()
	response.SVG(rec, request(http.MethodGet, "/v1/charts/scores.svg", ""), []byte("<svg></svg>"))

	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Equal(t, "<svg></svg>", rec.Body.String())
}

func TestNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	response.NoContent(rec, request(http.MethodDelete, "/v1/banner", ""))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestProblemHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(http.ResponseWriter, *http.Request)
		status int
	}{
		{"bad request", func(w http.ResponseWriter, r *http.Request) { response.BadRequest(w, r, "bad", nil) }, http.StatusBadRequest},
		{"not found", func(w http.ResponseWriter, r *http.Request) { response.NotFound(w, r, "missing") }, http.StatusNotFound},
		{"conflict", func(w http.ResponseWriter, r *http.Request) { response.Conflict(w, r, "busy") }, http.StatusConflict},
		{"internal", func(w http.ResponseWriter, r *http.Request) { response.InternalError(w, r, "oops") }, http.StatusInternalServerError},
		{"unavailable", func(w http.ResponseWriter, r *http.Request) { response.ServiceUnavailable(w, r, "loading") }, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec, request(http.MethodGet, "/v1/cities/x", ""))

			assert.Equal(t, tt.status, rec.Code)
			var p models.Problem
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
			assert.Equal(t, "/v1/cities/x", p.Instance)
			assert.Equal(t, "req_test", p.TraceID)
		})
	}
}

func TestDecode(t *testing.T) {
	var body models.NavigationRequest
	require.NoError(t, response.Decode(request(http.MethodPut, "/", `{"view":"comparison"}`), &body))
	assert.Equal(t, "comparison", body.View)

	assert.ErrorIs(t, response.Decode(request(http.MethodPut, "/", ""), &body), response.ErrEmptyBody)
	assert.Error(t, response.Decode(request(http.MethodPut, "/", `{"view":1}`), &body))
	assert.Error(t, response.Decode(request(http.MethodPut, "/", `{"screen":"x"}`), &body))
}
