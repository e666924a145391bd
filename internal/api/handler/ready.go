package handler

import (
	"errors"
	"net/http"

	"github.com/ecobalance/ecobalance/internal/api/response"
	"github.com/ecobalance/ecobalance/internal/app"
	"github.com/ecobalance/ecobalance/internal/detail"
)

// RequireReady answers 503 until the coordinator is ready. Refresh needs a
// fully started app.
func RequireReady(a *app.App) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if a.State() != app.StateReady {
				response.ServiceUnavailable(w, r, "data is not loaded yet")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireData answers 503 until a start has loaded the store. A start that
// failed part way still serves the loaded data.
func RequireData(a *app.App) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !a.Serving() {
				response.ServiceUnavailable(w, r, "data is not loaded yet")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireModule answers 503 unless the named module initialized. After a
// failed start the modules that initialized before the failure keep serving.
func RequireModule(a *app.App, name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !a.Initialized(name) {
				response.ServiceUnavailable(w, r, name+" is not available")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeAppError maps coordinator errors to problems.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, detail.ErrCityNotFound):
		response.NotFound(w, r, err.Error())
	case errors.Is(err, app.ErrNotReady):
		response.ServiceUnavailable(w, r, err.Error())
	default:
		response.InternalError(w, r, err.Error())
	}
}
