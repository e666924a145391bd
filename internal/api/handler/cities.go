package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ecobalance/ecobalance/internal/api/models"
	"github.com/ecobalance/ecobalance/internal/api/response"
	"github.com/ecobalance/ecobalance/internal/app"
)

// CitiesHandler serves the city collection and the detail view.
type CitiesHandler struct {
	app *app.App
}

// NewCitiesHandler creates a new CitiesHandler.
func NewCitiesHandler(a *app.App) *CitiesHandler {
	return &CitiesHandler{app: a}
}

// ListCities handles GET /v1/cities.
func (h *CitiesHandler) ListCities(w http.ResponseWriter, r *http.Request) {
	snap := h.app.Store().Snapshot()
	cities := snap.Cities()
	out := models.CityList{Cities: cities, Count: len(cities)}
	if snap != nil {
		out.Origin = string(snap.Origin())
	}
	response.JSON(w, r, http.StatusOK, out)
}

// GetCity handles GET /v1/cities/{id}.
func (h *CitiesHandler) GetCity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, ok := h.app.Store().CityByID(id)
	if !ok {
		response.NotFound(w, r, fmt.Sprintf("city %q not found", id))
		return
	}
	response.JSON(w, r, http.StatusOK, c)
}

// SelectCity handles POST /v1/cities/{id}/select and returns the opened
// detail view.
func (h *CitiesHandler) SelectCity(w http.ResponseWriter, r *http.Request) {
	if err := h.app.SelectCity(chi.URLParam(r, "id")); err != nil {
		writeAppError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, h.app.Detail().Current())
}

// GetDetail handles GET /v1/detail. 204 when no city is open.
func (h *CitiesHandler) GetDetail(w http.ResponseWriter, r *http.Request) {
	v := h.app.Detail().Current()
	if v == nil {
		response.NoContent(w, r)
		return
	}
	response.JSON(w, r, http.StatusOK, v)
}

// CloseDetail handles DELETE /v1/detail.
func (h *CitiesHandler) CloseDetail(w http.ResponseWriter, r *http.Request) {
	h.app.Detail().Close()
	response.NoContent(w, r)
}
