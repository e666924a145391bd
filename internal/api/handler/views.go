package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ecobalance/ecobalance/internal/api/models"
	"github.com/ecobalance/ecobalance/internal/api/response"
	"github.com/ecobalance/ecobalance/internal/app"
	"github.com/ecobalance/ecobalance/internal/charts"
	"github.com/ecobalance/ecobalance/internal/comparison"
	"github.com/ecobalance/ecobalance/internal/sources"
)

// ViewsHandler serves the derived views: dashboard, charts, comparison and
// data sources.
type ViewsHandler struct {
	app *app.App
}

// NewViewsHandler creates a new ViewsHandler.
func NewViewsHandler(a *app.App) *ViewsHandler {
	return &ViewsHandler{app: a}
}

// Dashboard handles GET /v1/dashboard.
func (h *ViewsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, h.app.Dashboard().View())
}

// ChartIndex handles GET /v1/charts.
func (h *ViewsHandler) ChartIndex(w http.ResponseWriter, r *http.Request) {
	m := h.app.Charts()
	size := m.Size()
	out := models.ChartIndex{
		Series: m.Series(),
		Images: make(map[string]string, len(charts.Kinds)),
		Width:  size.Width,
		Height: size.Height,
	}
	for _, k := range charts.Kinds {
		if _, err := m.SVG(k); err == nil {
			out.Images[string(k)] = "/v1/charts/" + string(k) + ".svg"
		}
	}
	response.JSON(w, r, http.StatusOK, out)
}

// ChartImage handles GET /v1/charts/{kind}.svg.
func (h *ViewsHandler) ChartImage(w http.ResponseWriter, r *http.Request) {
	kind, err := charts.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		response.NotFound(w, r, err.Error())
		return
	}
	img, err := h.app.Charts().SVG(kind)
	if err != nil {
		response.NotFound(w, r, err.Error())
		return
	}
	response.SVG(w, r, img)
}

// Compare handles GET /v1/compare?left=&right=. Missing or identical ids
// return the guidance state, unknown ids the not-found state; both are
// 200 so the client can render the message.
func (h *ViewsHandler) Compare(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	response.JSON(w, r, http.StatusOK, h.app.Comparison().Select(q.Get("left"), q.Get("right")))
}

// CompareOptions handles GET /v1/compare/options.
func (h *ViewsHandler) CompareOptions(w http.ResponseWriter, r *http.Request) {
	sel, _ := h.app.Comparison().Last()
	response.JSON(w, r, http.StatusOK, struct {
		Options   []comparison.Option  `json:"options"`
		Selection comparison.Selection `json:"selection"`
	}{h.app.Comparison().Options(), sel})
}

// Sources handles GET /v1/sources.
func (h *ViewsHandler) Sources(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, h.app.Sources().View())
}

// Methodology handles GET /v1/methodology.
func (h *ViewsHandler) Methodology(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, h.app.Sources().View().Methodology)
}

// Demo handles POST /v1/sources/demo.
func (h *ViewsHandler) Demo(w http.ResponseWriter, r *http.Request) {
	out, err := h.app.Sources().Demo(r.Context())
	switch {
	case errors.Is(err, sources.ErrDemoDisabled):
		response.NotFound(w, r, err.Error())
	case err != nil:
		response.InternalError(w, r, err.Error())
	default:
		response.JSON(w, r, http.StatusOK, out)
	}
}
