// Package handler provides HTTP handlers for the EcoBalance API.
package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ecobalance/ecobalance/internal/api/models"
	"github.com/ecobalance/ecobalance/internal/api/response"
	"github.com/ecobalance/ecobalance/internal/app"
	"github.com/ecobalance/ecobalance/internal/provider/resilience"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	app       *app.App
	registry  *resilience.Registry
}

// NewOpsHandler creates a new OpsHandler. registry may be nil.
func NewOpsHandler(version, buildTime string, a *app.App, registry *resilience.Registry) *OpsHandler {
	return &OpsHandler{version: version, buildTime: buildTime, app: a, registry: registry}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status: models.HealthStatusOK,
		Time:   time.Now().UTC(),
		Details: map[string]any{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	})
}

// ReadinessCheck handles GET /v1/ops/ready. The service is ready once the
// coordinator has loaded data and initialized every view.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	st := h.app.Status()
	status, code := models.HealthStatusOK, http.StatusOK
	if st.State != app.StateReady {
		status, code = models.HealthStatusFail, http.StatusServiceUnavailable
	}
	response.JSON(w, r, code, models.Health{
		Status: status,
		Time:   time.Now().UTC(),
		Details: map[string]any{
			"state":  st.State,
			"cities": st.CitiesCount,
		},
	})
}

// SystemStatus handles GET /v1/ops/status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	st := h.app.Status()
	out := models.SystemStatus{
		Status:    models.HealthStatusOK,
		Time:      time.Now().UTC(),
		App:       st,
		Banner:    h.app.Banner().State(),
		Providers: []models.ProviderStatus{},
	}

	if h.registry != nil {
		for _, feed := range h.registry.All() {
			p := models.ProviderStatus{
				Provider:      feed.Name,
				Status:        providerStatus(feed.Status()),
				CircuitState:  feed.State.String(),
				LastSuccessAt: feed.LastSuccessAt,
				LastFailureAt: feed.LastFailureAt,
				Message:       feed.LastError,
			}
			if p.Status != models.HealthStatusOK {
				out.Status = models.HealthStatusDegraded
			}
			out.Providers = append(out.Providers, p)
		}
	}

	if snap := h.app.Store().Snapshot(); snap != nil {
		for _, issue := range snap.Issues() {
			out.Issues = append(out.Issues, issue.String())
		}
	}

	switch st.State {
	case app.StateReady:
	case app.StateFailed:
		out.Status = models.HealthStatusFail
	default:
		out.Status = models.HealthStatusDegraded
		out.Issues = append(out.Issues, fmt.Sprintf("application %s", st.State))
	}

	response.JSON(w, r, http.StatusOK, out)
}

func providerStatus(s string) models.HealthStatus {
	switch s {
	case resilience.StatusUnhealthy:
		return models.HealthStatusFail
	case resilience.StatusDegraded:
		return models.HealthStatusDegraded
	default:
		return models.HealthStatusOK
	}
}
