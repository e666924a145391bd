package handler

import (
	"errors"
	"net/http"

	"github.com/ecobalance/ecobalance/internal/api/models"
	"github.com/ecobalance/ecobalance/internal/api/response"
	"github.com/ecobalance/ecobalance/internal/app"
	"github.com/ecobalance/ecobalance/internal/featureflags"
	"github.com/ecobalance/ecobalance/internal/navigation"
)

// ControlHandler handles navigation, refresh, the error banner and feature
// flags.
type ControlHandler struct {
	app *app.App
}

// NewControlHandler creates a new ControlHandler.
func NewControlHandler(a *app.App) *ControlHandler {
	return &ControlHandler{app: a}
}

func (h *ControlHandler) navigationState() models.NavigationState {
	return models.NavigationState{Current: h.app.Navigator().Current(), Views: navigation.Views}
}

// GetNavigation handles GET /v1/navigation.
func (h *ControlHandler) GetNavigation(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, h.navigationState())
}

// PutNavigation handles PUT /v1/navigation.
func (h *ControlHandler) PutNavigation(w http.ResponseWriter, r *http.Request) {
	var req models.NavigationRequest
	if err := response.Decode(r, &req); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}
	err := h.app.ShowView(r.Context(), req.View)
	if errors.Is(err, navigation.ErrUnknownView) {
		response.BadRequest(w, r, err.Error(), []models.FieldError{
			{Field: "view", Message: "must be one of the listed views", Code: "INVALID_VIEW"},
		})
		return
	}
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, h.navigationState())
}

// Refresh handles POST /v1/refresh. Concurrent calls share one reload.
func (h *ControlHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Refresh(r.Context()); err != nil {
		writeAppError(w, r, err)
		return
	}
	st := h.app.Status()
	response.JSON(w, r, http.StatusOK, models.RefreshResponse{
		Origin:      string(st.DataOrigin),
		CitiesCount: st.CitiesCount,
		RefreshedAt: st.LastRefresh,
	})
}

// GetBanner handles GET /v1/banner.
func (h *ControlHandler) GetBanner(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, h.app.Banner().State())
}

// DismissBanner handles DELETE /v1/banner.
func (h *ControlHandler) DismissBanner(w http.ResponseWriter, r *http.Request) {
	h.app.Banner().Dismiss()
	response.NoContent(w, r)
}

// ListFlags handles GET /v1/flags.
func (h *ControlHandler) ListFlags(w http.ResponseWriter, r *http.Request) {
	flags := h.app.Flags()
	if flags == nil {
		response.JSON(w, r, http.StatusOK, models.FlagList{Flags: []*featureflags.Flag{}})
		return
	}
	response.JSON(w, r, http.StatusOK, models.FlagList{Flags: flags.ListFlags(r.Context())})
}

// PutFlags handles PUT /v1/flags. Only known keys are accepted.
func (h *ControlHandler) PutFlags(w http.ResponseWriter, r *http.Request) {
	flags := h.app.Flags()
	if flags == nil {
		response.ServiceUnavailable(w, r, "feature flags are not configured")
		return
	}

	var req models.FlagsUpdate
	if err := response.Decode(r, &req); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	known := featureflags.DefaultFlags()
	var errs []models.FieldError
	for key := range req.Flags {
		if _, ok := known[key]; !ok {
			errs = append(errs, models.FieldError{Field: "flags." + key, Message: "unknown flag", Code: "UNKNOWN_FLAG"})
		}
	}
	if len(errs) > 0 {
		response.BadRequest(w, r, "unknown feature flags", errs)
		return
	}

	for key, value := range req.Flags {
		if err := flags.SetFlag(r.Context(), &featureflags.Flag{Key: key, Value: value}); err != nil {
			response.InternalError(w, r, err.Error())
			return
		}
	}
	response.JSON(w, r, http.StatusOK, models.FlagList{Flags: flags.ListFlags(r.Context())})
}
