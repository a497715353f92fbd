package handlers

import (
	"net/http"

	"github.com/diewo77/go-crm/httpx"
	"github.com/diewo77/go-crm/internal/clock"
	"github.com/diewo77/go-crm/internal/services"
	"github.com/diewo77/go-crm/logging"
)

type DashboardHandler struct {
	base
	svc       *services.DashboardService
	followUps *services.FollowUpService
}

func NewDashboardHandler(svc *services.DashboardService, followUps *services.FollowUpService, clk clock.Clock, log *logging.Logger) *DashboardHandler {
	return &DashboardHandler{base: newBase(clk, log), svc: svc, followUps: followUps}
}

// Show: GET /dashboard
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Build(r.Context(), actor(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

// CompleteFollowUp: POST /dashboard/seguimientos/{id}/completar
func (h *DashboardHandler) CompleteFollowUp(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	f, err := h.followUps.Complete(r.Context(), actor(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, "followup.completed", viewFollowUp(*f, clock.Today(h.clock)))
}
