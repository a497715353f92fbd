package handlers

import (
	"net/http"
	"time"

	"github.com/diewo77/go-crm/httpx"
	"github.com/diewo77/go-crm/internal/clock"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/internal/query"
	"github.com/diewo77/go-crm/internal/services"
	"github.com/diewo77/go-crm/logging"
	"github.com/diewo77/go-crm/validation"
)

type FollowUpHandler struct {
	base
	svc *services.FollowUpService
}

func NewFollowUpHandler(svc *services.FollowUpService, clk clock.Clock, log *logging.Logger) *FollowUpHandler {
	return &FollowUpHandler{base: newBase(clk, log), svc: svc}
}

type followUpRequest struct {
	ClientID      uint   `json:"client_id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Priority      string `json:"priority"`
	Kind          string `json:"kind"`
	ScheduledDate string `json:"scheduled_date"`
	Completed     bool   `json:"completed"`
}

func (h *FollowUpHandler) input(req followUpRequest) (services.FollowUpInput, validation.Violations) {
	v := validation.Violations{}
	return services.FollowUpInput{
		ClientID:      req.ClientID,
		Title:         req.Title,
		Description:   req.Description,
		Priority:      models.Priority(req.Priority),
		Kind:          models.FollowUpKind(req.Kind),
		ScheduledDate: h.date("scheduled_date", req.ScheduledDate, v),
		Completed:     req.Completed,
	}, v
}

// followUpView adds the derived status.
type followUpView struct {
	models.FollowUp
	Status models.FollowUpStatus `json:"status"`
}

func viewFollowUp(f models.FollowUp, today time.Time) followUpView {
	return followUpView{FollowUp: f, Status: f.Status(today)}
}

func viewFollowUps(fs []models.FollowUp, today time.Time) []followUpView {
	out := make([]followUpView, len(fs))
	for i, f := range fs {
		out[i] = viewFollowUp(f, today)
	}
	return out
}

// List: GET /seguimientos?search=&status=&priority=&kind=&client=&from=&to=&sort_field=&sort_order=&page=
func (h *FollowUpHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.svc.List(r.Context(), actor(r), query.FollowUpFilter{
		Search:    q.Get("search"),
		Status:    models.FollowUpStatus(q.Get("status")),
		Priority:  models.Priority(q.Get("priority")),
		Kind:      models.FollowUpKind(q.Get("kind")),
		Client:    q.Get("client"),
		DateRange: h.rangeOf(r),
		Sort:      sortOf(r),
		Page:      queryInt(r, "page"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	today := clock.Today(h.clock)
	httpx.JSON(w, http.StatusOK, query.Page[followUpView]{
		Data: viewFollowUps(page.Data, today), Total: page.Total,
		Page: page.Page, PerPage: page.PerPage, LastPage: page.LastPage,
	})
}

func (h *FollowUpHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req followUpRequest
	if !h.decode(w, r, &req) {
		return
	}
	in, v := h.input(req)
	if !v.Empty() {
		h.invalid(w, r, v)
		return
	}
	f, err := h.svc.Create(r.Context(), actor(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusCreated, "followup.created", viewFollowUp(*f, clock.Today(h.clock)))
}

func (h *FollowUpHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req followUpRequest
	if !h.decode(w, r, &req) {
		return
	}
	in, v := h.input(req)
	if !v.Empty() {
		h.invalid(w, r, v)
		return
	}
	f, err := h.svc.Update(r.Context(), actor(r), id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, "followup.updated", viewFollowUp(*f, clock.Today(h.clock)))
}

func (h *FollowUpHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), actor(r), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, "followup.deleted", nil)
}

// Complete serves both /seguimientos/{id}/completar and the dashboard shortcut.
func (h *FollowUpHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	f, err := h.svc.Complete(r.Context(), actor(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, "followup.completed", viewFollowUp(*f, clock.Today(h.clock)))
}

// Pending: GET /api/seguimientos/pendientes
func (h *FollowUpHandler) Pending(w http.ResponseWriter, r *http.Request) {
	fs, err := h.svc.Pending(r.Context(), actor(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": viewFollowUps(fs, clock.Today(h.clock)), "total": len(fs)})
}
