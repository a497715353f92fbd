package handlers

import (
	"net/http"

	"github.com/diewo77/go-crm/httpx"
	"github.com/diewo77/go-crm/internal/clock"
	"github.com/diewo77/go-crm/internal/metrics"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/internal/query"
	"github.com/diewo77/go-crm/internal/services"
	"github.com/diewo77/go-crm/logging"
	"github.com/diewo77/go-crm/pdf"
	"github.com/diewo77/go-crm/validation"
)

type ProposalHandler struct {
	base
	exporter
	svc *services.ProposalService
}

func NewProposalHandler(svc *services.ProposalService, theme pdf.Theme, m *metrics.Metrics, clk clock.Clock, log *logging.Logger) *ProposalHandler {
	return &ProposalHandler{base: newBase(clk, log), exporter: exporter{theme: theme, metrics: m}, svc: svc}
}

type proposalRequest struct {
	ClientID           uint    `json:"client_id"`
	Title              string  `json:"title"`
	ProjectDescription string  `json:"project_description"`
	TotalPrice         float64 `json:"total_price"`
	PaymentTerms       string  `json:"payment_terms"`
	DeliveryTime       string  `json:"delivery_time"`
	Included           string  `json:"included"`
	Excluded           string  `json:"excluded"`
	Status             string  `json:"status"`
	ResponseDeadline   string  `json:"response_deadline"`
	NextReminder       string  `json:"next_reminder"`
	InternalNotes      string  `json:"internal_notes"`
}

func (h *ProposalHandler) input(req proposalRequest) (services.ProposalInput, validation.Violations) {
	v := validation.Violations{}
	return services.ProposalInput{
		ClientID:           req.ClientID,
		Title:              req.Title,
		ProjectDescription: req.ProjectDescription,
		TotalPrice:         req.TotalPrice,
		PaymentTerms:       req.PaymentTerms,
		DeliveryTime:       req.DeliveryTime,
		Included:           req.Included,
		Excluded:           req.Excluded,
		Status:             models.ProposalStatus(req.Status),
		ResponseDeadline:   h.date("response_deadline", req.ResponseDeadline, v),
		NextReminder:       h.date("next_reminder", req.NextReminder, v),
		InternalNotes:      req.InternalNotes,
	}, v
}

// proposalView adds the deadline fields derived from today.
type proposalView struct {
	models.Proposal
	DaysRemaining *int `json:"days_remaining"`
	Overdue       bool `json:"is_overdue"`
}

func (h *ProposalHandler) view(p models.Proposal) proposalView {
	today := clock.Today(h.clock)
	return proposalView{Proposal: p, DaysRemaining: p.DaysRemaining(today, h.clock.Location()), Overdue: p.IsOverdue(today)}
}

// List: GET /propuestas?search=&status=&client=&from=&to=&sort_field=&sort_order=&page=
func (h *ProposalHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.svc.List(r.Context(), actor(r), query.ProposalFilter{
		Search:    q.Get("search"),
		Status:    models.ProposalStatus(q.Get("status")),
		Client:    q.Get("client"),
		DateRange: h.rangeOf(r),
		Sort:      sortOf(r),
		Page:      queryInt(r, "page"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	views := make([]proposalView, len(page.Data))
	for i, p := range page.Data {
		views[i] = h.view(p)
	}
	httpx.JSON(w, http.StatusOK, query.Page[proposalView]{
		Data: views, Total: page.Total, Page: page.Page, PerPage: page.PerPage, LastPage: page.LastPage,
	})
}

func (h *ProposalHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.svc.Get(r.Context(), actor(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.view(*p))
}

func (h *ProposalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req proposalRequest
	if !h.decode(w, r, &req) {
		return
	}
	in, v := h.input(req)
	if !v.Empty() {
		h.invalid(w, r, v)
		return
	}
	p, err := h.svc.Create(r.Context(), actor(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusCreated, "proposal.created", h.view(*p))
}

func (h *ProposalHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req proposalRequest
	if !h.decode(w, r, &req) {
		return
	}
	in, v := h.input(req)
	if !v.Empty() {
		h.invalid(w, r, v)
		return
	}
	p, err := h.svc.Update(r.Context(), actor(r), id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, "proposal.updated", h.view(*p))
}

func (h *ProposalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), actor(r), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, "proposal.deleted", nil)
}

// MarkAsSent: POST /propuestas/{id}/enviar with an optional {"sent_at": ...}.
func (h *ProposalHandler) MarkAsSent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		SentAt string `json:"sent_at"`
	}
	if r.ContentLength != 0 && !h.decode(w, r, &req) {
		return
	}
	v := validation.Violations{}
	at := h.instant("sent_at", req.SentAt, v)
	if !v.Empty() {
		h.invalid(w, r, v)
		return
	}
	p, err := h.svc.MarkAsSent(r.Context(), actor(r), id, at)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, "proposal.sent", h.view(*p))
}

// ChangeStatus: POST /propuestas/{id}/cambiar-estado {"status": "..."}
func (h *ProposalHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.svc.ChangeStatus(r.Context(), actor(r), id, models.ProposalStatus(req.Status))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, "proposal.status_changed", h.view(*p))
}

// RecordFollowup: POST /propuestas/{id}/followup {"at", "note", "next_reminder"}
func (h *ProposalHandler) RecordFollowup(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		At           string `json:"at"`
		Note         string `json:"note"`
		NextReminder string `json:"next_reminder"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	v := validation.Violations{}
	in := services.FollowupInput{
		At:           h.instant("at", req.At, v),
		Note:         req.Note,
		NextReminder: h.date("next_reminder", req.NextReminder, v),
	}
	if !v.Empty() {
		h.invalid(w, r, v)
		return
	}
	p, err := h.svc.RecordFollowup(r.Context(), actor(r), id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, "proposal.followup_recorded", h.view(*p))
}

func (h *ProposalHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.svc.Duplicate(r.Context(), actor(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusCreated, "proposal.duplicated", h.view(*p))
}

// Convert: POST /propuestas/{id}/convertir-proyecto
func (h *ProposalHandler) Convert(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	pr, err := h.svc.Convert(r.Context(), actor(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusCreated, "proposal.converted", pr)
}

// PDF: GET /propuestas/{id}/pdf
func (h *ProposalHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.svc.Export(r.Context(), actor(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	now := h.clock.Now().In(h.clock.Location())
	h.write(w, h.base, r, "proposal", pdf.Filename(pdf.EntityProposal, p.Title, now), func() ([]byte, error) {
		return pdf.ProposalPDF(h.theme, proposalData(p, now))
	})
}
