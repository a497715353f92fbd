package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/diewo77/go-crm/httpx"
	"github.com/diewo77/go-crm/internal/clock"
	"github.com/diewo77/go-crm/internal/metrics"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/internal/services"
	"github.com/diewo77/go-crm/logging"
)

type LeadHandler struct {
	base
	svc     *services.LeadService
	metrics *metrics.Metrics
}

func NewLeadHandler(svc *services.LeadService, m *metrics.Metrics, clk clock.Clock, log *logging.Logger) *LeadHandler {
	return &LeadHandler{base: newBase(clk, log), svc: svc, metrics: m}
}

// leadResponse is the public intake envelope.
type leadResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Lead    *models.Lead          `json:"lead,omitempty"`
	Errors  map[string]fieldError `json:"errors,omitempty"`
}

func (h *LeadHandler) failed(w http.ResponseWriter, r *http.Request, err any) {
	h.metrics.ObserveLead("error")
	logging.FromContext(r.Context(), h.log).Error("lead intake failed", "error", err)
	httpx.JSON(w, http.StatusInternalServerError, leadResponse{Message: h.msg(r, "lead.failed")})
}

// Register: POST /leads, JSON or form encoded. Every failure is answered with
// the lead envelope, panics included.
func (h *LeadHandler) Register(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			h.failed(w, r, rec)
		}
	}()

	var in services.LeadInput
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := httpx.Decode(r, &in); err != nil {
			h.metrics.ObserveLead("invalid")
			httpx.JSON(w, http.StatusBadRequest, leadResponse{Message: h.msg(r, "lead.invalid")})
			return
		}
	} else {
		in = services.LeadInput{Email: r.FormValue("email"), Source: r.FormValue("source")}
	}

	lead, err := h.svc.Register(r.Context(), in)
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		h.metrics.ObserveLead("invalid")
		details := make(map[string]fieldError, len(verr.Violations))
		for field, code := range verr.Violations {
			details[field] = fieldError{Code: code, Message: h.msg(r, code)}
		}
		httpx.JSON(w, http.StatusUnprocessableEntity, leadResponse{Message: h.msg(r, "lead.invalid"), Errors: details})
	case err != nil:
		h.failed(w, r, err)
	default:
		h.metrics.ObserveLead("registered")
		httpx.JSON(w, http.StatusCreated, leadResponse{Success: true, Message: h.msg(r, "lead.registered"), Lead: lead})
	}
}

// Verify: GET /leads/verify?token=
func (h *LeadHandler) Verify(w http.ResponseWriter, r *http.Request) {
	lead, err := h.svc.Verify(r.Context(), r.URL.Query().Get("token"))
	switch {
	case errors.Is(err, services.ErrInvalidToken):
		httpx.JSON(w, http.StatusNotFound, leadResponse{Message: h.msg(r, "lead.invalid_token")})
	case err != nil:
		h.failed(w, r, err)
	default:
		h.metrics.ObserveLead("verified")
		httpx.JSON(w, http.StatusOK, leadResponse{Success: true, Message: h.msg(r, "lead.verified"), Lead: lead})
	}
}
