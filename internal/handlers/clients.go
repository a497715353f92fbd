package handlers

import (
	"net/http"

	"github.com/diewo77/go-crm/httpx"
	"github.com/diewo77/go-crm/internal/clock"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/internal/query"
	"github.com/diewo77/go-crm/internal/services"
	"github.com/diewo77/go-crm/logging"
)

type ClientHandler struct {
	base
	svc *services.ClientService
}

func NewClientHandler(svc *services.ClientService, clk clock.Clock, log *logging.Logger) *ClientHandler {
	return &ClientHandler{base: newBase(clk, log), svc: svc}
}

// List: GET /clients?search=&status=&from=&to=&sort_field=&sort_order=&page=
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.svc.List(r.Context(), actor(r), query.ClientFilter{
		Search:    q.Get("search"),
		Status:    models.ClientStatus(q.Get("status")),
		DateRange: h.rangeOf(r),
		Sort:      sortOf(r),
		Page:      queryInt(r, "page"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

// Show returns the client with notes, follow-ups, proposals and projects.
func (h *ClientHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	c, err := h.svc.Get(r.Context(), actor(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.ClientInput
	if !h.decode(w, r, &in) {
		return
	}
	c, err := h.svc.Create(r.Context(), actor(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusCreated, "client.created", c)
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var in services.ClientInput
	if !h.decode(w, r, &in) {
		return
	}
	c, err := h.svc.Update(r.Context(), actor(r), id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, "client.updated", c)
}

func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), actor(r), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, "client.deleted", nil)
}
