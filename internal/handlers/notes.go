package handlers

import (
	"net/http"

	"github.com/diewo77/go-crm/internal/clock"
	"github.com/diewo77/go-crm/internal/services"
	"github.com/diewo77/go-crm/logging"
)

type NoteHandler struct {
	base
	svc *services.NoteService
}

func NewNoteHandler(svc *services.NoteService, clk clock.Clock, log *logging.Logger) *NoteHandler {
	return &NoteHandler{base: newBase(clk, log), svc: svc}
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.NoteInput
	if !h.decode(w, r, &in) {
		return
	}
	n, err := h.svc.Create(r.Context(), actor(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusCreated, "note.created", n)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var in services.NoteInput
	if !h.decode(w, r, &in) {
		return
	}
	n, err := h.svc.Update(r.Context(), actor(r), id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, "note.updated", n)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), actor(r), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, "note.deleted", nil)
}
