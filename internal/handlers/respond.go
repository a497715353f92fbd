// Package handlers exposes the CRM use cases over HTTP as JSON.
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/go-crm/auth"
	"github.com/diewo77/go-crm/httpx"
	"github.com/diewo77/go-crm/i18n"
	"github.com/diewo77/go-crm/internal/clock"
	"github.com/diewo77/go-crm/internal/middleware"
	"github.com/diewo77/go-crm/internal/query"
	"github.com/diewo77/go-crm/internal/services"
	"github.com/diewo77/go-crm/logging"
	"github.com/diewo77/go-crm/validation"
	"github.com/go-chi/chi/v5"
)

// base carries what every handler needs to talk HTTP.
type base struct {
	clock clock.Clock
	log   *logging.Logger
}

func newBase(clk clock.Clock, log *logging.Logger) base {
	if clk == nil {
		clk = clock.Real(time.UTC)
	}
	if log == nil {
		log = logging.Default()
	}
	return base{clock: clk, log: log}
}

func actor(r *http.Request) services.Actor {
	uid, _ := auth.UserIDFromContext(r.Context())
	return services.Actor{ID: uid}
}

func lang(r *http.Request) string { return middleware.LangFrom(r) }

func (b base) msg(r *http.Request, key string, args ...any) string {
	return i18n.T(lang(r), key, args...)
}

// ok answers a successful mutation with a translated confirmation.
func (b base) ok(w http.ResponseWriter, r *http.Request, status int, key string, data any) {
	httpx.Message(w, status, b.msg(r, key), data)
}

type fieldError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (b base) invalid(w http.ResponseWriter, r *http.Request, v validation.Violations) {
	details := make(map[string]fieldError, len(v))
	for field, code := range v {
		details[field] = fieldError{Code: code, Message: b.msg(r, code)}
	}
	httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", b.msg(r, "error.validation"), details)
}

// fail maps a service error to its status. Unknown errors are logged and
// answered with a generic 500.
func (b base) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		b.invalid(w, r, verr.Violations)
	case errors.Is(err, services.ErrForbidden):
		httpx.JSONError(w, http.StatusForbidden, "forbidden", b.msg(r, "error.forbidden"), nil)
	case errors.Is(err, services.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", b.msg(r, "error.not_found"), nil)
	case errors.Is(err, services.ErrProposalNotApproved):
		httpx.JSONError(w, http.StatusConflict, "not_approved", b.msg(r, "error.not_approved"), nil)
	case errors.Is(err, services.ErrAlreadyConverted):
		httpx.JSONError(w, http.StatusConflict, "already_converted", b.msg(r, "error.already_converted"), nil)
	case errors.Is(err, services.ErrInvalidTransition):
		httpx.JSONError(w, http.StatusConflict, "invalid_transition", b.msg(r, "error.invalid_transition"), nil)
	case errors.Is(err, services.ErrInvalidCredentials):
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", b.msg(r, "error.invalid_credentials"), nil)
	default:
		logging.FromContext(r.Context(), b.log).Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", b.msg(r, "error.internal"), nil)
	}
}

func (b base) badRequest(w http.ResponseWriter, r *http.Request) {
	httpx.JSONError(w, http.StatusBadRequest, "invalid_json", b.msg(r, "error.bad_request"), nil)
}

// decode reads the JSON body, answering 400 itself on failure.
func (b base) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.Decode(r, dst); err != nil {
		b.badRequest(w, r)
		return false
	}
	return true
}

// pathID parses a positive id URL param; a malformed id is reported as 404.
func (b base) pathID(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || id == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not_found", b.msg(r, "error.not_found"), nil)
		return 0, false
	}
	return uint(id), true
}

// date parses an optional YYYY-MM-DD as local midnight. Bad values add an
// invalid_date violation.
func (b base) date(field, s string, v validation.Violations) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := clock.ParseDate(s, b.clock.Location())
	if err != nil {
		v.Add(field, "invalid_date")
		return nil
	}
	return &t
}

// instant accepts either a date or an RFC 3339 timestamp.
func (b base) instant(field, s string, v validation.Violations) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		u := t.UTC()
		return &u
	}
	return b.date(field, s, v)
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}

func sortOf(r *http.Request) query.Sort {
	q := r.URL.Query()
	return query.Sort{Field: q.Get("sort_field"), Order: q.Get("sort_order")}
}

// rangeOf reads from/to; unparsable bounds are ignored like any unknown filter.
func (b base) rangeOf(r *http.Request) query.DateRange {
	var out query.DateRange
	q := r.URL.Query()
	if t, err := clock.ParseDate(q.Get("from"), b.clock.Location()); err == nil {
		out.From = &t
	}
	if t, err := clock.ParseDate(q.Get("to"), b.clock.Location()); err == nil {
		out.To = &t
	}
	return out
}
