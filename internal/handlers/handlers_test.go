package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/go-crm/auth"
	"github.com/diewo77/go-crm/internal/clock"
	"github.com/diewo77/go-crm/internal/db/dbtest"
	"github.com/diewo77/go-crm/internal/metrics"
	"github.com/diewo77/go-crm/internal/services"
	"github.com/diewo77/go-crm/logging"
	"github.com/diewo77/go-crm/pdf"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

type env struct {
	db     *gorm.DB
	clk    *clock.Mock
	svc    *services.Services
	router chi.Router
	owner  uint
	other  uint
}

type nopMailer struct{}

func (nopMailer) SendLeadVerification(context.Context, string, string) error { return nil }

// newEnv mounts every handler on a chi router over a fresh database.
// Tuesday 2026-03-10 09:00 UTC.
func newEnv(t *testing.T) *env {
	t.Helper()
	clk := clock.NewMock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	gdb := dbtest.Open(t, clk)
	m := metrics.New(nil)
	svc := services.New(services.Deps{DB: gdb, Clock: clk, Metrics: m}, nopMailer{}, "https://crm.test")
	log := logging.Discard()
	theme := pdf.Theme{CompanyName: "Acme", BrandColor: pdf.DefaultBrandColor}

	clients := NewClientHandler(svc.Clients, clk, log)
	followUps := NewFollowUpHandler(svc.FollowUps, clk, log)
	proposals := NewProposalHandler(svc.Proposals, theme, m, clk, log)
	projects := NewProjectHandler(svc.Projects, theme, m, clk, log)
	dashboard := NewDashboardHandler(svc.Dashboard, svc.FollowUps, clk, log)
	leads := NewLeadHandler(svc.Leads, m, clk, log)
	authH := NewAuthHandler(svc.Users, time.Hour, clk, log)

	r := chi.NewRouter()
	r.Post("/login", authH.Login)
	r.Post("/leads", leads.Register)
	r.Get("/leads/verify", leads.Verify)
	r.Get("/dashboard", dashboard.Show)
	r.Post("/clients", clients.Create)
	r.Get("/clients/{id}", clients.Show)
	r.Post("/seguimientos", followUps.Create)
	r.Get("/api/seguimientos/pendientes", followUps.Pending)
	r.Post("/propuestas", proposals.Create)
	r.Get("/propuestas/{id}", proposals.Show)
	r.Post("/propuestas/{id}/cambiar-estado", proposals.ChangeStatus)
	r.Post("/propuestas/{id}/enviar", proposals.MarkAsSent)
	r.Get("/propuestas/{id}/pdf", proposals.PDF)
	r.Post("/propuestas/{id}/convertir-proyecto", proposals.Convert)
	r.Get("/proyectos/{id}/edit", projects.Edit)
	r.Post("/proyectos/{id}/iniciar", projects.Transition(services.TransitionStart))
	r.Get("/proyectos/{id}/pdf", projects.PDF)
	r.Post("/proyectos/{id}/tareas", projects.AddTask)
	r.Post("/proyectos/{id}/tareas/reordenar", projects.ReorderTasks)
	r.Post("/proyectos/{id}/tareas/{task}/completar", projects.ToggleTask)

	return &env{
		db: gdb, clk: clk, svc: svc, router: r,
		owner: dbtest.User(t, gdb, "owner@test.io").ID,
		other: dbtest.User(t, gdb, "other@test.io").ID,
	}
}

// do sends a JSON request as uid (0 for anonymous).
func (e *env) do(t *testing.T, uid uint, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if uid != 0 {
		req = req.WithContext(auth.WithUserID(req.Context(), uid))
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return out
}

func expect(t *testing.T, rr *httptest.ResponseRecorder, status int) map[string]any {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("expected %d, got %d: %s", status, rr.Code, rr.Body.String())
	}
	return decode(t, rr)
}

func dataID(t *testing.T, body map[string]any) uint {
	t.Helper()
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("missing data in %v", body)
	}
	return uint(data["id"].(float64))
}

func path(format string, id uint) string {
	return strings.Replace(format, "{id}", itoa(id), 1)
}

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func (e *env) client(t *testing.T) uint {
	t.Helper()
	body := expect(t, e.do(t, e.owner, http.MethodPost, "/clients", map[string]any{"name": "Lucía", "email": "lucia@client.io"}), http.StatusCreated)
	return dataID(t, body)
}

func (e *env) proposal(t *testing.T, clientID uint, title string) uint {
	t.Helper()
	body := expect(t, e.do(t, e.owner, http.MethodPost, "/propuestas", map[string]any{
		"client_id": clientID, "title": title, "total_price": 1500, "response_deadline": "2026-03-20",
	}), http.StatusCreated)
	return dataID(t, body)
}

func TestClientCreate_MessagesAndValidation(t *testing.T) {
	e := newEnv(t)
	body := expect(t, e.do(t, e.owner, http.MethodPost, "/clients", map[string]any{"name": "Lucía", "email": " Lucia@Client.io "}), http.StatusCreated)
	if body["message"] != "Cliente creado correctamente" {
		t.Fatalf("unexpected message %v", body["message"])
	}
	if data := body["data"].(map[string]any); data["email"] != "lucia@client.io" {
		t.Fatalf("email not normalized: %v", data["email"])
	}

	body = expect(t, e.do(t, e.owner, http.MethodPost, "/clients", map[string]any{"name": "Otra", "email": "lucia@client.io"}), http.StatusUnprocessableEntity)
	if body["error"] != "validation_failed" {
		t.Fatalf("unexpected error %v", body["error"])
	}
	details := body["details"].(map[string]any)
	email := details["email"].(map[string]any)
	if email["code"] != "email_taken" || email["message"] != "El correo electrónico ya está registrado" {
		t.Fatalf("unexpected email detail %v", email)
	}

	_ = expect(t, e.do(t, e.owner, http.MethodPost, "/clients", `{"name":"x","bogus":1}`), http.StatusBadRequest)
}

func TestClientShow_OwnershipAndMalformedID(t *testing.T) {
	e := newEnv(t)
	id := e.client(t)

	_ = expect(t, e.do(t, e.owner, http.MethodGet, path("/clients/{id}", id), nil), http.StatusOK)
	body := expect(t, e.do(t, e.other, http.MethodGet, path("/clients/{id}", id), nil), http.StatusForbidden)
	if body["error"] != "forbidden" {
		t.Fatalf("unexpected %v", body)
	}
	_ = expect(t, e.do(t, e.owner, http.MethodGet, "/clients/abc", nil), http.StatusNotFound)
	_ = expect(t, e.do(t, e.owner, http.MethodGet, "/clients/9999", nil), http.StatusNotFound)
}

func TestProposals_DerivedFieldsAndDateValidation(t *testing.T) {
	e := newEnv(t)
	id := e.proposal(t, e.client(t), "Rediseño web")

	body := expect(t, e.do(t, e.owner, http.MethodGet, path("/propuestas/{id}", id), nil), http.StatusOK)
	if body["days_remaining"] != nil {
		t.Fatalf("drafts have no countdown, got %v", body["days_remaining"])
	}
	_ = expect(t, e.do(t, e.owner, http.MethodPost, path("/propuestas/{id}/enviar", id), nil), http.StatusOK)
	body = expect(t, e.do(t, e.owner, http.MethodGet, path("/propuestas/{id}", id), nil), http.StatusOK)
	if body["days_remaining"].(float64) != 10 || body["is_overdue"] != false {
		t.Fatalf("unexpected derived fields %v / %v", body["days_remaining"], body["is_overdue"])
	}

	body = expect(t, e.do(t, e.owner, http.MethodPost, "/propuestas", map[string]any{
		"client_id": 1, "title": "x", "response_deadline": "20/03/2026",
	}), http.StatusUnprocessableEntity)
	details := body["details"].(map[string]any)
	if details["response_deadline"].(map[string]any)["code"] != "invalid_date" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestProposals_SendWithoutBody(t *testing.T) {
	e := newEnv(t)
	id := e.proposal(t, e.client(t), "Landing")

	body := expect(t, e.do(t, e.owner, http.MethodPost, path("/propuestas/{id}/enviar", id), nil), http.StatusOK)
	data := body["data"].(map[string]any)
	if data["status"] != "sent" || data["sent_at"] == nil {
		t.Fatalf("expected sent proposal, got %v", data)
	}
}

func TestProposals_ConvertConflictsAndProjectFlow(t *testing.T) {
	e := newEnv(t)
	id := e.proposal(t, e.client(t), "Tienda online")

	body := expect(t, e.do(t, e.owner, http.MethodPost, path("/propuestas/{id}/convertir-proyecto", id), nil), http.StatusConflict)
	if body["error"] != "not_approved" {
		t.Fatalf("unexpected %v", body)
	}
	_ = expect(t, e.do(t, e.owner, http.MethodPost, path("/propuestas/{id}/cambiar-estado", id), map[string]string{"status": "approved"}), http.StatusOK)
	body = expect(t, e.do(t, e.owner, http.MethodPost, path("/propuestas/{id}/convertir-proyecto", id), nil), http.StatusCreated)
	projectID := dataID(t, body)
	body = expect(t, e.do(t, e.owner, http.MethodPost, path("/propuestas/{id}/convertir-proyecto", id), nil), http.StatusConflict)
	if body["error"] != "already_converted" {
		t.Fatalf("unexpected %v", body)
	}

	body = expect(t, e.do(t, e.owner, http.MethodPost, path("/proyectos/{id}/tareas", projectID), map[string]string{"title": "Diseño"}), http.StatusCreated)
	taskID := dataID(t, body)
	target := path("/proyectos/{id}/tareas/", projectID) + itoa(taskID) + "/completar"
	body = expect(t, e.do(t, e.owner, http.MethodPost, target, nil), http.StatusOK)
	if p := body["data"].(map[string]any)["progress"].(float64); p != 100 {
		t.Fatalf("expected progress 100, got %v", p)
	}

	_ = expect(t, e.do(t, e.owner, http.MethodPost, path("/proyectos/{id}/tareas/reordenar", projectID), map[string]any{"ids": []uint{999}}), http.StatusUnprocessableEntity)

	_ = expect(t, e.do(t, e.owner, http.MethodPost, path("/proyectos/{id}/iniciar", projectID), nil), http.StatusOK)
	body = expect(t, e.do(t, e.owner, http.MethodPost, path("/proyectos/{id}/iniciar", projectID), nil), http.StatusConflict)
	if body["error"] != "invalid_transition" {
		t.Fatalf("unexpected %v", body)
	}

	body = expect(t, e.do(t, e.owner, http.MethodGet, path("/proyectos/{id}/edit", projectID), nil), http.StatusOK)
	if statuses := body["statuses"].([]any); len(statuses) == 0 {
		t.Fatalf("expected statuses")
	}
}

func TestPDFExport(t *testing.T) {
	e := newEnv(t)
	id := e.proposal(t, e.client(t), "Rediseño web")

	rr := e.do(t, e.owner, http.MethodGet, path("/propuestas/{id}/pdf", id), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); cd != `attachment; filename="Propuesta_rediseno-web_2026-03-10.pdf"` {
		t.Fatalf("unexpected disposition %q", cd)
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("body is not a PDF")
	}

	_ = expect(t, e.do(t, e.other, http.MethodGet, path("/propuestas/{id}/pdf", id), nil), http.StatusForbidden)
}

func TestPendingFollowUpsAndDashboard(t *testing.T) {
	e := newEnv(t)
	clientID := e.client(t)
	for _, d := range []string{"2026-03-09", "2026-03-12", "2026-03-30"} {
		_ = expect(t, e.do(t, e.owner, http.MethodPost, "/seguimientos", map[string]any{
			"client_id": clientID, "title": "Llamar " + d, "scheduled_date": d, "priority": "high",
		}), http.StatusCreated)
	}

	body := expect(t, e.do(t, e.owner, http.MethodGet, "/api/seguimientos/pendientes", nil), http.StatusOK)
	if body["total"].(float64) != 2 {
		t.Fatalf("expected 2 pending, got %v", body["total"])
	}
	first := body["data"].([]any)[0].(map[string]any)
	if first["status"] != "overdue" {
		t.Fatalf("expected overdue first, got %v", first["status"])
	}

	body = expect(t, e.do(t, e.owner, http.MethodGet, "/dashboard", nil), http.StatusOK)
	if overdue := body["overdue"].([]any); len(overdue) != 1 {
		t.Fatalf("expected one overdue follow-up, got %d", len(overdue))
	}
}

func TestEnglishMessages(t *testing.T) {
	e := newEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/clients", strings.NewReader(`{"name":"Ann","email":"ann@client.io"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req = req.WithContext(auth.WithUserID(req.Context(), e.owner))
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	if body := expect(t, rr, http.StatusCreated); body["message"] != "Client created" {
		t.Fatalf("unexpected message %v", body["message"])
	}
}
