package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/diewo77/go-crm/auth"
	"github.com/diewo77/go-crm/internal/db"
	"github.com/diewo77/go-crm/internal/metrics"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/internal/services"
	"github.com/diewo77/go-crm/logging"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var errConnReset = errors.New("read: connection reset by peer")

func TestLeads_RegisterAndVerify(t *testing.T) {
	e := newEnv(t)

	body := expect(t, e.do(t, 0, http.MethodPost, "/leads", map[string]string{"email": "Nuevo@Lead.io"}), http.StatusCreated)
	if body["success"] != true || body["message"] != "¡Gracias! Revisa tu correo para confirmar tu suscripción." {
		t.Fatalf("unexpected envelope %v", body)
	}
	lead := body["lead"].(map[string]any)
	if lead["email"] != "nuevo@lead.io" || lead["source"] != models.DefaultLeadSource {
		t.Fatalf("unexpected lead %v", lead)
	}

	body = expect(t, e.do(t, 0, http.MethodPost, "/leads", map[string]string{"email": "nuevo@lead.io"}), http.StatusUnprocessableEntity)
	if body["success"] != false {
		t.Fatalf("expected failure envelope, got %v", body)
	}
	if code := body["errors"].(map[string]any)["email"].(map[string]any)["code"]; code != "email_taken" {
		t.Fatalf("expected email_taken, got %v", code)
	}

	var stored models.Lead
	if err := e.db.Where("email = ?", "nuevo@lead.io").First(&stored).Error; err != nil {
		t.Fatalf("lead not stored: %v", err)
	}
	target := "/leads/verify?token=" + url.QueryEscape(stored.VerificationToken)
	body = expect(t, e.do(t, 0, http.MethodGet, target, nil), http.StatusOK)
	if body["success"] != true || body["lead"].(map[string]any)["verified_at"] == nil {
		t.Fatalf("expected verified lead, got %v", body)
	}
	_ = expect(t, e.do(t, 0, http.MethodGet, "/leads/verify?token=nope", nil), http.StatusNotFound)
}

func TestLeads_FormEncoded(t *testing.T) {
	e := newEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader("email=form%40lead.io&source=footer"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	body := expect(t, rr, http.StatusCreated)
	if body["lead"].(map[string]any)["source"] != "footer" {
		t.Fatalf("unexpected lead %v", body["lead"])
	}
}

func TestLeads_StorageFailureIsGeneric500(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer sqlDB.Close()
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count").WillReturnError(errConnReset)
	mock.ExpectRollback()

	m := metrics.New(nil)
	svc := services.NewLeadService(services.Deps{DB: gdb, Metrics: m}, nopMailer{}, "https://crm.test")
	h := NewLeadHandler(svc, m, nil, logging.Discard())

	req := httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader(`{"email":"a@b.io"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	body := expect(t, rr, http.StatusInternalServerError)
	if body["success"] != false || body["message"] != "No se pudo procesar tu solicitud. Inténtalo de nuevo más tarde." {
		t.Fatalf("unexpected envelope %v", body)
	}
	if strings.Contains(rr.Body.String(), "connection reset") {
		t.Fatalf("internal error leaked: %s", rr.Body.String())
	}
}

func TestLeads_PanicIsGeneric500(t *testing.T) {
	h := NewLeadHandler(nil, nil, nil, logging.Discard())
	req := httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader(`{"email":"a@b.io"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Register(rr, req)
	if body := expect(t, rr, http.StatusInternalServerError); body["success"] != false {
		t.Fatalf("unexpected envelope %v", body)
	}
}

func TestLogin(t *testing.T) {
	e := newEnv(t)
	if err := db.Seed(e.db, "admin@example.com", "admin123"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rr := e.do(t, 0, http.MethodPost, "/login", map[string]string{"email": "admin@example.com", "password": "admin123"})
	body := expect(t, rr, http.StatusOK)
	data := body["data"].(map[string]any)
	uid, err := auth.ParseToken(data["token"].(string))
	if err != nil || uid == 0 {
		t.Fatalf("token does not parse: %v", err)
	}
	found := false
	for _, c := range rr.Result().Cookies() {
		found = found || c.Name == "session"
	}
	if !found {
		t.Fatalf("expected session cookie")
	}
	if _, ok := data["user"].(map[string]any)["password"]; ok {
		t.Fatalf("password hash leaked")
	}

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("email=admin%40example.com&password=wrong"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr = httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	if body := expect(t, rr, http.StatusUnauthorized); body["error"] != "invalid_credentials" {
		t.Fatalf("unexpected %v", body)
	}
}
