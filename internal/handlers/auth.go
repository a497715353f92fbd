package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/diewo77/go-crm/auth"
	"github.com/diewo77/go-crm/internal/clock"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/internal/services"
	"github.com/diewo77/go-crm/logging"
)

type AuthHandler struct {
	base
	users *services.UserService
	ttl   time.Duration
}

func NewAuthHandler(users *services.UserService, ttl time.Duration, clk clock.Clock, log *logging.Logger) *AuthHandler {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthHandler{base: newBase(clk, log), users: users, ttl: ttl}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login accepts a form post or a JSON body. It sets the session cookie and
// returns a bearer token for API clients.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if !h.decode(w, r, &req) {
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			h.badRequest(w, r)
			return
		}
		req = loginRequest{Email: r.FormValue("email"), Password: r.FormValue("password")}
	}
	u, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	token, err := auth.IssueToken(u.ID, h.ttl)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	auth.CreateSession(w, u.ID)
	logging.FromContext(r.Context(), h.log).Info("user logged in", "user_id", u.ID)
	h.ok(w, r, http.StatusOK, "auth.logged_in", loginResponse{Token: token, User: u})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	h.ok(w, r, http.StatusOK, "auth.logged_out", nil)
}
