// Package middleware holds the HTTP middleware shared by every route.
package middleware

import (
	"context"
	"net/http"

	"github.com/diewo77/go-crm/i18n"
)

type ctxKey string

const ctxLang ctxKey = "pref_lang"

// Prefs resolves the language (query > cookie > Accept-Language), stores it
// in the context and persists a query-provided choice in a cookie for ~1 year.
func Prefs(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.FromRequest(r)
		if r.URL.Query().Get(i18n.LangParam) != "" {
			http.SetCookie(w, &http.Cookie{Name: i18n.LangCookie, Value: lang, Path: "/", MaxAge: 86400 * 365, SameSite: http.SameSiteLaxMode})
		}
		w.Header().Set("Content-Language", lang)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxLang, lang)))
	})
}

// LangFrom returns the language stored by Prefs, resolving it from the
// request when Prefs did not run.
func LangFrom(r *http.Request) string {
	if v, ok := r.Context().Value(ctxLang).(string); ok && v != "" {
		return v
	}
	return i18n.FromRequest(r)
}
