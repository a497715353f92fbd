// Package i18n translates user-facing message keys. Spanish is the default
// language, English the only other supported one.
package i18n

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const (
	LangParam  = "lang"
	LangCookie = "lang"
)

var (
	supported = []language.Tag{language.Spanish, language.English}
	matcher   = language.NewMatcher(supported)
	cat       = buildCatalog()
)

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.Spanish))
	for tag, msgs := range map[language.Tag]map[string]string{
		language.Spanish: spanish,
		language.English: english,
	} {
		for key, text := range msgs {
			if err := b.SetString(tag, key, text); err != nil {
				panic(err)
			}
		}
	}
	return b
}

// DetectLanguage returns the base code ("es" or "en") best matching an
// Accept-Language header. Unknown or empty headers yield "es".
func DetectLanguage(header string) string {
	tags, _, err := language.ParseAcceptLanguage(strings.TrimSpace(header))
	if err != nil || len(tags) == 0 {
		return "es"
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return "es"
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// FromRequest resolves the language from the lang query param, then the lang
// cookie, then Accept-Language.
func FromRequest(r *http.Request) string {
	if v := r.URL.Query().Get(LangParam); v != "" {
		return normalize(v)
	}
	if c, err := r.Cookie(LangCookie); err == nil && c.Value != "" {
		return normalize(c.Value)
	}
	return DetectLanguage(r.Header.Get("Accept-Language"))
}

func normalize(v string) string {
	if strings.HasPrefix(strings.ToLower(v), "en") {
		return "en"
	}
	return "es"
}

func tagFor(lang string) language.Tag {
	if normalize(lang) == "en" {
		return language.English
	}
	return language.Spanish
}

// T translates key for lang. Unknown keys are returned unchanged.
func T(lang, key string, args ...any) string {
	p := message.NewPrinter(tagFor(lang), message.Catalog(cat))
	return p.Sprintf(key, args...)
}
