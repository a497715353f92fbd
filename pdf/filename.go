package pdf

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	EntityProposal = "Propuesta"
	EntityProject  = "Proyecto"
)

// Slug lowercases s, strips accents and joins words with '-'.
func Slug(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, s)
	if err != nil {
		plain = s
	}
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(plain) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Filename is {Entity}_{slug}_{YYYY-MM-DD}.pdf.
func Filename(entity, name string, day time.Time) string {
	slug := Slug(name)
	if slug == "" {
		slug = "documento"
	}
	return entity + "_" + slug + "_" + day.Format(time.DateOnly) + ".pdf"
}
