// Package validation collects field-level violations. A violation value is a
// message key the i18n package can translate.
package validation

import (
	"net/mail"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add records code for field unless the field already has a violation.
func (v Violations) Add(field, code string) {
	if _, ok := v[field]; !ok {
		v[field] = code
	}
}

func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "required")
	}
}

// Email checks format only when value is non-empty; pair with Required.
func Email(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		return
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		v.Add(field, "invalid_email")
	}
}

func MaxLen(field, value string, max int, v Violations) {
	if utf8.RuneCountInString(value) > max {
		v.Add(field, "too_long")
	}
}

func OneOf[T ~string](field string, value T, allowed []T, v Violations) {
	if !slices.Contains(allowed, value) {
		v.Add(field, "invalid_choice")
	}
}

func PositiveFloat(field string, val float64, v Violations) {
	if val <= 0 {
		v.Add(field, "must_be_positive")
	}
}

func NonNegativeFloat(field string, val float64, v Violations) {
	if val < 0 {
		v.Add(field, "must_be_non_negative")
	}
}

// After requires t to fall strictly after the day starting at dayStart.
func After(field string, t *time.Time, dayStart time.Time, v Violations) {
	if t == nil {
		v.Add(field, "required")
		return
	}
	if t.Before(dayStart.AddDate(0, 0, 1)) {
		v.Add(field, "must_be_future")
	}
}

// NotBefore requires end >= start when both are set.
func NotBefore(field string, end, start *time.Time, v Violations) {
	if end == nil || start == nil {
		return
	}
	if end.Before(*start) {
		v.Add(field, "before_start_date")
	}
}
