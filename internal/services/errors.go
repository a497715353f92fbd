package services

import (
	"errors"
	"fmt"

	"github.com/diewo77/go-crm/gate"
	"github.com/diewo77/go-crm/validation"
	"gorm.io/gorm"
)

var (
	ErrNotFound            = errors.New("not_found")
	ErrForbidden           = errors.New("forbidden")
	ErrProposalNotApproved = errors.New("only approved proposals convert")
	ErrAlreadyConverted    = errors.New("already converted")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrInvalidCredentials  = errors.New("invalid_credentials")
	ErrInvalidToken        = errors.New("invalid_token")
	ErrEmailTaken          = errors.New("email_taken")
)

// ValidationError carries field-level violation codes.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d field(s)", len(e.Violations))
}

func invalid(v validation.Violations) error {
	if v.Empty() {
		return nil
	}
	return &ValidationError{Violations: v}
}

// notFound maps gorm.ErrRecordNotFound to ErrNotFound and wraps anything else.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("load %s: %w", what, err)
}

func forbidden(err error) error {
	if errors.Is(err, gate.ErrUnauthorized) {
		return ErrForbidden
	}
	return err
}
