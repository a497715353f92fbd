package services

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/validation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Mailer delivers the lead verification email.
type Mailer interface {
	SendLeadVerification(ctx context.Context, to, link string) error
}

type LeadInput struct {
	Email  string `json:"email"`
	Source string `json:"source"`
}

type LeadService struct {
	base
	mailer    Mailer
	publicURL string
}

func NewLeadService(d Deps, mailer Mailer, publicURL string) *LeadService {
	return &LeadService{base: newBase(d), mailer: mailer, publicURL: strings.TrimRight(publicURL, "/")}
}

// Register stores a lead and mails its verification link. The lead is only
// kept when the mail was accepted.
func (s *LeadService) Register(ctx context.Context, in LeadInput) (*models.Lead, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Source = strings.TrimSpace(in.Source)
	if in.Source == "" {
		in.Source = models.DefaultLeadSource
	}
	v := validation.Violations{}
	validation.Required("email", in.Email, v)
	validation.Email("email", in.Email, v)
	validation.MaxLen("source", in.Source, 100, v)
	if err := invalid(v); err != nil {
		return nil, err
	}
	var lead models.Lead
	err := s.tx(ctx, func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Lead{}).Where("email = ?", in.Email).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return invalid(validation.Violations{"email": ErrEmailTaken.Error()})
		}
		lead = models.Lead{Email: in.Email, Source: in.Source, VerificationToken: uuid.NewString()}
		if err := tx.Create(&lead).Error; err != nil {
			return err
		}
		if s.mailer == nil {
			return nil
		}
		return s.mailer.SendLeadVerification(ctx, lead.Email, s.verifyLink(lead.VerificationToken))
	})
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (s *LeadService) verifyLink(token string) string {
	return s.publicURL + "/leads/verify?token=" + url.QueryEscape(token)
}

// Verify stamps VerifiedAt once; later calls return the lead unchanged.
func (s *LeadService) Verify(ctx context.Context, token string) (*models.Lead, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	var lead models.Lead
	err := s.tx(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("verification_token = ?", token).First(&lead).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidToken
			}
			return err
		}
		if lead.VerifiedAt != nil {
			return nil
		}
		now := s.now()
		lead.VerifiedAt = &now
		return tx.Model(&lead).Update("verified_at", now).Error
	})
	if err != nil {
		return nil, err
	}
	return &lead, nil
}
