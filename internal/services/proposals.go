package services

import (
	"context"
	"strings"
	"time"

	"github.com/diewo77/go-crm/gate"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/internal/policy"
	"github.com/diewo77/go-crm/internal/query"
	"github.com/diewo77/go-crm/validation"
	"gorm.io/gorm"
)

type ProposalInput struct {
	ClientID           uint
	Title              string
	ProjectDescription string
	TotalPrice         float64
	PaymentTerms       string
	DeliveryTime       string
	Included           string
	Excluded           string
	Status             models.ProposalStatus
	ResponseDeadline   *time.Time
	NextReminder       *time.Time
	InternalNotes      string
}

func (in *ProposalInput) validate(today time.Time) validation.Violations {
	in.Title = strings.TrimSpace(in.Title)
	if in.Status == "" {
		in.Status = models.ProposalDraft
	}
	v := validation.Violations{}
	if in.ClientID == 0 {
		v.Add("client_id", "required")
	}
	validation.Required("title", in.Title, v)
	validation.MaxLen("title", in.Title, 255, v)
	validation.NonNegativeFloat("total_price", in.TotalPrice, v)
	validation.OneOf("status", in.Status, models.ProposalStatuses, v)
	validation.After("response_deadline", in.ResponseDeadline, today, v)
	if in.NextReminder != nil {
		validation.After("next_reminder", in.NextReminder, today, v)
	}
	return v
}

func (in ProposalInput) apply(p *models.Proposal) {
	p.Title = in.Title
	p.ProjectDescription = in.ProjectDescription
	p.TotalPrice = in.TotalPrice
	p.PaymentTerms = in.PaymentTerms
	p.DeliveryTime = in.DeliveryTime
	p.Included = in.Included
	p.Excluded = in.Excluded
	p.ResponseDeadline = utcPtr(in.ResponseDeadline)
	p.NextReminder = utcPtr(in.NextReminder)
	p.InternalNotes = in.InternalNotes
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// FollowupInput records a client touchpoint on a proposal.
type FollowupInput struct {
	At           *time.Time
	Note         string
	NextReminder *time.Time
}

type ProposalService struct{ base }

func NewProposalService(d Deps) *ProposalService { return &ProposalService{base: newBase(d)} }

func (s *ProposalService) owned(ctx context.Context, tx *gorm.DB, actor Actor, action gate.Action, id uint) (*models.Proposal, error) {
	var p models.Proposal
	if err := tx.Preload("Client").Preload("Project").First(&p, id).Error; err != nil {
		return nil, notFound(err, "proposal")
	}
	if err := s.authorize(ctx, actor, action, policy.KindProposal, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// save writes the proposal's own columns, never its associations.
func save(tx *gorm.DB, p *models.Proposal) error {
	return tx.Omit("Client", "Project").Save(p).Error
}

func (s *ProposalService) List(ctx context.Context, actor Actor, f query.ProposalFilter) (query.Page[models.Proposal], error) {
	if err := s.authorize(ctx, actor, gate.ActionList, policy.KindProposal, nil); err != nil {
		return query.Page[models.Proposal]{}, err
	}
	return query.Proposals(s.db.WithContext(ctx), actor.ID, f)
}

func (s *ProposalService) Get(ctx context.Context, actor Actor, id uint) (*models.Proposal, error) {
	return s.owned(ctx, s.db.WithContext(ctx), actor, gate.ActionView, id)
}

// Export loads a proposal for PDF rendering.
func (s *ProposalService) Export(ctx context.Context, actor Actor, id uint) (*models.Proposal, error) {
	return s.owned(ctx, s.db.WithContext(ctx), actor, gate.ActionExport, id)
}

func (s *ProposalService) Create(ctx context.Context, actor Actor, in ProposalInput) (*models.Proposal, error) {
	if err := invalid(in.validate(s.today())); err != nil {
		return nil, err
	}
	var p models.Proposal
	err := s.tx(ctx, func(tx *gorm.DB) error {
		c, err := s.ownedClient(ctx, tx, actor, gate.ActionUpdate, in.ClientID)
		if err != nil {
			return err
		}
		p = models.Proposal{UserID: actor.ID, ClientID: c.ID, Status: in.Status}
		in.apply(&p)
		if p.Status == models.ProposalSent {
			now := s.now()
			p.SentAt = &now
		}
		if err := save(tx, &p); err != nil {
			return err
		}
		p.Client = c
		return s.recorder.Record(tx, proposalEntry(actor.ID, models.ActionCreated, &p, c.DisplayName()))
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Update edits the proposal; a status change goes through the same edge
// rules as ChangeStatus.
func (s *ProposalService) Update(ctx context.Context, actor Actor, id uint, in ProposalInput) (*models.Proposal, error) {
	var out *models.Proposal
	err := s.tx(ctx, func(tx *gorm.DB) error {
		p, err := s.owned(ctx, tx, actor, gate.ActionUpdate, id)
		if err != nil {
			return err
		}
		if in.ClientID == 0 {
			in.ClientID = p.ClientID
		}
		if in.Status == "" {
			in.Status = p.Status
		}
		if err := invalid(in.validate(s.today())); err != nil {
			return err
		}
		if in.ClientID != p.ClientID {
			c, err := s.ownedClient(ctx, tx, actor, gate.ActionUpdate, in.ClientID)
			if err != nil {
				return err
			}
			p.ClientID, p.Client = c.ID, c
		}
		in.apply(p)
		out = p
		return s.setStatus(tx, actor, p, in.Status)
	})
	return out, err
}

func (s *ProposalService) Delete(ctx context.Context, actor Actor, id uint) error {
	return s.tx(ctx, func(tx *gorm.DB) error {
		p, err := s.owned(ctx, tx, actor, gate.ActionDelete, id)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.Project{}).Where("proposal_id = ?", p.ID).Update("proposal_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Proposal{}, p.ID).Error
	})
}

// MarkAsSent sets status sent and stamps SentAt (now when at is nil).
// Allowed from any status.
func (s *ProposalService) MarkAsSent(ctx context.Context, actor Actor, id uint, at *time.Time) (*models.Proposal, error) {
	var out *models.Proposal
	err := s.tx(ctx, func(tx *gorm.DB) error {
		p, err := s.owned(ctx, tx, actor, gate.ActionUpdate, id)
		if err != nil {
			return err
		}
		sentAt := s.now()
		if at != nil {
			sentAt = at.UTC()
		}
		p.Status, p.SentAt = models.ProposalSent, &sentAt
		out = p
		if err := save(tx, p); err != nil {
			return err
		}
		return s.recorder.Record(tx, proposalEntry(actor.ID, models.ActionSent, p, clientName(p.Client)))
	})
	return out, err
}

// ChangeStatus overwrites the status. Entering approved from any other
// status logs one approved event; re-approving logs nothing.
func (s *ProposalService) ChangeStatus(ctx context.Context, actor Actor, id uint, status models.ProposalStatus) (*models.Proposal, error) {
	v := validation.Violations{}
	validation.OneOf("status", status, models.ProposalStatuses, v)
	if err := invalid(v); err != nil {
		return nil, err
	}
	var out *models.Proposal
	err := s.tx(ctx, func(tx *gorm.DB) error {
		p, err := s.owned(ctx, tx, actor, gate.ActionUpdate, id)
		if err != nil {
			return err
		}
		out = p
		return s.setStatus(tx, actor, p, status)
	})
	return out, err
}

func (s *ProposalService) setStatus(tx *gorm.DB, actor Actor, p *models.Proposal, status models.ProposalStatus) error {
	prev := p.Status
	p.Status = status
	if err := save(tx, p); err != nil {
		return err
	}
	if status == models.ProposalApproved && prev != models.ProposalApproved {
		return s.recorder.Record(tx, proposalEntry(actor.ID, models.ActionApproved, p, clientName(p.Client)))
	}
	return nil
}

// RecordFollowup stamps LastFollowupAt, appends the note to InternalNotes and
// optionally moves NextReminder, which must be after today.
func (s *ProposalService) RecordFollowup(ctx context.Context, actor Actor, id uint, in FollowupInput) (*models.Proposal, error) {
	if in.NextReminder != nil {
		v := validation.Violations{}
		validation.After("next_reminder", in.NextReminder, s.today(), v)
		if err := invalid(v); err != nil {
			return nil, err
		}
	}
	var out *models.Proposal
	err := s.tx(ctx, func(tx *gorm.DB) error {
		p, err := s.owned(ctx, tx, actor, gate.ActionUpdate, id)
		if err != nil {
			return err
		}
		now := s.now()
		at := now
		if in.At != nil {
			at = in.At.UTC()
		}
		p.LastFollowupAt = &at
		p.AppendInternalNote(now.In(s.clock.Location()), in.Note)
		if in.NextReminder != nil {
			p.NextReminder = utcPtr(in.NextReminder)
		}
		out = p
		return save(tx, p)
	})
	return out, err
}

// Duplicate copies the proposal as a new draft owned by the actor.
func (s *ProposalService) Duplicate(ctx context.Context, actor Actor, id uint) (*models.Proposal, error) {
	var out *models.Proposal
	err := s.tx(ctx, func(tx *gorm.DB) error {
		src, err := s.owned(ctx, tx, actor, gate.ActionView, id)
		if err != nil {
			return err
		}
		dup := src.Duplicate(actor.ID)
		if err := save(tx, dup); err != nil {
			return err
		}
		dup.Client = src.Client
		out = dup
		e := proposalEntry(actor.ID, models.ActionCreated, dup, clientName(src.Client))
		e.Metadata["duplicated_from"] = src.ID
		return s.recorder.Record(tx, e)
	})
	return out, err
}
