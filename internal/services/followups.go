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

// PendingWindowDays is how far ahead the pending API looks.
const PendingWindowDays = 7

type FollowUpInput struct {
	ClientID      uint
	Title         string
	Description   string
	Priority      models.Priority
	Kind          models.FollowUpKind
	ScheduledDate *time.Time
	Completed     bool
}

func (in *FollowUpInput) validate() validation.Violations {
	in.Title = strings.TrimSpace(in.Title)
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if in.Kind == "" {
		in.Kind = models.FollowUpCall
	}
	v := validation.Violations{}
	if in.ClientID == 0 {
		v.Add("client_id", "required")
	}
	validation.Required("title", in.Title, v)
	validation.OneOf("priority", in.Priority, models.Priorities, v)
	validation.OneOf("kind", in.Kind, models.FollowUpKinds, v)
	if in.ScheduledDate == nil {
		v.Add("scheduled_date", "required")
	}
	return v
}

type FollowUpService struct{ base }

func NewFollowUpService(d Deps) *FollowUpService { return &FollowUpService{base: newBase(d)} }

func (s *FollowUpService) owned(ctx context.Context, tx *gorm.DB, actor Actor, action gate.Action, id uint) (*models.FollowUp, error) {
	var f models.FollowUp
	if err := tx.Preload("Client").First(&f, id).Error; err != nil {
		return nil, notFound(err, "follow-up")
	}
	if err := s.authorize(ctx, actor, action, policy.KindFollowUp, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *FollowUpService) List(ctx context.Context, actor Actor, f query.FollowUpFilter) (query.Page[models.FollowUp], error) {
	if err := s.authorize(ctx, actor, gate.ActionList, policy.KindFollowUp, nil); err != nil {
		return query.Page[models.FollowUp]{}, err
	}
	f.Today = s.today()
	return query.FollowUps(s.db.WithContext(ctx), actor.ID, f)
}

func (s *FollowUpService) Create(ctx context.Context, actor Actor, in FollowUpInput) (*models.FollowUp, error) {
	if err := invalid(in.validate()); err != nil {
		return nil, err
	}
	var f models.FollowUp
	err := s.tx(ctx, func(tx *gorm.DB) error {
		c, err := s.ownedClient(ctx, tx, actor, gate.ActionUpdate, in.ClientID)
		if err != nil {
			return err
		}
		f = models.FollowUp{
			UserID: actor.ID, ClientID: c.ID, Client: c,
			Title: in.Title, Description: in.Description,
			Priority: in.Priority, Kind: in.Kind,
			ScheduledDate: in.ScheduledDate.UTC(),
		}
		if in.Completed {
			f.SetCompleted(true, s.now())
		}
		return tx.Omit("Client").Create(&f).Error
	})
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Update rewrites the follow-up. Flipping Completed stamps or clears CompletedAt.
func (s *FollowUpService) Update(ctx context.Context, actor Actor, id uint, in FollowUpInput) (*models.FollowUp, error) {
	var out *models.FollowUp
	err := s.tx(ctx, func(tx *gorm.DB) error {
		f, err := s.owned(ctx, tx, actor, gate.ActionUpdate, id)
		if err != nil {
			return err
		}
		if in.ClientID == 0 {
			in.ClientID = f.ClientID
		}
		if err := invalid(in.validate()); err != nil {
			return err
		}
		if in.ClientID != f.ClientID {
			c, err := s.ownedClient(ctx, tx, actor, gate.ActionUpdate, in.ClientID)
			if err != nil {
				return err
			}
			f.ClientID, f.Client = c.ID, c
		}
		f.Title, f.Description = in.Title, in.Description
		f.Priority, f.Kind = in.Priority, in.Kind
		f.ScheduledDate = in.ScheduledDate.UTC()
		if in.Completed != f.Completed {
			f.SetCompleted(in.Completed, s.now())
		}
		out = f
		return tx.Omit("Client").Save(f).Error
	})
	return out, err
}

func (s *FollowUpService) Delete(ctx context.Context, actor Actor, id uint) error {
	return s.tx(ctx, func(tx *gorm.DB) error {
		f, err := s.owned(ctx, tx, actor, gate.ActionDelete, id)
		if err != nil {
			return err
		}
		return tx.Delete(&models.FollowUp{}, f.ID).Error
	})
}

// Complete marks the follow-up done and logs it. Completing an already
// completed follow-up changes nothing and writes no log entry.
func (s *FollowUpService) Complete(ctx context.Context, actor Actor, id uint) (*models.FollowUp, error) {
	var out *models.FollowUp
	err := s.tx(ctx, func(tx *gorm.DB) error {
		f, err := s.owned(ctx, tx, actor, gate.ActionUpdate, id)
		if err != nil {
			return err
		}
		out = f
		if f.Completed {
			return nil
		}
		f.SetCompleted(true, s.now())
		if err := tx.Model(f).Omit("Client").Updates(map[string]any{"completed": true, "completed_at": f.CompletedAt}).Error; err != nil {
			return err
		}
		return s.recorder.Record(tx, followUpCompleted(actor.ID, f, clientName(f.Client)))
	})
	return out, err
}

// Pending lists open follow-ups due up to PendingWindowDays ahead, overdue
// included, by date then priority.
func (s *FollowUpService) Pending(ctx context.Context, actor Actor) ([]models.FollowUp, error) {
	limit := s.today().AddDate(0, 0, PendingWindowDays+1)
	var out []models.FollowUp
	err := s.db.WithContext(ctx).Preload("Client").
		Where("follow_ups.user_id = ? AND follow_ups.completed = ? AND follow_ups.scheduled_date < ?", actor.ID, false, limit).
		Order("follow_ups.scheduled_date ASC").
		Order(query.PriorityRankSQL + " DESC").
		Find(&out).Error
	return out, err
}

func clientName(c *models.Client) string {
	if c == nil {
		return ""
	}
	return c.DisplayName()
}
