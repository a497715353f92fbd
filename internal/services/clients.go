package services

import (
	"context"
	"strings"

	"github.com/diewo77/go-crm/gate"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/internal/policy"
	"github.com/diewo77/go-crm/internal/query"
	"github.com/diewo77/go-crm/validation"
	"gorm.io/gorm"
)

type ClientInput struct {
	Name    string              `json:"name"`
	Surname string              `json:"surname"`
	Company string              `json:"company"`
	Email   string              `json:"email"`
	Phone   string              `json:"phone"`
	Address string              `json:"address"`
	City    string              `json:"city"`
	Status  models.ClientStatus `json:"status"`
	Notes   string              `json:"notes"`
}

func (in *ClientInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Surname = strings.TrimSpace(in.Surname)
	in.Company = strings.TrimSpace(in.Company)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Status == "" {
		in.Status = models.ClientActive
	}
}

func (in ClientInput) validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.MaxLen("name", in.Name, 255, v)
	validation.Required("email", in.Email, v)
	validation.Email("email", in.Email, v)
	validation.OneOf("status", in.Status, models.ClientStatuses, v)
	return v
}

func (in ClientInput) apply(c *models.Client) {
	c.Name = in.Name
	c.Surname = in.Surname
	c.Company = in.Company
	c.Email = in.Email
	c.Phone = in.Phone
	c.Address = in.Address
	c.City = in.City
	c.Status = in.Status
	c.Notes = in.Notes
}

type ClientService struct{ base }

func NewClientService(d Deps) *ClientService { return &ClientService{base: newBase(d)} }

func emailTaken(tx *gorm.DB, email string, exceptID uint) (bool, error) {
	var n int64
	q := tx.Model(&models.Client{}).Where("email = ?", email)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	err := q.Count(&n).Error
	return n > 0, err
}

// ownedClient loads a client and checks action against it.
func (b base) ownedClient(ctx context.Context, tx *gorm.DB, actor Actor, action gate.Action, id uint) (*models.Client, error) {
	var c models.Client
	if err := tx.First(&c, id).Error; err != nil {
		return nil, notFound(err, "client")
	}
	if err := b.authorize(ctx, actor, action, policy.KindClient, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ClientService) List(ctx context.Context, actor Actor, f query.ClientFilter) (query.Page[models.Client], error) {
	if err := s.authorize(ctx, actor, gate.ActionList, policy.KindClient, nil); err != nil {
		return query.Page[models.Client]{}, err
	}
	return query.Clients(s.db.WithContext(ctx), actor.ID, f)
}

// Get loads a client with its notes, follow-ups, proposals and projects.
func (s *ClientService) Get(ctx context.Context, actor Actor, id uint) (*models.Client, error) {
	db := s.db.WithContext(ctx)
	c, err := s.ownedClient(ctx, db, actor, gate.ActionView, id)
	if err != nil {
		return nil, err
	}
	err = db.
		Preload("ClientNotes", func(q *gorm.DB) *gorm.DB { return q.Order("created_at DESC") }).
		Preload("FollowUps", func(q *gorm.DB) *gorm.DB { return q.Order("scheduled_date ASC") }).
		Preload("Proposals", func(q *gorm.DB) *gorm.DB { return q.Order("created_at DESC") }).
		Preload("Projects", func(q *gorm.DB) *gorm.DB { return q.Order("created_at DESC") }).
		Preload("Projects.Tasks").
		First(c, c.ID).Error
	if err != nil {
		return nil, notFound(err, "client")
	}
	return c, nil
}

func (s *ClientService) Create(ctx context.Context, actor Actor, in ClientInput) (*models.Client, error) {
	if err := s.authorize(ctx, actor, gate.ActionCreate, policy.KindClient, nil); err != nil {
		return nil, err
	}
	in.normalize()
	v := in.validate()
	var c models.Client
	err := s.tx(ctx, func(tx *gorm.DB) error {
		if in.Email != "" {
			taken, err := emailTaken(tx, in.Email, 0)
			if err != nil {
				return err
			}
			if taken {
				v.Add("email", ErrEmailTaken.Error())
			}
		}
		if err := invalid(v); err != nil {
			return err
		}
		c.UserID = actor.ID
		in.apply(&c)
		if err := tx.Create(&c).Error; err != nil {
			return err
		}
		return s.recorder.Record(tx, clientCreated(actor.ID, &c))
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ClientService) Update(ctx context.Context, actor Actor, id uint, in ClientInput) (*models.Client, error) {
	in.normalize()
	v := in.validate()
	var out *models.Client
	err := s.tx(ctx, func(tx *gorm.DB) error {
		c, err := s.ownedClient(ctx, tx, actor, gate.ActionUpdate, id)
		if err != nil {
			return err
		}
		if in.Email != "" {
			taken, err := emailTaken(tx, in.Email, c.ID)
			if err != nil {
				return err
			}
			if taken {
				v.Add("email", ErrEmailTaken.Error())
			}
		}
		if err := invalid(v); err != nil {
			return err
		}
		in.apply(c)
		out = c
		return tx.Save(c).Error
	})
	return out, err
}

// Delete removes the client and everything hanging from it.
func (s *ClientService) Delete(ctx context.Context, actor Actor, id uint) error {
	return s.tx(ctx, func(tx *gorm.DB) error {
		c, err := s.ownedClient(ctx, tx, actor, gate.ActionDelete, id)
		if err != nil {
			return err
		}
		projects := tx.Model(&models.Project{}).Select("id").Where("client_id = ?", c.ID)
		steps := []func() error{
			func() error { return tx.Where("project_id IN (?)", projects).Delete(&models.ProjectTask{}).Error },
			func() error { return tx.Where("client_id = ?", c.ID).Delete(&models.Project{}).Error },
			func() error { return tx.Where("client_id = ?", c.ID).Delete(&models.Proposal{}).Error },
			func() error { return tx.Where("client_id = ?", c.ID).Delete(&models.FollowUp{}).Error },
			func() error { return tx.Where("client_id = ?", c.ID).Delete(&models.Note{}).Error },
			func() error { return tx.Delete(c).Error },
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}
		return s.recorder.Record(tx, clientDeleted(actor.ID, c))
	})
}
