package services

import (
	"context"
	"strings"
	"time"

	"github.com/diewo77/go-crm/gate"
	"github.com/diewo77/go-crm/internal/clock"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/internal/policy"
	"github.com/diewo77/go-crm/internal/query"
	"github.com/diewo77/go-crm/validation"
	"gorm.io/gorm"
)

type ProjectInput struct {
	Name         string
	Description  string
	Status       models.ProjectStatus
	StartDate    *time.Time
	DueDate      *time.Time
	TotalPrice   float64
	PaymentTerms string
}

func (in *ProjectInput) validate() validation.Violations {
	in.Name = strings.TrimSpace(in.Name)
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.MaxLen("name", in.Name, 255, v)
	validation.OneOf("status", in.Status, models.ProjectStatuses, v)
	validation.NonNegativeFloat("total_price", in.TotalPrice, v)
	validation.NotBefore("due_date", in.DueDate, in.StartDate, v)
	return v
}

// Transition names a guarded lifecycle move.
type Transition string

const (
	TransitionStart    Transition = "start"
	TransitionPause    Transition = "pause"
	TransitionResume   Transition = "resume"
	TransitionComplete Transition = "complete"
)

var transitions = map[Transition]struct{ from, to models.ProjectStatus }{
	TransitionStart:    {models.ProjectNotStarted, models.ProjectInProgress},
	TransitionPause:    {models.ProjectInProgress, models.ProjectPaused},
	TransitionResume:   {models.ProjectPaused, models.ProjectInProgress},
	TransitionComplete: {models.ProjectInProgress, models.ProjectCompleted},
}

type ProjectService struct{ base }

func NewProjectService(d Deps) *ProjectService { return &ProjectService{base: newBase(d)} }

func (s *ProjectService) owned(ctx context.Context, tx *gorm.DB, actor Actor, action gate.Action, id uint) (*models.Project, error) {
	var p models.Project
	err := tx.Preload("Client").
		Preload("Tasks", func(q *gorm.DB) *gorm.DB { return q.Order("sort_order ASC, id ASC") }).
		First(&p, id).Error
	if err != nil {
		return nil, notFound(err, "project")
	}
	if err := s.authorize(ctx, actor, action, policy.KindProject, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// saveProject persists p, rejecting a due date that ends up before the
// start date stamped on entering in_progress.
func saveProject(tx *gorm.DB, p *models.Project) error {
	if p.StartDate != nil {
		v := validation.Violations{}
		start := clock.StartOfDay(*p.StartDate, time.UTC)
		validation.NotBefore("due_date", p.DueDate, &start, v)
		if err := invalid(v); err != nil {
			return err
		}
	}
	return tx.Omit("Client", "Tasks").Save(p).Error
}

func (s *ProjectService) List(ctx context.Context, actor Actor, f query.ProjectFilter) (query.Page[models.Project], error) {
	if err := s.authorize(ctx, actor, gate.ActionList, policy.KindProject, nil); err != nil {
		return query.Page[models.Project]{}, err
	}
	return query.Projects(s.db.WithContext(ctx), actor.ID, f)
}

// Get returns the project with its client and ordered tasks.
func (s *ProjectService) Get(ctx context.Context, actor Actor, id uint) (*models.Project, error) {
	return s.owned(ctx, s.db.WithContext(ctx), actor, gate.ActionView, id)
}

func (s *ProjectService) Export(ctx context.Context, actor Actor, id uint) (*models.Project, error) {
	return s.owned(ctx, s.db.WithContext(ctx), actor, gate.ActionExport, id)
}

// Update edits the project. A status change behaves like ChangeStatus.
func (s *ProjectService) Update(ctx context.Context, actor Actor, id uint, in ProjectInput) (*models.Project, error) {
	var out *models.Project
	err := s.tx(ctx, func(tx *gorm.DB) error {
		p, err := s.owned(ctx, tx, actor, gate.ActionUpdate, id)
		if err != nil {
			return err
		}
		if in.Status == "" {
			in.Status = p.Status
		}
		if err := invalid(in.validate()); err != nil {
			return err
		}
		p.Name, p.Description = in.Name, in.Description
		p.StartDate, p.DueDate = utcPtr(in.StartDate), utcPtr(in.DueDate)
		p.TotalPrice, p.PaymentTerms = in.TotalPrice, in.PaymentTerms
		if in.Status != p.Status {
			p.SetStatus(in.Status, s.now())
		}
		out = p
		return saveProject(tx, p)
	})
	return out, err
}

func (s *ProjectService) Delete(ctx context.Context, actor Actor, id uint) error {
	return s.tx(ctx, func(tx *gorm.DB) error {
		p, err := s.owned(ctx, tx, actor, gate.ActionDelete, id)
		if err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", p.ID).Delete(&models.ProjectTask{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, p.ID).Error
	})
}

// ChangeStatus overwrites the status without lifecycle checks.
func (s *ProjectService) ChangeStatus(ctx context.Context, actor Actor, id uint, status models.ProjectStatus) (*models.Project, error) {
	v := validation.Violations{}
	validation.OneOf("status", status, models.ProjectStatuses, v)
	if err := invalid(v); err != nil {
		return nil, err
	}
	var out *models.Project
	err := s.tx(ctx, func(tx *gorm.DB) error {
		p, err := s.owned(ctx, tx, actor, gate.ActionUpdate, id)
		if err != nil {
			return err
		}
		p.SetStatus(status, s.now())
		out = p
		return saveProject(tx, p)
	})
	return out, err
}

// Apply performs a guarded lifecycle move, failing with ErrInvalidTransition
// when the project is not in the move's source status.
func (s *ProjectService) Apply(ctx context.Context, actor Actor, id uint, t Transition) (*models.Project, error) {
	edge, ok := transitions[t]
	if !ok {
		return nil, ErrInvalidTransition
	}
	var out *models.Project
	err := s.tx(ctx, func(tx *gorm.DB) error {
		p, err := s.owned(ctx, tx, actor, gate.ActionUpdate, id)
		if err != nil {
			return err
		}
		if p.Status != edge.from || !models.CanTransition(p.Status, edge.to) {
			return ErrInvalidTransition
		}
		p.SetStatus(edge.to, s.now())
		out = p
		return saveProject(tx, p)
	})
	return out, err
}
