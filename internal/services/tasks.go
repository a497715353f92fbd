package services

import (
	"context"
	"strings"

	"github.com/diewo77/go-crm/gate"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/validation"
	"gorm.io/gorm"
)

type TaskInput struct {
	Title       string
	Description string
}

func (in *TaskInput) validate() validation.Violations {
	in.Title = strings.TrimSpace(in.Title)
	v := validation.Violations{}
	validation.Required("title", in.Title, v)
	validation.MaxLen("title", in.Title, 255, v)
	return v
}

func (s *ProjectService) ownedTask(ctx context.Context, tx *gorm.DB, actor Actor, projectID, taskID uint) (*models.Project, *models.ProjectTask, error) {
	p, err := s.owned(ctx, tx, actor, gate.ActionUpdate, projectID)
	if err != nil {
		return nil, nil, err
	}
	var t models.ProjectTask
	if err := tx.Where("project_id = ?", p.ID).First(&t, taskID).Error; err != nil {
		return nil, nil, notFound(err, "task")
	}
	return p, &t, nil
}

// AddTask appends a task at max(order)+1.
func (s *ProjectService) AddTask(ctx context.Context, actor Actor, projectID uint, in TaskInput) (*models.ProjectTask, error) {
	if err := invalid(in.validate()); err != nil {
		return nil, err
	}
	var t models.ProjectTask
	err := s.tx(ctx, func(tx *gorm.DB) error {
		p, err := s.owned(ctx, tx, actor, gate.ActionUpdate, projectID)
		if err != nil {
			return err
		}
		var maxOrder int
		if err := tx.Model(&models.ProjectTask{}).Where("project_id = ?", p.ID).
			Select("COALESCE(MAX(sort_order), 0)").Scan(&maxOrder).Error; err != nil {
			return err
		}
		t = models.ProjectTask{ProjectID: p.ID, Title: in.Title, Description: in.Description, Order: maxOrder + 1}
		return tx.Create(&t).Error
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *ProjectService) UpdateTask(ctx context.Context, actor Actor, projectID, taskID uint, in TaskInput) (*models.ProjectTask, error) {
	if err := invalid(in.validate()); err != nil {
		return nil, err
	}
	var out *models.ProjectTask
	err := s.tx(ctx, func(tx *gorm.DB) error {
		_, t, err := s.ownedTask(ctx, tx, actor, projectID, taskID)
		if err != nil {
			return err
		}
		t.Title, t.Description = in.Title, in.Description
		out = t
		return tx.Save(t).Error
	})
	return out, err
}

func (s *ProjectService) DeleteTask(ctx context.Context, actor Actor, projectID, taskID uint) error {
	return s.tx(ctx, func(tx *gorm.DB) error {
		_, t, err := s.ownedTask(ctx, tx, actor, projectID, taskID)
		if err != nil {
			return err
		}
		return tx.Delete(t).Error
	})
}

// ToggleTask flips completion and returns the task with the project's new progress.
func (s *ProjectService) ToggleTask(ctx context.Context, actor Actor, projectID, taskID uint) (*models.ProjectTask, int, error) {
	var (
		out      *models.ProjectTask
		progress int
	)
	err := s.tx(ctx, func(tx *gorm.DB) error {
		p, t, err := s.ownedTask(ctx, tx, actor, projectID, taskID)
		if err != nil {
			return err
		}
		t.SetCompleted(!t.Completed, s.now())
		if err := tx.Save(t).Error; err != nil {
			return err
		}
		for i := range p.Tasks {
			if p.Tasks[i].ID == t.ID {
				p.Tasks[i] = *t
			}
		}
		out, progress = t, p.Progress()
		return nil
	})
	return out, progress, err
}

// ReorderTasks assigns positions 1..n following ids, which must list every
// task of the project exactly once.
func (s *ProjectService) ReorderTasks(ctx context.Context, actor Actor, projectID uint, ids []uint) ([]models.ProjectTask, error) {
	var out []models.ProjectTask
	err := s.tx(ctx, func(tx *gorm.DB) error {
		p, err := s.owned(ctx, tx, actor, gate.ActionUpdate, projectID)
		if err != nil {
			return err
		}
		byID := make(map[uint]models.ProjectTask, len(p.Tasks))
		for _, t := range p.Tasks {
			byID[t.ID] = t
		}
		seen := make(map[uint]bool, len(ids))
		for _, id := range ids {
			if _, ok := byID[id]; !ok || seen[id] {
				return invalid(validation.Violations{"ids": "invalid_choice"})
			}
			seen[id] = true
		}
		if len(ids) != len(p.Tasks) {
			return invalid(validation.Violations{"ids": "invalid_choice"})
		}
		out = make([]models.ProjectTask, 0, len(ids))
		for i, id := range ids {
			if err := tx.Model(&models.ProjectTask{}).Where("id = ?", id).Update("sort_order", i+1).Error; err != nil {
				return err
			}
			t := byID[id]
			t.Order = i + 1
			out = append(out, t)
		}
		return nil
	})
	return out, err
}
