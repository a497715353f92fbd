package services

import (
	"context"
	"strings"

	"github.com/diewo77/go-crm/gate"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/internal/policy"
	"github.com/diewo77/go-crm/validation"
	"gorm.io/gorm"
)

type NoteInput struct {
	ClientID  uint            `json:"client_id"`
	Content   string          `json:"content"`
	Kind      models.NoteKind `json:"kind"`
	Important bool            `json:"important"`
}

func (in *NoteInput) validate() validation.Violations {
	in.Content = strings.TrimSpace(in.Content)
	if in.Kind == "" {
		in.Kind = models.NoteKindNote
	}
	v := validation.Violations{}
	if in.ClientID == 0 {
		v.Add("client_id", "required")
	}
	validation.Required("content", in.Content, v)
	validation.OneOf("kind", in.Kind, models.NoteKinds, v)
	return v
}

type NoteService struct{ base }

func NewNoteService(d Deps) *NoteService { return &NoteService{base: newBase(d)} }

func (s *NoteService) owned(ctx context.Context, tx *gorm.DB, actor Actor, action gate.Action, id uint) (*models.Note, error) {
	var n models.Note
	if err := tx.First(&n, id).Error; err != nil {
		return nil, notFound(err, "note")
	}
	if err := s.authorize(ctx, actor, action, policy.KindNote, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *NoteService) Create(ctx context.Context, actor Actor, in NoteInput) (*models.Note, error) {
	if err := invalid(in.validate()); err != nil {
		return nil, err
	}
	var n models.Note
	err := s.tx(ctx, func(tx *gorm.DB) error {
		c, err := s.ownedClient(ctx, tx, actor, gate.ActionUpdate, in.ClientID)
		if err != nil {
			return err
		}
		n = models.Note{UserID: actor.ID, ClientID: c.ID, Content: in.Content, Kind: in.Kind, Important: in.Important}
		if err := tx.Create(&n).Error; err != nil {
			return err
		}
		return s.recorder.Record(tx, noteCreated(actor.ID, &n, c.DisplayName()))
	})
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Update edits content, kind and importance. The client cannot change.
func (s *NoteService) Update(ctx context.Context, actor Actor, id uint, in NoteInput) (*models.Note, error) {
	var out *models.Note
	err := s.tx(ctx, func(tx *gorm.DB) error {
		n, err := s.owned(ctx, tx, actor, gate.ActionUpdate, id)
		if err != nil {
			return err
		}
		in.ClientID = n.ClientID
		if err := invalid(in.validate()); err != nil {
			return err
		}
		n.Content, n.Kind, n.Important = in.Content, in.Kind, in.Important
		out = n
		return tx.Save(n).Error
	})
	return out, err
}

func (s *NoteService) Delete(ctx context.Context, actor Actor, id uint) error {
	return s.tx(ctx, func(tx *gorm.DB) error {
		n, err := s.owned(ctx, tx, actor, gate.ActionDelete, id)
		if err != nil {
			return err
		}
		return tx.Delete(n).Error
	})
}
