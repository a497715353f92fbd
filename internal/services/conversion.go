package services

import (
	"context"

	"github.com/diewo77/go-crm/gate"
	"github.com/diewo77/go-crm/internal/models"
	"gorm.io/gorm"
)

// Convert turns an approved, not yet converted proposal into a not_started
// project. There is no reverse operation.
func (s *ProposalService) Convert(ctx context.Context, actor Actor, id uint) (*models.Project, error) {
	var out *models.Project
	err := s.tx(ctx, func(tx *gorm.DB) error {
		p, err := s.owned(ctx, tx, actor, gate.ActionUpdate, id)
		if err != nil {
			return err
		}
		if p.Status != models.ProposalApproved {
			return ErrProposalNotApproved
		}
		if p.Project != nil {
			return ErrAlreadyConverted
		}
		proposalID := p.ID
		pr := models.Project{
			UserID:       p.UserID,
			ClientID:     p.ClientID,
			ProposalID:   &proposalID,
			Name:         p.Title,
			Description:  p.ProjectDescription,
			Status:       models.ProjectNotStarted,
			TotalPrice:   p.TotalPrice,
			PaymentTerms: p.PaymentTerms,
		}
		if err := tx.Omit("Client", "Tasks").Create(&pr).Error; err != nil {
			return err
		}
		pr.Client = p.Client
		out = &pr
		return s.recorder.Record(tx, projectCreated(actor.ID, &pr, p, clientName(p.Client)))
	})
	return out, err
}
