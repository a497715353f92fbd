package services

import (
	"context"
	"fmt"

	"github.com/diewo77/go-crm/internal/metrics"
	"github.com/diewo77/go-crm/internal/models"
	"gorm.io/gorm"
)

// Recorder appends activity entries inside the caller's transaction.
type Recorder struct {
	metrics *metrics.Metrics
}

func NewRecorder(m *metrics.Metrics) *Recorder { return &Recorder{metrics: m} }

// Entry describes one domain event. Metadata is copied as-is and never
// refreshed when the subject later changes.
type Entry struct {
	UserID      uint
	Action      models.ActivityAction
	SubjectType models.SubjectType
	SubjectID   uint
	Title       string
	Description string
	Icon        string
	Metadata    models.Metadata
}

type pendingKey struct{}

// Record inserts e in tx. Inside base.tx the entry is counted once the
// transaction commits; otherwise immediately.
func (r *Recorder) Record(tx *gorm.DB, e Entry) error {
	log := models.ActivityLog{
		UserID:      e.UserID,
		Action:      e.Action,
		SubjectType: e.SubjectType,
		SubjectID:   e.SubjectID,
		Title:       e.Title,
		Description: e.Description,
		Icon:        e.Icon,
		Metadata:    e.Metadata,
	}
	if log.Metadata == nil {
		log.Metadata = models.Metadata{}
	}
	if err := tx.Create(&log).Error; err != nil {
		return fmt.Errorf("record activity %s/%s: %w", e.SubjectType, e.Action, err)
	}
	if ctx := tx.Statement.Context; ctx != nil {
		if batch, ok := ctx.Value(pendingKey{}).(*[]Entry); ok {
			*batch = append(*batch, e)
			return nil
		}
	}
	r.observe(e)
	return nil
}

func (r *Recorder) observe(entries ...Entry) {
	for _, e := range entries {
		r.metrics.ObserveActivity(string(e.Action), string(e.SubjectType))
	}
}

func clientCreated(userID uint, c *models.Client) Entry {
	return Entry{
		UserID: userID, Action: models.ActionCreated, SubjectType: models.SubjectClient, SubjectID: c.ID,
		Title:       "Nuevo cliente",
		Description: fmt.Sprintf("Se registró el cliente %s", c.DisplayName()),
		Icon:        "👤",
		Metadata:    models.Metadata{"client_name": c.DisplayName(), "company": c.Company},
	}
}

func clientDeleted(userID uint, c *models.Client) Entry {
	return Entry{
		UserID: userID, Action: models.ActionDeleted, SubjectType: models.SubjectClient, SubjectID: c.ID,
		Title:       "Cliente eliminado",
		Description: fmt.Sprintf("Se eliminó el cliente %s", c.DisplayName()),
		Icon:        "🗑️",
		Metadata:    models.Metadata{"client_name": c.DisplayName()},
	}
}

func noteCreated(userID uint, n *models.Note, clientName string) Entry {
	return Entry{
		UserID: userID, Action: models.ActionCreated, SubjectType: models.SubjectNote, SubjectID: n.ID,
		Title:       "Nueva nota",
		Description: fmt.Sprintf("Nota añadida a %s", clientName),
		Icon:        "📝",
		Metadata:    models.Metadata{"client_name": clientName, "kind": string(n.Kind), "important": n.Important},
	}
}

func followUpCompleted(userID uint, f *models.FollowUp, clientName string) Entry {
	return Entry{
		UserID: userID, Action: models.ActionCompleted, SubjectType: models.SubjectFollowUp, SubjectID: f.ID,
		Title:       "Tarea completada",
		Description: fmt.Sprintf("%s (%s)", f.Title, clientName),
		Icon:        "✅",
		Metadata:    models.Metadata{"title": f.Title, "client_name": clientName, "priority": string(f.Priority)},
	}
}

func proposalEntry(userID uint, action models.ActivityAction, p *models.Proposal, clientName string) Entry {
	e := Entry{
		UserID: userID, Action: action, SubjectType: models.SubjectProposal, SubjectID: p.ID,
		Metadata: models.Metadata{"title": p.Title, "client_name": clientName, "total_price": p.TotalPrice},
	}
	switch action {
	case models.ActionCreated:
		e.Title, e.Icon = "Nueva propuesta", "📄"
		e.Description = fmt.Sprintf("Propuesta \"%s\" para %s", p.Title, clientName)
	case models.ActionSent:
		e.Title, e.Icon = "Propuesta enviada", "📤"
		e.Description = fmt.Sprintf("Propuesta \"%s\" enviada a %s", p.Title, clientName)
	case models.ActionApproved:
		e.Title, e.Icon = "Propuesta aprobada", "🎉"
		e.Description = fmt.Sprintf("%s aprobó \"%s\" por %.2f", clientName, p.Title, p.TotalPrice)
	}
	return e
}

func projectCreated(userID uint, pr *models.Project, proposal *models.Proposal, clientName string) Entry {
	return Entry{
		UserID: userID, Action: models.ActionCreated, SubjectType: models.SubjectProject, SubjectID: pr.ID,
		Title:       "Nuevo proyecto",
		Description: fmt.Sprintf("Proyecto \"%s\" creado desde la propuesta \"%s\"", pr.Name, proposal.Title),
		Icon:        "🚀",
		Metadata: models.Metadata{
			"project_name": pr.Name, "client_name": clientName,
			"proposal_id": proposal.ID, "total_price": pr.TotalPrice,
		},
	}
}

// ActivityService reads the feed.
type ActivityService struct{ base }

func NewActivityService(d Deps) *ActivityService { return &ActivityService{base: newBase(d)} }

// Recent returns the actor's entries from the last days days, newest first.
func (s *ActivityService) Recent(ctx context.Context, actor Actor, days int) ([]models.ActivityLog, error) {
	since := s.today().AddDate(0, 0, -days)
	var logs []models.ActivityLog
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", actor.ID, since).
		Order("created_at DESC, id DESC").
		Find(&logs).Error
	return logs, err
}
