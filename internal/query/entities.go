package query

import (
	"time"

	"github.com/diewo77/go-crm/internal/models"
	"gorm.io/gorm"
)

// PriorityRankSQL ranks follow-up priority so DESC puts high first.
const PriorityRankSQL = "CASE follow_ups.priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END"

var (
	clientSort = sortSpec{
		table: "clients",
		columns: map[string]string{
			"name":       "clients.name",
			"surname":    "clients.surname",
			"company":    "clients.company",
			"email":      "clients.email",
			"city":       "clients.city",
			"status":     "clients.status",
			"created_at": "clients.created_at",
		},
		defaultOrder: "clients.created_at DESC, clients.id DESC",
	}
	proposalSort = sortSpec{
		table: "proposals",
		columns: map[string]string{
			"title":             "proposals.title",
			"total_price":       "proposals.total_price",
			"status":            "proposals.status",
			"sent_at":           "proposals.sent_at",
			"response_deadline": "proposals.response_deadline",
			"created_at":        "proposals.created_at",
			"client":            "clients.name",
		},
		joins:        map[string]string{"client": clientJoin("proposals")},
		defaultOrder: "proposals.created_at DESC, proposals.id DESC",
	}
	projectSort = sortSpec{
		table: "projects",
		columns: map[string]string{
			"name":        "projects.name",
			"status":      "projects.status",
			"total_price": "projects.total_price",
			"start_date":  "projects.start_date",
			"due_date":    "projects.due_date",
			"created_at":  "projects.created_at",
			"client":      "clients.name",
		},
		joins:        map[string]string{"client": clientJoin("projects")},
		defaultOrder: "projects.created_at DESC, projects.id DESC",
	}
	followUpSort = sortSpec{
		table: "follow_ups",
		columns: map[string]string{
			"title":          "follow_ups.title",
			"scheduled_date": "follow_ups.scheduled_date",
			"priority":       PriorityRankSQL,
			"kind":           "follow_ups.kind",
			"created_at":     "follow_ups.created_at",
			"client":         "clients.name",
		},
		joins:        map[string]string{"client": clientJoin("follow_ups")},
		defaultOrder: "follow_ups.created_at DESC, follow_ups.id DESC",
	}
)

type ClientFilter struct {
	Search string
	Status models.ClientStatus
	DateRange
	Sort
	Page int
}

func Clients(db *gorm.DB, userID uint, f ClientFilter) (Page[models.Client], error) {
	q := db.Model(&models.Client{}).Where("clients.user_id = ?", userID)
	if f.Search != "" {
		q = anyLike(q, f.Search, "clients.name", "clients.surname", "clients.company", "clients.email", "clients.phone", "clients.city")
	}
	if f.Status != "" {
		q = q.Where("clients.status = ?", f.Status)
	}
	q = f.DateRange.apply(q, "clients.created_at")
	return paginate[models.Client](q, clientSort, f.Sort, f.Page, ClientsPerPage)
}

type ProposalFilter struct {
	Search string
	Status models.ProposalStatus
	Client string
	DateRange
	Sort
	Page int
}

func Proposals(db *gorm.DB, userID uint, f ProposalFilter) (Page[models.Proposal], error) {
	q := db.Model(&models.Proposal{}).Where("proposals.user_id = ?", userID)
	if f.Search != "" {
		q = anyLike(q, f.Search, "proposals.title", "proposals.project_description")
	}
	if f.Status != "" {
		q = q.Where("proposals.status = ?", f.Status)
	}
	if f.Client != "" {
		q = clientMatch(q, "proposals.client_id", f.Client)
	}
	q = f.DateRange.apply(q, "proposals.created_at")
	return paginate[models.Proposal](q, proposalSort, f.Sort, f.Page, DefaultPerPage, "Client", "Project")
}

type ProjectFilter struct {
	Search string
	Status models.ProjectStatus
	Client string
	DateRange
	Sort
	Page int
}

func Projects(db *gorm.DB, userID uint, f ProjectFilter) (Page[models.Project], error) {
	q := db.Model(&models.Project{}).Where("projects.user_id = ?", userID)
	if f.Search != "" {
		q = anyLike(q, f.Search, "projects.name", "projects.description")
	}
	if f.Status != "" {
		q = q.Where("projects.status = ?", f.Status)
	}
	if f.Client != "" {
		q = clientMatch(q, "projects.client_id", f.Client)
	}
	q = f.DateRange.apply(q, "projects.created_at")
	return paginate[models.Project](q, projectSort, f.Sort, f.Page, DefaultPerPage, "Client", "Tasks")
}

// FollowUpFilter narrows by the derived status relative to Today.
type FollowUpFilter struct {
	Search   string
	Status   models.FollowUpStatus
	Priority models.Priority
	Kind     models.FollowUpKind
	Client   string
	Today    time.Time
	DateRange
	Sort
	Page int
}

func FollowUps(db *gorm.DB, userID uint, f FollowUpFilter) (Page[models.FollowUp], error) {
	q := db.Model(&models.FollowUp{}).Where("follow_ups.user_id = ?", userID)
	if f.Search != "" {
		q = anyLike(q, f.Search, "follow_ups.title", "follow_ups.description")
	}
	tomorrow := f.Today.AddDate(0, 0, 1)
	switch f.Status {
	case models.FollowUpCompleted:
		q = q.Where("follow_ups.completed = ?", true)
	case models.FollowUpOverdue:
		q = q.Where("follow_ups.completed = ? AND follow_ups.scheduled_date < ?", false, f.Today)
	case models.FollowUpToday:
		q = q.Where("follow_ups.completed = ? AND follow_ups.scheduled_date >= ? AND follow_ups.scheduled_date < ?", false, f.Today, tomorrow)
	case models.FollowUpPending:
		q = q.Where("follow_ups.completed = ? AND follow_ups.scheduled_date >= ?", false, tomorrow)
	}
	if f.Priority != "" {
		q = q.Where("follow_ups.priority = ?", f.Priority)
	}
	if f.Kind != "" {
		q = q.Where("follow_ups.kind = ?", f.Kind)
	}
	if f.Client != "" {
		q = clientMatch(q, "follow_ups.client_id", f.Client)
	}
	q = f.DateRange.apply(q, "follow_ups.created_at")
	return paginate[models.FollowUp](q, followUpSort, f.Sort, f.Page, DefaultPerPage, "Client")
}
