package models

import (
	"math"
	"time"
)

type ProjectStatus string

const (
	ProjectNotStarted ProjectStatus = "not_started"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectPaused     ProjectStatus = "paused"
	ProjectCompleted  ProjectStatus = "completed"
)

var ProjectStatuses = []ProjectStatus{ProjectNotStarted, ProjectInProgress, ProjectPaused, ProjectCompleted}

// IsActive reports whether work is pending on the project.
func (s ProjectStatus) IsActive() bool {
	return s == ProjectNotStarted || s == ProjectInProgress
}

var projectEdges = map[ProjectStatus][]ProjectStatus{
	ProjectNotStarted: {ProjectInProgress},
	ProjectInProgress: {ProjectPaused, ProjectCompleted},
	ProjectPaused:     {ProjectInProgress},
}

// CanTransition reports whether from → to is a lifecycle edge.
func CanTransition(from, to ProjectStatus) bool {
	for _, s := range projectEdges[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Project struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID     uint    `gorm:"index;not null" json:"user_id"`
	ClientID   uint    `gorm:"index;not null" json:"client_id"`
	Client     *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	ProposalID *uint   `gorm:"uniqueIndex" json:"proposal_id,omitempty"`

	Name         string        `gorm:"size:255;not null" json:"name"`
	Description  string        `gorm:"type:text" json:"description,omitempty"`
	Status       ProjectStatus `gorm:"size:20;index;not null;default:'not_started'" json:"status"`
	StartDate    *time.Time    `json:"start_date,omitempty"`
	DueDate      *time.Time    `json:"due_date,omitempty"`
	TotalPrice   float64       `gorm:"not null;default:0" json:"total_price"`
	PaymentTerms string        `gorm:"size:500" json:"payment_terms,omitempty"`

	Tasks []ProjectTask `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"tasks,omitempty"`
}

func (p *Project) GetUserID() uint { return p.UserID }

// Progress is the rounded share of completed tasks, 0 without tasks.
func (p *Project) Progress() int {
	if len(p.Tasks) == 0 {
		return 0
	}
	done := 0
	for _, t := range p.Tasks {
		if t.Completed {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(p.Tasks)) * 100))
}

// SetStatus overwrites the status; entering in_progress stamps StartDate once.
func (p *Project) SetStatus(s ProjectStatus, now time.Time) {
	p.Status = s
	if s == ProjectInProgress && p.StartDate == nil {
		p.StartDate = &now
	}
}

// ProjectTask is an ordered checklist item. Position is stored as sort_order.
type ProjectTask struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProjectID   uint       `gorm:"index;not null" json:"project_id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	Completed   bool       `gorm:"not null;default:false" json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Order       int        `gorm:"column:sort_order;not null" json:"order"`
}

func (t *ProjectTask) SetCompleted(done bool, now time.Time) {
	t.Completed = done
	if done {
		t.CompletedAt = &now
	} else {
		t.CompletedAt = nil
	}
}
