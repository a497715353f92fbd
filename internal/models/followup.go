package models

import "time"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Rank orders priorities; high sorts first when ranked descending.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	default:
		return 1
	}
}

type FollowUpKind string

const (
	FollowUpCall     FollowUpKind = "call"
	FollowUpEmail    FollowUpKind = "email"
	FollowUpMeeting  FollowUpKind = "meeting"
	FollowUpProposal FollowUpKind = "proposal"
	FollowUpOther    FollowUpKind = "other"
)

var FollowUpKinds = []FollowUpKind{FollowUpCall, FollowUpEmail, FollowUpMeeting, FollowUpProposal, FollowUpOther}

// FollowUpStatus is derived, never stored.
type FollowUpStatus string

const (
	FollowUpCompleted FollowUpStatus = "completed"
	FollowUpOverdue   FollowUpStatus = "overdue"
	FollowUpToday     FollowUpStatus = "today"
	FollowUpPending   FollowUpStatus = "pending"
)

var FollowUpStatuses = []FollowUpStatus{FollowUpCompleted, FollowUpPending, FollowUpOverdue, FollowUpToday}

// FollowUp is a scheduled reminder tied to a client.
type FollowUp struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID   uint    `gorm:"index;not null" json:"user_id"`
	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	Title         string       `gorm:"size:255;not null" json:"title"`
	Description   string       `gorm:"type:text" json:"description,omitempty"`
	Priority      Priority     `gorm:"size:10;not null;default:'medium'" json:"priority"`
	Kind          FollowUpKind `gorm:"size:20;not null;default:'call'" json:"kind"`
	ScheduledDate time.Time    `gorm:"index;not null" json:"scheduled_date"`
	Completed     bool         `gorm:"index;not null;default:false" json:"completed"`
	CompletedAt   *time.Time   `json:"completed_at,omitempty"`
}

func (f *FollowUp) GetUserID() uint { return f.UserID }

// Status derives the display status. today is the start of the current day.
func (f *FollowUp) Status(today time.Time) FollowUpStatus {
	switch {
	case f.Completed:
		return FollowUpCompleted
	case f.ScheduledDate.Before(today):
		return FollowUpOverdue
	case f.ScheduledDate.Before(today.AddDate(0, 0, 1)):
		return FollowUpToday
	default:
		return FollowUpPending
	}
}

// SetCompleted flips the flag, stamping or clearing CompletedAt.
func (f *FollowUp) SetCompleted(done bool, now time.Time) {
	f.Completed = done
	if done {
		f.CompletedAt = &now
	} else {
		f.CompletedAt = nil
	}
}
