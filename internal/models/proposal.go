package models

import (
	"strings"
	"time"

	"github.com/diewo77/go-crm/internal/clock"
)

type ProposalStatus string

const (
	ProposalDraft       ProposalStatus = "draft"
	ProposalSent        ProposalStatus = "sent"
	ProposalApproved    ProposalStatus = "approved"
	ProposalRejected    ProposalStatus = "rejected"
	ProposalNegotiation ProposalStatus = "negotiation"
)

var ProposalStatuses = []ProposalStatus{ProposalDraft, ProposalSent, ProposalApproved, ProposalRejected, ProposalNegotiation}

// IsOpen reports whether the proposal still awaits a client decision.
func (s ProposalStatus) IsOpen() bool {
	return s == ProposalSent || s == ProposalNegotiation
}

// Proposal is a priced offer to a client. At most one Project links back to it.
type Proposal struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID   uint    `gorm:"index;not null" json:"user_id"`
	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	Title              string         `gorm:"size:255;not null" json:"title"`
	ProjectDescription string         `gorm:"type:text" json:"project_description,omitempty"`
	TotalPrice         float64        `gorm:"not null;default:0" json:"total_price"`
	PaymentTerms       string         `gorm:"size:500" json:"payment_terms,omitempty"`
	DeliveryTime       string         `gorm:"size:255" json:"delivery_time,omitempty"`
	Included           string         `gorm:"type:text" json:"included,omitempty"`
	Excluded           string         `gorm:"type:text" json:"excluded,omitempty"`
	Status             ProposalStatus `gorm:"size:20;index;not null;default:'draft'" json:"status"`
	SentAt             *time.Time     `json:"sent_at,omitempty"`
	ResponseDeadline   *time.Time     `gorm:"index" json:"response_deadline,omitempty"`
	LastFollowupAt     *time.Time     `json:"last_followup_at,omitempty"`
	NextReminder       *time.Time     `json:"next_reminder,omitempty"`
	InternalNotes      string         `gorm:"type:text" json:"internal_notes,omitempty"`

	Project *Project `gorm:"foreignKey:ProposalID;constraint:OnDelete:SET NULL" json:"project,omitempty"`
}

func (p *Proposal) GetUserID() uint { return p.UserID }

// DaysRemaining counts calendar days from today to the deadline. It is nil
// unless the proposal is sent and has a deadline.
func (p *Proposal) DaysRemaining(today time.Time, loc *time.Location) *int {
	if p.Status != ProposalSent || p.ResponseDeadline == nil {
		return nil
	}
	d := clock.DaysBetween(today, *p.ResponseDeadline, loc)
	return &d
}

// IsOverdue is true for a sent proposal whose deadline is before today.
func (p *Proposal) IsOverdue(today time.Time) bool {
	return p.Status == ProposalSent && p.ResponseDeadline != nil && p.ResponseDeadline.Before(today)
}

// AppendInternalNote adds a "[YYYY-MM-DD HH:mm] note" line, keeping prior text.
func (p *Proposal) AppendInternalNote(at time.Time, note string) {
	note = strings.TrimSpace(note)
	if note == "" {
		return
	}
	line := "[" + at.Format("2006-01-02 15:04") + "] " + note
	if strings.TrimSpace(p.InternalNotes) == "" {
		p.InternalNotes = line
		return
	}
	p.InternalNotes = strings.TrimRight(p.InternalNotes, "\n") + "\n" + line
}

// Duplicate copies the offer as a fresh draft owned by userID.
func (p *Proposal) Duplicate(userID uint) *Proposal {
	return &Proposal{
		UserID:             userID,
		ClientID:           p.ClientID,
		Title:              p.Title,
		ProjectDescription: p.ProjectDescription,
		TotalPrice:         p.TotalPrice,
		PaymentTerms:       p.PaymentTerms,
		DeliveryTime:       p.DeliveryTime,
		Included:           p.Included,
		Excluded:           p.Excluded,
		Status:             ProposalDraft,
		ResponseDeadline:   p.ResponseDeadline,
		NextReminder:       p.NextReminder,
		InternalNotes:      p.InternalNotes,
	}
}
