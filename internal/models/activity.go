package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

type ActivityAction string

const (
	ActionCreated   ActivityAction = "created"
	ActionDeleted   ActivityAction = "deleted"
	ActionSent      ActivityAction = "sent"
	ActionApproved  ActivityAction = "approved"
	ActionCompleted ActivityAction = "completed"
)

type SubjectType string

const (
	SubjectClient   SubjectType = "client"
	SubjectNote     SubjectType = "note"
	SubjectFollowUp SubjectType = "followup"
	SubjectProposal SubjectType = "proposal"
	SubjectProject  SubjectType = "project"
)

// Metadata is a point-in-time snapshot of display fields, stored as JSON text.
type Metadata map[string]any

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *Metadata) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*m = Metadata{}
		return nil
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return errors.New("metadata: unsupported column type")
	}
	out := Metadata{}
	if len(b) > 0 {
		if err := json.Unmarshal(b, &out); err != nil {
			return err
		}
	}
	*m = out
	return nil
}

// ActivityLog is append-only.
type ActivityLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	UserID      uint           `gorm:"index;not null" json:"user_id"`
	Action      ActivityAction `gorm:"size:30;not null" json:"action"`
	SubjectType SubjectType    `gorm:"size:30;not null" json:"subject_type"`
	SubjectID   uint           `gorm:"not null" json:"subject_id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	Icon        string         `gorm:"size:20" json:"icon,omitempty"`
	Metadata    Metadata       `gorm:"type:text" json:"metadata,omitempty"`
}
