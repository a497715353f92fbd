package models

import "time"

type NoteKind string

const (
	NoteKindNote    NoteKind = "note"
	NoteKindCall    NoteKind = "call"
	NoteKindMeeting NoteKind = "meeting"
	NoteKindEmail   NoteKind = "email"
	NoteKindTask    NoteKind = "task"
)

var NoteKinds = []NoteKind{NoteKindNote, NoteKindCall, NoteKindMeeting, NoteKindEmail, NoteKindTask}

type Note struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID   uint    `gorm:"index;not null" json:"user_id"`
	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	Content   string   `gorm:"type:text;not null" json:"content"`
	Kind      NoteKind `gorm:"size:20;not null;default:'note'" json:"kind"`
	Important bool     `gorm:"not null;default:false" json:"important"`
}

func (n *Note) GetUserID() uint { return n.UserID }
