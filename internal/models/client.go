package models

import (
	"strings"
	"time"
)

type ClientStatus string

const (
	ClientActive   ClientStatus = "active"
	ClientInactive ClientStatus = "inactive"
)

var ClientStatuses = []ClientStatus{ClientActive, ClientInactive}

// Client is a customer record. Email is unique across all clients.
// Implements the Ownable interface for ownership-based authorization.
type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID uint `gorm:"index;not null" json:"user_id"`

	Name    string       `gorm:"size:255;not null" json:"name"`
	Surname string       `gorm:"size:255" json:"surname,omitempty"`
	Company string       `gorm:"size:255" json:"company,omitempty"`
	Email   string       `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Phone   string       `gorm:"size:50" json:"phone,omitempty"`
	Address string       `gorm:"size:500" json:"address,omitempty"`
	City    string       `gorm:"size:100" json:"city,omitempty"`
	Status  ClientStatus `gorm:"size:20;not null;default:'active'" json:"status"`
	Notes   string       `gorm:"type:text" json:"notes,omitempty"`

	ClientNotes []Note     `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"client_notes,omitempty"`
	FollowUps   []FollowUp `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"follow_ups,omitempty"`
	Proposals   []Proposal `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"proposals,omitempty"`
	Projects    []Project  `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"projects,omitempty"`
}

func (c *Client) GetUserID() uint { return c.UserID }

// DisplayName is "Name Surname", or the company name when both are empty.
func (c *Client) DisplayName() string {
	full := strings.TrimSpace(c.Name + " " + c.Surname)
	if full == "" {
		return c.Company
	}
	return full
}
