package models

import "time"

const DefaultLeadSource = "landing_page"

// Lead is a public intake record, unrelated to Client.
type Lead struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	Email             string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Source            string     `gorm:"size:100;not null;default:'landing_page'" json:"source"`
	VerificationToken string     `gorm:"size:64;uniqueIndex" json:"-"`
	VerifiedAt        *time.Time `json:"verified_at,omitempty"`
}
