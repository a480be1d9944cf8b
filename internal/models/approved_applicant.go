package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApprovedApplicant is an allowlist entry gating who may start a new
// admission Application. Set by finance staff; flipped to used=true when
// the application is submitted.
type ApprovedApplicant struct {
	EntryID     uuid.UUID `gorm:"column:entry_id;type:uuid;primaryKey" json:"entry_id"`
	PhoneNumber string    `gorm:"column:phone_number;not null;uniqueIndex" json:"phone_number"`
	Used        bool      `gorm:"column:used;default:false" json:"used"`
	AddedBy     string    `gorm:"column:added_by" json:"added_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (ApprovedApplicant) TableName() string {
	return "approved_applicants"
}

func (a *ApprovedApplicant) BeforeCreate(tx *gorm.DB) error {
	if a.EntryID == uuid.Nil {
		a.EntryID = uuid.New()
	}
	return nil
}
