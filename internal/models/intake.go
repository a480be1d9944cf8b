package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// IntakeSubmission statuses.
const (
	SubmissionDraft     = "draft"
	SubmissionSubmitted = "submitted"
	SubmissionApproved  = "approved"
	SubmissionRejected  = "rejected"
)

// IntakeSession is a time-boxed window during which invited ministers may
// submit self-reported updates.
type IntakeSession struct {
	SessionID      uuid.UUID      `gorm:"column:session_id;type:uuid;primaryKey" json:"session_id"`
	Title          string         `gorm:"column:title;not null" json:"title"`
	StartsAt       time.Time      `gorm:"column:starts_at;not null" json:"starts_at"`
	EndsAt         time.Time      `gorm:"column:ends_at;not null" json:"ends_at"`
	ManuallyClosed bool           `gorm:"column:manually_closed;default:false" json:"manually_closed"`
	CreatedBy      string         `gorm:"column:created_by" json:"created_by"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (IntakeSession) TableName() string {
	return "intake_sessions"
}

func (s *IntakeSession) BeforeCreate(tx *gorm.DB) error {
	if s.SessionID == uuid.Nil {
		s.SessionID = uuid.New()
	}
	return nil
}

// IsOpen reports whether the session accepts submissions at the given time.
func (s *IntakeSession) IsOpen(now time.Time) bool {
	if s.ManuallyClosed {
		return false
	}
	return !now.Before(s.StartsAt) && !now.After(s.EndsAt)
}

// IntakeInvite is a single-use-by-identity link scoped to a session,
// optionally pre-filled with a known phone/name/email.
type IntakeInvite struct {
	InviteID    uuid.UUID  `gorm:"column:invite_id;type:uuid;primaryKey" json:"invite_id"`
	SessionID   uuid.UUID  `gorm:"column:session_id;type:uuid;not null;index" json:"session_id"`
	InviteToken string     `gorm:"column:invite_token;not null;uniqueIndex" json:"invite_token"`
	Phone       string     `gorm:"column:phone" json:"phone"`
	Name        string     `gorm:"column:name" json:"name"`
	Email       string     `gorm:"column:email" json:"email"`
	ExpiresAt   *time.Time `gorm:"column:expires_at" json:"expires_at"`
	Revoked     bool       `gorm:"column:revoked;default:false" json:"revoked"`
	CreatedBy   string     `gorm:"column:created_by" json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (IntakeInvite) TableName() string {
	return "intake_invites"
}

func (i *IntakeInvite) BeforeCreate(tx *gorm.DB) error {
	if i.InviteID == uuid.Nil {
		i.InviteID = uuid.New()
	}
	return nil
}

// IntakeSubmission is one respondent's payload tied to one invite and one
// authenticated user. The payload is an open key/value map whose keys match
// Minister json field names. Lifecycle: draft -> submitted -> approved|rejected.
type IntakeSubmission struct {
	SubmissionID    uuid.UUID         `gorm:"column:submission_id;type:uuid;primaryKey" json:"submission_id"`
	SessionID       uuid.UUID         `gorm:"column:session_id;type:uuid;not null;index" json:"session_id"`
	InviteID        uuid.UUID         `gorm:"column:invite_id;type:uuid;not null;index" json:"invite_id"`
	UserID          uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Payload         datatypes.JSONMap `gorm:"column:payload" json:"payload"`
	Status          string            `gorm:"column:status;not null;default:draft;index" json:"status"`
	RejectionReason string            `gorm:"column:rejection_reason" json:"rejection_reason"`
	// MinisterID links the minister row created or updated on approval,
	// making re-approval detectable.
	MinisterID  *uuid.UUID     `gorm:"column:minister_id;type:uuid" json:"minister_id"`
	SubmittedAt *time.Time     `gorm:"column:submitted_at" json:"submitted_at"`
	ReviewedAt  *time.Time     `gorm:"column:reviewed_at" json:"reviewed_at"`
	ReviewedBy  *string        `gorm:"column:reviewed_by" json:"reviewed_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (IntakeSubmission) TableName() string {
	return "intake_submissions"
}

func (s *IntakeSubmission) BeforeCreate(tx *gorm.DB) error {
	if s.SubmissionID == uuid.Nil {
		s.SubmissionID = uuid.New()
	}
	return nil
}
