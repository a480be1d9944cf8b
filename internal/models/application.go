package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Application statuses. Transitions are administrator-invoked and unordered:
// any reviewer action may set any target status, including moving out of
// approved/rejected (observed source behavior, kept as-is).
const (
	StatusDraft               = "draft"
	StatusSubmitted           = "submitted"
	StatusLocalScreening      = "local_screening"
	StatusAssociationApproved = "association_approved"
	StatusVPReview            = "vp_review"
	StatusInterviewScheduled  = "interview_scheduled"
	StatusApproved            = "approved"
	StatusRejected            = "rejected"
)

// ValidStatuses is the allowed set for Application.Status.
var ValidStatuses = []string{
	StatusDraft, StatusSubmitted, StatusLocalScreening, StatusAssociationApproved,
	StatusVPReview, StatusInterviewScheduled, StatusApproved, StatusRejected,
}

func IsValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Admission levels (credential tiers).
const (
	LevelLicensing   = "licensing"
	LevelRecognition = "recognition"
	LevelOrdination  = "ordination"
)

var ValidAdmissionLevels = []string{LevelLicensing, LevelRecognition, LevelOrdination}

func IsValidAdmissionLevel(l string) bool {
	for _, v := range ValidAdmissionLevels {
		if v == l {
			return true
		}
	}
	return false
}

// Application is one candidate's admission request. Owned by the applicant
// until submission; mutated thereafter only by reviewers.
type Application struct {
	ApplicationID   uuid.UUID  `gorm:"column:application_id;type:uuid;primaryKey" json:"application_id"`
	ApplicantUserID *uuid.UUID `gorm:"column:applicant_user_id;type:uuid;index" json:"applicant_user_id"`
	FirstName       string     `gorm:"column:first_name;not null" json:"first_name"`
	Surname         string     `gorm:"column:surname;not null" json:"surname"`
	OtherNames      string     `gorm:"column:other_names" json:"other_names"`
	Gender          string     `gorm:"column:gender" json:"gender"`
	DateOfBirth     *time.Time `gorm:"column:date_of_birth" json:"date_of_birth"`
	Phone           string     `gorm:"column:phone;not null;index" json:"phone"`
	Email           string     `gorm:"column:email" json:"email"`
	Church          string     `gorm:"column:church" json:"church"`
	Association     string     `gorm:"column:association;index" json:"association"`
	Sector          string     `gorm:"column:sector" json:"sector"`
	Fellowship      string     `gorm:"column:fellowship" json:"fellowship"`
	AdmissionLevel  string     `gorm:"column:admission_level;not null" json:"admission_level"`
	Status          string     `gorm:"column:status;not null;default:draft;index" json:"status"`

	AdminNotes        string     `gorm:"column:admin_notes" json:"admin_notes"`
	InterviewDate     *time.Time `gorm:"column:interview_date" json:"interview_date"`
	InterviewLocation string     `gorm:"column:interview_location" json:"interview_location"`
	RejectionReason   string     `gorm:"column:rejection_reason" json:"rejection_reason"`

	Documents []ApplicationDocument `gorm:"foreignKey:ApplicationID" json:"documents,omitempty"`

	SubmittedAt *time.Time     `gorm:"column:submitted_at" json:"submitted_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Application) TableName() string {
	return "applications"
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ApplicationID == uuid.Nil {
		a.ApplicationID = uuid.New()
	}
	return nil
}

// ApplicationDocument is a named file reference owned by one Application.
// Created on upload, never mutated, deleted only with the parent.
type ApplicationDocument struct {
	DocumentID    uuid.UUID `gorm:"column:document_id;type:uuid;primaryKey" json:"document_id"`
	ApplicationID uuid.UUID `gorm:"column:application_id;type:uuid;not null;index" json:"application_id"`
	DocumentType  string    `gorm:"column:document_type;not null" json:"document_type"`
	DocumentURL   string    `gorm:"column:document_url;not null" json:"document_url"`
	CreatedAt     time.Time `json:"created_at"`
}

func (ApplicationDocument) TableName() string {
	return "application_documents"
}

func (d *ApplicationDocument) BeforeCreate(tx *gorm.DB) error {
	if d.DocumentID == uuid.Nil {
		d.DocumentID = uuid.New()
	}
	return nil
}
