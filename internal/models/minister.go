package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Minister is the canonical record for an accepted/active minister.
// Field names (json tags) double as the key set accepted in intake
// submission payloads.
type Minister struct {
	MinisterID     uuid.UUID  `gorm:"column:minister_id;type:uuid;primaryKey" json:"minister_id"`
	Title          string     `gorm:"column:title" json:"title"`
	FirstName      string     `gorm:"column:first_name;not null" json:"first_name"`
	Surname        string     `gorm:"column:surname;not null" json:"surname"`
	OtherNames     string     `gorm:"column:other_names" json:"other_names"`
	Gender         string     `gorm:"column:gender" json:"gender"`
	DateOfBirth    *time.Time `gorm:"column:date_of_birth" json:"date_of_birth"`
	HomeTown       string     `gorm:"column:home_town" json:"home_town"`
	Region         string     `gorm:"column:region" json:"region"`
	MaritalStatus  string     `gorm:"column:marital_status" json:"marital_status"`
	SpouseName     string     `gorm:"column:spouse_name" json:"spouse_name"`
	Phone          string     `gorm:"column:phone;index" json:"phone"`
	Whatsapp       string     `gorm:"column:whatsapp" json:"whatsapp"`
	Email          string     `gorm:"column:email" json:"email"`
	Residence      string     `gorm:"column:residence" json:"residence"`
	PostalAddress  string     `gorm:"column:postal_address" json:"postal_address"`
	Church         string     `gorm:"column:church" json:"church"`
	Association    string     `gorm:"column:association" json:"association"`
	Sector         string     `gorm:"column:sector" json:"sector"`
	Fellowship     string     `gorm:"column:fellowship" json:"fellowship"`
	Position       string     `gorm:"column:position" json:"position"`
	DateJoined     *time.Time `gorm:"column:date_joined" json:"date_joined"`
	LicensingYear  *int       `gorm:"column:licensing_year" json:"licensing_year"`
	RecognitionYear *int      `gorm:"column:recognition_year" json:"recognition_year"`
	OrdinationYear *int       `gorm:"column:ordination_year" json:"ordination_year"`
	Status         string     `gorm:"column:status;default:active" json:"status"`

	EmergencyContacts []EmergencyContact `gorm:"foreignKey:MinisterID" json:"emergency_contacts,omitempty"`
	Qualifications    []Qualification    `gorm:"foreignKey:MinisterID" json:"qualifications,omitempty"`
	MinistryHistory   []MinistryHistory  `gorm:"foreignKey:MinisterID" json:"ministry_history,omitempty"`
	Children          []Child            `gorm:"foreignKey:MinisterID" json:"children,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Minister) TableName() string {
	return "ministers"
}

func (m *Minister) BeforeCreate(tx *gorm.DB) error {
	if m.MinisterID == uuid.Nil {
		m.MinisterID = uuid.New()
	}
	return nil
}

// EmergencyContact is a 1:N child of Minister.
type EmergencyContact struct {
	ContactID    uuid.UUID `gorm:"column:contact_id;type:uuid;primaryKey" json:"contact_id"`
	MinisterID   uuid.UUID `gorm:"column:minister_id;type:uuid;not null;index" json:"minister_id"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	Phone        string    `gorm:"column:phone;not null" json:"phone"`
	Relationship string    `gorm:"column:relationship" json:"relationship"`
	CreatedAt    time.Time `json:"created_at"`
}

func (EmergencyContact) TableName() string {
	return "emergency_contacts"
}

func (e *EmergencyContact) BeforeCreate(tx *gorm.DB) error {
	if e.ContactID == uuid.Nil {
		e.ContactID = uuid.New()
	}
	return nil
}

// Qualification is an academic or ministerial qualification of a minister.
type Qualification struct {
	QualificationID uuid.UUID `gorm:"column:qualification_id;type:uuid;primaryKey" json:"qualification_id"`
	MinisterID      uuid.UUID `gorm:"column:minister_id;type:uuid;not null;index" json:"minister_id"`
	Institution     string    `gorm:"column:institution" json:"institution"`
	Certificate     string    `gorm:"column:certificate" json:"certificate"`
	Year            *int      `gorm:"column:year" json:"year"`
	CreatedAt       time.Time `json:"created_at"`
}

func (Qualification) TableName() string {
	return "qualifications"
}

func (q *Qualification) BeforeCreate(tx *gorm.DB) error {
	if q.QualificationID == uuid.Nil {
		q.QualificationID = uuid.New()
	}
	return nil
}

// MinistryHistory is one past station/role of a minister.
type MinistryHistory struct {
	HistoryID  uuid.UUID `gorm:"column:history_id;type:uuid;primaryKey" json:"history_id"`
	MinisterID uuid.UUID `gorm:"column:minister_id;type:uuid;not null;index" json:"minister_id"`
	Church     string    `gorm:"column:church" json:"church"`
	Role       string    `gorm:"column:role" json:"role"`
	StartYear  *int      `gorm:"column:start_year" json:"start_year"`
	EndYear    *int      `gorm:"column:end_year" json:"end_year"`
	CreatedAt  time.Time `json:"created_at"`
}

func (MinistryHistory) TableName() string {
	return "ministry_history"
}

func (h *MinistryHistory) BeforeCreate(tx *gorm.DB) error {
	if h.HistoryID == uuid.Nil {
		h.HistoryID = uuid.New()
	}
	return nil
}

// Child is a minister's child (name and date of birth only).
type Child struct {
	ChildID     uuid.UUID  `gorm:"column:child_id;type:uuid;primaryKey" json:"child_id"`
	MinisterID  uuid.UUID  `gorm:"column:minister_id;type:uuid;not null;index" json:"minister_id"`
	Name        string     `gorm:"column:name;not null" json:"name"`
	DateOfBirth *time.Time `gorm:"column:date_of_birth" json:"date_of_birth"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (Child) TableName() string {
	return "children"
}

func (c *Child) BeforeCreate(tx *gorm.DB) error {
	if c.ChildID == uuid.Nil {
		c.ChildID = uuid.New()
	}
	return nil
}
