package ministers

import (
	"context"
	"errors"
	"strings"

	"ministry-backend/internal/models"
	"ministry-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrMinisterNotFound = errors.New("Minister not found")

// Service holds DB for minister record operations.
type Service struct {
	DB *gorm.DB
}

// Create inserts a minister with any nested child records supplied.
func (s *Service) Create(ctx context.Context, m *models.Minister) (*models.Minister, error) {
	if strings.TrimSpace(m.FirstName) == "" || strings.TrimSpace(m.Surname) == "" {
		return nil, errors.New("First name and surname are required")
	}
	m.Phone = validation.NormalizePhone(m.Phone)
	m.Whatsapp = validation.NormalizePhone(m.Whatsapp)
	if err := s.DB.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// Get returns one minister with child records preloaded.
func (s *Service) Get(ctx context.Context, ministerID string) (*models.Minister, error) {
	if _, err := uuid.Parse(ministerID); err != nil {
		return nil, errors.New("Invalid minister ID format (must be a valid UUID)")
	}
	var m models.Minister
	err := s.DB.WithContext(ctx).
		Preload("EmergencyContacts").
		Preload("Qualifications").
		Preload("MinistryHistory").
		Preload("Children").
		Where("minister_id = ?", ministerID).First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrMinisterNotFound
		}
		return nil, err
	}
	return &m, nil
}

// ListFilter narrows List results.
type ListFilter struct {
	Association string
	Sector      string
	Fellowship  string
	Status      string
	Search      string // name or phone substring
}

// List returns ministers matching the filter, newest first.
func (s *Service) List(ctx context.Context, f ListFilter) ([]models.Minister, error) {
	q := s.DB.WithContext(ctx).Model(&models.Minister{})
	if f.Association != "" {
		q = q.Where("association = ?", f.Association)
	}
	if f.Sector != "" {
		q = q.Where("sector = ?", f.Sector)
	}
	if f.Fellowship != "" {
		q = q.Where("fellowship = ?", f.Fellowship)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		like := "%" + strings.TrimSpace(f.Search) + "%"
		q = q.Where("first_name LIKE ? OR surname LIKE ? OR other_names LIKE ? OR phone LIKE ?", like, like, like, like)
	}
	var out []models.Minister
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Search returns ministers whose name or phone contains the term. Used by
// intake review for manual match override.
func (s *Service) Search(ctx context.Context, term string) ([]models.Minister, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, errors.New("Search term is required")
	}
	return s.List(ctx, ListFilter{Search: term})
}

// Update applies field updates to a minister row.
func (s *Service) Update(ctx context.Context, ministerID string, fields map[string]interface{}) (*models.Minister, error) {
	m, err := s.Get(ctx, ministerID)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errors.New("Missing update fields")
	}
	delete(fields, "minister_id")
	if p, ok := fields["phone"].(string); ok {
		fields["phone"] = validation.NormalizePhone(p)
	}
	if p, ok := fields["whatsapp"].(string); ok {
		fields["whatsapp"] = validation.NormalizePhone(p)
	}
	if err := s.DB.WithContext(ctx).Model(m).Updates(fields).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, ministerID)
}

// Delete soft-deletes a minister.
func (s *Service) Delete(ctx context.Context, ministerID string) error {
	m, err := s.Get(ctx, ministerID)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Delete(m).Error
}

// AddEmergencyContact appends an emergency contact to a minister.
func (s *Service) AddEmergencyContact(ctx context.Context, ministerID string, contact *models.EmergencyContact) (*models.EmergencyContact, error) {
	m, err := s.Get(ctx, ministerID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(contact.Name) == "" || strings.TrimSpace(contact.Phone) == "" {
		return nil, errors.New("Contact name and phone are required")
	}
	contact.MinisterID = m.MinisterID
	contact.Phone = validation.NormalizePhone(contact.Phone)
	if err := s.DB.WithContext(ctx).Create(contact).Error; err != nil {
		return nil, err
	}
	return contact, nil
}
