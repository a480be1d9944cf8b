package allowlist

import (
	"context"
	"errors"

	"ministry-backend/internal/models"
	"ministry-backend/internal/pkg/validation"

	"gorm.io/gorm"
)

var (
	ErrPhoneRequired = errors.New("A valid phone number is required")
	ErrPhoneExists   = errors.New("Phone number is already on the allowlist")
	ErrEntryNotFound = errors.New("Allowlist entry not found")
	ErrEntryUsed     = errors.New("Entry has been used and cannot be removed")
)

// Service manages the phone allowlist that gates application submission.
type Service struct {
	DB *gorm.DB
}

// Add puts a phone number on the allowlist. Numbers are normalized before
// storage so lookup at submission time is exact.
func (s *Service) Add(ctx context.Context, phone, addedBy string) (*models.ApprovedApplicant, error) {
	normalized := validation.NormalizePhone(phone)
	if !validation.IsValidPhone(normalized) {
		return nil, ErrPhoneRequired
	}

	var existing models.ApprovedApplicant
	err := s.DB.WithContext(ctx).Where("phone_number = ?", normalized).First(&existing).Error
	if err == nil {
		return nil, ErrPhoneExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	entry := models.ApprovedApplicant{
		PhoneNumber: normalized,
		AddedBy:     addedBy,
	}
	if err := s.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// AddBatch adds many numbers at once, skipping invalid and duplicate ones.
// Returns the entries created and the inputs that were skipped.
func (s *Service) AddBatch(ctx context.Context, phones []string, addedBy string) ([]models.ApprovedApplicant, []string, error) {
	var created []models.ApprovedApplicant
	var skipped []string
	for _, p := range phones {
		entry, err := s.Add(ctx, p, addedBy)
		if err != nil {
			if errors.Is(err, ErrPhoneRequired) || errors.Is(err, ErrPhoneExists) {
				skipped = append(skipped, p)
				continue
			}
			return nil, nil, err
		}
		created = append(created, *entry)
	}
	return created, skipped, nil
}

// List returns allowlist entries, optionally filtered by used state.
func (s *Service) List(ctx context.Context, used *bool) ([]models.ApprovedApplicant, error) {
	q := s.DB.WithContext(ctx).Order("created_at DESC")
	if used != nil {
		q = q.Where("used = ?", *used)
	}
	var entries []models.ApprovedApplicant
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Remove deletes an unused entry. Used entries are kept as an audit trail
// of which numbers produced applications.
func (s *Service) Remove(ctx context.Context, entryID string) error {
	var entry models.ApprovedApplicant
	err := s.DB.WithContext(ctx).Where("entry_id = ?", entryID).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEntryNotFound
		}
		return err
	}
	if entry.Used {
		return ErrEntryUsed
	}
	return s.DB.WithContext(ctx).Delete(&entry).Error
}
