package applications

import (
	"context"
	"errors"
	"strings"
	"time"

	"ministry-backend/internal/models"
	"ministry-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrApplicationNotFound    = errors.New("Application not found")
	ErrNoApplicationsSelected = errors.New("No applications selected")
	ErrInvalidStatus          = errors.New("Invalid target status")
	ErrInterviewFieldsMissing = errors.New("Interview date and location are required")
	ErrPhoneNotApproved       = errors.New("Phone number is not cleared to apply")
	ErrAllowlistEntryUsed     = errors.New("Phone number has already been used to apply")
)

// Service holds DB for admission application operations.
type Service struct {
	DB *gorm.DB
}

// Submit creates a submitted application for an allowlisted phone and flips
// the allowlist entry to used, in one transaction.
func (s *Service) Submit(ctx context.Context, app *models.Application) (*models.Application, error) {
	if strings.TrimSpace(app.FirstName) == "" || strings.TrimSpace(app.Surname) == "" {
		return nil, errors.New("First name and surname are required")
	}
	app.Phone = validation.NormalizePhone(app.Phone)
	if !validation.IsValidPhone(app.Phone) {
		return nil, errors.New("A valid phone number is required")
	}
	if !models.IsValidAdmissionLevel(app.AdmissionLevel) {
		return nil, errors.New("Invalid admission level")
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry models.ApprovedApplicant
		if err := tx.Where("phone_number = ?", app.Phone).First(&entry).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrPhoneNotApproved
			}
			return err
		}
		if entry.Used {
			return ErrAllowlistEntryUsed
		}

		now := time.Now()
		app.Status = models.StatusSubmitted
		app.SubmittedAt = &now
		if err := tx.Create(app).Error; err != nil {
			return err
		}

		entry.Used = true
		return tx.Save(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

// Get returns one application with documents preloaded.
func (s *Service) Get(ctx context.Context, applicationID string) (*models.Application, error) {
	if _, err := uuid.Parse(applicationID); err != nil {
		return nil, errors.New("Invalid application ID format (must be a valid UUID)")
	}
	var app models.Application
	err := s.DB.WithContext(ctx).Preload("Documents").
		Where("application_id = ?", applicationID).First(&app).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

// ListFilter narrows List results.
type ListFilter struct {
	Status         string
	AdmissionLevel string
	Association    string
}

// List returns applications matching the filter, newest first.
func (s *Service) List(ctx context.Context, f ListFilter) ([]models.Application, error) {
	q := s.DB.WithContext(ctx).Model(&models.Application{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.AdmissionLevel != "" {
		q = q.Where("admission_level = ?", f.AdmissionLevel)
	}
	if f.Association != "" {
		q = q.Where("association = ?", f.Association)
	}
	var out []models.Application
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// TransitionInput for a batch status change.
type TransitionInput struct {
	ApplicationIDs []string `json:"application_ids"`
	TargetStatus   string   `json:"target_status"`
	Notes          string   `json:"notes"`
}

// Transition applies one target status to the selected applications as a
// single filtered update and returns the number of rows updated. No ordering
// is enforced between statuses, and approved/rejected applications can be
// moved again by a later action (observed source behavior).
func (s *Service) Transition(ctx context.Context, in TransitionInput) (int64, error) {
	if len(in.ApplicationIDs) == 0 {
		return 0, ErrNoApplicationsSelected
	}
	if !models.IsValidStatus(in.TargetStatus) {
		return 0, ErrInvalidStatus
	}
	upd := map[string]interface{}{"status": in.TargetStatus}
	if in.Notes != "" {
		upd["admin_notes"] = in.Notes
	}
	res := s.DB.WithContext(ctx).Model(&models.Application{}).
		Where("application_id IN ?", in.ApplicationIDs).
		Updates(upd)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// ScheduleInterviewInput for the distinguished interview transition.
type ScheduleInterviewInput struct {
	ApplicationIDs    []string   `json:"application_ids"`
	InterviewDate     *time.Time `json:"interview_date"`
	InterviewLocation string     `json:"interview_location"`
	Notes             string     `json:"notes"`
}

// ScheduleInterview sets status interview_scheduled along with date and
// location. Both fields are validated before any write.
func (s *Service) ScheduleInterview(ctx context.Context, in ScheduleInterviewInput) (int64, error) {
	if len(in.ApplicationIDs) == 0 {
		return 0, ErrNoApplicationsSelected
	}
	if in.InterviewDate == nil || strings.TrimSpace(in.InterviewLocation) == "" {
		return 0, ErrInterviewFieldsMissing
	}
	upd := map[string]interface{}{
		"status":             models.StatusInterviewScheduled,
		"interview_date":     in.InterviewDate,
		"interview_location": in.InterviewLocation,
	}
	if in.Notes != "" {
		upd["admin_notes"] = in.Notes
	}
	res := s.DB.WithContext(ctx).Model(&models.Application{}).
		Where("application_id IN ?", in.ApplicationIDs).
		Updates(upd)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// RejectInput for batch rejection with an optional reason.
type RejectInput struct {
	ApplicationIDs []string `json:"application_ids"`
	Reason         string   `json:"reason"`
}

// Reject sets status rejected and stores the optional reason.
func (s *Service) Reject(ctx context.Context, in RejectInput) (int64, error) {
	if len(in.ApplicationIDs) == 0 {
		return 0, ErrNoApplicationsSelected
	}
	upd := map[string]interface{}{"status": models.StatusRejected}
	if in.Reason != "" {
		upd["rejection_reason"] = in.Reason
	}
	res := s.DB.WithContext(ctx).Model(&models.Application{}).
		Where("application_id IN ?", in.ApplicationIDs).
		Updates(upd)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// AttachDocument records an uploaded file reference against an application.
func (s *Service) AttachDocument(ctx context.Context, applicationID string, doc *models.ApplicationDocument) (*models.ApplicationDocument, error) {
	app, err := s.Get(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(doc.DocumentType) == "" || strings.TrimSpace(doc.DocumentURL) == "" {
		return nil, errors.New("document_type and document_url are required")
	}
	doc.ApplicationID = app.ApplicationID
	if err := s.DB.WithContext(ctx).Create(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}
