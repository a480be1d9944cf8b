package intake

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"ministry-backend/internal/models"
	"ministry-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrSessionNotFound    = errors.New("Intake session not found")
	ErrInviteInvalid      = errors.New("Invalid invite token")
	ErrInviteRevoked      = errors.New("Invite has been revoked")
	ErrInviteExpired      = errors.New("Invite has expired")
	ErrSessionClosed      = errors.New("Intake session is not open")
	ErrSubmissionNotFound = errors.New("Submission not found")
	ErrNotOwner           = errors.New("Submission belongs to another user")
	ErrNotDraft           = errors.New("Submission is no longer a draft")
	ErrNotSubmitted       = errors.New("Submission is not awaiting review")
	ErrAlreadyApproved    = errors.New("Submission has already been approved")
)

// Service holds DB for intake sessions, invites and submissions.
type Service struct {
	DB *gorm.DB
}

// CreateSessionInput for opening a new intake window.
type CreateSessionInput struct {
	Title     string    `json:"title"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	CreatedBy string    `json:"-"`
}

// CreateSession opens a time-boxed intake window.
func (s *Service) CreateSession(ctx context.Context, in CreateSessionInput) (*models.IntakeSession, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, errors.New("Title is required")
	}
	if in.StartsAt.IsZero() || in.EndsAt.IsZero() || !in.EndsAt.After(in.StartsAt) {
		return nil, errors.New("Session window must end after it starts")
	}
	session := &models.IntakeSession{
		Title:     strings.TrimSpace(in.Title),
		StartsAt:  in.StartsAt,
		EndsAt:    in.EndsAt,
		CreatedBy: in.CreatedBy,
	}
	if err := s.DB.WithContext(ctx).Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

// ListSessions returns all intake sessions, newest first.
func (s *Service) ListSessions(ctx context.Context) ([]models.IntakeSession, error) {
	var out []models.IntakeSession
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// CloseSession marks a session manually closed ahead of its end time.
func (s *Service) CloseSession(ctx context.Context, sessionID string) (*models.IntakeSession, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.ManuallyClosed = true
	if err := s.DB.WithContext(ctx).Save(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Service) getSession(ctx context.Context, sessionID string) (*models.IntakeSession, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return nil, ErrSessionNotFound
	}
	var session models.IntakeSession
	if err := s.DB.WithContext(ctx).Where("session_id = ?", sessionID).First(&session).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// CreateInviteInput for inviting a minister into a session.
type CreateInviteInput struct {
	SessionID string     `json:"session_id"`
	Phone     string     `json:"phone"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	ExpiresAt *time.Time `json:"expires_at"`
	CreatedBy string     `json:"-"`
}

// CreateInvite issues an invite token scoped to a session, optionally
// pre-filled with a known phone/name/email.
func (s *Service) CreateInvite(ctx context.Context, in CreateInviteInput) (*models.IntakeInvite, error) {
	session, err := s.getSession(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	inv := &models.IntakeInvite{
		SessionID:   session.SessionID,
		InviteToken: randomHex(32),
		Phone:       validation.NormalizePhone(in.Phone),
		Name:        strings.TrimSpace(in.Name),
		Email:       strings.TrimSpace(strings.ToLower(in.Email)),
		ExpiresAt:   in.ExpiresAt,
		CreatedBy:   in.CreatedBy,
	}
	if err := s.DB.WithContext(ctx).Create(inv).Error; err != nil {
		return nil, err
	}
	return inv, nil
}

// ListInvites returns all invites for one session.
func (s *Service) ListInvites(ctx context.Context, sessionID string) ([]models.IntakeInvite, error) {
	if _, err := s.getSession(ctx, sessionID); err != nil {
		return nil, err
	}
	var out []models.IntakeInvite
	if err := s.DB.WithContext(ctx).Where("session_id = ?", sessionID).
		Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// RevokeInvite flags an invite so its token stops validating.
func (s *Service) RevokeInvite(ctx context.Context, inviteID string) (*models.IntakeInvite, error) {
	if _, err := uuid.Parse(inviteID); err != nil {
		return nil, ErrInviteInvalid
	}
	var inv models.IntakeInvite
	if err := s.DB.WithContext(ctx).Where("invite_id = ?", inviteID).First(&inv).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrInviteInvalid
		}
		return nil, err
	}
	inv.Revoked = true
	if err := s.DB.WithContext(ctx).Save(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// CheckTokenResult is returned to the public check-token route so the intake
// form can prefill known identity fields.
type CheckTokenResult struct {
	Valid     bool       `json:"valid"`
	SessionID string     `json:"session_id"`
	Title     string     `json:"title"`
	EndsAt    time.Time  `json:"ends_at"`
	Phone     string     `json:"phone"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// CheckToken validates an invite token against revocation, expiry and the
// session window.
func (s *Service) CheckToken(ctx context.Context, token string, now time.Time) (*CheckTokenResult, error) {
	inv, session, err := s.validInvite(ctx, token, now)
	if err != nil {
		return nil, err
	}
	return &CheckTokenResult{
		Valid:     true,
		SessionID: session.SessionID.String(),
		Title:     session.Title,
		EndsAt:    session.EndsAt,
		Phone:     inv.Phone,
		Name:      inv.Name,
		Email:     inv.Email,
		ExpiresAt: inv.ExpiresAt,
	}, nil
}

func (s *Service) validInvite(ctx context.Context, token string, now time.Time) (*models.IntakeInvite, *models.IntakeSession, error) {
	if token == "" {
		return nil, nil, ErrInviteInvalid
	}
	var inv models.IntakeInvite
	if err := s.DB.WithContext(ctx).Where("invite_token = ?", token).First(&inv).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, ErrInviteInvalid
		}
		return nil, nil, err
	}
	if inv.Revoked {
		return nil, nil, ErrInviteRevoked
	}
	if inv.ExpiresAt != nil && inv.ExpiresAt.Before(now) {
		return nil, nil, ErrInviteExpired
	}
	session, err := s.getSession(ctx, inv.SessionID.String())
	if err != nil {
		return nil, nil, err
	}
	if !session.IsOpen(now) {
		return nil, nil, ErrSessionClosed
	}
	return &inv, session, nil
}

// StartSubmission finds or creates the caller's draft for an invite. The
// draft payload starts from the invite prefill.
func (s *Service) StartSubmission(ctx context.Context, token, userID string, now time.Time) (*models.IntakeSubmission, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrNotOwner
	}
	inv, session, err := s.validInvite(ctx, token, now)
	if err != nil {
		return nil, err
	}

	var existing models.IntakeSubmission
	err = s.DB.WithContext(ctx).
		Where("invite_id = ? AND user_id = ?", inv.InviteID, uid).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	payload := datatypes.JSONMap{}
	if inv.Phone != "" {
		payload["phone"] = inv.Phone
	}
	if inv.Name != "" {
		payload["first_name"] = inv.Name
	}
	if inv.Email != "" {
		payload["email"] = inv.Email
	}
	sub := &models.IntakeSubmission{
		SessionID: session.SessionID,
		InviteID:  inv.InviteID,
		UserID:    uid,
		Payload:   payload,
		Status:    models.SubmissionDraft,
	}
	if err := s.DB.WithContext(ctx).Create(sub).Error; err != nil {
		return nil, err
	}
	return sub, nil
}

// SaveDraft replaces the draft payload.
func (s *Service) SaveDraft(ctx context.Context, submissionID, userID string, payload map[string]interface{}) (*models.IntakeSubmission, error) {
	sub, err := s.ownedSubmission(ctx, submissionID, userID)
	if err != nil {
		return nil, err
	}
	if sub.Status != models.SubmissionDraft {
		return nil, ErrNotDraft
	}
	sub.Payload = datatypes.JSONMap(payload)
	if err := s.DB.WithContext(ctx).Save(sub).Error; err != nil {
		return nil, err
	}
	return sub, nil
}

// SubmitSubmission moves a draft to submitted, provided the session is still open.
func (s *Service) SubmitSubmission(ctx context.Context, submissionID, userID string, now time.Time) (*models.IntakeSubmission, error) {
	sub, err := s.ownedSubmission(ctx, submissionID, userID)
	if err != nil {
		return nil, err
	}
	if sub.Status != models.SubmissionDraft {
		return nil, ErrNotDraft
	}
	session, err := s.getSession(ctx, sub.SessionID.String())
	if err != nil {
		return nil, err
	}
	if !session.IsOpen(now) {
		return nil, ErrSessionClosed
	}
	sub.Status = models.SubmissionSubmitted
	sub.SubmittedAt = &now
	if err := s.DB.WithContext(ctx).Save(sub).Error; err != nil {
		return nil, err
	}
	return sub, nil
}

// ListSubmissions returns a session's submissions, optionally by status.
func (s *Service) ListSubmissions(ctx context.Context, sessionID, status string) ([]models.IntakeSubmission, error) {
	if _, err := s.getSession(ctx, sessionID); err != nil {
		return nil, err
	}
	q := s.DB.WithContext(ctx).Where("session_id = ?", sessionID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []models.IntakeSubmission
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetSubmission returns one submission by ID.
func (s *Service) GetSubmission(ctx context.Context, submissionID string) (*models.IntakeSubmission, error) {
	if _, err := uuid.Parse(submissionID); err != nil {
		return nil, ErrSubmissionNotFound
	}
	var sub models.IntakeSubmission
	if err := s.DB.WithContext(ctx).Where("submission_id = ?", submissionID).First(&sub).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (s *Service) ownedSubmission(ctx context.Context, submissionID, userID string) (*models.IntakeSubmission, error) {
	sub, err := s.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if sub.UserID.String() != userID {
		return nil, ErrNotOwner
	}
	return sub, nil
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failure means the process is in a bad state anyway
		panic(err)
	}
	return hex.EncodeToString(b)
}
