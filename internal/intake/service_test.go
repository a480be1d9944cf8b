package intake

import (
	"context"
	"encoding/hex"
	"testing"
	"time"

	"ministry-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupIntakeTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.IntakeSession{}, &models.IntakeInvite{}, &models.IntakeSubmission{},
	))
	return &Service{DB: db}, db
}

func openSession(t *testing.T, svc *Service) *models.IntakeSession {
	now := time.Now()
	session, err := svc.CreateSession(context.Background(), CreateSessionInput{
		Title:    "Annual Update",
		StartsAt: now.Add(-time.Hour),
		EndsAt:   now.Add(48 * time.Hour),
	})
	require.NoError(t, err)
	return session
}

func TestCreateSession_WindowValidation(t *testing.T) {
	svc, _ := setupIntakeTest(t)
	now := time.Now()

	_, err := svc.CreateSession(context.Background(), CreateSessionInput{
		Title:    "Backwards",
		StartsAt: now.Add(time.Hour),
		EndsAt:   now,
	})
	assert.Error(t, err)

	_, err = svc.CreateSession(context.Background(), CreateSessionInput{
		StartsAt: now,
		EndsAt:   now.Add(time.Hour),
	})
	assert.Error(t, err)
}

func TestCheckToken_Valid(t *testing.T) {
	svc, _ := setupIntakeTest(t)
	session := openSession(t, svc)
	inv, err := svc.CreateInvite(context.Background(), CreateInviteInput{
		SessionID: session.SessionID.String(),
		Phone:     "+233 555 000 100",
		Name:      "Ama",
	})
	require.NoError(t, err)

	result, err := svc.CheckToken(context.Background(), inv.InviteToken, time.Now())
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, "+233555000100", result.Phone)
	assert.Equal(t, "Ama", result.Name)
	assert.Equal(t, session.SessionID.String(), result.SessionID)
}

func TestCreateInvite_TokenIsRandomHex(t *testing.T) {
	svc, _ := setupIntakeTest(t)
	session := openSession(t, svc)

	first, err := svc.CreateInvite(context.Background(), CreateInviteInput{SessionID: session.SessionID.String()})
	require.NoError(t, err)
	second, err := svc.CreateInvite(context.Background(), CreateInviteInput{SessionID: session.SessionID.String()})
	require.NoError(t, err)

	assert.Len(t, first.InviteToken, 64)
	_, err = hex.DecodeString(first.InviteToken)
	assert.NoError(t, err)
	assert.NotEqual(t, first.InviteToken, second.InviteToken)
}

func TestCheckToken_Revoked(t *testing.T) {
	svc, _ := setupIntakeTest(t)
	session := openSession(t, svc)
	inv, err := svc.CreateInvite(context.Background(), CreateInviteInput{SessionID: session.SessionID.String()})
	require.NoError(t, err)
	_, err = svc.RevokeInvite(context.Background(), inv.InviteID.String())
	require.NoError(t, err)

	_, err = svc.CheckToken(context.Background(), inv.InviteToken, time.Now())
	assert.ErrorIs(t, err, ErrInviteRevoked)
}

func TestCheckToken_Expired(t *testing.T) {
	svc, _ := setupIntakeTest(t)
	session := openSession(t, svc)
	past := time.Now().Add(-time.Hour)
	inv, err := svc.CreateInvite(context.Background(), CreateInviteInput{
		SessionID: session.SessionID.String(),
		ExpiresAt: &past,
	})
	require.NoError(t, err)

	_, err = svc.CheckToken(context.Background(), inv.InviteToken, time.Now())
	assert.ErrorIs(t, err, ErrInviteExpired)
}

func TestCheckToken_ClosedSession(t *testing.T) {
	svc, _ := setupIntakeTest(t)
	session := openSession(t, svc)
	inv, err := svc.CreateInvite(context.Background(), CreateInviteInput{SessionID: session.SessionID.String()})
	require.NoError(t, err)
	_, err = svc.CloseSession(context.Background(), session.SessionID.String())
	require.NoError(t, err)

	_, err = svc.CheckToken(context.Background(), inv.InviteToken, time.Now())
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestCheckToken_UnknownToken(t *testing.T) {
	svc, _ := setupIntakeTest(t)
	_, err := svc.CheckToken(context.Background(), "no-such-token", time.Now())
	assert.ErrorIs(t, err, ErrInviteInvalid)
}

func TestStartSubmission_PrefillsFromInvite(t *testing.T) {
	svc, _ := setupIntakeTest(t)
	session := openSession(t, svc)
	inv, err := svc.CreateInvite(context.Background(), CreateInviteInput{
		SessionID: session.SessionID.String(),
		Phone:     "+233555000100",
		Name:      "Ama",
		Email:     "Ama@Example.org",
	})
	require.NoError(t, err)

	userID := uuid.New().String()
	sub, err := svc.StartSubmission(context.Background(), inv.InviteToken, userID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionDraft, sub.Status)
	assert.Equal(t, "+233555000100", sub.Payload["phone"])
	assert.Equal(t, "Ama", sub.Payload["first_name"])
	assert.Equal(t, "ama@example.org", sub.Payload["email"])

	// Starting again returns the same draft, not a second one
	again, err := svc.StartSubmission(context.Background(), inv.InviteToken, userID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, sub.SubmissionID, again.SubmissionID)
}

func TestSaveDraft_OwnershipEnforced(t *testing.T) {
	svc, _ := setupIntakeTest(t)
	session := openSession(t, svc)
	inv, err := svc.CreateInvite(context.Background(), CreateInviteInput{SessionID: session.SessionID.String()})
	require.NoError(t, err)

	owner := uuid.New().String()
	sub, err := svc.StartSubmission(context.Background(), inv.InviteToken, owner, time.Now())
	require.NoError(t, err)

	_, err = svc.SaveDraft(context.Background(), sub.SubmissionID.String(), uuid.New().String(), map[string]interface{}{"first_name": "X"})
	assert.ErrorIs(t, err, ErrNotOwner)

	saved, err := svc.SaveDraft(context.Background(), sub.SubmissionID.String(), owner, map[string]interface{}{"first_name": "Ama"})
	require.NoError(t, err)
	assert.Equal(t, "Ama", saved.Payload["first_name"])
}

func TestSubmitSubmission_ClosedSessionRefused(t *testing.T) {
	svc, _ := setupIntakeTest(t)
	session := openSession(t, svc)
	inv, err := svc.CreateInvite(context.Background(), CreateInviteInput{SessionID: session.SessionID.String()})
	require.NoError(t, err)

	owner := uuid.New().String()
	sub, err := svc.StartSubmission(context.Background(), inv.InviteToken, owner, time.Now())
	require.NoError(t, err)

	_, err = svc.CloseSession(context.Background(), session.SessionID.String())
	require.NoError(t, err)

	_, err = svc.SubmitSubmission(context.Background(), sub.SubmissionID.String(), owner, time.Now())
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestSubmitSubmission_MovesToSubmitted(t *testing.T) {
	svc, _ := setupIntakeTest(t)
	session := openSession(t, svc)
	inv, err := svc.CreateInvite(context.Background(), CreateInviteInput{SessionID: session.SessionID.String()})
	require.NoError(t, err)

	owner := uuid.New().String()
	sub, err := svc.StartSubmission(context.Background(), inv.InviteToken, owner, time.Now())
	require.NoError(t, err)

	submitted, err := svc.SubmitSubmission(context.Background(), sub.SubmissionID.String(), owner, time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionSubmitted, submitted.Status)
	require.NotNil(t, submitted.SubmittedAt)

	// A submitted record can no longer be edited or resubmitted
	_, err = svc.SaveDraft(context.Background(), sub.SubmissionID.String(), owner, map[string]interface{}{})
	assert.ErrorIs(t, err, ErrNotDraft)
	_, err = svc.SubmitSubmission(context.Background(), sub.SubmissionID.String(), owner, time.Now())
	assert.ErrorIs(t, err, ErrNotDraft)
}

func TestListSubmissions_StatusFilter(t *testing.T) {
	svc, db := setupIntakeTest(t)
	session := openSession(t, svc)
	inv, err := svc.CreateInvite(context.Background(), CreateInviteInput{SessionID: session.SessionID.String()})
	require.NoError(t, err)

	owner := uuid.New().String()
	sub, err := svc.StartSubmission(context.Background(), inv.InviteToken, owner, time.Now())
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.IntakeSubmission{
		SessionID: session.SessionID,
		InviteID:  inv.InviteID,
		UserID:    uuid.New(),
		Status:    models.SubmissionSubmitted,
	}).Error)

	drafts, err := svc.ListSubmissions(context.Background(), session.SessionID.String(), models.SubmissionDraft)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, sub.SubmissionID, drafts[0].SubmissionID)

	all, err := svc.ListSubmissions(context.Background(), session.SessionID.String(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
