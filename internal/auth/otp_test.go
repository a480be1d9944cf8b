package auth

import (
	"context"
	"testing"

	"ministry-backend/internal/constants"
	"ministry-backend/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordedCode struct {
	phone   string
	message string
}

type fakeSender struct {
	sent []recordedCode
}

func (f *fakeSender) SendCode(ctx context.Context, phone, message string) error {
	f.sent = append(f.sent, recordedCode{phone: phone, message: message})
	return nil
}

type fakeOTPProvider struct {
	generated []string
	verified  []string
	verifyOK  bool
	genErr    error
}

func (f *fakeOTPProvider) GenerateOTP(ctx context.Context, phone string) error {
	if f.genErr != nil {
		return f.genErr
	}
	f.generated = append(f.generated, phone)
	return nil
}

func (f *fakeOTPProvider) VerifyOTP(ctx context.Context, phone, code string) (bool, error) {
	f.verified = append(f.verified, code)
	return f.verifyOK, nil
}

func setupOTPTest(t *testing.T) (*OTPService, *fakeSender, *miniredis.Miniredis, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.ApprovedApplicant{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sender := &fakeSender{}
	return &OTPService{DB: db, Rdb: rdb, Sender: sender}, sender, mr, db
}

func TestRequestOTP_StoresAndSendsCode(t *testing.T) {
	svc, sender, mr, _ := setupOTPTest(t)

	err := svc.RequestOTP(context.Background(), RequestOTPInput{Phone: "+233 555 000 100"})
	require.NoError(t, err)

	code, err := mr.Get("otp:code:+233555000100")
	require.NoError(t, err)
	assert.Len(t, code, 6)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "+233555000100", sender.sent[0].phone)
	assert.Contains(t, sender.sent[0].message, code)
}

func TestRequestOTP_Throttled(t *testing.T) {
	svc, sender, _, _ := setupOTPTest(t)

	require.NoError(t, svc.RequestOTP(context.Background(), RequestOTPInput{Phone: "+233555000100"}))
	err := svc.RequestOTP(context.Background(), RequestOTPInput{Phone: "+233555000100"})
	assert.ErrorIs(t, err, ErrOTPThrottled)
	assert.Len(t, sender.sent, 1)
}

func TestRequestOTP_ApplicationPurposeGatedByAllowlist(t *testing.T) {
	svc, _, _, db := setupOTPTest(t)

	err := svc.RequestOTP(context.Background(), RequestOTPInput{Phone: "+233555000100", Purpose: "application"})
	assert.ErrorIs(t, err, ErrPhoneNotApproved)

	require.NoError(t, db.Create(&models.ApprovedApplicant{PhoneNumber: "+233555000100"}).Error)
	err = svc.RequestOTP(context.Background(), RequestOTPInput{Phone: "+233555000100", Purpose: "application"})
	assert.NoError(t, err)
}

func TestRequestOTP_InvalidPhone(t *testing.T) {
	svc, _, _, _ := setupOTPTest(t)
	err := svc.RequestOTP(context.Background(), RequestOTPInput{Phone: "not-a-phone"})
	assert.ErrorIs(t, err, ErrPhoneRequired)
}

func TestVerifyOTP_CreatesApplicantOnFirstLogin(t *testing.T) {
	svc, _, mr, db := setupOTPTest(t)
	require.NoError(t, svc.RequestOTP(context.Background(), RequestOTPInput{Phone: "+233555000100"}))
	code, err := mr.Get("otp:code:+233555000100")
	require.NoError(t, err)

	u, err := svc.VerifyOTP(context.Background(), VerifyOTPInput{Phone: "+233555000100", Code: code})
	require.NoError(t, err)
	assert.Equal(t, constants.Applicant, u.Role)
	assert.Equal(t, "+233555000100", u.Phone)

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestVerifyOTP_ReturnsExistingUser(t *testing.T) {
	svc, _, mr, db := setupOTPTest(t)
	existing := &models.User{Fullname: "Ama Owusu", Phone: "+233555000100", Role: constants.Viewer}
	require.NoError(t, db.Create(existing).Error)

	require.NoError(t, svc.RequestOTP(context.Background(), RequestOTPInput{Phone: "+233555000100"}))
	code, err := mr.Get("otp:code:+233555000100")
	require.NoError(t, err)

	u, err := svc.VerifyOTP(context.Background(), VerifyOTPInput{Phone: "+233555000100", Code: code})
	require.NoError(t, err)
	assert.Equal(t, existing.UserID, u.UserID)
	assert.Equal(t, constants.Viewer, u.Role)
}

func TestVerifyOTP_OneShot(t *testing.T) {
	svc, _, mr, _ := setupOTPTest(t)
	require.NoError(t, svc.RequestOTP(context.Background(), RequestOTPInput{Phone: "+233555000100"}))
	code, err := mr.Get("otp:code:+233555000100")
	require.NoError(t, err)

	// A wrong guess consumes the code
	_, err = svc.VerifyOTP(context.Background(), VerifyOTPInput{Phone: "+233555000100", Code: "000000"})
	assert.ErrorIs(t, err, ErrOTPInvalid)

	_, err = svc.VerifyOTP(context.Background(), VerifyOTPInput{Phone: "+233555000100", Code: code})
	assert.ErrorIs(t, err, ErrOTPInvalid)
}

func TestVerifyOTP_NoCodeRequested(t *testing.T) {
	svc, _, _, _ := setupOTPTest(t)
	_, err := svc.VerifyOTP(context.Background(), VerifyOTPInput{Phone: "+233555000100", Code: "123456"})
	assert.ErrorIs(t, err, ErrOTPInvalid)
}

func TestRequestOTP_ProviderIssuesCode(t *testing.T) {
	svc, sender, mr, _ := setupOTPTest(t)
	provider := &fakeOTPProvider{}
	svc.Provider = provider

	require.NoError(t, svc.RequestOTP(context.Background(), RequestOTPInput{Phone: "+233555000100"}))

	assert.Equal(t, []string{"+233555000100"}, provider.generated)
	assert.Empty(t, sender.sent)
	_, err := mr.Get("otp:code:+233555000100")
	assert.Error(t, err)
	marker, err := mr.Get("otp:provider:+233555000100")
	require.NoError(t, err)
	assert.Equal(t, "1", marker)
}

func TestRequestOTP_ProviderFailureFallsBackToLocalCode(t *testing.T) {
	svc, sender, mr, _ := setupOTPTest(t)
	svc.Provider = &fakeOTPProvider{genErr: assert.AnError}

	require.NoError(t, svc.RequestOTP(context.Background(), RequestOTPInput{Phone: "+233555000100"}))

	code, err := mr.Get("otp:code:+233555000100")
	require.NoError(t, err)
	assert.Len(t, code, 6)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].message, code)
}

func TestVerifyOTP_ProviderVerified(t *testing.T) {
	svc, _, _, db := setupOTPTest(t)
	provider := &fakeOTPProvider{verifyOK: true}
	svc.Provider = provider

	require.NoError(t, svc.RequestOTP(context.Background(), RequestOTPInput{Phone: "+233555000100"}))
	u, err := svc.VerifyOTP(context.Background(), VerifyOTPInput{Phone: "+233555000100", Code: "123456"})
	require.NoError(t, err)
	assert.Equal(t, []string{"123456"}, provider.verified)
	assert.Equal(t, "+233555000100", u.Phone)

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestVerifyOTP_ProviderRejectsCode(t *testing.T) {
	svc, _, _, _ := setupOTPTest(t)
	svc.Provider = &fakeOTPProvider{verifyOK: false}

	require.NoError(t, svc.RequestOTP(context.Background(), RequestOTPInput{Phone: "+233555000100"}))
	_, err := svc.VerifyOTP(context.Background(), VerifyOTPInput{Phone: "+233555000100", Code: "000000"})
	assert.ErrorIs(t, err, ErrOTPInvalid)
}
