package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"ministry-backend/internal/constants"
	"ministry-backend/internal/models"
	"ministry-backend/internal/pkg/validation"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	otpCodePrefix     = "otp:code:"
	otpProviderPrefix = "otp:provider:"
	otpThrottlePrefix = "otp:throttle:"
	otpTTL            = 5 * time.Minute
	otpResendWait     = 60 * time.Second
)

// CodeSender delivers a one-time code to a phone number. The SMS provider
// client satisfies this via an adapter in the composition root; nil disables
// delivery (codes still stored, useful in dev).
type CodeSender interface {
	SendCode(ctx context.Context, phone, message string) error
}

// OTPProvider is the gateway's own OTP issue/verify pair. When available it
// handles code generation and delivery; otherwise codes are issued locally
// and texted through the CodeSender.
type OTPProvider interface {
	GenerateOTP(ctx context.Context, phone string) error
	VerifyOTP(ctx context.Context, phone, code string) (bool, error)
}

// OTPService issues and verifies one-time codes for phone login.
// Locally issued codes live in Redis with a 5 minute TTL and are deleted on
// first verification attempt; provider-issued codes leave only a marker so
// verification knows which side holds the code.
type OTPService struct {
	DB       *gorm.DB
	Rdb      *redis.Client
	Sender   CodeSender
	Provider OTPProvider
}

// RequestOTPInput for the request-otp body. Purpose "application" gates the
// phone against the approved-applicant allowlist.
type RequestOTPInput struct {
	Phone   string `json:"phone"`
	Purpose string `json:"purpose"`
}

// RequestOTP issues a code through the provider's OTP endpoint when one is
// configured, falling back to a locally generated code delivered as a plain
// SMS. A per-phone throttle allows one code per 60 seconds.
func (s *OTPService) RequestOTP(ctx context.Context, in RequestOTPInput) error {
	phone := validation.NormalizePhone(in.Phone)
	if phone == "" || !validation.IsValidPhone(phone) {
		return ErrPhoneRequired
	}

	if in.Purpose == "application" {
		var entry models.ApprovedApplicant
		if err := s.DB.WithContext(ctx).Where("phone_number = ?", phone).First(&entry).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrPhoneNotApproved
			}
			return err
		}
	}

	ok, err := s.Rdb.SetNX(ctx, otpThrottlePrefix+phone, "1", otpResendWait).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrOTPThrottled
	}

	if s.Provider != nil {
		if err := s.Provider.GenerateOTP(ctx, phone); err == nil {
			return s.Rdb.Set(ctx, otpProviderPrefix+phone, "1", otpTTL).Err()
		}
		// provider unavailable, issue the code locally instead
	}

	code := generateCode()
	if err := s.Rdb.Set(ctx, otpCodePrefix+phone, code, otpTTL).Err(); err != nil {
		return err
	}

	if s.Sender != nil {
		msg := fmt.Sprintf("Your verification code is %s. It expires in 5 minutes.", code)
		if err := s.Sender.SendCode(ctx, phone, msg); err != nil {
			return err
		}
	}
	return nil
}

// VerifyOTPInput for the verify-otp body.
type VerifyOTPInput struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

// VerifyOTP checks the code (one-shot: the stored code or provider marker is
// consumed on the attempt) and returns the matching user, creating an
// applicant account on first login.
func (s *OTPService) VerifyOTP(ctx context.Context, in VerifyOTPInput) (*models.User, error) {
	phone := validation.NormalizePhone(in.Phone)
	if phone == "" || in.Code == "" {
		return nil, ErrOTPInvalid
	}

	marker, err := s.Rdb.GetDel(ctx, otpProviderPrefix+phone).Result()
	if err != nil && err != redis.Nil {
		return nil, err
	}
	if err == nil && marker == "1" && s.Provider != nil {
		ok, err := s.Provider.VerifyOTP(ctx, phone, in.Code)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrOTPInvalid
		}
	} else {
		stored, err := s.Rdb.GetDel(ctx, otpCodePrefix+phone).Result()
		if err == redis.Nil {
			return nil, ErrOTPInvalid
		}
		if err != nil {
			return nil, err
		}
		if stored != in.Code {
			return nil, ErrOTPInvalid
		}
	}

	var u models.User
	err = s.DB.WithContext(ctx).Where("phone = ?", phone).First(&u).Error
	if err == gorm.ErrRecordNotFound {
		u = models.User{Phone: phone, Fullname: phone, Role: constants.Applicant}
		if err := s.DB.WithContext(ctx).Create(&u).Error; err != nil {
			return nil, err
		}
		return &u, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// generateCode returns a 6-digit numeric code.
func generateCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		// crypto/rand failure means the process is in a bad state anyway
		panic(err)
	}
	return fmt.Sprintf("%06d", n.Int64())
}
