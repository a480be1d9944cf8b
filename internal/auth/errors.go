package auth

import "errors"

var (
	ErrEmailPasswordRequired = errors.New("Email and password are required")
	ErrInvalidEmail          = errors.New("Invalid Email")
	ErrIncorrectPassword     = errors.New("Incorrect Password")
	ErrNotAuthenticated      = errors.New("Not authenticated")
	ErrPhoneRequired         = errors.New("Phone number is required")
	ErrPhoneNotApproved      = errors.New("Phone number is not cleared to apply")
	ErrOTPThrottled          = errors.New("Please wait before requesting another code")
	ErrOTPInvalid            = errors.New("Invalid or expired code")
)
