package auth

import (
	"context"

	"ministry-backend/internal/middleware"
	"ministry-backend/internal/models"
	"ministry-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Handlers bundles auth handlers with their dependencies.
type Handlers struct {
	UserFinder UserFinder
	OTP        *OTPService
	Rdb        *redis.Client
	Config     middleware.SessionConfig
}

// Login POST /api/v1/auth/login — staff email+password login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var body LoginInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	if h.UserFinder == nil {
		return response.Error(c, "Login unavailable", 500, nil)
	}
	u, err := h.UserFinder.FindByEmailAndPassword(body.Email, body.Password)
	if err != nil {
		return response.Error(c, err.Error(), 401, nil)
	}
	h.establishSession(c, u)
	return response.Success(c, "Login successful", sessionShape(u), nil)
}

// RequestOTP POST /api/v1/auth/request-otp — phone login, step one.
func (h *Handlers) RequestOTP(c *fiber.Ctx) error {
	var body RequestOTPInput
	if err := c.BodyParser(&body); err != nil || body.Phone == "" {
		return response.Error(c, "Phone number is required", 400, nil)
	}
	if err := h.OTP.RequestOTP(c.Context(), body); err != nil {
		switch err {
		case ErrPhoneRequired, ErrPhoneNotApproved:
			return response.Error(c, err.Error(), 400, nil)
		case ErrOTPThrottled:
			return response.Error(c, err.Error(), 429, nil)
		}
		return response.Error(c, "Failed to send verification code", 500, nil)
	}
	return response.Success(c, "Verification code sent", nil, nil)
}

// VerifyOTP POST /api/v1/auth/verify-otp — phone login, step two.
func (h *Handlers) VerifyOTP(c *fiber.Ctx) error {
	var body VerifyOTPInput
	if err := c.BodyParser(&body); err != nil || body.Phone == "" || body.Code == "" {
		return response.Error(c, "Phone and code are required", 400, nil)
	}
	u, err := h.OTP.VerifyOTP(c.Context(), body)
	if err != nil {
		if err == ErrOTPInvalid {
			return response.Error(c, err.Error(), 401, nil)
		}
		return response.Error(c, "Verification failed", 500, nil)
	}
	h.establishSession(c, u)
	return response.Success(c, "Login successful", sessionShape(u), nil)
}

// Me GET /api/v1/auth/me
func (h *Handlers) Me(c *fiber.Ctx) error {
	shape, err := VerifyUser(middleware.GetUser(c))
	if err != nil {
		return response.Unauthorized(c, err.Error())
	}
	return response.Success(c, "Authenticated", shape, nil)
}

// Logout DELETE /api/v1/auth/logout
func (h *Handlers) Logout(c *fiber.Ctx) error {
	sid := middleware.GetSessionID(c)
	if sid != "" && h.Rdb != nil {
		h.Rdb.Del(context.Background(), middleware.SessionRedisPrefix+sid)
	}
	middleware.DestroySession(c)
	c.Locals("session_id", "")
	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = ""
	cookie.MaxAge = -1
	c.Cookie(&cookie)
	return response.Success(c, "Logged out", nil, nil)
}

func (h *Handlers) establishSession(c *fiber.Ctx, u *models.User) {
	sid := middleware.RegenerateSessionID(c)
	middleware.SetSessionUser(c, middleware.SessionUser{
		UserID:   u.UserID.String(),
		Fullname: u.Fullname,
		Email:    u.Email,
		Phone:    u.Phone,
		Role:     u.Role,
	})
	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = sid
	c.Cookie(&cookie)
}

func sessionShape(u *models.User) *SessionUserShape {
	return &SessionUserShape{
		UserID:   u.UserID.String(),
		Fullname: u.Fullname,
		Email:    u.Email,
		Phone:    u.Phone,
		Role:     u.Role,
	}
}
