package middleware

import (
	"ministry-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const userLocal = "user"

// RequireAuth ensures a user is in the session. 401 with the standard error
// format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := c.Locals(userLocal)
		if user == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		c.Locals("auth", user)
		return c.Next()
	}
}

// GetUser returns the raw session user from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}

// Actor is the typed session user handlers work with.
type Actor struct {
	UserID   string
	Fullname string
	Email    string
	Phone    string
	Role     string
}

// GetActor decodes the session user into an Actor. Returns nil when there is
// no valid session user.
func GetActor(c *fiber.Ctx) *Actor {
	u := GetUser(c)
	if u == nil {
		return nil
	}
	m, ok := u.(map[string]interface{})
	if !ok {
		return nil
	}
	userID, _ := m["user_id"].(string)
	if userID == "" {
		return nil
	}
	str := func(k string) string {
		s, _ := m[k].(string)
		return s
	}
	return &Actor{
		UserID:   userID,
		Fullname: str("fullname"),
		Email:    str("email"),
		Phone:    str("phone"),
		Role:     str("role"),
	}
}
