package allowlist

import (
	"ministry-backend/internal/middleware"
	"ministry-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *Service
}

// Add POST /api/v1/allowlist (MANAGE_ALLOWLIST permission via middleware)
// Accepts either a single phone or a batch of phones.
func (h *Handlers) Add(c *fiber.Ctx) error {
	var body struct {
		Phone  string   `json:"phone"`
		Phones []string `json:"phones"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	if len(body.Phones) > 0 {
		created, skipped, err := h.Service.AddBatch(c.Context(), body.Phones, actor.UserID)
		if err != nil {
			return response.Error(c, "Failed to add allowlist entries", 500, nil)
		}
		return response.SuccessCreated(c, "Allowlist entries added", fiber.Map{
			"created": created,
			"skipped": skipped,
		}, nil)
	}

	entry, err := h.Service.Add(c.Context(), body.Phone, actor.UserID)
	if err != nil {
		switch err {
		case ErrPhoneRequired:
			return response.Error(c, err.Error(), 400, nil)
		case ErrPhoneExists:
			return response.Error(c, err.Error(), 409, nil)
		}
		return response.Error(c, "Failed to add allowlist entry", 500, nil)
	}
	return response.SuccessCreated(c, "Allowlist entry added", entry, nil)
}

// List GET /api/v1/allowlist (MANAGE_ALLOWLIST)
// Optional ?used=true|false filter.
func (h *Handlers) List(c *fiber.Ctx) error {
	var used *bool
	switch c.Query("used") {
	case "true":
		v := true
		used = &v
	case "false":
		v := false
		used = &v
	}
	entries, err := h.Service.List(c.Context(), used)
	if err != nil {
		return response.Error(c, "Failed to fetch allowlist", 500, nil)
	}
	return response.Success(c, "Allowlist retrieved", entries, nil)
}

// Remove DELETE /api/v1/allowlist/:id (MANAGE_ALLOWLIST)
func (h *Handlers) Remove(c *fiber.Ctx) error {
	if err := h.Service.Remove(c.Context(), c.Params("id")); err != nil {
		switch err {
		case ErrEntryNotFound:
			return response.NotFound(c, err.Error())
		case ErrEntryUsed:
			return response.Error(c, err.Error(), 409, nil)
		}
		return response.Error(c, "Failed to remove allowlist entry", 500, nil)
	}
	return response.Success(c, "Allowlist entry removed", nil, nil)
}
