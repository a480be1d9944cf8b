package users

import (
	"ministry-backend/internal/middleware"
	"ministry-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *Service
}

// CreateUser POST /api/v1/users (MANAGE_USERS permission via middleware)
func (h *Handlers) CreateUser(c *fiber.Ctx) error {
	var body CreateUserInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	if body.Role != "" {
		// Creating a privileged account is a role assignment
		if err := ValidateRoleGrant(actor.Role, body.Role); err != nil {
			return response.Error(c, err.Error(), 403, nil)
		}
	}
	u, err := h.Service.CreateUser(c.Context(), body)
	if err != nil {
		return response.Error(c, err.Error(), 400, nil)
	}
	return response.SuccessCreated(c, "User created successfully", u, nil)
}

// UpdateUser PUT /api/v1/users/:id
func (h *Handlers) UpdateUser(c *fiber.Ctx) error {
	var fields map[string]interface{}
	if err := c.BodyParser(&fields); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	u, err := h.Service.UpdateUser(c.Context(), c.Params("id"), fields)
	if err != nil {
		return response.Error(c, err.Error(), 400, nil)
	}
	return response.Success(c, "User updated successfully", u, nil)
}

// ViewUser GET /api/v1/users/:id
func (h *Handlers) ViewUser(c *fiber.Ctx) error {
	u, err := h.Service.ViewUser(c.Context(), c.Params("id"))
	if err != nil {
		return response.Error(c, err.Error(), 404, nil)
	}
	return response.Success(c, "User retrieved", u, nil)
}

// ListUsers GET /api/v1/users
func (h *Handlers) ListUsers(c *fiber.Ctx) error {
	users, err := h.Service.ListUsers(c.Context(), c.Query("role"))
	if err != nil {
		return response.Error(c, "Failed to fetch users", 500, nil)
	}
	return response.Success(c, "Users retrieved", users, nil)
}

// UpdateRole PATCH /api/v1/users/update-role (ASSIGN_ROLE permission via middleware)
func (h *Handlers) UpdateRole(c *fiber.Ctx) error {
	var body struct {
		UserID string `json:"user_id"`
		Role   string `json:"role"`
	}
	if err := c.BodyParser(&body); err != nil || body.UserID == "" || body.Role == "" {
		return response.Error(c, "user_id and role are required", 400, nil)
	}
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	u, err := h.Service.UpdateRole(c.Context(), UpdateRoleInput{
		ActorUserID:  actor.UserID,
		ActorRole:    actor.Role,
		TargetUserID: body.UserID,
		Role:         body.Role,
	})
	if err != nil {
		return response.Error(c, err.Error(), 400, nil)
	}
	return response.Success(c, "Role updated successfully", u, nil)
}

// RemoveUser DELETE /api/v1/users/:id (REMOVE_USER permission via middleware)
func (h *Handlers) RemoveUser(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	if err := h.Service.RemoveUser(c.Context(), actor.UserID, c.Params("id")); err != nil {
		return response.Error(c, err.Error(), 400, nil)
	}
	return response.Success(c, "User removed successfully", nil, nil)
}
