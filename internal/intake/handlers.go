package intake

import (
	"time"

	"ministry-backend/internal/middleware"
	"ministry-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *Service
	// InviteBaseURL is prefixed to invite tokens to build shareable links.
	InviteBaseURL string
}

// CreateSession POST /api/v1/intake/sessions (MANAGE_INTAKE permission via middleware)
func (h *Handlers) CreateSession(c *fiber.Ctx) error {
	var body CreateSessionInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	body.CreatedBy = actor.UserID
	session, err := h.Service.CreateSession(c.Context(), body)
	if err != nil {
		return response.Error(c, err.Error(), 400, nil)
	}
	return response.SuccessCreated(c, "Intake session created", session, nil)
}

// ListSessions GET /api/v1/intake/sessions
func (h *Handlers) ListSessions(c *fiber.Ctx) error {
	sessions, err := h.Service.ListSessions(c.Context())
	if err != nil {
		return response.Error(c, "Failed to fetch sessions", 500, nil)
	}
	return response.Success(c, "Sessions retrieved", sessions, nil)
}

// CloseSession POST /api/v1/intake/sessions/:id/close (MANAGE_INTAKE)
func (h *Handlers) CloseSession(c *fiber.Ctx) error {
	session, err := h.Service.CloseSession(c.Context(), c.Params("id"))
	if err != nil {
		if err == ErrSessionNotFound {
			return response.NotFound(c, err.Error())
		}
		return response.Error(c, err.Error(), 400, nil)
	}
	return response.Success(c, "Session closed", session, nil)
}

// CreateInvite POST /api/v1/intake/invites (MANAGE_INTAKE permission via middleware)
func (h *Handlers) CreateInvite(c *fiber.Ctx) error {
	var body CreateInviteInput
	if err := c.BodyParser(&body); err != nil || body.SessionID == "" {
		return response.Error(c, "session_id is required", 400, nil)
	}
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	body.CreatedBy = actor.UserID
	inv, err := h.Service.CreateInvite(c.Context(), body)
	if err != nil {
		if err == ErrSessionNotFound {
			return response.NotFound(c, err.Error())
		}
		return response.Error(c, err.Error(), 400, nil)
	}
	return response.SuccessCreated(c, "Invite created", fiber.Map{
		"invite":      inv,
		"invite_link": h.InviteBaseURL + "/intake/" + inv.InviteToken,
	}, nil)
}

// ListInvites GET /api/v1/intake/sessions/:id/invites (MANAGE_INTAKE)
func (h *Handlers) ListInvites(c *fiber.Ctx) error {
	invites, err := h.Service.ListInvites(c.Context(), c.Params("id"))
	if err != nil {
		if err == ErrSessionNotFound {
			return response.NotFound(c, err.Error())
		}
		return response.Error(c, "Failed to fetch invites", 500, nil)
	}
	return response.Success(c, "Invites retrieved", invites, nil)
}

// RevokeInvite PATCH /api/v1/intake/invites/:id/revoke (MANAGE_INTAKE)
func (h *Handlers) RevokeInvite(c *fiber.Ctx) error {
	inv, err := h.Service.RevokeInvite(c.Context(), c.Params("id"))
	if err != nil {
		if err == ErrInviteInvalid {
			return response.NotFound(c, err.Error())
		}
		return response.Error(c, err.Error(), 400, nil)
	}
	return response.Success(c, "Invite revoked", inv, nil)
}

// CheckToken POST /api/v1/intake/public/check-token (no auth)
func (h *Handlers) CheckToken(c *fiber.Ctx) error {
	var body struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&body); err != nil || body.Token == "" {
		return response.Error(c, "Invite token is required", 400, nil)
	}
	result, err := h.Service.CheckToken(c.Context(), body.Token, time.Now())
	if err != nil {
		return response.Error(c, err.Error(), 400, nil)
	}
	return response.Success(c, "Invite token is valid", result, nil)
}

// StartSubmission POST /api/v1/intake/submissions/start
func (h *Handlers) StartSubmission(c *fiber.Ctx) error {
	var body struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&body); err != nil || body.Token == "" {
		return response.Error(c, "Invite token is required", 400, nil)
	}
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	sub, err := h.Service.StartSubmission(c.Context(), body.Token, actor.UserID, time.Now())
	if err != nil {
		return response.Error(c, err.Error(), 400, nil)
	}
	return response.Success(c, "Submission ready", sub, nil)
}

// SaveDraft PUT /api/v1/intake/submissions/:id
func (h *Handlers) SaveDraft(c *fiber.Ctx) error {
	var payload map[string]interface{}
	if err := c.BodyParser(&payload); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	sub, err := h.Service.SaveDraft(c.Context(), c.Params("id"), actor.UserID, payload)
	if err != nil {
		switch err {
		case ErrSubmissionNotFound:
			return response.NotFound(c, err.Error())
		case ErrNotOwner:
			return response.Error(c, err.Error(), 403, nil)
		}
		return response.Error(c, err.Error(), 400, nil)
	}
	return response.Success(c, "Draft saved", sub, nil)
}

// SubmitSubmission POST /api/v1/intake/submissions/:id/submit
func (h *Handlers) SubmitSubmission(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	sub, err := h.Service.SubmitSubmission(c.Context(), c.Params("id"), actor.UserID, time.Now())
	if err != nil {
		switch err {
		case ErrSubmissionNotFound:
			return response.NotFound(c, err.Error())
		case ErrNotOwner:
			return response.Error(c, err.Error(), 403, nil)
		}
		return response.Error(c, err.Error(), 400, nil)
	}
	return response.Success(c, "Submission received", sub, nil)
}

// ListSubmissions GET /api/v1/intake/sessions/:id/submissions (REVIEW_INTAKE)
func (h *Handlers) ListSubmissions(c *fiber.Ctx) error {
	subs, err := h.Service.ListSubmissions(c.Context(), c.Params("id"), c.Query("status"))
	if err != nil {
		if err == ErrSessionNotFound {
			return response.NotFound(c, err.Error())
		}
		return response.Error(c, "Failed to fetch submissions", 500, nil)
	}
	return response.Success(c, "Submissions retrieved", subs, nil)
}

// Review GET /api/v1/intake/submissions/:id/review (REVIEW_INTAKE)
// Optional ?minister_id= overrides the automatic phone match.
func (h *Handlers) Review(c *fiber.Ctx) error {
	view, err := h.Service.Review(c.Context(), c.Params("id"), c.Query("minister_id"))
	if err != nil {
		if err == ErrSubmissionNotFound {
			return response.NotFound(c, err.Error())
		}
		return response.Error(c, err.Error(), 400, nil)
	}
	return response.Success(c, "Review built", view, nil)
}

// Approve POST /api/v1/intake/submissions/:id/approve (REVIEW_INTAKE)
func (h *Handlers) Approve(c *fiber.Ctx) error {
	var body struct {
		MinisterID string `json:"minister_id"`
	}
	_ = c.BodyParser(&body)
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	result, err := h.Service.Approve(c.Context(), ApproveInput{
		SubmissionID: c.Params("id"),
		ReviewerID:   actor.UserID,
		MinisterID:   body.MinisterID,
	})
	if err != nil {
		switch err {
		case ErrSubmissionNotFound:
			return response.NotFound(c, err.Error())
		case ErrAlreadyApproved, ErrNotSubmitted:
			return response.Error(c, err.Error(), 409, nil)
		}
		return response.Error(c, "Failed to approve submission", 500, nil)
	}
	return response.Success(c, "Submission approved", result, nil)
}

// Reject POST /api/v1/intake/submissions/:id/reject (REVIEW_INTAKE)
func (h *Handlers) Reject(c *fiber.Ctx) error {
	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.BodyParser(&body)
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	sub, err := h.Service.RejectSubmission(c.Context(), c.Params("id"), actor.UserID, body.Reason)
	if err != nil {
		switch err {
		case ErrSubmissionNotFound:
			return response.NotFound(c, err.Error())
		case ErrAlreadyApproved, ErrNotSubmitted:
			return response.Error(c, err.Error(), 409, nil)
		}
		return response.Error(c, "Failed to reject submission", 500, nil)
	}
	return response.Success(c, "Submission rejected", sub, nil)
}
