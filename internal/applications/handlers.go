package applications

import (
	"ministry-backend/internal/models"
	"ministry-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *Service
}

// Submit POST /api/v1/applications — applicant submits an admission request.
func (h *Handlers) Submit(c *fiber.Ctx) error {
	var app models.Application
	if err := c.BodyParser(&app); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	created, err := h.Service.Submit(c.Context(), &app)
	if err != nil {
		switch err {
		case ErrPhoneNotApproved, ErrAllowlistEntryUsed:
			return response.Error(c, err.Error(), 403, nil)
		}
		return response.Error(c, err.Error(), 400, nil)
	}
	return response.SuccessCreated(c, "Application submitted successfully", created, nil)
}

// Get GET /api/v1/applications/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	app, err := h.Service.Get(c.Context(), c.Params("id"))
	if err != nil {
		if err == ErrApplicationNotFound {
			return response.NotFound(c, err.Error())
		}
		return response.Error(c, err.Error(), 400, nil)
	}
	return response.Success(c, "Application retrieved", app, nil)
}

// List GET /api/v1/applications (REVIEW_APPLICATIONS permission via middleware)
func (h *Handlers) List(c *fiber.Ctx) error {
	out, err := h.Service.List(c.Context(), ListFilter{
		Status:         c.Query("status"),
		AdmissionLevel: c.Query("admission_level"),
		Association:    c.Query("association"),
	})
	if err != nil {
		return response.Error(c, "Failed to fetch applications", 500, nil)
	}
	return response.Success(c, "Applications retrieved", out, nil)
}

// Transition POST /api/v1/applications/transition (REVIEW_APPLICATIONS permission via middleware)
func (h *Handlers) Transition(c *fiber.Ctx) error {
	var body TransitionInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	count, err := h.Service.Transition(c.Context(), body)
	if err != nil {
		switch err {
		case ErrNoApplicationsSelected, ErrInvalidStatus:
			return response.Error(c, err.Error(), 400, nil)
		}
		return response.Error(c, "Failed to update applications", 500, nil)
	}
	return response.Success(c, "Applications updated", fiber.Map{"updated": count}, nil)
}

// ScheduleInterview POST /api/v1/applications/schedule-interview (REVIEW_APPLICATIONS)
func (h *Handlers) ScheduleInterview(c *fiber.Ctx) error {
	var body ScheduleInterviewInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	count, err := h.Service.ScheduleInterview(c.Context(), body)
	if err != nil {
		switch err {
		case ErrNoApplicationsSelected, ErrInterviewFieldsMissing:
			return response.Error(c, err.Error(), 400, nil)
		}
		return response.Error(c, "Failed to schedule interviews", 500, nil)
	}
	return response.Success(c, "Interviews scheduled", fiber.Map{"updated": count}, nil)
}

// Reject POST /api/v1/applications/reject (REVIEW_APPLICATIONS permission via middleware)
func (h *Handlers) Reject(c *fiber.Ctx) error {
	var body RejectInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	count, err := h.Service.Reject(c.Context(), body)
	if err != nil {
		if err == ErrNoApplicationsSelected {
			return response.Error(c, err.Error(), 400, nil)
		}
		return response.Error(c, "Failed to reject applications", 500, nil)
	}
	return response.Success(c, "Applications rejected", fiber.Map{"updated": count}, nil)
}

// AttachDocument POST /api/v1/applications/:id/documents
func (h *Handlers) AttachDocument(c *fiber.Ctx) error {
	var doc models.ApplicationDocument
	if err := c.BodyParser(&doc); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	created, err := h.Service.AttachDocument(c.Context(), c.Params("id"), &doc)
	if err != nil {
		if err == ErrApplicationNotFound {
			return response.NotFound(c, err.Error())
		}
		return response.Error(c, err.Error(), 400, nil)
	}
	return response.SuccessCreated(c, "Document attached", created, nil)
}
