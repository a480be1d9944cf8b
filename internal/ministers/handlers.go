package ministers

import (
	"time"

	"ministry-backend/internal/models"
	"ministry-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *Service
}

// CreateMinister POST /api/v1/ministers (MANAGE_MINISTERS permission via middleware)
func (h *Handlers) CreateMinister(c *fiber.Ctx) error {
	var m models.Minister
	if err := c.BodyParser(&m); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	created, err := h.Service.Create(c.Context(), &m)
	if err != nil {
		return response.Error(c, err.Error(), 400, nil)
	}
	return response.SuccessCreated(c, "Minister created successfully", created, nil)
}

// GetMinister GET /api/v1/ministers/:id
func (h *Handlers) GetMinister(c *fiber.Ctx) error {
	m, err := h.Service.Get(c.Context(), c.Params("id"))
	if err != nil {
		if err == ErrMinisterNotFound {
			return response.NotFound(c, err.Error())
		}
		return response.Error(c, err.Error(), 400, nil)
	}
	return response.Success(c, "Minister retrieved", m, nil)
}

// ListMinisters GET /api/v1/ministers
func (h *Handlers) ListMinisters(c *fiber.Ctx) error {
	out, err := h.Service.List(c.Context(), ListFilter{
		Association: c.Query("association"),
		Sector:      c.Query("sector"),
		Fellowship:  c.Query("fellowship"),
		Status:      c.Query("status"),
		Search:      c.Query("search"),
	})
	if err != nil {
		return response.Error(c, "Failed to fetch ministers", 500, nil)
	}
	return response.Success(c, "Ministers retrieved", out, nil)
}

// UpdateMinister PATCH /api/v1/ministers/:id (MANAGE_MINISTERS permission via middleware)
func (h *Handlers) UpdateMinister(c *fiber.Ctx) error {
	var fields map[string]interface{}
	if err := c.BodyParser(&fields); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	m, err := h.Service.Update(c.Context(), c.Params("id"), fields)
	if err != nil {
		return response.Error(c, err.Error(), 400, nil)
	}
	return response.Success(c, "Minister updated successfully", m, nil)
}

// DeleteMinister DELETE /api/v1/ministers/:id (MANAGE_MINISTERS permission via middleware)
func (h *Handlers) DeleteMinister(c *fiber.Ctx) error {
	if err := h.Service.Delete(c.Context(), c.Params("id")); err != nil {
		if err == ErrMinisterNotFound {
			return response.NotFound(c, err.Error())
		}
		return response.Error(c, err.Error(), 400, nil)
	}
	return response.Success(c, "Minister deleted", nil, nil)
}

// AddEmergencyContact POST /api/v1/ministers/:id/emergency-contacts
func (h *Handlers) AddEmergencyContact(c *fiber.Ctx) error {
	var contact models.EmergencyContact
	if err := c.BodyParser(&contact); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	created, err := h.Service.AddEmergencyContact(c.Context(), c.Params("id"), &contact)
	if err != nil {
		return response.Error(c, err.Error(), 400, nil)
	}
	return response.SuccessCreated(c, "Emergency contact added", created, nil)
}

// UpcomingEvents GET /api/v1/ministers/upcoming-events
func (h *Handlers) UpcomingEvents(c *fiber.Ctx) error {
	events, err := h.Service.UpcomingEvents(c.Context(), time.Now())
	if err != nil {
		return response.Error(c, "Failed to fetch upcoming events", 500, nil)
	}
	return response.Success(c, "Upcoming events retrieved", events, nil)
}

// ExportRoster GET /api/v1/ministers/export
func (h *Handlers) ExportRoster(c *fiber.Ctx) error {
	data, err := h.Service.ExportRoster(c.Context(), ListFilter{
		Association: c.Query("association"),
		Status:      c.Query("status"),
	})
	if err != nil {
		return response.Error(c, "Failed to export ministers", 500, nil)
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+RosterFilename(time.Now())+`"`)
	return c.Send(data)
}
