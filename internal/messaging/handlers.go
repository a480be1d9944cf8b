package messaging

import (
	"time"

	"ministry-backend/internal/pkg/response"
	"ministry-backend/internal/pkg/spreadsheet"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *Service
}

type sendRequest struct {
	Message  string    `json:"message"`
	Source   string    `json:"source"` // all | manual | contacts
	Phones   []string  `json:"phones"`
	Contacts []Contact `json:"contacts"`
}

// Send POST /api/v1/messages/send (SEND_MESSAGES permission via middleware)
// Source "all" targets every minister on file, "manual" takes free-text
// phone numbers, "contacts" takes name+phone pairs (e.g. a spreadsheet
// preview echoed back).
func (h *Handlers) Send(c *fiber.Ctx) error {
	var body sendRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}

	var contacts []Contact
	switch body.Source {
	case "all":
		var err error
		contacts, err = h.Service.AllMinisterContacts(c.Context())
		if err != nil {
			return response.Error(c, "Failed to load minister contacts", 500, nil)
		}
	case "manual":
		contacts = ManualContacts(body.Phones)
	case "contacts":
		contacts = body.Contacts
	default:
		return response.Error(c, "source must be one of: all, manual, contacts", 400, nil)
	}

	result, err := h.Service.Dispatch(c.Context(), body.Message, contacts)
	if err != nil {
		switch err {
		case ErrMessageRequired, ErrNoRecipients:
			return response.Error(c, err.Error(), 400, nil)
		}
		return response.Error(c, "Failed to send message", 502, nil)
	}
	return response.Success(c, "Message dispatched", result, nil)
}

// ImportPreview POST /api/v1/messages/import-preview (SEND_MESSAGES)
// Accepts a multipart "file" xlsx upload and returns the parsed contacts
// without sending anything.
func (h *Handlers) ImportPreview(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, "A spreadsheet file is required", 400, nil)
	}
	f, err := fileHeader.Open()
	if err != nil {
		return response.Error(c, "Could not read the uploaded file", 400, nil)
	}
	defer f.Close()

	rows, err := spreadsheet.Parse(f)
	if err != nil {
		switch err {
		case spreadsheet.ErrNoSheet, spreadsheet.ErrNoHeader, spreadsheet.ErrNoColumns:
			return response.Error(c, err.Error(), 422, nil)
		}
		return response.Error(c, "Could not parse the spreadsheet", 422, nil)
	}

	contacts := make([]Contact, 0, len(rows))
	for _, r := range rows {
		contacts = append(contacts, Contact{Name: r.Name, PhoneNumber: r.PhoneNumber})
	}
	return response.Success(c, "Spreadsheet parsed", fiber.Map{
		"contacts": contacts,
		"count":    len(contacts),
	}, nil)
}

// SendCelebrations POST /api/v1/messages/celebrations (SEND_MESSAGES)
func (h *Handlers) SendCelebrations(c *fiber.Ctx) error {
	var body CelebrationInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	result, err := h.Service.SendCelebrations(c.Context(), body, time.Now())
	if err != nil {
		return response.Error(c, "Failed to send celebration messages", 502, nil)
	}
	return response.Success(c, "Celebration messages dispatched", result, nil)
}

// Balance GET /api/v1/messages/balance (SEND_MESSAGES)
func (h *Handlers) Balance(c *fiber.Ctx) error {
	out, err := h.Service.Balance(c.Context())
	if err != nil {
		return response.Error(c, "Failed to fetch balance", 502, nil)
	}
	return response.Success(c, "Balance retrieved", out, nil)
}

// History GET /api/v1/messages/history (SEND_MESSAGES)
func (h *Handlers) History(c *fiber.Ctx) error {
	out, err := h.Service.History(c.Context())
	if err != nil {
		return response.Error(c, "Failed to fetch message history", 502, nil)
	}
	return response.Success(c, "Message history retrieved", out, nil)
}
