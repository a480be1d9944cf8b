package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ministry-backend/internal/ministers"
	"ministry-backend/internal/models"
	"ministry-backend/internal/pkg/validation"

	"gorm.io/gorm"
)

var (
	ErrMessageRequired = errors.New("Message is required")
	ErrNoRecipients    = errors.New("No recipients to send to")
)

// Default celebration messages when the caller supplies none.
const (
	defaultBirthdayMessage    = "Happy birthday, [[name]]! We thank God for your life and ministry."
	defaultAnniversaryMessage = "Congratulations on your ministry anniversary, [[name]]!"
)

// Service assembles recipient lists and forwards them to the SMS provider.
type Service struct {
	DB        *gorm.DB
	Provider  Provider
	Ministers *ministers.Service
}

// AllMinisterContacts queries every minister with a phone or whatsapp
// number. A minister whose phone and whatsapp differ produces two
// destinations.
func (s *Service) AllMinisterContacts(ctx context.Context) ([]Contact, error) {
	var rows []models.Minister
	if err := s.DB.WithContext(ctx).
		Where("phone <> '' OR whatsapp <> ''").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	var out []Contact
	for _, m := range rows {
		name := strings.TrimSpace(m.FirstName + " " + m.Surname)
		if m.Phone != "" {
			out = append(out, Contact{Name: name, PhoneNumber: m.Phone})
		}
		if m.Whatsapp != "" && m.Whatsapp != m.Phone {
			out = append(out, Contact{Name: name, PhoneNumber: m.Whatsapp})
		}
	}
	return out, nil
}

// ManualContacts converts free-text phone entries into contacts, dropping
// blanks.
func ManualContacts(phones []string) []Contact {
	var out []Contact
	for _, p := range phones {
		normalized := validation.NormalizePhone(p)
		if normalized == "" {
			continue
		}
		out = append(out, Contact{PhoneNumber: normalized})
	}
	return out
}

// DispatchResult reports what a send did.
type DispatchResult struct {
	Recipients   int  `json:"recipients"`
	Personalized bool `json:"personalized"`
}

// Dispatch sends the message to the contacts. If the body contains
// placeholder tokens each recipient gets an individually rendered message
// via the personalized endpoint; otherwise one general send covers all
// destinations. Provider failure surfaces as a single error with no
// partial-success accounting.
func (s *Service) Dispatch(ctx context.Context, message string, contacts []Contact) (*DispatchResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrMessageRequired
	}
	if len(contacts) == 0 {
		return nil, ErrNoRecipients
	}

	if HasPlaceholders(message) {
		items := make([]PersonalizedItem, 0, len(contacts))
		for _, c := range contacts {
			items = append(items, PersonalizedItem{
				Recipient: c.PhoneNumber,
				Message:   Render(message, c),
			})
		}
		if err := s.Provider.SendPersonalized(ctx, items); err != nil {
			return nil, err
		}
		return &DispatchResult{Recipients: len(items), Personalized: true}, nil
	}

	recipients := make([]string, 0, len(contacts))
	for _, c := range contacts {
		recipients = append(recipients, c.PhoneNumber)
	}
	if err := s.Provider.SendGeneral(ctx, message, recipients); err != nil {
		return nil, err
	}
	return &DispatchResult{Recipients: len(recipients)}, nil
}

// CelebrationInput holds per-event message templates; tokens are substituted
// per minister.
type CelebrationInput struct {
	BirthdayMessage    string `json:"birthday_message"`
	AnniversaryMessage string `json:"anniversary_message"`
}

// SendCelebrations sends personalized greetings to every minister whose
// birthday or ministry anniversary falls within the upcoming-events window.
func (s *Service) SendCelebrations(ctx context.Context, in CelebrationInput, now time.Time) (*DispatchResult, error) {
	events, err := s.Ministers.UpcomingEvents(ctx, now)
	if err != nil {
		return nil, err
	}

	birthday := in.BirthdayMessage
	if strings.TrimSpace(birthday) == "" {
		birthday = defaultBirthdayMessage
	}
	anniversary := in.AnniversaryMessage
	if strings.TrimSpace(anniversary) == "" {
		anniversary = defaultAnniversaryMessage
	}

	var items []PersonalizedItem
	for _, ev := range events {
		phone := ev.Minister.Phone
		if phone == "" {
			phone = ev.Minister.Whatsapp
		}
		if phone == "" {
			continue
		}
		contact := Contact{
			Name:        strings.TrimSpace(ev.Minister.FirstName + " " + ev.Minister.Surname),
			PhoneNumber: phone,
		}
		template := birthday
		if ev.EventType == ministers.EventAnniversary {
			template = anniversary
		}
		items = append(items, PersonalizedItem{
			Recipient: contact.PhoneNumber,
			Message:   Render(template, contact),
		})
	}
	if len(items) == 0 {
		return &DispatchResult{}, nil
	}
	if err := s.Provider.SendPersonalized(ctx, items); err != nil {
		return nil, err
	}
	return &DispatchResult{Recipients: len(items), Personalized: true}, nil
}

// Balance passes the provider balance payload through.
func (s *Service) Balance(ctx context.Context) (map[string]interface{}, error) {
	out, err := s.Provider.Balance(ctx)
	if err != nil {
		return nil, fmt.Errorf("balance check failed: %w", err)
	}
	return out, nil
}

// History passes the provider send history through.
func (s *Service) History(ctx context.Context) ([]map[string]interface{}, error) {
	out, err := s.Provider.History(ctx)
	if err != nil {
		return nil, fmt.Errorf("history query failed: %w", err)
	}
	return out, nil
}

// SendCode delivers an OTP code; adapts the provider for the auth module.
func (s *Service) SendCode(ctx context.Context, phone, message string) error {
	return s.Provider.SendGeneral(ctx, message, []string{phone})
}

// GenerateOTP delegates code issuance and delivery to the gateway's OTP
// endpoint. ErrNotConfigured when no API key is set.
func (s *Service) GenerateOTP(ctx context.Context, phone string) error {
	return s.Provider.OTPGenerate(ctx, phone)
}

// VerifyOTP checks a gateway-issued code.
func (s *Service) VerifyOTP(ctx context.Context, phone, code string) (bool, error) {
	return s.Provider.OTPVerify(ctx, phone, code)
}
