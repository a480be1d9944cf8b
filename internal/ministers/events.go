package ministers

import (
	"context"
	"time"

	"ministry-backend/internal/models"
)

// Event types for upcoming celebrations.
const (
	EventBirthday    = "birthday"
	EventAnniversary = "anniversary"
)

// lookaheadDays is the inclusive window for upcoming events: an event exactly
// this many days out is included, one more is not.
const lookaheadDays = 7

// UpcomingEvent is one minister celebration inside the lookahead window.
type UpcomingEvent struct {
	Minister  models.Minister `json:"minister"`
	EventType string          `json:"event_type"`
	Occurs    time.Time       `json:"occurs"`
	DaysUntil int             `json:"days_until"`
	Today     bool            `json:"today"`
}

// UpcomingEvents returns birthdays (date_of_birth) and anniversaries
// (date_joined) whose month/day falls within the 7-day lookahead from now.
// Comparison ignores the year.
func (s *Service) UpcomingEvents(ctx context.Context, now time.Time) ([]UpcomingEvent, error) {
	var all []models.Minister
	if err := s.DB.WithContext(ctx).
		Where("date_of_birth IS NOT NULL OR date_joined IS NOT NULL").
		Find(&all).Error; err != nil {
		return nil, err
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var events []UpcomingEvent
	for _, m := range all {
		if m.DateOfBirth != nil {
			if ev, ok := eventWithin(m, EventBirthday, *m.DateOfBirth, today); ok {
				events = append(events, ev)
			}
		}
		if m.DateJoined != nil {
			if ev, ok := eventWithin(m, EventAnniversary, *m.DateJoined, today); ok {
				events = append(events, ev)
			}
		}
	}
	return events, nil
}

// eventWithin maps the stored date onto its next occurrence from today and
// keeps it when 0..7 days out.
func eventWithin(m models.Minister, eventType string, date, today time.Time) (UpcomingEvent, bool) {
	occurs := time.Date(today.Year(), date.Month(), date.Day(), 0, 0, 0, 0, today.Location())
	if occurs.Before(today) {
		occurs = time.Date(today.Year()+1, date.Month(), date.Day(), 0, 0, 0, 0, today.Location())
	}
	days := int(occurs.Sub(today).Hours() / 24)
	if days > lookaheadDays {
		return UpcomingEvent{}, false
	}
	return UpcomingEvent{
		Minister:  m,
		EventType: eventType,
		Occurs:    occurs,
		DaysUntil: days,
		Today:     days == 0,
	}, true
}
