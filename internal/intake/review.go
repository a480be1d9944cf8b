package intake

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ministry-backend/internal/models"
	"ministry-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Change classifications for a diff row.
const (
	ChangeNew       = "new"
	ChangeChanged   = "changed"
	ChangeUnchanged = "unchanged"
)

// reviewField is one minister field the diff view knows about. Keys match
// Minister json tags; payload keys outside this set are ignored by the diff
// (they are still persisted verbatim in the payload).
type reviewField struct {
	Key   string
	Label string
}

var reviewFields = []reviewField{
	{"title", "Title"},
	{"first_name", "First Name"},
	{"surname", "Surname"},
	{"other_names", "Other Names"},
	{"gender", "Gender"},
	{"date_of_birth", "Date of Birth"},
	{"home_town", "Home Town"},
	{"region", "Region"},
	{"marital_status", "Marital Status"},
	{"spouse_name", "Spouse Name"},
	{"phone", "Phone"},
	{"whatsapp", "WhatsApp"},
	{"email", "Email"},
	{"residence", "Residence"},
	{"postal_address", "Postal Address"},
	{"church", "Church"},
	{"association", "Association"},
	{"sector", "Sector"},
	{"fellowship", "Fellowship"},
	{"position", "Position"},
	{"date_joined", "Date Joined"},
	{"licensing_year", "Licensing Year"},
	{"recognition_year", "Recognition Year"},
	{"ordination_year", "Ordination Year"},
	{"status", "Status"},
}

// intFields are coerced to integers when building a minister from a payload.
var intFields = map[string]bool{
	"licensing_year": true, "recognition_year": true, "ordination_year": true,
}

// dateFields are parsed as dates when building a minister from a payload.
var dateFields = map[string]bool{
	"date_of_birth": true, "date_joined": true,
}

// DiffRow is one line of the review diff: label, current value from the
// matched minister, submitted value from the payload. Fields with no
// submitted value are omitted entirely, which also hides fields a submission
// wants to clear — a limitation carried over deliberately.
type DiffRow struct {
	Field     string `json:"field"`
	Label     string `json:"label"`
	Current   string `json:"current"`
	Submitted string `json:"submitted"`
	Change    string `json:"change"`
}

// BuildDiff renders the three-column diff for a payload against an existing
// minister (nil when there is no match).
func BuildDiff(m *models.Minister, payload map[string]interface{}) []DiffRow {
	var rows []DiffRow
	for _, f := range reviewFields {
		submitted := payloadString(payload, f.Key)
		if submitted == "" {
			continue
		}
		current := ""
		if m != nil {
			current = ministerFieldValue(m, f.Key)
		}
		change := ChangeUnchanged
		switch {
		case current == "":
			change = ChangeNew
		case current != submitted:
			change = ChangeChanged
		}
		rows = append(rows, DiffRow{
			Field:     f.Key,
			Label:     f.Label,
			Current:   current,
			Submitted: submitted,
			Change:    change,
		})
	}
	return rows
}

// MatchMinister looks up an existing minister by exact equality on the
// payload's phone. On ambiguity the first match is used; no match is not an
// error.
func (s *Service) MatchMinister(ctx context.Context, payload map[string]interface{}) (*models.Minister, error) {
	phone := validation.NormalizePhone(payloadString(payload, "phone"))
	if phone == "" {
		return nil, nil
	}
	var m models.Minister
	err := s.DB.WithContext(ctx).Where("phone = ?", phone).First(&m).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ReviewView bundles what the reviewer sees for one submission.
type ReviewView struct {
	Submission *models.IntakeSubmission `json:"submission"`
	Minister   *models.Minister         `json:"minister"`
	Diff       []DiffRow                `json:"diff"`
}

// Review builds the diff view, matching by phone unless the reviewer selected
// a specific minister to link against.
func (s *Service) Review(ctx context.Context, submissionID string, overrideMinisterID string) (*ReviewView, error) {
	sub, err := s.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	var target *models.Minister
	if overrideMinisterID != "" {
		target, err = s.ministerByID(ctx, overrideMinisterID)
	} else {
		target, err = s.MatchMinister(ctx, sub.Payload)
	}
	if err != nil {
		return nil, err
	}
	return &ReviewView{
		Submission: sub,
		Minister:   target,
		Diff:       BuildDiff(target, sub.Payload),
	}, nil
}

// ApproveInput for publishing a submission into the minister records.
type ApproveInput struct {
	SubmissionID string
	ReviewerID   string
	// MinisterID optionally overrides the automatic phone match.
	MinisterID string
}

// ApproveResult reports what approval did.
type ApproveResult struct {
	Submission *models.IntakeSubmission `json:"submission"`
	MinisterID uuid.UUID                `json:"minister_id"`
	Created    bool                     `json:"created"`
}

// Approve publishes a submitted payload: updates the matched or selected
// minister, or inserts a new one, then inserts payload emergency contacts and
// marks the submission approved. The whole sequence runs in one transaction
// so a partial failure cannot leave an orphaned minister. Approving an
// already-approved submission returns ErrAlreadyApproved and never creates a
// second minister row.
func (s *Service) Approve(ctx context.Context, in ApproveInput) (*ApproveResult, error) {
	var result ApproveResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sub models.IntakeSubmission
		if err := tx.Where("submission_id = ?", in.SubmissionID).First(&sub).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrSubmissionNotFound
			}
			return err
		}
		if sub.Status == models.SubmissionApproved {
			return ErrAlreadyApproved
		}
		if sub.Status != models.SubmissionSubmitted {
			return ErrNotSubmitted
		}

		var target *models.Minister
		var err error
		if in.MinisterID != "" {
			target, err = ministerByIDTx(tx, in.MinisterID)
		} else {
			target, err = matchMinisterTx(tx, sub.Payload)
		}
		if err != nil {
			return err
		}

		created := false
		var ministerID uuid.UUID
		if target != nil {
			upd := ministerUpdates(sub.Payload)
			if len(upd) > 0 {
				if err := tx.Model(target).Updates(upd).Error; err != nil {
					return err
				}
			}
			ministerID = target.MinisterID
		} else {
			m := ministerFromPayload(sub.Payload)
			if err := tx.Create(&m).Error; err != nil {
				return err
			}
			ministerID = m.MinisterID
			created = true
		}

		for _, contact := range payloadContacts(sub.Payload) {
			contact.MinisterID = ministerID
			if err := tx.Create(&contact).Error; err != nil {
				return err
			}
		}

		now := time.Now()
		sub.Status = models.SubmissionApproved
		sub.ReviewedAt = &now
		sub.ReviewedBy = &in.ReviewerID
		sub.MinisterID = &ministerID
		if err := tx.Save(&sub).Error; err != nil {
			return err
		}

		result = ApproveResult{Submission: &sub, MinisterID: ministerID, Created: created}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// RejectSubmission marks a submitted payload rejected with an optional
// reason. No minister mutation occurs.
func (s *Service) RejectSubmission(ctx context.Context, submissionID, reviewerID, reason string) (*models.IntakeSubmission, error) {
	sub, err := s.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if sub.Status == models.SubmissionApproved {
		return nil, ErrAlreadyApproved
	}
	if sub.Status != models.SubmissionSubmitted {
		return nil, ErrNotSubmitted
	}
	now := time.Now()
	sub.Status = models.SubmissionRejected
	sub.RejectionReason = reason
	sub.ReviewedAt = &now
	sub.ReviewedBy = &reviewerID
	if err := s.DB.WithContext(ctx).Save(sub).Error; err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *Service) ministerByID(ctx context.Context, ministerID string) (*models.Minister, error) {
	return ministerByIDTx(s.DB.WithContext(ctx), ministerID)
}

func ministerByIDTx(tx *gorm.DB, ministerID string) (*models.Minister, error) {
	if _, err := uuid.Parse(ministerID); err != nil {
		return nil, fmt.Errorf("invalid minister id %q", ministerID)
	}
	var m models.Minister
	if err := tx.Where("minister_id = ?", ministerID).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func matchMinisterTx(tx *gorm.DB, payload map[string]interface{}) (*models.Minister, error) {
	phone := validation.NormalizePhone(payloadString(payload, "phone"))
	if phone == "" {
		return nil, nil
	}
	var m models.Minister
	err := tx.Where("phone = ?", phone).First(&m).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ministerUpdates builds a column->value map for every review field present
// in the payload (used for updates on an existing row).
func ministerUpdates(payload map[string]interface{}) map[string]interface{} {
	upd := make(map[string]interface{})
	for _, f := range reviewFields {
		raw := payloadString(payload, f.Key)
		if raw == "" {
			continue
		}
		switch {
		case intFields[f.Key]:
			if n, err := strconv.Atoi(raw); err == nil {
				upd[f.Key] = n
			}
		case dateFields[f.Key]:
			if t, ok := parseDate(raw); ok {
				upd[f.Key] = t
			}
		case f.Key == "phone" || f.Key == "whatsapp":
			upd[f.Key] = validation.NormalizePhone(raw)
		default:
			upd[f.Key] = raw
		}
	}
	return upd
}

// ministerFromPayload builds a new minister from the payload. Numeric fields
// are int-coerced; absent optionals stay nil/zero.
func ministerFromPayload(payload map[string]interface{}) models.Minister {
	m := models.Minister{
		Title:         payloadString(payload, "title"),
		FirstName:     payloadString(payload, "first_name"),
		Surname:       payloadString(payload, "surname"),
		OtherNames:    payloadString(payload, "other_names"),
		Gender:        payloadString(payload, "gender"),
		HomeTown:      payloadString(payload, "home_town"),
		Region:        payloadString(payload, "region"),
		MaritalStatus: payloadString(payload, "marital_status"),
		SpouseName:    payloadString(payload, "spouse_name"),
		Phone:         validation.NormalizePhone(payloadString(payload, "phone")),
		Whatsapp:      validation.NormalizePhone(payloadString(payload, "whatsapp")),
		Email:         payloadString(payload, "email"),
		Residence:     payloadString(payload, "residence"),
		PostalAddress: payloadString(payload, "postal_address"),
		Church:        payloadString(payload, "church"),
		Association:   payloadString(payload, "association"),
		Sector:        payloadString(payload, "sector"),
		Fellowship:    payloadString(payload, "fellowship"),
		Position:      payloadString(payload, "position"),
		Status:        payloadString(payload, "status"),
	}
	if t, ok := parseDate(payloadString(payload, "date_of_birth")); ok {
		m.DateOfBirth = &t
	}
	if t, ok := parseDate(payloadString(payload, "date_joined")); ok {
		m.DateJoined = &t
	}
	m.LicensingYear = payloadInt(payload, "licensing_year")
	m.RecognitionYear = payloadInt(payload, "recognition_year")
	m.OrdinationYear = payloadInt(payload, "ordination_year")
	return m
}

// payloadContacts extracts emergency contacts from the payload's
// emergency_contacts array. Only entries with both name and phone count.
func payloadContacts(payload map[string]interface{}) []models.EmergencyContact {
	raw, ok := payload["emergency_contacts"].([]interface{})
	if !ok {
		return nil
	}
	var out []models.EmergencyContact
	for _, item := range raw {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		name := strings.TrimSpace(stringValue(entry["name"]))
		phone := validation.NormalizePhone(stringValue(entry["phone"]))
		if name == "" || phone == "" {
			continue
		}
		out = append(out, models.EmergencyContact{
			Name:         name,
			Phone:        phone,
			Relationship: strings.TrimSpace(stringValue(entry["relationship"])),
		})
	}
	return out
}

// ministerFieldValue renders one minister field as the diff's "current" column.
func ministerFieldValue(m *models.Minister, key string) string {
	switch key {
	case "title":
		return m.Title
	case "first_name":
		return m.FirstName
	case "surname":
		return m.Surname
	case "other_names":
		return m.OtherNames
	case "gender":
		return m.Gender
	case "date_of_birth":
		return formatDate(m.DateOfBirth)
	case "home_town":
		return m.HomeTown
	case "region":
		return m.Region
	case "marital_status":
		return m.MaritalStatus
	case "spouse_name":
		return m.SpouseName
	case "phone":
		return m.Phone
	case "whatsapp":
		return m.Whatsapp
	case "email":
		return m.Email
	case "residence":
		return m.Residence
	case "postal_address":
		return m.PostalAddress
	case "church":
		return m.Church
	case "association":
		return m.Association
	case "sector":
		return m.Sector
	case "fellowship":
		return m.Fellowship
	case "position":
		return m.Position
	case "date_joined":
		return formatDate(m.DateJoined)
	case "licensing_year":
		return formatInt(m.LicensingYear)
	case "recognition_year":
		return formatInt(m.RecognitionYear)
	case "ordination_year":
		return formatInt(m.OrdinationYear)
	case "status":
		return m.Status
	}
	return ""
}

func payloadString(payload map[string]interface{}, key string) string {
	if payload == nil {
		return ""
	}
	return strings.TrimSpace(stringValue(payload[key]))
}

func payloadInt(payload map[string]interface{}, key string) *int {
	raw := payloadString(payload, key)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

// stringValue renders a payload value; JSON numbers arrive as float64.
func stringValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
