package ministers

import (
	"bytes"
	"context"
	"testing"
	"time"

	"ministry-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func setupMinistersTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Minister{}, &models.EmergencyContact{}, &models.Qualification{},
		&models.MinistryHistory{}, &models.Child{},
	))
	return &Service{DB: db}, db
}

func TestCreate_RequiresNames(t *testing.T) {
	svc, _ := setupMinistersTest(t)
	_, err := svc.Create(context.Background(), &models.Minister{FirstName: "  "})
	assert.Error(t, err)
}

func TestCreate_NormalizesPhones(t *testing.T) {
	svc, _ := setupMinistersTest(t)
	m, err := svc.Create(context.Background(), &models.Minister{
		FirstName: "Ama",
		Surname:   "Owusu",
		Phone:     "+233 244 000 001",
		Whatsapp:  "020-000-0001",
	})
	require.NoError(t, err)
	assert.Equal(t, "+233244000001", m.Phone)
	assert.Equal(t, "0200000001", m.Whatsapp)
}

func TestCreate_WithNestedChildren(t *testing.T) {
	svc, db := setupMinistersTest(t)
	m, err := svc.Create(context.Background(), &models.Minister{
		FirstName: "Ama",
		Surname:   "Owusu",
		EmergencyContacts: []models.EmergencyContact{
			{Name: "Kofi Owusu", Phone: "+233200111222", Relationship: "Brother"},
		},
	})
	require.NoError(t, err)

	var contacts []models.EmergencyContact
	require.NoError(t, db.Where("minister_id = ?", m.MinisterID).Find(&contacts).Error)
	assert.Len(t, contacts, 1)
}

func TestList_FiltersAndSearch(t *testing.T) {
	svc, _ := setupMinistersTest(t)
	_, err := svc.Create(context.Background(), &models.Minister{
		FirstName: "Ama", Surname: "Owusu", Association: "Northern", Phone: "+233244000001",
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), &models.Minister{
		FirstName: "Yaw", Surname: "Boateng", Association: "Southern", Phone: "+233244000002",
	})
	require.NoError(t, err)

	northern, err := svc.List(context.Background(), ListFilter{Association: "Northern"})
	require.NoError(t, err)
	require.Len(t, northern, 1)
	assert.Equal(t, "Ama", northern[0].FirstName)

	byName, err := svc.List(context.Background(), ListFilter{Search: "Boat"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Yaw", byName[0].FirstName)

	byPhone, err := svc.List(context.Background(), ListFilter{Search: "244000001"})
	require.NoError(t, err)
	require.Len(t, byPhone, 1)
	assert.Equal(t, "Ama", byPhone[0].FirstName)
}

func TestSearch_RequiresTerm(t *testing.T) {
	svc, _ := setupMinistersTest(t)
	_, err := svc.Search(context.Background(), "   ")
	assert.Error(t, err)
}

func TestUpdate_NormalizesAndProtectsID(t *testing.T) {
	svc, _ := setupMinistersTest(t)
	m, err := svc.Create(context.Background(), &models.Minister{FirstName: "Ama", Surname: "Owusu"})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), m.MinisterID.String(), map[string]interface{}{
		"phone":       "+233 244 000 009",
		"region":      "Volta",
		"minister_id": "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, m.MinisterID, updated.MinisterID)
	assert.Equal(t, "+233244000009", updated.Phone)
	assert.Equal(t, "Volta", updated.Region)
}

func TestDelete_SoftDeletes(t *testing.T) {
	svc, db := setupMinistersTest(t)
	m, err := svc.Create(context.Background(), &models.Minister{FirstName: "Ama", Surname: "Owusu"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), m.MinisterID.String()))

	_, err = svc.Get(context.Background(), m.MinisterID.String())
	assert.ErrorIs(t, err, ErrMinisterNotFound)

	var count int64
	db.Unscoped().Model(&models.Minister{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestAddEmergencyContact_Validation(t *testing.T) {
	svc, _ := setupMinistersTest(t)
	m, err := svc.Create(context.Background(), &models.Minister{FirstName: "Ama", Surname: "Owusu"})
	require.NoError(t, err)

	_, err = svc.AddEmergencyContact(context.Background(), m.MinisterID.String(), &models.EmergencyContact{Name: "Kofi"})
	assert.Error(t, err)

	contact, err := svc.AddEmergencyContact(context.Background(), m.MinisterID.String(), &models.EmergencyContact{
		Name: "Kofi", Phone: "+233 200 111 222",
	})
	require.NoError(t, err)
	assert.Equal(t, "+233200111222", contact.Phone)
	assert.Equal(t, m.MinisterID, contact.MinisterID)
}

func TestExportRoster_ProducesWorkbook(t *testing.T) {
	svc, _ := setupMinistersTest(t)
	dob := time.Date(1980, 3, 17, 0, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), &models.Minister{
		FirstName: "Ama", Surname: "Owusu", Phone: "+233244000001", DateOfBirth: &dob,
	})
	require.NoError(t, err)

	data, err := svc.ExportRoster(context.Background(), ListFilter{})
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()
	rows, err := wb.GetRows(wb.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "First Name", rows[0][1])
	assert.Equal(t, "Ama", rows[1][1])
	assert.Contains(t, rows[1], "1980-03-17")
}

func TestRosterFilename(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "ministers-20260831.xlsx", RosterFilename(now))
}
