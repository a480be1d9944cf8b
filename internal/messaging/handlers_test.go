package messaging

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"ministry-backend/internal/ministers"
	"ministry-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func setupMessagingHandlersTest(t *testing.T) (*Handlers, *fakeProvider, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Minister{}))
	fake := &fakeProvider{}
	svc := &Service{DB: db, Provider: fake, Ministers: &ministers.Service{DB: db}}
	return &Handlers{Service: svc}, fake, db
}

func TestSendHandler_ManualSource(t *testing.T) {
	h, fake, _ := setupMessagingHandlersTest(t)
	app := fiber.New()
	app.Post("/send", h.Send)

	body, _ := json.Marshal(map[string]interface{}{
		"message": "Meeting at 3pm",
		"source":  "manual",
		"phones":  []string{"+233244000001", "+233244000002"},
	})
	req := httptest.NewRequest("POST", "/send", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, 1, fake.generalCalls)
	assert.Len(t, fake.generalRecipients, 2)
}

func TestSendHandler_UnknownSource(t *testing.T) {
	h, _, _ := setupMessagingHandlersTest(t)
	app := fiber.New()
	app.Post("/send", h.Send)

	body, _ := json.Marshal(map[string]interface{}{
		"message": "Hello",
		"source":  "everyone",
	})
	req := httptest.NewRequest("POST", "/send", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestSendHandler_AllSourceWithPlaceholders(t *testing.T) {
	h, fake, db := setupMessagingHandlersTest(t)
	require.NoError(t, db.Create(&models.Minister{
		FirstName: "Ama", Surname: "Owusu", Phone: "+233244000001",
	}).Error)

	app := fiber.New()
	app.Post("/send", h.Send)

	body, _ := json.Marshal(map[string]interface{}{
		"message": "Hi [[name]]",
		"source":  "all",
	})
	req := httptest.NewRequest("POST", "/send", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	require.Len(t, fake.personalized, 1)
	assert.Equal(t, "Hi Ama Owusu", fake.personalized[0].Message)
}

func TestSendHandler_NoRecipients(t *testing.T) {
	h, _, _ := setupMessagingHandlersTest(t)
	app := fiber.New()
	app.Post("/send", h.Send)

	body, _ := json.Marshal(map[string]interface{}{
		"message": "Hello",
		"source":  "manual",
		"phones":  []string{},
	})
	req := httptest.NewRequest("POST", "/send", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestImportPreviewHandler(t *testing.T) {
	h, _, _ := setupMessagingHandlersTest(t)
	app := fiber.New()
	app.Post("/import-preview", h.ImportPreview)

	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	require.NoError(t, wb.SetCellValue(sheet, "A1", "name"))
	require.NoError(t, wb.SetCellValue(sheet, "B1", "phone"))
	require.NoError(t, wb.SetCellValue(sheet, "A2", "Kojo"))
	require.NoError(t, wb.SetCellValue(sheet, "B2", "0201112222"))
	var xlsx bytes.Buffer
	require.NoError(t, wb.Write(&xlsx))

	var form bytes.Buffer
	writer := multipart.NewWriter(&form)
	part, err := writer.CreateFormFile("file", "contacts.xlsx")
	require.NoError(t, err)
	_, err = part.Write(xlsx.Bytes())
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/import-preview", &form)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	data, _ := result["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["count"])
	contacts, _ := data["contacts"].([]interface{})
	require.Len(t, contacts, 1)
	first, _ := contacts[0].(map[string]interface{})
	assert.Equal(t, "Kojo", first["name"])
	assert.Equal(t, "0201112222", first["phone_number"])
}

func TestImportPreviewHandler_MissingFile(t *testing.T) {
	h, _, _ := setupMessagingHandlersTest(t)
	app := fiber.New()
	app.Post("/import-preview", h.ImportPreview)

	req := httptest.NewRequest("POST", "/import-preview", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}
