package spreadsheet

import (
	"errors"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrNoSheet   = errors.New("workbook has no sheets")
	ErrNoHeader  = errors.New("first sheet has no header row")
	ErrNoColumns = errors.New("header row has no name or phone column")
)

// Contact is one imported row.
type Contact struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

// Case-insensitive header aliases for the two columns of interest.
var nameAliases = []string{"name", "full name", "fullname", "minister name"}
var phoneAliases = []string{"phone", "phone number", "phone_number", "mobile", "mobile number", "contact", "telephone"}

// Parse reads the first sheet of an xlsx workbook. The header row is
// required; rows with an empty phone are dropped.
func Parse(r io.Reader) ([]Contact, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	sheet := wb.GetSheetName(0)
	if sheet == "" {
		return nil, ErrNoSheet
	}
	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoHeader
	}

	nameCol, phoneCol := -1, -1
	for i, h := range rows[0] {
		header := strings.ToLower(strings.TrimSpace(h))
		if nameCol == -1 && matches(header, nameAliases) {
			nameCol = i
		}
		if phoneCol == -1 && matches(header, phoneAliases) {
			phoneCol = i
		}
	}
	if phoneCol == -1 {
		return nil, ErrNoColumns
	}

	var out []Contact
	for _, row := range rows[1:] {
		phone := cell(row, phoneCol)
		if phone == "" {
			continue
		}
		out = append(out, Contact{
			Name:        cell(row, nameCol),
			PhoneNumber: phone,
		})
	}
	return out, nil
}

func matches(header string, aliases []string) bool {
	for _, a := range aliases {
		if header == a {
			return true
		}
	}
	return false
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
