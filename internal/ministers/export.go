package ministers

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

var rosterHeaders = []string{
	"Title", "First Name", "Surname", "Other Names", "Gender", "Date of Birth",
	"Phone", "WhatsApp", "Email", "Church", "Association", "Sector", "Fellowship",
	"Position", "Date Joined", "Status",
}

// ExportRoster writes the minister roster to an xlsx workbook and returns the
// serialized bytes.
func (s *Service) ExportRoster(ctx context.Context, f ListFilter) ([]byte, error) {
	rows, err := s.List(ctx, f)
	if err != nil {
		return nil, err
	}

	wb := excelize.NewFile()
	defer wb.Close()
	sheet := wb.GetSheetName(0)

	for i, h := range rosterHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := wb.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}
	for r, m := range rows {
		values := []interface{}{
			m.Title, m.FirstName, m.Surname, m.OtherNames, m.Gender, formatDate(m.DateOfBirth),
			m.Phone, m.Whatsapp, m.Email, m.Church, m.Association, m.Sector, m.Fellowship,
			m.Position, formatDate(m.DateJoined), m.Status,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, r+2)
			if err := wb.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := wb.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// RosterFilename returns the attachment name for an export taken now.
func RosterFilename(now time.Time) string {
	return fmt.Sprintf("ministers-%s.xlsx", now.Format("20060102"))
}
