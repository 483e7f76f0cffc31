// Package export renders visit listings as spreadsheets.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ArbeitTechnology/cid-visitor-backend/internal/models"
)

var visitHeader = []string{
	"Visitor", "Phone", "Address", "Purpose",
	"Officer", "Designation", "Department", "Unit",
	"Visit Time",
}

// WriteVisitsXLSX writes one row per visit to w, officer snapshot columns
// included.
func WriteVisitsXLSX(w io.Writer, visits []models.Visit) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Visits"
	f.SetSheetName("Sheet1", sheet)

	for col, title := range visitHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return err
		}
	}

	for i, v := range visits {
		row := []any{
			v.VisitorName,
			v.Phone,
			v.Address,
			string(v.Purpose),
			v.OfficerName,
			v.OfficerDesignation,
			v.OfficerDepartment,
			v.OfficerUnit,
			v.VisitTime.Format(time.RFC3339),
		}
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
