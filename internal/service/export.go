package service

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"ministry/internal/model"
)

// ReportContentType is the media type of ReportWorkbook output.
const ReportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportWorkbook renders Report as an .xlsx file.
func (s *DuesService) ReportWorkbook(ctx context.Context, year int) ([]byte, error) {
	report, err := s.Report(ctx, year)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := fmt.Sprintf("Dues %d", year)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := []any{"Member", "Date", "Amount"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	row := 2
	var grand model.Amount
	for _, member := range report {
		for _, p := range member.Payments {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			values := []any{member.MemberName, p.Date.String(), p.Amount.Float()}
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return nil, fmt.Errorf("failed to write row: %w", err)
			}
			row++
		}
		grand += member.Total
	}
	cell, _ := excelize.CoordinatesToCellName(1, row)
	total := []any{"Total", "", grand.Float()}
	if err := f.SetSheetRow(sheet, cell, &total); err != nil {
		return nil, fmt.Errorf("failed to write total: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}
