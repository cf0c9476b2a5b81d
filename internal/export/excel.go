package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"innkeep/internal/models"

	"github.com/xuri/excelize/v2"
)

var historyHeaders = []string{
	"Reservation", "Checked out", "Room", "Guest", "Email", "Check-in",
	"Check-out", "Days", "Rate/night", "Total", "Method", "Billing name",
	"Billing address", "Channel",
}

// WriteHistoryReport writes an XLSX billing report of the given
// history records and returns the file path.
func WriteHistoryReport(records []*models.HistoryRecord, start, end time.Time, exportPath string) (string, error) {
	if err := os.MkdirAll(exportPath, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Checkouts"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Check-outs %s to %s",
		start.Format(models.DateLayout), end.Format(models.DateLayout)))

	for i, header := range historyHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, header)
	}

	var revenue int64
	for rowIdx, record := range records {
		values := []interface{}{
			record.ReservationID,
			record.CheckedOutAt.Format("2006-01-02 15:04"),
			record.RoomName,
			record.Guest.FirstName + " " + record.Guest.LastName,
			record.Guest.Email,
			record.CheckIn.Format(models.DateLayout),
			record.CheckOut.Format(models.DateLayout),
			record.Payment.DaysStayed,
			record.RatePerNight,
			record.Payment.TotalAmount,
			record.Payment.Method,
			record.Payment.BillingName,
			record.Payment.BillingAddress,
			record.Channel,
		}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+3)
			_ = f.SetCellValue(sheetName, cell, v)
		}
		revenue += record.Payment.TotalAmount
	}

	totalRow := len(records) + 3
	labelCell, _ := excelize.CoordinatesToCellName(9, totalRow)
	valueCell, _ := excelize.CoordinatesToCellName(10, totalRow)
	_ = f.SetCellValue(sheetName, labelCell, "Revenue")
	_ = f.SetCellValue(sheetName, valueCell, revenue)

	_ = f.SetColWidth(sheetName, "A", "N", 18)

	lastCol, _ := excelize.ColumnNumberToName(len(historyHeaders))
	_ = f.MergeCell(sheetName, "A1", lastCol+"1")
	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", style)

	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	_ = f.SetCellStyle(sheetName, "A2", lastCol+"2", headerStyle)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("checkouts_%s_to_%s.xlsx",
		start.Format(models.DateLayout), end.Format(models.DateLayout))
	filePath := filepath.Join(exportPath, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}
	return filePath, nil
}
