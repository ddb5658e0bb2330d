package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"roombooker/internal/domain"
	"roombooker/internal/models"

	"github.com/xuri/excelize/v2"
)

// Exporter writes booking history reports as spreadsheets.
type Exporter struct {
	store domain.LocalStore
	path  string
}

func NewExporter(store domain.LocalStore, path string) *Exporter {
	return &Exporter{store: store, path: path}
}

// UserBookings writes all bookings of a user into an xlsx file and returns
// the file path.
func (e *Exporter) UserBookings(ctx context.Context, userID string) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	bookings, err := e.store.GetBookingsByUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("error getting bookings: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Bookings"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headers := []string{"ID", "Hotel", "Room", "Type", "Check-in", "Check-out", "Guests", "Total", "Status", "Created"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	_ = f.SetCellStyle(sheetName, "A1", "J1", headerStyle)

	for row, b := range bookings {
		values := []interface{}{
			b.ID, b.HotelName, b.RoomName, b.RoomType,
			b.CheckInDate, b.CheckOutDate, b.Guests, b.TotalPrice,
			statusLabel(b.Status), b.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 36)
	_ = f.SetColWidth(sheetName, "B", "C", 24)
	_ = f.SetColWidth(sheetName, "D", "J", 14)

	fileName := fmt.Sprintf("bookings_%s_%s.xlsx", userID, time.Now().Format("20060102_150405"))
	fullPath := filepath.Join(e.path, fileName)
	if err := f.SaveAs(fullPath); err != nil {
		return "", fmt.Errorf("error saving export file: %w", err)
	}
	return fullPath, nil
}

func statusLabel(status string) string {
	switch status {
	case models.StatusPending:
		return "Pending"
	case models.StatusConfirmed:
		return "Confirmed"
	case models.StatusCancelled:
		return "Cancelled"
	case models.StatusCompleted:
		return "Completed"
	default:
		return status
	}
}
