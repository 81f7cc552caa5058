package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"stayfront/internal/models"

	"github.com/xuri/excelize/v2"
)

const bookingsSheet = "Bookings"

// WriteBookingsExcel streams an xlsx workbook with the same columns as the
// CSV export.
func WriteBookingsExcel(w io.Writer, bookings []models.Booking) error {
	f, err := buildBookingsWorkbook(bookings)
	if err != nil {
		return err
	}
	defer f.Close()

	return f.Write(w)
}

// SaveBookingsExcel записывает xlsx файл в каталог экспорта и возвращает путь.
func SaveBookingsExcel(dir string, bookings []models.Booking) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	f, err := buildBookingsWorkbook(bookings)
	if err != nil {
		return "", err
	}
	defer f.Close()

	fileName := fmt.Sprintf("bookings_export_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(dir, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}
	return filePath, nil
}

func buildBookingsWorkbook(bookings []models.Booking) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(bookingsSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, header := range bookingHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(bookingsSheet, cell, header)
		_ = f.SetCellStyle(bookingsSheet, cell, cell, headerStyle)
	}

	for i := range bookings {
		row := i + 2
		record := bookingRecord(&bookings[i])
		for col, value := range record {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(bookingsSheet, cell, value)
		}
		// Числовые колонки пишем числами, чтобы работали фильтры и суммы
		guestsCell, _ := excelize.CoordinatesToCellName(7, row)
		_ = f.SetCellValue(bookingsSheet, guestsCell, bookings[i].Guests)
		amountCell, _ := excelize.CoordinatesToCellName(8, row)
		_ = f.SetCellValue(bookingsSheet, amountCell, bookings[i].Amount)
	}

	_ = f.SetColWidth(bookingsSheet, "A", "A", 12)
	_ = f.SetColWidth(bookingsSheet, "B", "C", 25)
	_ = f.SetColWidth(bookingsSheet, "D", "F", 15)
	_ = f.SetColWidth(bookingsSheet, "G", "H", 10)
	_ = f.SetColWidth(bookingsSheet, "I", "J", 15)

	_ = f.DeleteSheet("Sheet1")
	return f, nil
}
