// Package export renders booking reports for cafe managers.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/avezov/cafe-booking/internal/model"
)

var reportColumns = []string{
	"Booking ID", "Date", "Customer", "Guests", "Status",
	"Tables", "Slots", "Note", "Created",
}

// WriteBookingsXLSX renders the bookings as a single-sheet Excel
// workbook and writes it to w.  Rows arrive in the order the caller
// listed them.
func WriteBookingsXLSX(w io.Writer, cafeName string, bookings []model.BookingDetail) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Bookings"
	f.SetSheetName("Sheet1", sheet)

	for i, col := range reportColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return err
		}
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		start, _ := excelize.CoordinatesToCellName(1, 1)
		end, _ := excelize.CoordinatesToCellName(len(reportColumns), 1)
		_ = f.SetCellStyle(sheet, start, end, style)
	}

	for i, b := range bookings {
		note := ""
		if b.Note != nil {
			note = *b.Note
		}
		row := []any{
			b.ID.String(),
			b.BookingDate.Format("2006-01-02"),
			b.UserID.String(),
			b.GuestNumber,
			string(b.Status),
			tableList(b.Tables),
			slotList(b.Slots),
			note,
			b.CreatedAt.Format("2006-01-02 15:04"),
		}
		for j, val := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}

func tableList(tables []model.Table) string {
	parts := make([]string, 0, len(tables))
	for _, t := range tables {
		parts = append(parts, fmt.Sprintf("#%d", t.SeatNumber))
	}
	return strings.Join(parts, ", ")
}

func slotList(slots []model.Slot) string {
	parts := make([]string, 0, len(slots))
	for _, s := range slots {
		parts = append(parts, s.StartTime[:5]+"-"+s.EndTime[:5])
	}
	return strings.Join(parts, ", ")
}
