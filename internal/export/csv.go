package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"stayfront/internal/models"
)

// bookingHeaders is the fixed column order for every export format.
var bookingHeaders = []string{
	"Booking ID", "Guest Name", "Property", "Room", "Check-In",
	"Check-Out", "Guests", "Amount", "Status", "Payment Status",
}

// WriteBookingsCSV writes the header row plus one record per booking.
// encoding/csv quotes fields containing commas, quotes or newlines, so
// guest names and property names round-trip intact.
func WriteBookingsCSV(w io.Writer, bookings []models.Booking) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(bookingHeaders); err != nil {
		return err
	}
	for i := range bookings {
		if err := cw.Write(bookingRecord(&bookings[i])); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

var invoiceHeaders = []string{
	"Transaction ID", "Owner", "Month", "Amount", "Method", "Status",
}

// WriteInvoicesCSV writes the admin payments table as CSV.
func WriteInvoicesCSV(w io.Writer, invoices []models.Invoice) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(invoiceHeaders); err != nil {
		return err
	}
	for _, inv := range invoices {
		record := []string{
			strconv.FormatInt(inv.ID, 10),
			inv.OwnerName,
			inv.Month,
			strconv.FormatInt(inv.Amount, 10),
			inv.Method,
			inv.Status,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func bookingRecord(b *models.Booking) []string {
	return []string{
		b.ID,
		b.GuestName,
		b.Property,
		b.Room,
		b.CheckIn,
		b.CheckOut,
		strconv.Itoa(b.Guests),
		strconv.FormatInt(b.Amount, 10),
		b.Status,
		b.PaymentStatus,
	}
}
