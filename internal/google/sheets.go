package google

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"stayfront/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsService mirrors the admin console data into Google Sheets so the
// finance team can work outside the console.
type SheetsService struct {
	service         *sheets.Service
	paymentsSheetID string
	bookingsSheetID string
}

func NewSheetsService(credentialsFile, paymentsSheetID, bookingsSheetID string) (*SheetsService, error) {
	ctx := context.Background()

	// Читаем файл учетных данных сервисного аккаунта
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %v", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %v", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %v", err)
	}

	return &SheetsService{
		service:         srv,
		paymentsSheetID: paymentsSheetID,
		bookingsSheetID: bookingsSheetID,
	}, nil
}

// TestConnection проверяет подключение к таблице
func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.paymentsSheetID, "Payments!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %v", err)
	}
	return nil
}

// GetServiceAccountEmail возвращает email сервисного аккаунта
func (s *SheetsService) GetServiceAccountEmail(credentialsFile string) (string, error) {
	file, err := os.ReadFile(credentialsFile)
	if err != nil {
		return "", err
	}

	var creds struct {
		ClientEmail string `json:"client_email"`
	}
	if err := json.Unmarshal(file, &creds); err != nil {
		return "", err
	}

	return creds.ClientEmail, nil
}

// ReplacePaymentsSheet полностью перезаписывает лист транзакций.
func (s *SheetsService) ReplacePaymentsSheet(ctx context.Context, invoices []models.Invoice) error {
	clearReq := &sheets.ClearValuesRequest{}
	_, err := s.service.Spreadsheets.Values.Clear(s.paymentsSheetID, "Payments!A2:F", clearReq).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to clear payments sheet: %v", err)
	}

	var values [][]interface{}
	for _, inv := range invoices {
		row := []interface{}{
			inv.ID,
			inv.OwnerName,
			inv.Month,
			inv.Amount,
			inv.Method,
			inv.Status,
		}
		values = append(values, row)
	}

	valueRange := &sheets.ValueRange{Values: values}
	_, err = s.service.Spreadsheets.Values.Update(s.paymentsSheetID, "Payments!A2", valueRange).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update payments sheet: %v", err)
	}
	return nil
}

// ReplaceBookingsSheet полностью перезаписывает лист бронирований.
func (s *SheetsService) ReplaceBookingsSheet(ctx context.Context, bookings []models.Booking) error {
	clearReq := &sheets.ClearValuesRequest{}
	_, err := s.service.Spreadsheets.Values.Clear(s.bookingsSheetID, "Bookings!A2:J", clearReq).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to clear bookings sheet: %v", err)
	}

	var values [][]interface{}
	for _, b := range bookings {
		row := []interface{}{
			b.ID,
			b.GuestName,
			b.Property,
			b.Room,
			b.CheckIn,
			b.CheckOut,
			b.Guests,
			b.Amount,
			b.Status,
			b.PaymentStatus,
		}
		values = append(values, row)
	}

	valueRange := &sheets.ValueRange{Values: values}
	_, err = s.service.Spreadsheets.Values.Update(s.bookingsSheetID, "Bookings!A2", valueRange).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update bookings sheet: %v", err)
	}
	return nil
}
