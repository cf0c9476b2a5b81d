package ledger

import (
	"context"
	"fmt"
	"os"

	"innkeep/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsLedger appends checked-out stays to the owner's spreadsheet.
// History records are immutable, so the ledger is append-only: no row
// tracking or updates are ever needed.
type SheetsLedger struct {
	service       *sheets.Service
	spreadsheetID string
}

func NewSheetsLedger(credentialsFile, spreadsheetID string) (*SheetsLedger, error) {
	ctx := context.Background()

	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}

	return &SheetsLedger{
		service:       srv,
		spreadsheetID: spreadsheetID,
	}, nil
}

// TestConnection verifies the spreadsheet is reachable.
func (l *SheetsLedger) TestConnection(ctx context.Context) error {
	_, err := l.service.Spreadsheets.Get(l.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to open ledger spreadsheet: %w", err)
	}
	return nil
}

// AppendRecord appends one checked-out stay as a ledger row.
func (l *SheetsLedger) AppendRecord(ctx context.Context, record *models.HistoryRecord) error {
	row := []interface{}{
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

	valueRange := &sheets.ValueRange{Values: [][]interface{}{row}}
	_, err := l.service.Spreadsheets.Values.
		Append(l.spreadsheetID, "Ledger!A:N", valueRange).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("unable to append ledger row: %w", err)
	}
	return nil
}
