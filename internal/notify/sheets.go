package notify

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"steam_market_deals/internal/alert"
)

// Sheets appends each alert as a row to a Google Sheets spreadsheet.
type Sheets struct {
	service       *sheets.Service
	spreadsheetID string
	writeRange    string
	now           func() time.Time
}

func NewSheets(ctx context.Context, credentialsFile, spreadsheetID, writeRange string) (*Sheets, error) {
	service, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Sheets{
		service:       service,
		spreadsheetID: spreadsheetID,
		writeRange:    writeRange,
		now:           time.Now,
	}, nil
}

func (s *Sheets) Name() string {
	return "sheets"
}

func (s *Sheets) Send(ctx context.Context, a *alert.Alert) error {
	row := []interface{}{
		s.now().UTC().Format(time.RFC3339),
		a.Item.Name,
		a.Item.Price.StringFixed(2),
		a.Ref.LowestPrice.StringFixed(2),
		a.Percentage.String(),
		a.NetProfit.StringFixed(2),
		a.SellEven.StringFixed(2),
		a.Item.URL,
		a.Ref.URL,
	}

	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{row},
	}

	_, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, s.writeRange, valueRange).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append alert row: %w", err)
	}

	return nil
}
