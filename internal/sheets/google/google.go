package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"daybook/internal/core"
	"daybook/internal/log"
	"daybook/internal/ports"
)

// lastColumn is the column letter of the rightmost ledger column.
const lastColumn = "K"

var ledgerHeader = []any{
	"ID", "Date", "Opening Cash", "Cash Sales", "Online Sales", "Cash Taken Out",
	"Withdrawn From", "Closing Cash", "Online Balance", "Note", "Created By",
}

var _ ports.Renderer = (*Renderer)(nil)

// Renderer mirrors the whole ledger into one spreadsheet tab.
type Renderer struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// New creates a Sheets renderer authenticated with a service account.
func New(ctx context.Context, opts Options) (*Renderer, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheetName := strings.TrimSpace(opts.SheetName)
	if sheetName == "" {
		sheetName = "Daybook"
	}

	credentialsJSON, err := loadCredentials(opts)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets renderer ready",
		log.FieldComponent, log.ComponentSheets,
		"spreadsheet_id", opts.SpreadsheetID,
		"sheet", sheetName)

	return &Renderer{svc: svc, spreadsheetID: opts.SpreadsheetID, sheetName: sheetName}, nil
}

func loadCredentials(opts Options) ([]byte, error) {
	switch {
	case strings.TrimSpace(opts.CredentialsJSON) != "":
		return []byte(opts.CredentialsJSON), nil
	case strings.TrimSpace(opts.CredentialsFile) != "":
		data, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

// Render overwrites the tab with the ledger, then clears leftover rows from
// a previously longer ledger.
func (r *Renderer) Render(ctx context.Context, ledger core.Ledger) error {
	if r.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rows := ledgerRows(ledger)
	rng := dataRange(r.sheetName, len(rows))
	_, err := r.svc.Spreadsheets.Values.Update(r.spreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}

	tail := tailRange(r.sheetName, len(rows))
	_, err = r.svc.Spreadsheets.Values.Clear(r.spreadsheetID, tail, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", tail, err)
	}

	slog.InfoContext(ctx, "Ledger mirrored to Google Sheets",
		log.FieldComponent, log.ComponentSheets,
		log.FieldOperation, log.OpRender,
		log.FieldRecords, len(ledger.Records),
		"sheet", r.sheetName)
	return nil
}

func dataRange(sheet string, rows int) string {
	return fmt.Sprintf("%s!A1:%s%d", sheet, lastColumn, rows)
}

func tailRange(sheet string, rows int) string {
	return fmt.Sprintf("%s!A%d:%s", sheet, rows+1, lastColumn)
}

// ledgerRows lays out the header and one row per record. Amounts are plain
// numbers so the spreadsheet can sum them.
func ledgerRows(ledger core.Ledger) [][]any {
	online := ledger.OnlineByID()
	rows := make([][]any, 0, len(ledger.Records)+1)
	rows = append(rows, ledgerHeader)
	for _, rec := range ledger.Records {
		rows = append(rows, []any{
			rec.ID,
			rec.Date.String(),
			rec.OpeningCash.Float(),
			rec.CashSales.Float(),
			rec.OnlineSales.Float(),
			rec.CashTakenOut.Float(),
			rec.WithdrawalKind.String(),
			rec.ClosingCash.Float(),
			online[rec.ID].Closing.Float(),
			sheetText(rec.Note),
			rec.CreatedBy,
		})
	}
	return rows
}

// sheetText keeps free text literal under USER_ENTERED: a leading apostrophe
// stops the sheet from evaluating it as a formula and is not displayed.
func sheetText(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@':
		return "'" + s
	}
	return s
}
