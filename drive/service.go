package drive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	majorDimensionRows = "ROWS"
	valueInputRaw      = "RAW"
	firstCell          = "A1"
)

var ErrSheetWrite = errors.New("sheet write error")

type Config struct {
	SpreadsheetID string
	// InsertSheetsAt is the tab index new sheets are created at.
	// 0 creates a new sheet as the first tab.
	InsertSheetsAt int64
	// Credentials is a service account json key. When empty the application
	// default credentials are used.
	Credentials []byte
}

type service struct {
	spreadsheetID  string
	insertSheetsAt int64
	sheetsService  *sheets.Service
}

func NewGoogleSheetsService(ctx context.Context, config *Config) (SheetWriter, error) {
	if config.SpreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}

	if len(config.Credentials) > 0 {
		serviceConfig, err := google.JWTConfigFromJSON(config.Credentials, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, err
		}

		opts = []option.ClientOption{option.WithHTTPClient(serviceConfig.Client(ctx))}
	}

	sheetsService, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return newService(sheetsService, config), nil
}

func newService(sheetsService *sheets.Service, config *Config) *service {
	return &service{
		spreadsheetID:  config.SpreadsheetID,
		insertSheetsAt: config.InsertSheetsAt,
		sheetsService:  sheetsService,
	}
}

// WriteSheet replaces the content of the sheet titled name with rows,
// creating the sheet if it does not exist yet.
func (s *service) WriteSheet(ctx context.Context, name string, rows [][]interface{}) error {
	if err := s.ensureSheet(ctx, name); err != nil {
		return fmt.Errorf("%w: sheet %q: %s", ErrSheetWrite, name, err)
	}

	sheetRange := quoteSheetName(name)

	if _, err := s.sheetsService.Spreadsheets.Values.
		Clear(s.spreadsheetID, sheetRange, &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do(); err != nil {
		return fmt.Errorf("%w: clear sheet %q: %s", ErrSheetWrite, name, err)
	}

	if len(rows) == 0 {
		return nil
	}

	writeRange := sheetRange + "!" + firstCell
	valueRange := &sheets.ValueRange{
		MajorDimension: majorDimensionRows,
		Range:          writeRange,
		Values:         rows,
	}

	if _, err := s.sheetsService.Spreadsheets.Values.
		Update(s.spreadsheetID, writeRange, valueRange).
		ValueInputOption(valueInputRaw).
		IncludeValuesInResponse(false).
		Context(ctx).
		Do(); err != nil {
		return fmt.Errorf("%w: update sheet %q: %s", ErrSheetWrite, name, err)
	}

	return nil
}

func (s *service) ensureSheet(ctx context.Context, name string) error {
	spreadsheet, err := s.sheetsService.Spreadsheets.
		Get(s.spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return err
	}

	if findSheet(spreadsheet.Sheets, name) != nil {
		return nil
	}

	batchUpdateRequest := &sheets.BatchUpdateSpreadsheetRequest{
		IncludeSpreadsheetInResponse: false,
		Requests: []*sheets.Request{
			{AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title:           name,
					Index:           insertIndex(s.insertSheetsAt, len(spreadsheet.Sheets)),
					ForceSendFields: []string{"Index"},
				}},
			},
		},
	}

	_, err = s.sheetsService.Spreadsheets.BatchUpdate(s.spreadsheetID, batchUpdateRequest).Context(ctx).Do()

	return err
}

func findSheet(sheetList []*sheets.Sheet, title string) *sheets.SheetProperties {
	for _, sheet := range sheetList {
		if sheet.Properties != nil && sheet.Properties.Title == title {
			return sheet.Properties
		}
	}

	return nil
}

// insertIndex clamps the configured position to the existing tabs.
func insertIndex(insertAt int64, sheetCount int) int64 {
	switch {
	case insertAt < 0:
		return 0
	case insertAt > int64(sheetCount):
		return int64(sheetCount)
	default:
		return insertAt
	}
}

// quoteSheetName quotes a sheet title for use in A1 notation.
func quoteSheetName(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
