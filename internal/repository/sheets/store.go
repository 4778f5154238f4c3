package sheets

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mbodj/packhouse/internal/config"
	"github.com/mbodj/packhouse/internal/domain/models"
	"github.com/mbodj/packhouse/internal/repository"
)

const (
	logRange   = "PackingLog!A:L"
	dateLayout = "2006-01-02"
	timeLayout = time.RFC3339
)

// Store implements repository.Store on a Google Sheets tab, treating the
// spreadsheet as a remote append-only table. Row order is insertion order.
type Store struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewStore builds a Google Sheets backed store instance.
func NewStore(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &Store{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// Append adds the entry as one spreadsheet row with a generated identifier.
func (s *Store) Append(ctx context.Context, entry models.PackingLogEntry) (models.PackingLogEntry, error) {
	entry.ID = fmt.Sprintf("entry-%d", time.Now().UnixNano())

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{rowValues(entry)}}

	call := s.service.Spreadsheets.Values.Append(s.spreadsheetID, logRange, payload).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return models.PackingLogEntry{}, fmt.Errorf("%w: append row into range %s: %v", repository.ErrStorageUnavailable, logRange, err)
	}

	s.logger.Debug("row appended to sheet", zap.String("range", logRange), zap.String("id", entry.ID))
	return entry, nil
}

// ReadAll fetches the whole tab and decodes each row. A row that does not
// parse fails the read: a partial log would silently skew summaries and
// exports.
func (s *Store) ReadAll(ctx context.Context) ([]models.PackingLogEntry, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, logRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: read range %s: %v", repository.ErrStorageUnavailable, logRange, err)
	}

	entries, err := decodeRows(resp.Values)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func decodeRows(rows [][]interface{}) ([]models.PackingLogEntry, error) {
	entries := make([]models.PackingLogEntry, 0, len(rows))
	for i, row := range rows {
		entry, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d of range %s: %v", repository.ErrStorageUnavailable, i+1, logRange, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func rowValues(e models.PackingLogEntry) []interface{} {
	return []interface{}{
		e.ID,
		e.Date.Format(dateLayout),
		e.Minutes,
		e.People,
		e.FinishedPunnets,
		e.WasteOrDowntime,
		e.Note,
		e.HourlyRate,
		e.LabourHours,
		e.PunnetsPerLabourHour,
		e.LabourCostPerPunnet,
		e.CreatedAt.Format(timeLayout),
	}
}

func parseRow(row []interface{}) (models.PackingLogEntry, error) {
	if len(row) < 12 {
		return models.PackingLogEntry{}, fmt.Errorf("expected 12 columns, got %d", len(row))
	}

	date, err := time.Parse(dateLayout, fmt.Sprint(row[1]))
	if err != nil {
		return models.PackingLogEntry{}, fmt.Errorf("parse date: %w", err)
	}
	createdAt, err := time.Parse(timeLayout, fmt.Sprint(row[11]))
	if err != nil {
		return models.PackingLogEntry{}, fmt.Errorf("parse created_at: %w", err)
	}

	minutes, err := parseFloat(row[2])
	if err != nil {
		return models.PackingLogEntry{}, fmt.Errorf("parse minutes: %w", err)
	}
	people, err := parseInt(row[3])
	if err != nil {
		return models.PackingLogEntry{}, fmt.Errorf("parse people: %w", err)
	}
	punnets, err := parseFloat(row[4])
	if err != nil {
		return models.PackingLogEntry{}, fmt.Errorf("parse finished_punnets: %w", err)
	}
	waste, err := parseFloat(row[5])
	if err != nil {
		return models.PackingLogEntry{}, fmt.Errorf("parse waste_or_downtime: %w", err)
	}
	rate, err := parseFloat(row[7])
	if err != nil {
		return models.PackingLogEntry{}, fmt.Errorf("parse hourly_rate: %w", err)
	}
	hours, err := parseFloat(row[8])
	if err != nil {
		return models.PackingLogEntry{}, fmt.Errorf("parse labour_hours: %w", err)
	}
	perHour, err := parseFloat(row[9])
	if err != nil {
		return models.PackingLogEntry{}, fmt.Errorf("parse punnets_per_labour_hour: %w", err)
	}
	cost, err := parseFloat(row[10])
	if err != nil {
		return models.PackingLogEntry{}, fmt.Errorf("parse labour_cost_per_punnet: %w", err)
	}

	return models.PackingLogEntry{
		ID:                   fmt.Sprint(row[0]),
		Date:                 date,
		Minutes:              minutes,
		People:               people,
		FinishedPunnets:      punnets,
		WasteOrDowntime:      waste,
		Note:                 fmt.Sprint(row[6]),
		HourlyRate:           rate,
		LabourHours:          hours,
		PunnetsPerLabourHour: perHour,
		LabourCostPerPunnet:  cost,
		CreatedAt:            createdAt,
	}, nil
}

func parseFloat(value interface{}) (float64, error) {
	str := fmt.Sprint(value)
	if str == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	return strconv.ParseFloat(str, 64)
}

func parseInt(value interface{}) (int, error) {
	str := fmt.Sprint(value)
	if str == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	return strconv.Atoi(str)
}

var _ repository.Store = (*Store)(nil)
