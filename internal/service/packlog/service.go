package packlog

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mbodj/packhouse/internal/costing"
	"github.com/mbodj/packhouse/internal/domain/models"
	"github.com/mbodj/packhouse/internal/repository"
)

const dateLayout = "2006-01-02"

// FieldError reports which submitted field failed validation. It unwraps to
// costing.ErrInvalidInput so callers can match the whole category.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return costing.ErrInvalidInput
}

// Mirror pushes stored entries to a secondary destination. Pushes are best
// effort: a failed push is logged and never fails the submission.
type Mirror interface {
	PushEntry(ctx context.Context, entry models.PackingLogEntry) error
}

// Service owns the submit path: boundary validation, derived-field
// computation at save time, append, and the optional mirror push.
type Service struct {
	store      repository.Store
	mirror     Mirror
	hourlyRate float64
	logger     *zap.Logger
	now        func() time.Time
}

// NewService wires a packing-log service. mirror may be nil.
func NewService(store repository.Store, mirror Mirror, hourlyRate float64, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:      store,
		mirror:     mirror,
		hourlyRate: hourlyRate,
		logger:     logger,
		now:        time.Now,
	}
}

// Submit validates the form, computes the derived fields from the raw values
// and the configured hourly rate, and appends the entry. Nothing is persisted
// when validation fails.
func (s *Service) Submit(ctx context.Context, form models.EntryForm) (models.PackingLogEntry, error) {
	entry, err := s.buildEntry(form)
	if err != nil {
		return models.PackingLogEntry{}, err
	}

	stored, err := s.store.Append(ctx, entry)
	if err != nil {
		return models.PackingLogEntry{}, err
	}

	s.logger.Info("packing log entry stored",
		zap.String("id", stored.ID),
		zap.String("date", stored.Date.Format(dateLayout)),
		zap.Float64("finished_punnets", stored.FinishedPunnets),
		zap.Float64("labour_cost_per_punnet", stored.LabourCostPerPunnet))

	s.pushToMirror(ctx, stored)

	return stored, nil
}

// List returns all stored entries in insertion order.
func (s *Service) List(ctx context.Context) ([]models.PackingLogEntry, error) {
	return s.store.ReadAll(ctx)
}

func (s *Service) buildEntry(form models.EntryForm) (models.PackingLogEntry, error) {
	if form.Date == "" {
		return models.PackingLogEntry{}, &FieldError{Field: "date", Reason: "is required"}
	}
	date, err := time.Parse(dateLayout, form.Date)
	if err != nil {
		return models.PackingLogEntry{}, &FieldError{Field: "date", Reason: "must be formatted as " + dateLayout}
	}

	if form.Minutes <= 0 {
		return models.PackingLogEntry{}, &FieldError{Field: "minutes", Reason: "must be greater than zero"}
	}
	if form.People < 1 {
		return models.PackingLogEntry{}, &FieldError{Field: "people", Reason: "must be at least one"}
	}
	if form.FinishedPunnets <= 0 {
		return models.PackingLogEntry{}, &FieldError{Field: "finished_punnets", Reason: "must be greater than zero"}
	}
	if form.WasteOrDowntime < 0 {
		return models.PackingLogEntry{}, &FieldError{Field: "waste_or_downtime", Reason: "must not be negative"}
	}

	derived, err := costing.Compute(form.Minutes, form.People, form.FinishedPunnets, s.hourlyRate)
	if err != nil {
		return models.PackingLogEntry{}, err
	}

	return models.PackingLogEntry{
		Date:                 date,
		Minutes:              form.Minutes,
		People:               form.People,
		FinishedPunnets:      form.FinishedPunnets,
		WasteOrDowntime:      form.WasteOrDowntime,
		Note:                 form.Note,
		HourlyRate:           s.hourlyRate,
		LabourHours:          derived.LabourHours,
		PunnetsPerLabourHour: derived.PunnetsPerLabourHour,
		LabourCostPerPunnet:  derived.LabourCostPerPunnet,
		CreatedAt:            s.now().UTC(),
	}, nil
}

func (s *Service) pushToMirror(ctx context.Context, entry models.PackingLogEntry) {
	if s.mirror == nil {
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.mirror.PushEntry(ctxWithTimeout, entry); err != nil {
		s.logger.Warn("mirror push failed", zap.String("id", entry.ID), zap.Error(err))
	}
}
