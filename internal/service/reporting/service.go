package reporting

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/mbodj/packhouse/internal/domain/models"
	"github.com/mbodj/packhouse/internal/repository"
)

// Service exposes aggregate views over the packing log.
type Service struct {
	store  repository.Store
	logger *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(store repository.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// Snapshot loads every entry in insertion order together with its summary.
// The export surface works from this pair so the workbook and the summary
// endpoint always agree.
func (s *Service) Snapshot(ctx context.Context) ([]models.PackingLogEntry, models.Summary, error) {
	entries, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, models.Summary{}, fmt.Errorf("load packing log: %w", err)
	}
	return entries, BuildSummary(entries), nil
}

// Summarize aggregates all stored entries.
func (s *Service) Summarize(ctx context.Context) (models.Summary, error) {
	_, summary, err := s.Snapshot(ctx)
	return summary, err
}

// SummaryLine renders the summary as a single log-friendly sentence.
func SummaryLine(summary models.Summary) string {
	if summary.Entries == 0 {
		return "Packing log summary: no entries yet."
	}
	return fmt.Sprintf("Packing log summary: %d entries, %.2f labour hours, %.0f punnets, %.2f punnets/labour hour, avg cost %.4f per punnet.",
		summary.Entries,
		summary.TotalLabourHours,
		summary.TotalFinishedPunnets,
		summary.OverallPunnetsPerLabourHour,
		summary.AvgLabourCostPerPunnet)
}

// BuildSummary computes the aggregate totals over the given entries. Overall
// throughput is sum of punnets over sum of hours; the average cost is taken
// across entries with nonzero punnets. Ratios stay zero when undefined.
func BuildSummary(entries []models.PackingLogEntry) models.Summary {
	summary := models.Summary{Entries: len(entries)}

	var costSum float64
	var costed int

	for _, e := range entries {
		summary.TotalLabourHours += e.LabourHours
		summary.TotalFinishedPunnets += e.FinishedPunnets
		summary.TotalWasteOrDowntime += e.WasteOrDowntime

		if e.FinishedPunnets > 0 {
			costSum += e.LabourCostPerPunnet
			costed++
		}
	}

	if summary.TotalLabourHours > 0 {
		summary.OverallPunnetsPerLabourHour = round4(summary.TotalFinishedPunnets / summary.TotalLabourHours)
	}
	if costed > 0 {
		summary.AvgLabourCostPerPunnet = round4(costSum / float64(costed))
	}

	summary.TotalLabourHours = round4(summary.TotalLabourHours)
	summary.TotalFinishedPunnets = round4(summary.TotalFinishedPunnets)
	summary.TotalWasteOrDowntime = round4(summary.TotalWasteOrDowntime)

	return summary
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
