package mirror

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mbodj/packhouse/internal/domain/models"
	"github.com/mbodj/packhouse/pkg/clients/graph"
)

// SharePointMirror copies stored packing-log entries into a SharePoint list
// so warehouse office staff keep their existing views. Pushes are one-way and
// never retried; the local store remains the source of truth.
type SharePointMirror struct {
	client   *graph.Client
	listName string
	logger   *zap.Logger
}

// NewSharePointMirror wires a mirror over the given Graph client.
func NewSharePointMirror(client *graph.Client, listName string, logger *zap.Logger) *SharePointMirror {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SharePointMirror{client: client, listName: listName, logger: logger}
}

// PushEntry writes the entry as one list item. Column names follow the
// list's expected schema; Title carries the generated entry id.
func (m *SharePointMirror) PushEntry(ctx context.Context, entry models.PackingLogEntry) error {
	fields := map[string]any{
		"Title":                entry.ID,
		"WorkDate":             entry.Date.Format("2006-01-02"),
		"Minutes":              entry.Minutes,
		"People":               entry.People,
		"FinishedPunnets":      entry.FinishedPunnets,
		"WasteOrDowntime":      entry.WasteOrDowntime,
		"Note":                 entry.Note,
		"HourlyRate":           entry.HourlyRate,
		"LabourHours":          entry.LabourHours,
		"PunnetsPerLabourHour": entry.PunnetsPerLabourHour,
		"LabourCostPerPunnet":  entry.LabourCostPerPunnet,
		"CreatedAt":            entry.CreatedAt.Format(time.RFC3339),
	}

	if err := m.client.AppendListItem(ctx, m.listName, fields); err != nil {
		return fmt.Errorf("push entry %s to sharepoint: %w", entry.ID, err)
	}

	m.logger.Debug("entry mirrored to sharepoint", zap.String("id", entry.ID), zap.String("list", m.listName))
	return nil
}
