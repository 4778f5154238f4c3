package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mbodj/packhouse/internal/config"
	"github.com/mbodj/packhouse/internal/export"
	"github.com/mbodj/packhouse/internal/service/reporting"
)

// Scheduler writes periodic workbook snapshots of the packing log to disk so
// the office always has a recent file even when nobody asks for an export.
type Scheduler struct {
	cron         *cron.Cron
	reportingSvc *reporting.Service
	cfg          config.ExportConfig
	logger       *zap.Logger
	location     *time.Location
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg config.ExportConfig, reportingSvc *reporting.Service, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("unknown timezone, falling back to UTC", zap.String("timezone", cfg.Timezone), zap.Error(err))
		location = time.UTC
	}

	return &Scheduler{
		cron:         cron.New(cron.WithLocation(location)),
		reportingSvc: reportingSvc,
		cfg:          cfg,
		logger:       logger,
		location:     location,
	}
}

// Start registers the snapshot job and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.writeSnapshot); err != nil {
		s.logger.Error("failed to schedule workbook snapshot", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) writeSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	entries, summary, err := s.reportingSvc.Snapshot(ctx)
	if err != nil {
		s.logger.Error("failed to load packing log for snapshot", zap.Error(err))
		return
	}

	data, err := export.Workbook(entries, summary)
	if err != nil {
		s.logger.Error("failed to build workbook snapshot", zap.Error(err))
		return
	}

	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		s.logger.Error("failed to create export directory", zap.String("dir", s.cfg.Dir), zap.Error(err))
		return
	}

	name := fmt.Sprintf("packing_log_%s.xlsx", time.Now().In(s.location).Format("2006-01-02"))
	path := filepath.Join(s.cfg.Dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Error("failed to write workbook snapshot", zap.String("path", path), zap.Error(err))
		return
	}

	s.logger.Info("workbook snapshot written",
		zap.String("path", path),
		zap.Int("entries", summary.Entries),
		zap.String("summary", reporting.SummaryLine(summary)))
}
