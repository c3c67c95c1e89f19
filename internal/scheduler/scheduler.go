// Package scheduler runs the daily due-scan on a fixed cadence. It only
// fires the scan; guaranteeing a single concurrent invocation across
// replicas belongs to the deployment, not to this process.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/example/lexibot/internal/notifier"
)

// DefaultScanHour is the hour of day (UTC) the scan runs when not configured.
const DefaultScanHour = 9

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler   *gocron.Scheduler
	scanner     *notifier.Scanner
	log         *zap.Logger
	scanHour    int
	scanTimeout time.Duration
}

// New creates a new scheduler instance. scanHour is the hour of day in
// UTC at which the daily scan fires; scanTimeout caps one whole scan.
func New(scanner *notifier.Scanner, log *zap.Logger, scanHour int, scanTimeout time.Duration) *Scheduler {
	if scanHour < 0 || scanHour > 23 {
		scanHour = DefaultScanHour
	}
	return &Scheduler{
		scheduler:   gocron.NewScheduler(time.UTC),
		scanner:     scanner,
		log:         log,
		scanHour:    scanHour,
		scanTimeout: scanTimeout,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	at := fmt.Sprintf("%02d:00", s.scanHour)
	if _, err := s.scheduler.Every(1).Day().At(at).Do(s.runScan); err != nil {
		return fmt.Errorf("failed to schedule daily scan: %w", err)
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	s.log.Info("daily scan scheduled", zap.String("at", at))
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) runScan() {
	ctx := context.Background()
	if s.scanTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.scanTimeout)
		defer cancel()
	}

	result, err := s.scanner.RunDailyScan(ctx, time.Now())
	if err != nil {
		s.log.Error("daily scan failed", zap.Error(err))
		return
	}
	s.log.Info("daily scan run complete", zap.Int("notifications_created", result.NotificationsCreated))
}

// RunManualScan forces a scan outside the daily cadence.
func (s *Scheduler) RunManualScan(ctx context.Context) (notifier.Result, error) {
	return s.scanner.RunDailyScan(ctx, time.Now())
}
