package pipeline

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule runs the catalog once a week.
const DefaultSchedule = "@weekly"

// Scheduler re-runs a catalog batch on a cron spec.
type Scheduler struct {
	cron     *cron.Cron
	pipeline *Pipeline
	catalog  []CatalogEntry
	spec     string
}

func NewScheduler(p *Pipeline, catalog []CatalogEntry, spec string) *Scheduler {
	if spec == "" {
		spec = DefaultSchedule
	}
	return &Scheduler{
		cron:     cron.New(),
		pipeline: p,
		catalog:  catalog,
		spec:     spec,
	}
}

// Start registers the batch job and starts the cron loop. When runNow is set
// one batch also runs immediately in the background.
func (s *Scheduler) Start(ctx context.Context, runNow bool) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("schedule %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.pipeline.logger.Info().Str("schedule", s.spec).Int("entries", len(s.catalog)).Msg("scheduler started")

	if runNow {
		go s.run(ctx)
	}
	return nil
}

// Stop halts the cron loop and waits for a running batch to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.pipeline.logger.Info().Msg("scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	report, err := s.pipeline.RunBatch(ctx, s.catalog)
	if err != nil {
		s.pipeline.logger.Warn().Err(err).Msg("scheduled batch interrupted")
		return
	}
	if len(report.Errors) > 0 {
		s.pipeline.logger.Warn().Strs("errors", report.Errors).Msg("scheduled batch finished with errors")
	}
}
