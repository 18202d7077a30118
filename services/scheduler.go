package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"oreoffice-backend/utils"
)

// Scheduler runs the recurring billing jobs of the serve command.
type Scheduler struct {
	cron    *cron.Cron
	billing *BillingService
}

func NewScheduler(billing *BillingService) *Scheduler {
	log := cronLogger{}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)),
		),
		billing: billing,
	}
}

// ScheduleOverdueRefresh flips due billings to overdue on spec, e.g. "@hourly".
func (s *Scheduler) ScheduleOverdueRefresh(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.refreshOverdue); err != nil {
		return fmt.Errorf("invalid overdue schedule %q: %w", spec, err)
	}
	zap.L().Info("overdue refresh scheduled", zap.String("spec", spec))
	return nil
}

// ScheduleBillingGeneration generates the current month's billings on spec,
// e.g. "0 1 1 * *". Generation is idempotent, so a missed or repeated run is harmless.
func (s *Scheduler) ScheduleBillingGeneration(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.generateBillings); err != nil {
		return fmt.Errorf("invalid billing schedule %q: %w", spec, err)
	}
	zap.L().Info("billing generation scheduled", zap.String("spec", spec))
	return nil
}

func (s *Scheduler) refreshOverdue() {
	if _, err := s.billing.RefreshOverdue(s.billing.Now()); err != nil {
		zap.L().Error("scheduled overdue refresh failed", zap.Error(err))
	}
}

func (s *Scheduler) generateBillings() {
	ym := utils.YearMonthOf(s.billing.Now())
	if _, err := s.billing.Generate(ym); err != nil {
		zap.L().Error("scheduled billing generation failed", zap.String("year_month", ym), zap.Error(err))
	}
}

// Run refreshes overdue billings once, starts the jobs and blocks until ctx
// is done and running jobs have finished.
func (s *Scheduler) Run(ctx context.Context) {
	s.refreshOverdue()
	s.cron.Start()
	zap.L().Info("scheduler started", zap.Int("jobs", len(s.cron.Entries())))
	<-ctx.Done()
	<-s.cron.Stop().Done()
	zap.L().Info("scheduler stopped")
}

// cronLogger routes cron's own logging through zap.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	zap.S().Debugw("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	zap.S().Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
