package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rently/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// BillingRunner runs the periodic billing jobs. Both calls return how
// many invoices they touched.
type BillingRunner interface {
	GenerateMonthlyInvoices(ctx context.Context, asOf time.Time) (int, error)
	CheckOverdueInvoices(ctx context.Context, asOf time.Time) (int, error)
}

// BillingScheduler triggers the monthly invoice run and the daily
// overdue scan. It polls instead of sleeping until the target time, so
// a restarted process still fires within one check interval.
type BillingScheduler struct {
	config config.SchedulerConfig
	runner BillingRunner
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	lastInvoiceRunMonth string
	lastOverdueRunDate  string
}

// NewBillingScheduler creates a new BillingScheduler
func NewBillingScheduler(cfg config.SchedulerConfig, runner BillingRunner, logger *zap.Logger) *BillingScheduler {
	return &BillingScheduler{
		config: cfg,
		runner: runner,
		logger: logger,
	}
}

// Start starts the scheduler loop
func (s *BillingScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Billing scheduler started",
		zap.Int("invoice_run_day", s.config.InvoiceRunDay),
		zap.Int("invoice_run_hour", s.config.InvoiceRunHour),
		zap.Int("overdue_run_hour", s.config.OverdueRunHour),
		zap.Duration("check_interval", s.config.CheckInterval),
	)
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *BillingScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Billing scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *BillingScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkAndTrigger(ctx, time.Now())
		}
	}
}

// checkAndTrigger fires any job whose scheduled time has arrived and
// that has not run in the current period yet
func (s *BillingScheduler) checkAndTrigger(ctx context.Context, now time.Time) {
	currentMonth := now.Format("2006-01")
	currentDate := now.Format("2006-01-02")

	s.mu.Lock()
	runInvoices := now.Day() == s.config.InvoiceRunDay &&
		now.Hour() == s.config.InvoiceRunHour &&
		s.lastInvoiceRunMonth != currentMonth
	if runInvoices {
		s.lastInvoiceRunMonth = currentMonth
	}
	runOverdue := now.Hour() == s.config.OverdueRunHour &&
		s.lastOverdueRunDate != currentDate
	if runOverdue {
		s.lastOverdueRunDate = currentDate
	}
	s.mu.Unlock()

	if runInvoices {
		s.RunInvoiceGeneration(ctx, now)
	}
	if runOverdue {
		s.RunOverdueScan(ctx, now)
	}
}

// RunInvoiceGeneration runs the monthly invoice job immediately
func (s *BillingScheduler) RunInvoiceGeneration(ctx context.Context, asOf time.Time) {
	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	s.logger.Info("Starting monthly invoice generation")
	count, err := s.runner.GenerateMonthlyInvoices(jobCtx, asOf)
	if err != nil {
		s.logger.Error("Monthly invoice generation failed", zap.Error(err))
		return
	}
	s.logger.Info("Monthly invoice generation finished",
		zap.Int("invoices_created", count))
}

// RunOverdueScan runs the overdue invoice scan immediately
func (s *BillingScheduler) RunOverdueScan(ctx context.Context, asOf time.Time) {
	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	s.logger.Info("Starting overdue invoice scan")
	count, err := s.runner.CheckOverdueInvoices(jobCtx, asOf)
	if err != nil {
		s.logger.Error("Overdue invoice scan failed", zap.Error(err))
		return
	}
	s.logger.Info("Overdue invoice scan finished",
		zap.Int("late_fees_charged", count))
}
