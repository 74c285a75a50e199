package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"khata/internal/logger"
	"khata/internal/port"
)

// DefaultLedgerAuditInterval is used when no positive interval is configured.
const DefaultLedgerAuditInterval = time.Hour

// LedgerAuditConfig holds settings for the ledger audit worker.
type LedgerAuditConfig struct {
	Interval    time.Duration
	AutoFix     bool
	Concurrency int
}

// LedgerAuditWorker periodically reconciles every active company's account
// balances against their ledgers.
type LedgerAuditWorker struct {
	companyRepo port.CompanyRepository
	ledger      LedgerService
	cfg         LedgerAuditConfig
	log         zerolog.Logger
	wg          sync.WaitGroup
}

// NewLedgerAuditWorker creates a new LedgerAuditWorker.
func NewLedgerAuditWorker(companyRepo port.CompanyRepository, ledger LedgerService, cfg LedgerAuditConfig) *LedgerAuditWorker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultLedgerAuditInterval
	}
	return &LedgerAuditWorker{
		companyRepo: companyRepo,
		ledger:      ledger,
		cfg:         cfg,
		log:         logger.WithComponent("ledger_audit"),
	}
}

// Start runs the audit loop until ctx is canceled. It blocks until all
// in-flight company audits have finished.
func (w *LedgerAuditWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	w.log.Info().
		Dur("interval", w.cfg.Interval).
		Bool("auto_fix", w.cfg.AutoFix).
		Int("concurrency", w.cfg.Concurrency).
		Msg("started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("shutting down, waiting for in-flight audits")
			w.wg.Wait()
			w.log.Info().Msg("shutdown complete")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce audits every active company once and waits for the pass to finish.
func (w *LedgerAuditWorker) RunOnce(ctx context.Context) {
	ids, err := w.companyRepo.ListActiveIDs(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Error().Err(err).Msg("listing companies")
		}
		return
	}

	sem := make(chan struct{}, w.cfg.Concurrency)
	for _, id := range ids {
		companyID := id
		sem <- struct{}{}
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			defer func() { <-sem }()
			w.audit(companyID)
		}()
	}
	// Fill the semaphore to wait for this pass only.
	for i := 0; i < cap(sem); i++ {
		sem <- struct{}{}
	}
}

func (w *LedgerAuditWorker) audit(companyID uuid.UUID) {
	// A fresh context lets an audit that is already fixing balances finish during shutdown.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	log := w.log.With().Str("company_id", companyID.String()).Logger()
	ctx = log.WithContext(ctx)

	drifted, err := w.ledger.Reconcile(ctx, &companyID, w.cfg.AutoFix)
	if err != nil {
		log.Error().Err(err).Msg("reconcile failed")
		return
	}
	if len(drifted) > 0 {
		log.Warn().Int("accounts", len(drifted)).Bool("fixed", w.cfg.AutoFix).Msg("ledger drift")
	}
}
