package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	_ "khata/docs"
	"khata/internal/config"
	"khata/internal/email/noop"
	"khata/internal/email/ses"
	"khata/internal/handler"
	"khata/internal/logger"
	"khata/internal/port"
	"khata/internal/rbac"
	"khata/internal/repository/postgres"
	"khata/internal/retry"
	"khata/internal/router"
	"khata/internal/service"
	s3storage "khata/internal/storage/s3"
)

// @title Khata API
// @version 1.0
// @description Invoicing, payments and cash book for small businesses.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Setup(cfg.Log); err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	policy := retry.Policy{
		MaxRetries: cfg.Retry.MaxRetries,
		BaseDelay:  cfg.Retry.BaseDelay,
		MaxDelay:   cfg.Retry.MaxDelay,
	}

	// Initialize repositories
	txManager := postgres.NewTxManager(db)
	companyRepo := postgres.NewCompanyRepo(db)
	userRepo := postgres.NewUserRepo(db)
	settingsRepo := postgres.NewSettingsRepo(db)
	partyRepo := postgres.NewPartyRepo(db)
	productRepo := postgres.NewProductRepo(db)
	invoiceRepo := postgres.NewInvoiceRepo(db)
	paymentRepo := postgres.NewPaymentRepo(db)
	accountRepo := postgres.NewBankAccountRepo(db)
	txnRepo := postgres.NewTransactionRepo(db)
	reportRepo := postgres.NewReportRepo(db)
	fileRepo := postgres.NewFileMetaRepo(db)

	// Initialize storage and email
	s3Client, err := s3storage.NewS3Client(&cfg.S3, policy)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}
	emailSender, err := newEmailSender(cfg.Email, policy)
	if err != nil {
		return fmt.Errorf("failed to initialize email sender: %w", err)
	}

	// Initialize services
	ttl := cfg.Idempotency.TTL
	authSvc := service.NewAuthService(userRepo, companyRepo, cfg.JWT)
	registrationSvc := service.NewRegistrationService(txManager, companyRepo, userRepo, settingsRepo, authSvc)
	companySvc := service.NewCompanyService(companyRepo)
	settingsSvc := service.NewSettingsService(settingsRepo)
	teamSvc := service.NewTeamService(txManager, userRepo, companyRepo, emailSender, cfg.JWT)
	partySvc := service.NewPartyService(txManager, partyRepo, invoiceRepo, reportRepo)
	productSvc := service.NewProductService(productRepo)
	invoiceSvc := service.NewInvoiceService(txManager, invoiceRepo, partyRepo, productRepo, companyRepo, accountRepo, txnRepo, settingsSvc, ttl)
	paymentSvc := service.NewPaymentService(txManager, paymentRepo, invoiceRepo, partyRepo, accountRepo, txnRepo, settingsSvc, ttl)
	linkingSvc := service.NewLinkingService(partyRepo, invoiceRepo)
	ledgerSvc := service.NewLedgerService(txManager, accountRepo, txnRepo, reportRepo, ttl)
	reportSvc := service.NewReportService(reportRepo, productRepo)
	fileSvc := service.NewFileService(fileRepo, s3Client, &cfg.S3)

	permissions := rbac.Default()

	// Initialize handlers
	handlers := router.Handlers{
		Auth:    handler.NewAuthHandler(authSvc, registrationSvc, teamSvc),
		Role:    handler.NewRoleHandler(permissions),
		Company: handler.NewCompanyHandler(companySvc, settingsSvc),
		Team:    handler.NewTeamHandler(teamSvc),
		Party:   handler.NewPartyHandler(partySvc),
		Product: handler.NewProductHandler(productSvc),
		Invoice: handler.NewInvoiceHandler(invoiceSvc, permissions),
		Payment: handler.NewPaymentHandler(paymentSvc, linkingSvc),
		Ledger:  handler.NewLedgerHandler(ledgerSvc),
		Report:  handler.NewReportHandler(reportSvc),
		File:    handler.NewFileHandler(fileSvc),
		Health:  handler.NewHealthHandler(db),
	}

	r := router.Setup(cfg, authSvc, handlers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	if cfg.LedgerAudit.Enabled {
		worker := service.NewLedgerAuditWorker(companyRepo, ledgerSvc, service.LedgerAuditConfig{
			Interval:    time.Duration(cfg.LedgerAudit.IntervalSecs) * time.Second,
			AutoFix:     cfg.LedgerAudit.AutoFix,
			Concurrency: cfg.LedgerAudit.Concurrency,
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.Start(ctx)
		}()
	}

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Port).Str("env", cfg.Server.Environment).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			stop()
			wg.Wait()
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	wg.Wait()
	return nil
}

func newEmailSender(cfg config.EmailConfig, policy retry.Policy) (port.EmailSender, error) {
	if cfg.Provider == "ses" {
		return ses.NewSESSender(cfg.Region, cfg.FromAddress, cfg.FromName, cfg.FrontendURL, policy)
	}
	return noop.NewNoopSender(cfg.FrontendURL), nil
}
