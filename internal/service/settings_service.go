package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"khata/internal/domain"
	"khata/internal/port"
	"khata/internal/sanitize"
)

const (
	settingsCacheTTL     = 10 * time.Minute
	settingsCacheCleanup = 20 * time.Minute
	ckSettings           = "settings:%s"
)

// UpdateSettingsInput is the DTO for settings updates.
type UpdateSettingsInput struct {
	SalePrefix           *string          `json:"sale_prefix" binding:"omitempty,max=20"`
	PurchasePrefix       *string          `json:"purchase_prefix" binding:"omitempty,max=20"`
	SaleReturnPrefix     *string          `json:"sale_return_prefix" binding:"omitempty,max=20"`
	PurchaseReturnPrefix *string          `json:"purchase_return_prefix" binding:"omitempty,max=20"`
	PaymentInPrefix      *string          `json:"payment_in_prefix" binding:"omitempty,max=20"`
	PaymentOutPrefix     *string          `json:"payment_out_prefix" binding:"omitempty,max=20"`
	RoundOffEnabled      *bool            `json:"round_off_enabled"`
	DefaultGSTRate       *decimal.Decimal `json:"default_gst_rate"`
	LowStockAlerts       *bool            `json:"low_stock_alerts"`
}

// SettingsService defines the app settings and document numbering contract.
type SettingsService interface {
	Get(ctx context.Context, companyID uuid.UUID) (*domain.AppSettings, error)
	Update(ctx context.Context, companyID uuid.UUID, input UpdateSettingsInput) (*domain.AppSettings, error)
	// NextNumber reserves the next number of a series, formatted with the series prefix.
	NextNumber(ctx context.Context, companyID uuid.UUID, series string) (string, error)
}

type settingsService struct {
	repo  port.SettingsRepository
	cache *cache.Cache
}

// NewSettingsService creates a new SettingsService with an in-process read cache.
func NewSettingsService(repo port.SettingsRepository) SettingsService {
	return &settingsService{
		repo:  repo,
		cache: cache.New(settingsCacheTTL, settingsCacheCleanup),
	}
}

func (s *settingsService) Get(ctx context.Context, companyID uuid.UUID) (*domain.AppSettings, error) {
	key := fmt.Sprintf(ckSettings, companyID)
	if cached, found := s.cache.Get(key); found {
		copied := *cached.(*domain.AppSettings)
		return &copied, nil
	}

	settings, err := s.repo.Get(ctx, companyID)
	if err != nil {
		return nil, err
	}
	copied := *settings
	s.cache.Set(key, &copied, cache.DefaultExpiration)
	return settings, nil
}

func (s *settingsService) Update(ctx context.Context, companyID uuid.UUID, input UpdateSettingsInput) (*domain.AppSettings, error) {
	settings, err := s.repo.Get(ctx, companyID)
	if err != nil {
		return nil, err
	}

	setPrefix := func(dst *string, v *string) {
		if v != nil {
			*dst = sanitize.Code(*v)
		}
	}
	setPrefix(&settings.SalePrefix, input.SalePrefix)
	setPrefix(&settings.PurchasePrefix, input.PurchasePrefix)
	setPrefix(&settings.SaleReturnPrefix, input.SaleReturnPrefix)
	setPrefix(&settings.PurchaseReturnPrefix, input.PurchaseReturnPrefix)
	setPrefix(&settings.PaymentInPrefix, input.PaymentInPrefix)
	setPrefix(&settings.PaymentOutPrefix, input.PaymentOutPrefix)
	if input.RoundOffEnabled != nil {
		settings.RoundOffEnabled = *input.RoundOffEnabled
	}
	if input.DefaultGSTRate != nil {
		if input.DefaultGSTRate.IsNegative() || input.DefaultGSTRate.GreaterThan(decimal.NewFromInt(100)) {
			return nil, fmt.Errorf("%w: default gst rate must be between 0 and 100", domain.ErrInvalidLineItem)
		}
		settings.DefaultGSTRate = *input.DefaultGSTRate
	}
	if input.LowStockAlerts != nil {
		settings.LowStockAlerts = *input.LowStockAlerts
	}

	if err := s.repo.Upsert(ctx, settings); err != nil {
		return nil, err
	}
	s.cache.Delete(fmt.Sprintf(ckSettings, companyID))
	return settings, nil
}

func (s *settingsService) NextNumber(ctx context.Context, companyID uuid.UUID, series string) (string, error) {
	settings, err := s.Get(ctx, companyID)
	if err != nil {
		return "", err
	}
	n, err := s.repo.NextNumber(ctx, companyID, series)
	if err != nil {
		return "", err
	}
	return FormatDocumentNumber(settings.PrefixFor(series), n), nil
}

// FormatDocumentNumber renders a sequence number as PREFIX0001.
func FormatDocumentNumber(prefix string, n int64) string {
	return fmt.Sprintf("%s%04d", prefix, n)
}
