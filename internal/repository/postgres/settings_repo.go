package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"khata/internal/domain"
	"khata/internal/port"
)

type settingsRepo struct {
	db *sqlx.DB
}

// NewSettingsRepo creates a new PostgreSQL-backed SettingsRepository.
func NewSettingsRepo(db *sqlx.DB) port.SettingsRepository {
	return &settingsRepo{db: db}
}

// Get returns the stored settings, or the defaults when none were saved yet.
func (r *settingsRepo) Get(ctx context.Context, companyID uuid.UUID) (*domain.AppSettings, error) {
	var s domain.AppSettings
	err := conn(ctx, r.db).GetContext(ctx, &s, "SELECT * FROM app_settings WHERE company_id = $1", companyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.DefaultAppSettings(companyID), nil
		}
		return nil, fmt.Errorf("settingsRepo.Get: %w", err)
	}
	return &s, nil
}

func (r *settingsRepo) Upsert(ctx context.Context, s *domain.AppSettings) error {
	s.UpdatedAt = time.Now().UTC()
	query := `INSERT INTO app_settings (company_id, sale_prefix, purchase_prefix, sale_return_prefix,
		purchase_return_prefix, payment_in_prefix, payment_out_prefix, round_off_enabled,
		default_gst_rate, low_stock_alerts, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (company_id) DO UPDATE SET
			sale_prefix = EXCLUDED.sale_prefix,
			purchase_prefix = EXCLUDED.purchase_prefix,
			sale_return_prefix = EXCLUDED.sale_return_prefix,
			purchase_return_prefix = EXCLUDED.purchase_return_prefix,
			payment_in_prefix = EXCLUDED.payment_in_prefix,
			payment_out_prefix = EXCLUDED.payment_out_prefix,
			round_off_enabled = EXCLUDED.round_off_enabled,
			default_gst_rate = EXCLUDED.default_gst_rate,
			low_stock_alerts = EXCLUDED.low_stock_alerts,
			updated_at = EXCLUDED.updated_at`
	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		s.CompanyID, s.SalePrefix, s.PurchasePrefix, s.SaleReturnPrefix, s.PurchaseReturnPrefix,
		s.PaymentInPrefix, s.PaymentOutPrefix, s.RoundOffEnabled, s.DefaultGSTRate, s.LowStockAlerts,
		s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("settingsRepo.Upsert: %w", err)
	}
	return nil
}

func (r *settingsRepo) NextNumber(ctx context.Context, companyID uuid.UUID, series string) (int64, error) {
	var n int64
	err := conn(ctx, r.db).GetContext(ctx, &n,
		`INSERT INTO document_sequences (company_id, series, next_number) VALUES ($1, $2, 2)
		 ON CONFLICT (company_id, series) DO UPDATE SET next_number = document_sequences.next_number + 1
		 RETURNING next_number - 1`,
		companyID, series)
	if err != nil {
		return 0, fmt.Errorf("settingsRepo.NextNumber: %w", err)
	}
	return n, nil
}
