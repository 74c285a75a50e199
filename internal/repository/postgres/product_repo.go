package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"khata/internal/domain"
	"khata/internal/port"
)

const productItemCodeKey = "products_company_item_code_key"

var productSortColumns = map[string]string{
	"name":          "name",
	"item_code":     "item_code",
	"current_stock": "current_stock",
	"created_at":    "created_at",
}

type productRepo struct {
	db *sqlx.DB
}

// NewProductRepo creates a new PostgreSQL-backed ProductRepository.
func NewProductRepo(db *sqlx.DB) port.ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, product *domain.Product) error {
	product.ID = uuid.New()
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	query := `INSERT INTO products (id, company_id, name, item_code, unit, hsn_code, b2c_rate, b2b_rate,
		purchase_rate, gst_rate, current_stock, min_stock, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		product.ID, product.CompanyID, product.Name, product.ItemCode, product.Unit, product.HSNCode,
		product.B2CRate, product.B2BRate, product.PurchaseRate, product.GSTRate, product.CurrentStock,
		product.MinStock, product.ImageURL, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, productItemCodeKey) {
			return domain.ErrDuplicateItemCode
		}
		return fmt.Errorf("productRepo.Create: %w", err)
	}
	return nil
}

func (r *productRepo) GetByID(ctx context.Context, companyID, productID uuid.UUID) (*domain.Product, error) {
	var product domain.Product
	err := conn(ctx, r.db).GetContext(ctx, &product,
		"SELECT * FROM products WHERE id = $1 AND company_id = $2", productID, companyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("productRepo.GetByID: %w", err)
	}
	return &product, nil
}

func (r *productRepo) GetByItemCode(ctx context.Context, companyID uuid.UUID, itemCode string) (*domain.Product, error) {
	var product domain.Product
	err := conn(ctx, r.db).GetContext(ctx, &product,
		"SELECT * FROM products WHERE company_id = $1 AND item_code = $2", companyID, itemCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("productRepo.GetByItemCode: %w", err)
	}
	return &product, nil
}

func (r *productRepo) List(ctx context.Context, companyID uuid.UUID, filter port.ProductFilter) ([]domain.Product, int, error) {
	w := newWhere("company_id", companyID)
	if filter.Search != "" {
		w.add("(name ILIKE $%d OR item_code ILIKE $%d OR hsn_code ILIKE $%d)", "%"+escapeLike(filter.Search)+"%")
	}
	if filter.LowStockOnly {
		w.conds = append(w.conds, "min_stock > 0 AND current_stock <= min_stock")
	}

	q := conn(ctx, r.db)
	var total int
	if err := q.GetContext(ctx, &total, "SELECT COUNT(*) FROM products "+w.clause(), w.args...); err != nil {
		return nil, 0, fmt.Errorf("productRepo.List count: %w", err)
	}

	suffix, args := w.page(filter.Offset, filter.Limit)
	query := fmt.Sprintf("SELECT * FROM products %s ORDER BY %s%s",
		w.clause(), orderBy(filter.Sort, productSortColumns, "name ASC"), suffix)
	var products []domain.Product
	if err := q.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, 0, fmt.Errorf("productRepo.List: %w", err)
	}
	return products, total, nil
}

func (r *productRepo) Update(ctx context.Context, product *domain.Product) error {
	product.UpdatedAt = time.Now().UTC()
	query := `UPDATE products SET name = $1, item_code = $2, unit = $3, hsn_code = $4, b2c_rate = $5,
		b2b_rate = $6, purchase_rate = $7, gst_rate = $8, min_stock = $9, image_url = $10, updated_at = $11
		WHERE id = $12 AND company_id = $13`
	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		product.Name, product.ItemCode, product.Unit, product.HSNCode, product.B2CRate, product.B2BRate,
		product.PurchaseRate, product.GSTRate, product.MinStock, product.ImageURL, product.UpdatedAt,
		product.ID, product.CompanyID)
	if err != nil {
		if isUniqueViolation(err, productItemCodeKey) {
			return domain.ErrDuplicateItemCode
		}
		return fmt.Errorf("productRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *productRepo) AdjustStock(ctx context.Context, companyID, productID uuid.UUID, delta decimal.Decimal) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE products SET current_stock = current_stock + $1, updated_at = $2 WHERE id = $3 AND company_id = $4",
		delta, time.Now().UTC(), productID, companyID)
	if err != nil {
		return fmt.Errorf("productRepo.AdjustStock: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, companyID, productID uuid.UUID) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		"DELETE FROM products WHERE id = $1 AND company_id = $2", productID, companyID)
	if err != nil {
		return fmt.Errorf("productRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}
