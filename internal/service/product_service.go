package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"khata/internal/domain"
	"khata/internal/port"
	"khata/internal/sanitize"
)

// CreateProductInput is the DTO for creating a product.
type CreateProductInput struct {
	Name         string          `json:"name" binding:"required"`
	ItemCode     string          `json:"item_code" binding:"max=64"`
	Unit         string          `json:"unit"`
	HSNCode      string          `json:"hsn_code" binding:"omitempty,min=4,max=8"`
	B2CRate      decimal.Decimal `json:"b2c_rate"`
	B2BRate      decimal.Decimal `json:"b2b_rate"`
	PurchaseRate decimal.Decimal `json:"purchase_rate"`
	GSTRate      decimal.Decimal `json:"gst_rate"`
	OpeningStock decimal.Decimal `json:"opening_stock"`
	MinStock     decimal.Decimal `json:"min_stock"`
	ImageURL     string          `json:"image_url" binding:"omitempty,url"`
}

// UpdateProductInput is the DTO for product updates. Stock moves only through invoices.
type UpdateProductInput struct {
	Name         *string          `json:"name"`
	ItemCode     *string          `json:"item_code" binding:"omitempty,max=64"`
	Unit         *string          `json:"unit"`
	HSNCode      *string          `json:"hsn_code" binding:"omitempty,min=4,max=8"`
	B2CRate      *decimal.Decimal `json:"b2c_rate"`
	B2BRate      *decimal.Decimal `json:"b2b_rate"`
	PurchaseRate *decimal.Decimal `json:"purchase_rate"`
	GSTRate      *decimal.Decimal `json:"gst_rate"`
	MinStock     *decimal.Decimal `json:"min_stock"`
	ImageURL     *string          `json:"image_url" binding:"omitempty,url"`
}

// ProductService defines the product catalogue contract.
type ProductService interface {
	Create(ctx context.Context, companyID uuid.UUID, input CreateProductInput) (*domain.Product, error)
	Get(ctx context.Context, companyID, productID uuid.UUID) (*domain.Product, error)
	GetByItemCode(ctx context.Context, companyID uuid.UUID, itemCode string) (*domain.Product, error)
	List(ctx context.Context, companyID uuid.UUID, filter port.ProductFilter) ([]domain.Product, int, error)
	Update(ctx context.Context, companyID, productID uuid.UUID, input UpdateProductInput) (*domain.Product, error)
	Delete(ctx context.Context, companyID, productID uuid.UUID) error
}

type productService struct {
	repo port.ProductRepository
}

// NewProductService creates a new ProductService implementation.
func NewProductService(repo port.ProductRepository) ProductService {
	return &productService{repo: repo}
}

func (s *productService) Create(ctx context.Context, companyID uuid.UUID, input CreateProductInput) (*domain.Product, error) {
	for _, d := range []decimal.Decimal{input.B2CRate, input.B2BRate, input.PurchaseRate, input.GSTRate, input.MinStock} {
		if d.IsNegative() {
			return nil, domain.ErrNegativeRate
		}
	}
	if input.GSTRate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, domain.ErrInvalidLineItem
	}

	unit := sanitize.Code(input.Unit)
	if unit == "" {
		unit = "PCS"
	}
	product := &domain.Product{
		CompanyID:    companyID,
		Name:         sanitize.Name(input.Name),
		ItemCode:     sanitize.Code(input.ItemCode),
		Unit:         unit,
		HSNCode:      sanitize.Code(input.HSNCode),
		B2CRate:      input.B2CRate,
		B2BRate:      input.B2BRate,
		PurchaseRate: input.PurchaseRate,
		GSTRate:      input.GSTRate,
		CurrentStock: input.OpeningStock,
		MinStock:     input.MinStock,
		ImageURL:     input.ImageURL,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) Get(ctx context.Context, companyID, productID uuid.UUID) (*domain.Product, error) {
	return s.repo.GetByID(ctx, companyID, productID)
}

func (s *productService) GetByItemCode(ctx context.Context, companyID uuid.UUID, itemCode string) (*domain.Product, error) {
	code := sanitize.Code(itemCode)
	if code == "" {
		return nil, domain.ErrProductNotFound
	}
	return s.repo.GetByItemCode(ctx, companyID, code)
}

func (s *productService) List(ctx context.Context, companyID uuid.UUID, filter port.ProductFilter) ([]domain.Product, int, error) {
	return s.repo.List(ctx, companyID, filter)
}

func (s *productService) Update(ctx context.Context, companyID, productID uuid.UUID, input UpdateProductInput) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		product.Name = sanitize.Name(*input.Name)
	}
	if input.ItemCode != nil {
		product.ItemCode = sanitize.Code(*input.ItemCode)
	}
	if input.Unit != nil {
		product.Unit = sanitize.Code(*input.Unit)
	}
	if input.HSNCode != nil {
		product.HSNCode = sanitize.Code(*input.HSNCode)
	}
	for _, u := range []struct {
		dst *decimal.Decimal
		src *decimal.Decimal
	}{
		{&product.B2CRate, input.B2CRate},
		{&product.B2BRate, input.B2BRate},
		{&product.PurchaseRate, input.PurchaseRate},
		{&product.GSTRate, input.GSTRate},
		{&product.MinStock, input.MinStock},
	} {
		if u.src == nil {
			continue
		}
		if u.src.IsNegative() {
			return nil, domain.ErrNegativeRate
		}
		*u.dst = *u.src
	}
	if product.GSTRate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, domain.ErrInvalidLineItem
	}
	if input.ImageURL != nil {
		product.ImageURL = *input.ImageURL
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) Delete(ctx context.Context, companyID, productID uuid.UUID) error {
	return s.repo.Delete(ctx, companyID, productID)
}
