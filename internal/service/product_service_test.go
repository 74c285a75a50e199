package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"khata/internal/domain"
	"khata/internal/service"
	"khata/mocks"
)

func TestProductService_Create_DefaultsUnitAndOpeningStock(t *testing.T) {
	repo := new(mocks.MockProductRepo)
	svc := service.NewProductService(repo)
	companyID := uuid.New()

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Product")).Return(nil)

	product, err := svc.Create(context.Background(), companyID, service.CreateProductInput{
		Name:         " Steel   Bucket ",
		ItemCode:     "bkt-10",
		B2CRate:      dec("120"),
		GSTRate:      dec("18"),
		OpeningStock: dec("25"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Steel Bucket", product.Name)
	assert.Equal(t, "BKT-10", product.ItemCode)
	assert.Equal(t, "PCS", product.Unit)
	assert.True(t, product.CurrentStock.Equal(dec("25")))
}

func TestProductService_Create_NegativeRate(t *testing.T) {
	repo := new(mocks.MockProductRepo)
	svc := service.NewProductService(repo)

	_, err := svc.Create(context.Background(), uuid.New(), service.CreateProductInput{Name: "Mug", PurchaseRate: dec("-1")})

	assert.ErrorIs(t, err, domain.ErrNegativeRate)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductService_Update_KeepsStock(t *testing.T) {
	repo := new(mocks.MockProductRepo)
	svc := service.NewProductService(repo)
	companyID := uuid.New()
	product := &domain.Product{ID: uuid.New(), CompanyID: companyID, B2CRate: dec("100"), CurrentStock: dec("7")}

	repo.On("GetByID", mock.Anything, companyID, product.ID).Return(product, nil)
	repo.On("Update", mock.Anything, product).Return(nil)

	rate := dec("110")
	updated, err := svc.Update(context.Background(), companyID, product.ID, service.UpdateProductInput{B2CRate: &rate})

	require.NoError(t, err)
	assert.True(t, updated.B2CRate.Equal(dec("110")))
	assert.True(t, updated.CurrentStock.Equal(dec("7")))
}

func TestProductService_Update_GSTAboveHundred(t *testing.T) {
	repo := new(mocks.MockProductRepo)
	svc := service.NewProductService(repo)
	companyID := uuid.New()
	product := &domain.Product{ID: uuid.New(), CompanyID: companyID}

	repo.On("GetByID", mock.Anything, companyID, product.ID).Return(product, nil)

	rate := dec("118")
	_, err := svc.Update(context.Background(), companyID, product.ID, service.UpdateProductInput{GSTRate: &rate})

	assert.ErrorIs(t, err, domain.ErrInvalidLineItem)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestProductService_GetByItemCode_Blank(t *testing.T) {
	svc := service.NewProductService(new(mocks.MockProductRepo))

	_, err := svc.GetByItemCode(context.Background(), uuid.New(), "   ")

	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}
