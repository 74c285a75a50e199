package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"khata/internal/domain"
	"khata/internal/linking"
	"khata/internal/service"
	"khata/mocks"
)

func TestLinkingService_Preview_AutoLink(t *testing.T) {
	parties := new(mocks.MockPartyRepo)
	invoices := new(mocks.MockInvoiceRepo)
	svc := service.NewLinkingService(parties, invoices)
	companyID := uuid.New()
	party := customer(companyID)

	older := openSale("INV-0001", domain.NewDate(2024, time.January, 5), "300")
	newer := openSale("INV-0002", domain.NewDate(2024, time.February, 5), "500")

	parties.On("GetByID", mock.Anything, companyID, party.ID).Return(party, nil)
	invoices.On("ListOutstanding", mock.Anything, companyID, party.ID, domain.InvoiceTypeSale).
		Return([]domain.Invoice{newer, older}, nil)

	preview, err := svc.Preview(context.Background(), companyID, service.PreviewLinksInput{
		Mode:       linking.ModePaymentIn,
		PartyID:    party.ID,
		Amount:     dec("400"),
		Allocation: service.AllocationInput{AutoLink: true},
	})

	require.NoError(t, err)
	require.Len(t, preview.Result.Links, 2)
	assert.Equal(t, "INV-0001", preview.Result.Links[0].InvoiceNumber)
	assert.True(t, preview.Result.Links[0].AppliedAmount.Equal(dec("300")))
	assert.True(t, preview.Result.Links[1].AppliedAmount.Equal(dec("100")))
	assert.True(t, preview.Result.Unused.IsZero())
	invoices.AssertNotCalled(t, "ApplyPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLinkingService_Preview_ReturnSettlesOriginalType(t *testing.T) {
	parties := new(mocks.MockPartyRepo)
	invoices := new(mocks.MockInvoiceRepo)
	svc := service.NewLinkingService(parties, invoices)
	companyID := uuid.New()
	vendor := &domain.Party{ID: uuid.New(), CompanyID: companyID, PartyType: domain.PartyTypeVendor}

	parties.On("GetByID", mock.Anything, companyID, vendor.ID).Return(vendor, nil)
	invoices.On("ListOutstanding", mock.Anything, companyID, vendor.ID, domain.InvoiceTypePurchase).
		Return([]domain.Invoice{}, nil)

	preview, err := svc.Preview(context.Background(), companyID, service.PreviewLinksInput{
		Mode:    linking.ModePurchaseReturn,
		PartyID: vendor.ID,
		Amount:  dec("120"),
	})

	require.NoError(t, err)
	assert.Empty(t, preview.Result.Links)
	assert.True(t, preview.Result.Unused.Equal(dec("120")))
	invoices.AssertExpectations(t)
}

func TestLinkingService_Preview_ManualUnknownInvoice(t *testing.T) {
	parties := new(mocks.MockPartyRepo)
	invoices := new(mocks.MockInvoiceRepo)
	svc := service.NewLinkingService(parties, invoices)
	companyID := uuid.New()
	party := customer(companyID)

	parties.On("GetByID", mock.Anything, companyID, party.ID).Return(party, nil)
	invoices.On("ListOutstanding", mock.Anything, companyID, party.ID, domain.InvoiceTypeSale).
		Return([]domain.Invoice{}, nil)

	_, err := svc.Preview(context.Background(), companyID, service.PreviewLinksInput{
		Mode:    linking.ModePaymentIn,
		PartyID: party.ID,
		Amount:  dec("100"),
		Allocation: service.AllocationInput{
			Links: []service.LinkInput{{InvoiceID: uuid.New(), Amount: dec("50")}},
		},
	})

	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
}

func TestLinkingService_Preview_PartyTypeMismatch(t *testing.T) {
	parties := new(mocks.MockPartyRepo)
	svc := service.NewLinkingService(parties, new(mocks.MockInvoiceRepo))
	companyID := uuid.New()
	party := customer(companyID)

	parties.On("GetByID", mock.Anything, companyID, party.ID).Return(party, nil)

	_, err := svc.Preview(context.Background(), companyID, service.PreviewLinksInput{
		Mode:    linking.ModePaymentOut,
		PartyID: party.ID,
		Amount:  dec("100"),
	})

	assert.ErrorIs(t, err, domain.ErrPartyTypeMismatch)
}

func TestLinkingService_Preview_InvalidMode(t *testing.T) {
	svc := service.NewLinkingService(new(mocks.MockPartyRepo), new(mocks.MockInvoiceRepo))

	_, err := svc.Preview(context.Background(), uuid.New(), service.PreviewLinksInput{Mode: linking.Mode("barter")})

	assert.ErrorIs(t, err, domain.ErrInvalidPaymentType)
}
