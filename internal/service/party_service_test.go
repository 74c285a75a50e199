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
	"khata/internal/service"
	"khata/mocks"
)

type partyDeps struct {
	parties  *mocks.MockPartyRepo
	invoices *mocks.MockInvoiceRepo
	reports  *mocks.MockReportRepo
}

func newPartyService() (service.PartyService, *partyDeps) {
	d := &partyDeps{
		parties:  new(mocks.MockPartyRepo),
		invoices: new(mocks.MockInvoiceRepo),
		reports:  new(mocks.MockReportRepo),
	}
	return service.NewPartyService(mocks.PassthroughTxManager{}, d.parties, d.invoices, d.reports), d
}

func TestPartyService_Create_NegativeOpeningIsPayable(t *testing.T) {
	svc, d := newPartyService()
	companyID := uuid.New()

	d.parties.On("Create", mock.Anything, mock.AnythingOfType("*domain.Party")).Return(nil)

	party, err := svc.Create(context.Background(), companyID, service.CreatePartyInput{
		PartyType:      domain.PartyTypeVendor,
		Name:           "  Gupta <b>Agencies</b> ",
		GSTNumber:      "27aapfu0939f1zv",
		OpeningBalance: dec("-2500"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Gupta Agencies", party.Name)
	assert.Equal(t, "27AAPFU0939F1ZV", party.GSTNumber)
	assert.True(t, party.TotalReceivable.IsZero())
	assert.True(t, party.TotalPayable.Equal(dec("2500")))
	assert.True(t, party.Balance().Equal(dec("-2500")))
}

func TestPartyService_Update_OpeningBalanceFlipsSide(t *testing.T) {
	svc, d := newPartyService()
	companyID := uuid.New()
	party := &domain.Party{
		ID:              uuid.New(),
		CompanyID:       companyID,
		PartyType:       domain.PartyTypeCustomer,
		OpeningBalance:  dec("100"),
		TotalReceivable: dec("400"),
	}

	d.parties.On("GetByID", mock.Anything, companyID, party.ID).Return(party, nil)
	d.parties.On("Update", mock.Anything, party).Return(nil)
	d.parties.On("AdjustBalance", mock.Anything, companyID, party.ID, decEq("-100"), decEq("50")).Return(nil)

	opening := dec("-50")
	updated, err := svc.Update(context.Background(), companyID, party.ID, service.UpdatePartyInput{OpeningBalance: &opening})

	require.NoError(t, err)
	assert.True(t, updated.TotalReceivable.Equal(dec("300")))
	assert.True(t, updated.TotalPayable.Equal(dec("50")))
	d.parties.AssertExpectations(t)
}

func TestPartyService_Update_SameOpeningSkipsAdjust(t *testing.T) {
	svc, d := newPartyService()
	companyID := uuid.New()
	party := &domain.Party{ID: uuid.New(), CompanyID: companyID, OpeningBalance: dec("100")}

	d.parties.On("GetByID", mock.Anything, companyID, party.ID).Return(party, nil)
	d.parties.On("Update", mock.Anything, party).Return(nil)

	name := "Renamed"
	opening := dec("100.00")
	_, err := svc.Update(context.Background(), companyID, party.ID, service.UpdatePartyInput{Name: &name, OpeningBalance: &opening})

	require.NoError(t, err)
	d.parties.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPartyService_Delete_HasActivity(t *testing.T) {
	svc, d := newPartyService()
	companyID, partyID := uuid.New(), uuid.New()

	d.parties.On("HasActivity", mock.Anything, companyID, partyID).Return(true, nil)

	err := svc.Delete(context.Background(), companyID, partyID)

	assert.ErrorIs(t, err, domain.ErrPartyHasActivity)
	d.parties.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestPartyService_Outstanding_VendorListsPurchases(t *testing.T) {
	svc, d := newPartyService()
	companyID := uuid.New()
	vendor := &domain.Party{ID: uuid.New(), PartyType: domain.PartyTypeVendor}

	d.parties.On("GetByID", mock.Anything, companyID, vendor.ID).Return(vendor, nil)
	d.invoices.On("ListOutstanding", mock.Anything, companyID, vendor.ID, domain.InvoiceTypePurchase).
		Return([]domain.Invoice{{ID: uuid.New()}}, nil)

	invoices, err := svc.Outstanding(context.Background(), companyID, vendor.ID)

	require.NoError(t, err)
	assert.Len(t, invoices, 1)
}

func TestPartyService_Statement_FoldsEarlierEntries(t *testing.T) {
	svc, d := newPartyService()
	companyID := uuid.New()
	party := &domain.Party{ID: uuid.New(), Name: "Sharma Traders", OpeningBalance: dec("100")}
	from := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)

	entries := []domain.StatementEntry{
		{EntryDate: domain.NewDate(2024, time.February, 10), EntryType: "sale", Reference: "INV-1", Debit: dec("1000")},
		{EntryDate: domain.NewDate(2024, time.February, 20), EntryType: "payment_in", Reference: "PI-1", Credit: dec("600")},
		{EntryDate: domain.NewDate(2024, time.March, 5), EntryType: "sale", Reference: "INV-2", Debit: dec("250")},
		{EntryDate: domain.NewDate(2024, time.March, 9), EntryType: "sale_return", Reference: "CN-1", Credit: dec("50")},
	}

	d.parties.On("GetByID", mock.Anything, companyID, party.ID).Return(party, nil)
	d.reports.On("PartyEntries", mock.Anything, companyID, party.ID, mock.MatchedBy(func(f *domain.ReportFilters) bool {
		return f.To != nil && f.To.Equal(to) && f.From == nil
	})).Return(entries, nil)

	st, err := svc.Statement(context.Background(), companyID, party.ID, &from, &to)

	require.NoError(t, err)
	assert.True(t, st.OpeningBalance.Equal(dec("500")))
	require.Len(t, st.Lines, 2)
	assert.True(t, st.Lines[0].Balance.Equal(dec("750")))
	assert.True(t, st.Lines[1].Balance.Equal(dec("700")))
	assert.True(t, st.ClosingBalance.Equal(dec("700")))
}

func TestBuildStatement_NoEntries(t *testing.T) {
	party := &domain.Party{OpeningBalance: dec("-40")}

	st := service.BuildStatement(party, nil, nil)

	assert.Empty(t, st.Lines)
	assert.True(t, st.OpeningBalance.Equal(dec("-40")))
	assert.True(t, st.ClosingBalance.Equal(dec("-40")))
}
