package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"khata/internal/domain"
	"khata/internal/service"
	"khata/mocks"
)

type ledgerDeps struct {
	accounts *mocks.MockBankAccountRepo
	txns     *mocks.MockTransactionRepo
	reports  *mocks.MockReportRepo
}

func newLedgerService() (service.LedgerService, *ledgerDeps) {
	d := &ledgerDeps{
		accounts: new(mocks.MockBankAccountRepo),
		txns:     new(mocks.MockTransactionRepo),
		reports:  new(mocks.MockReportRepo),
	}
	return service.NewLedgerService(mocks.PassthroughTxManager{}, d.accounts, d.txns, d.reports, time.Hour), d
}

func TestLedgerService_CreateAccount_OpeningLine(t *testing.T) {
	svc, d := newLedgerService()
	companyID, userID := uuid.New(), uuid.New()

	d.accounts.On("Create", mock.Anything, mock.AnythingOfType("*domain.BankAccount")).Return(nil)
	d.txns.On("Create", mock.Anything, mock.MatchedBy(func(txn *domain.Transaction) bool {
		return txn.TransactionType == domain.TxnOpeningBalance && txn.Amount.Equal(dec("5000"))
	})).Return(nil)

	account, err := svc.CreateAccount(context.Background(), companyID, userID, service.CreateAccountInput{
		AccountType:    domain.AccountTypeBank,
		DisplayName:    "  HDFC   Current ",
		IFSC:           "hdfc0001234",
		OpeningBalance: dec("5000"),
	})

	require.NoError(t, err)
	assert.Equal(t, "HDFC Current", account.DisplayName)
	assert.Equal(t, "HDFC0001234", account.IFSC)
	assert.True(t, account.CurrentBalance.Equal(dec("5000")))
	d.accounts.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	d.txns.AssertExpectations(t)
}

func TestLedgerService_CreateAccount_ZeroOpeningSkipsLine(t *testing.T) {
	svc, d := newLedgerService()

	d.accounts.On("Create", mock.Anything, mock.AnythingOfType("*domain.BankAccount")).Return(nil)

	_, err := svc.CreateAccount(context.Background(), uuid.New(), uuid.New(), service.CreateAccountInput{
		AccountType: domain.AccountTypeCash,
		DisplayName: "Counter cash",
	})

	require.NoError(t, err)
	d.txns.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLedgerService_DeleteAccount_HasTransactions(t *testing.T) {
	svc, d := newLedgerService()
	companyID, accountID := uuid.New(), uuid.New()

	d.accounts.On("HasTransactions", mock.Anything, companyID, accountID).Return(true, nil)

	err := svc.DeleteAccount(context.Background(), companyID, accountID)

	assert.ErrorIs(t, err, domain.ErrAccountHasTransactions)
	d.accounts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestLedgerService_CreateTransaction_WithdrawalIsNegative(t *testing.T) {
	svc, d := newLedgerService()
	companyID, accountID := uuid.New(), uuid.New()

	d.accounts.On("GetByID", mock.Anything, companyID, accountID).Return(&domain.BankAccount{ID: accountID}, nil)
	d.txns.On("Create", mock.Anything, mock.AnythingOfType("*domain.Transaction")).Return(nil)
	d.accounts.On("AdjustBalance", mock.Anything, companyID, accountID, decEq("-750")).Return(nil)

	txn, err := svc.CreateTransaction(context.Background(), companyID, uuid.New(), service.CreateTransactionInput{
		AccountID:       accountID,
		TransactionType: domain.TxnWithdrawal,
		Amount:          dec("750"),
	})

	require.NoError(t, err)
	assert.True(t, txn.Amount.Equal(dec("-750")))
	d.accounts.AssertExpectations(t)
}

func TestLedgerService_CreateTransaction_AdjustmentKeepsSign(t *testing.T) {
	svc, d := newLedgerService()
	companyID, accountID := uuid.New(), uuid.New()

	d.accounts.On("GetByID", mock.Anything, companyID, accountID).Return(&domain.BankAccount{ID: accountID}, nil)
	d.txns.On("Create", mock.Anything, mock.AnythingOfType("*domain.Transaction")).Return(nil)
	d.accounts.On("AdjustBalance", mock.Anything, companyID, accountID, decEq("-12.50")).Return(nil)

	txn, err := svc.CreateTransaction(context.Background(), companyID, uuid.New(), service.CreateTransactionInput{
		AccountID:       accountID,
		TransactionType: domain.TxnAdjustment,
		Amount:          dec("-12.50"),
	})

	require.NoError(t, err)
	assert.True(t, txn.Amount.Equal(dec("-12.5")))
}

func TestLedgerService_CreateTransaction_RejectsSystemType(t *testing.T) {
	svc, d := newLedgerService()

	_, err := svc.CreateTransaction(context.Background(), uuid.New(), uuid.New(), service.CreateTransactionInput{
		AccountID:       uuid.New(),
		TransactionType: domain.TxnPaymentIn,
		Amount:          dec("10"),
	})

	assert.ErrorIs(t, err, domain.ErrInvalidTransactionType)
	d.txns.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLedgerService_CreateTransaction_ZeroAmount(t *testing.T) {
	svc, _ := newLedgerService()

	_, err := svc.CreateTransaction(context.Background(), uuid.New(), uuid.New(), service.CreateTransactionInput{
		AccountID:       uuid.New(),
		TransactionType: domain.TxnDeposit,
		Amount:          decimal.Zero,
	})

	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestLedgerService_UpdateTransaction_LinkedRejected(t *testing.T) {
	svc, d := newLedgerService()
	companyID := uuid.New()
	paymentID := uuid.New()
	txn := &domain.Transaction{ID: uuid.New(), TransactionType: domain.TxnPaymentIn, PaymentID: &paymentID}

	d.txns.On("GetByIDForUpdate", mock.Anything, companyID, txn.ID).Return(txn, nil)

	amount := dec("5")
	_, err := svc.UpdateTransaction(context.Background(), companyID, txn.ID, service.UpdateTransactionInput{Amount: &amount})

	assert.ErrorIs(t, err, domain.ErrTransactionLinked)
	d.txns.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestLedgerService_UpdateTransaction_MovesAccount(t *testing.T) {
	svc, d := newLedgerService()
	companyID := uuid.New()
	oldAccount, newAccount := uuid.New(), uuid.New()
	txn := &domain.Transaction{ID: uuid.New(), AccountID: oldAccount, TransactionType: domain.TxnDeposit, Amount: dec("100")}

	d.txns.On("GetByIDForUpdate", mock.Anything, companyID, txn.ID).Return(txn, nil)
	d.accounts.On("GetByID", mock.Anything, companyID, newAccount).Return(&domain.BankAccount{ID: newAccount}, nil)
	d.txns.On("Update", mock.Anything, txn).Return(nil)
	d.accounts.On("AdjustBalance", mock.Anything, companyID, oldAccount, decEq("-100")).Return(nil)
	d.accounts.On("AdjustBalance", mock.Anything, companyID, newAccount, decEq("150")).Return(nil)

	amount := dec("150")
	updated, err := svc.UpdateTransaction(context.Background(), companyID, txn.ID, service.UpdateTransactionInput{
		AccountID: &newAccount,
		Amount:    &amount,
	})

	require.NoError(t, err)
	assert.Equal(t, newAccount, updated.AccountID)
	d.accounts.AssertExpectations(t)
}

func TestLedgerService_UpdateTransaction_SameAccountDelta(t *testing.T) {
	svc, d := newLedgerService()
	companyID, accountID := uuid.New(), uuid.New()
	txn := &domain.Transaction{ID: uuid.New(), AccountID: accountID, TransactionType: domain.TxnDeposit, Amount: dec("100")}

	d.txns.On("GetByIDForUpdate", mock.Anything, companyID, txn.ID).Return(txn, nil)
	d.txns.On("Update", mock.Anything, txn).Return(nil)
	d.accounts.On("AdjustBalance", mock.Anything, companyID, accountID, decEq("-140")).Return(nil).Once()

	withdrawal := domain.TxnWithdrawal
	amount := dec("40")
	updated, err := svc.UpdateTransaction(context.Background(), companyID, txn.ID, service.UpdateTransactionInput{
		TransactionType: &withdrawal,
		Amount:          &amount,
	})

	require.NoError(t, err)
	assert.True(t, updated.Amount.Equal(dec("-40")))
	d.accounts.AssertExpectations(t)
	d.accounts.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestLedgerService_UpdateTransaction_UnchangedAmountSkipsBalance(t *testing.T) {
	svc, d := newLedgerService()
	companyID := uuid.New()
	txn := &domain.Transaction{ID: uuid.New(), AccountID: uuid.New(), TransactionType: domain.TxnDeposit, Amount: dec("100")}

	d.txns.On("GetByIDForUpdate", mock.Anything, companyID, txn.ID).Return(txn, nil)
	d.txns.On("Update", mock.Anything, txn).Return(nil)

	desc := "cash sales, Saturday"
	_, err := svc.UpdateTransaction(context.Background(), companyID, txn.ID, service.UpdateTransactionInput{Description: &desc})

	require.NoError(t, err)
	d.accounts.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLedgerService_DeleteTransaction_RestoresBalance(t *testing.T) {
	svc, d := newLedgerService()
	companyID, userID := uuid.New(), uuid.New()
	account := &domain.BankAccount{ID: uuid.New(), CompanyID: companyID, CurrentBalance: dec("1000")}
	var created *domain.Transaction

	d.accounts.On("GetByID", mock.Anything, companyID, account.ID).Return(account, nil)
	d.txns.On("Create", mock.Anything, mock.AnythingOfType("*domain.Transaction")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*domain.Transaction)
			created.ID = uuid.New()
		}).Return(nil)
	d.accounts.On("AdjustBalance", mock.Anything, companyID, account.ID, mock.AnythingOfType("decimal.Decimal")).
		Run(func(args mock.Arguments) {
			account.CurrentBalance = account.CurrentBalance.Add(args.Get(3).(decimal.Decimal))
		}).Return(nil)

	txn, err := svc.CreateTransaction(context.Background(), companyID, userID, service.CreateTransactionInput{
		AccountID:       account.ID,
		TransactionType: domain.TxnAdjustment,
		Amount:          dec("-150"),
	})
	require.NoError(t, err)
	assert.True(t, account.CurrentBalance.Equal(dec("850")))

	d.txns.On("GetByIDForUpdate", mock.Anything, companyID, txn.ID).Return(created, nil)
	d.txns.On("Delete", mock.Anything, companyID, txn.ID).Return(nil)

	err = svc.DeleteTransaction(context.Background(), companyID, txn.ID)

	require.NoError(t, err)
	assert.True(t, account.CurrentBalance.Equal(dec("1000")))
	d.txns.AssertNotCalled(t, "ListByTransfer", mock.Anything, mock.Anything, mock.Anything)
}

func TestLedgerService_DeleteTransaction_RemovesBothTransferLegs(t *testing.T) {
	svc, d := newLedgerService()
	companyID := uuid.New()
	transferID := uuid.New()
	from, to := uuid.New(), uuid.New()
	out := domain.Transaction{ID: uuid.New(), AccountID: from, TransactionType: domain.TxnTransferOut, Amount: dec("-300"), TransferID: &transferID}
	in := domain.Transaction{ID: uuid.New(), AccountID: to, TransactionType: domain.TxnTransferIn, Amount: dec("300"), TransferID: &transferID}

	d.txns.On("GetByIDForUpdate", mock.Anything, companyID, in.ID).Return(&in, nil)
	d.txns.On("ListByTransfer", mock.Anything, companyID, transferID).Return([]domain.Transaction{out, in}, nil)
	d.txns.On("Delete", mock.Anything, companyID, out.ID).Return(nil)
	d.txns.On("Delete", mock.Anything, companyID, in.ID).Return(nil)
	d.accounts.On("AdjustBalance", mock.Anything, companyID, from, decEq("300")).Return(nil)
	d.accounts.On("AdjustBalance", mock.Anything, companyID, to, decEq("-300")).Return(nil)

	err := svc.DeleteTransaction(context.Background(), companyID, in.ID)

	require.NoError(t, err)
	d.txns.AssertExpectations(t)
	d.accounts.AssertExpectations(t)
}

func TestLedgerService_DeleteTransaction_PaymentLineRejected(t *testing.T) {
	svc, d := newLedgerService()
	companyID := uuid.New()
	invoiceID := uuid.New()
	txn := &domain.Transaction{ID: uuid.New(), TransactionType: domain.TxnReturnRefund, InvoiceID: &invoiceID}

	d.txns.On("GetByIDForUpdate", mock.Anything, companyID, txn.ID).Return(txn, nil)

	err := svc.DeleteTransaction(context.Background(), companyID, txn.ID)

	assert.ErrorIs(t, err, domain.ErrTransactionLinked)
}

func TestLedgerService_Transfer_Success(t *testing.T) {
	svc, d := newLedgerService()
	companyID := uuid.New()
	from := &domain.BankAccount{ID: uuid.New(), DisplayName: "Cash drawer"}
	to := &domain.BankAccount{ID: uuid.New(), DisplayName: "SBI Savings"}

	d.accounts.On("GetByID", mock.Anything, companyID, from.ID).Return(from, nil)
	d.accounts.On("GetByID", mock.Anything, companyID, to.ID).Return(to, nil)
	d.txns.On("Create", mock.Anything, mock.AnythingOfType("*domain.Transaction")).Return(nil).Twice()
	d.accounts.On("AdjustBalance", mock.Anything, companyID, from.ID, decEq("-2000")).Return(nil)
	d.accounts.On("AdjustBalance", mock.Anything, companyID, to.ID, decEq("2000")).Return(nil)

	tr, err := svc.Transfer(context.Background(), companyID, uuid.New(), service.TransferInput{
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        dec("2000"),
	})

	require.NoError(t, err)
	assert.Equal(t, tr.TransferID, *tr.Out.TransferID)
	assert.Equal(t, tr.TransferID, *tr.In.TransferID)
	assert.Equal(t, "SBI Savings", tr.Out.PartyName)
	assert.Equal(t, "Cash drawer", tr.In.PartyName)
	d.accounts.AssertExpectations(t)
}

func TestLedgerService_Transfer_DuplicateKeyReturnsExisting(t *testing.T) {
	svc, d := newLedgerService()
	companyID := uuid.New()
	from := &domain.BankAccount{ID: uuid.New(), DisplayName: "Cash drawer"}
	to := &domain.BankAccount{ID: uuid.New(), DisplayName: "SBI Savings"}
	existingID := uuid.New()
	key := "same-key"
	out := domain.Transaction{ID: uuid.New(), AccountID: from.ID, TransactionType: domain.TxnTransferOut, Amount: dec("-500"), TransferID: &existingID, RequestID: &key}
	in := domain.Transaction{ID: uuid.New(), AccountID: to.ID, TransactionType: domain.TxnTransferIn, Amount: dec("500"), TransferID: &existingID}

	d.accounts.On("GetByID", mock.Anything, companyID, from.ID).Return(from, nil)
	d.accounts.On("GetByID", mock.Anything, companyID, to.ID).Return(to, nil)
	d.txns.On("Create", mock.Anything, mock.MatchedBy(func(txn *domain.Transaction) bool {
		return txn.TransactionType == domain.TxnTransferOut && txn.RequestID != nil && *txn.RequestID == key
	})).Return(domain.ErrIdempotencyKeyConflict).Once()
	d.txns.On("GetByRequestID", mock.Anything, companyID, key).Return(&out, nil)
	d.txns.On("ListByTransfer", mock.Anything, companyID, existingID).Return([]domain.Transaction{out, in}, nil)

	input := service.TransferInput{FromAccountID: from.ID, ToAccountID: to.ID, Amount: dec("500"), RequestID: key}
	tr, err := svc.Transfer(context.Background(), companyID, uuid.New(), input)

	require.NoError(t, err)
	assert.Equal(t, existingID, tr.TransferID)
	assert.Equal(t, out.ID, tr.Out.ID)
	assert.Equal(t, in.ID, tr.In.ID)
	d.accounts.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	again, err := svc.Transfer(context.Background(), companyID, uuid.New(), input)
	require.NoError(t, err)
	assert.Equal(t, existingID, again.TransferID)
	d.txns.AssertNumberOfCalls(t, "Create", 1)
}

func TestLedgerService_Transfer_InLegCarriesNoKey(t *testing.T) {
	svc, d := newLedgerService()
	companyID := uuid.New()
	from := &domain.BankAccount{ID: uuid.New()}
	to := &domain.BankAccount{ID: uuid.New()}

	d.accounts.On("GetByID", mock.Anything, companyID, from.ID).Return(from, nil)
	d.accounts.On("GetByID", mock.Anything, companyID, to.ID).Return(to, nil)
	d.txns.On("Create", mock.Anything, mock.AnythingOfType("*domain.Transaction")).Return(nil).Twice()
	d.accounts.On("AdjustBalance", mock.Anything, companyID, mock.Anything, mock.Anything).Return(nil)

	tr, err := svc.Transfer(context.Background(), companyID, uuid.New(), service.TransferInput{
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        dec("75"),
		RequestID:     "k-1",
	})

	require.NoError(t, err)
	require.NotNil(t, tr.Out.RequestID)
	assert.Equal(t, "k-1", *tr.Out.RequestID)
	assert.Nil(t, tr.In.RequestID)
}

func TestLedgerService_Transfer_SameAccount(t *testing.T) {
	svc, _ := newLedgerService()
	id := uuid.New()

	_, err := svc.Transfer(context.Background(), uuid.New(), uuid.New(), service.TransferInput{
		FromAccountID: id,
		ToAccountID:   id,
		Amount:        dec("1"),
	})

	assert.ErrorIs(t, err, domain.ErrSameAccountTransfer)
}

func TestLedgerService_Reconcile_FixesDriftOnly(t *testing.T) {
	svc, d := newLedgerService()
	companyID := uuid.New()
	clean := domain.ReconciliationRow{AccountID: uuid.New(), CompanyID: companyID, ExpectedBalance: dec("10"), CurrentBalance: dec("10")}
	drifted := domain.ReconciliationRow{
		AccountID: uuid.New(), CompanyID: companyID,
		ExpectedBalance: dec("900"), CurrentBalance: dec("950"), Drift: dec("50"),
	}

	d.reports.On("Reconciliation", mock.Anything, &companyID, 0, 200).
		Return([]domain.ReconciliationRow{clean, drifted}, nil)
	d.accounts.On("ResetBalanceFromLedger", mock.Anything, companyID, drifted.AccountID).Return(dec("900"), nil)

	rows, err := svc.Reconcile(context.Background(), &companyID, true)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, drifted.AccountID, rows[0].AccountID)
	d.accounts.AssertExpectations(t)
}

func TestLedgerService_Reconcile_PagesThroughAccounts(t *testing.T) {
	svc, d := newLedgerService()

	full := make([]domain.ReconciliationRow, 200)
	for i := range full {
		full[i] = domain.ReconciliationRow{AccountID: uuid.New(), CompanyID: uuid.New()}
	}
	last := domain.ReconciliationRow{AccountID: uuid.New(), CompanyID: uuid.New(), Drift: dec("-3")}

	d.reports.On("Reconciliation", mock.Anything, (*uuid.UUID)(nil), 0, 200).Return(full, nil)
	d.reports.On("Reconciliation", mock.Anything, (*uuid.UUID)(nil), 200, 200).Return([]domain.ReconciliationRow{last}, nil)

	rows, err := svc.Reconcile(context.Background(), nil, false)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	d.reports.AssertExpectations(t)
	d.accounts.AssertNotCalled(t, "ResetBalanceFromLedger", mock.Anything, mock.Anything, mock.Anything)
}
