package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"khata/internal/domain"
	"khata/internal/port"
	"khata/internal/service"
)

// LedgerHandler handles bank and cash accounts, their transactions and transfers.
type LedgerHandler struct {
	ledgerService service.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerService service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// CreateAccount handles POST /api/v1/bank-accounts
// @Summary Create a bank or cash account
// @Description A non-zero opening balance is recorded as the account's first ledger line.
// @Tags cash-bank
// @Accept json
// @Produce json
// @Param body body service.CreateAccountInput true "Account"
// @Success 201 {object} Response{data=domain.BankAccount}
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Security BearerAuth
// @Router /bank-accounts [post]
func (h *LedgerHandler) CreateAccount(c *gin.Context) {
	companyID, userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	var input service.CreateAccountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, err)
		return
	}

	account, err := h.ledgerService.CreateAccount(c.Request.Context(), companyID, userID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, account)
}

// ListAccounts handles GET /api/v1/bank-accounts
// @Summary List accounts
// @Tags cash-bank
// @Produce json
// @Param account_type query string false "bank or cash"
// @Success 200 {object} Response{data=[]domain.BankAccount}
// @Security BearerAuth
// @Router /bank-accounts [get]
func (h *LedgerHandler) ListAccounts(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}

	accountType := domain.AccountType(c.Query("account_type"))
	if accountType != "" && accountType != domain.AccountTypeBank && accountType != domain.AccountTypeCash {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "account_type must be bank or cash")
		return
	}

	accounts, err := h.ledgerService.ListAccounts(c.Request.Context(), companyID, accountType)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, accounts)
}

// GetAccount handles GET /api/v1/bank-accounts/:id
func (h *LedgerHandler) GetAccount(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}
	accountID, ok := pathID(c, "id", "account")
	if !ok {
		return
	}

	account, err := h.ledgerService.GetAccount(c.Request.Context(), companyID, accountID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, account)
}

// UpdateAccount handles PUT /api/v1/bank-accounts/:id
func (h *LedgerHandler) UpdateAccount(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}
	accountID, ok := pathID(c, "id", "account")
	if !ok {
		return
	}

	var input service.UpdateAccountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, err)
		return
	}

	account, err := h.ledgerService.UpdateAccount(c.Request.Context(), companyID, accountID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, account)
}

// DeleteAccount handles DELETE /api/v1/bank-accounts/:id
// @Summary Delete an account
// @Tags cash-bank
// @Produce json
// @Param id path string true "Account ID (UUID)"
// @Success 200 {object} Response{data=MessageResponse}
// @Failure 404 {object} ErrorResponseBody "Account not found"
// @Failure 409 {object} ErrorResponseBody "Account has transactions"
// @Security BearerAuth
// @Router /bank-accounts/{id} [delete]
func (h *LedgerHandler) DeleteAccount(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}
	accountID, ok := pathID(c, "id", "account")
	if !ok {
		return
	}

	if err := h.ledgerService.DeleteAccount(c.Request.Context(), companyID, accountID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "account deleted"})
}

// Transfer handles POST /api/v1/bank-accounts/transfer
// @Summary Move money between accounts
// @Description Posts a linked pair of ledger lines; deleting either leg removes both.
// @Tags cash-bank
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replays return the original transfer"
// @Param body body TransferRequest true "Transfer"
// @Success 201 {object} Response{data=service.Transfer}
// @Failure 400 {object} ErrorResponseBody "Same account or invalid amount"
// @Failure 404 {object} ErrorResponseBody "Account not found"
// @Security BearerAuth
// @Router /bank-accounts/transfer [post]
func (h *LedgerHandler) Transfer(c *gin.Context) {
	companyID, userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	var input service.TransferInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, err)
		return
	}
	input.RequestID = idempotencyKey(c)

	transfer, err := h.ledgerService.Transfer(c.Request.Context(), companyID, userID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, transfer)
}

// CreateTransaction handles POST /api/v1/transactions
// @Summary Post a manual transaction
// @Description Deposits add, withdrawals subtract and adjustments carry their own sign.
// @Tags cash-bank
// @Accept json
// @Produce json
// @Param body body service.CreateTransactionInput true "Transaction"
// @Success 201 {object} Response{data=domain.Transaction}
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Security BearerAuth
// @Router /transactions [post]
func (h *LedgerHandler) CreateTransaction(c *gin.Context) {
	companyID, userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	var input service.CreateTransactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, err)
		return
	}

	txn, err := h.ledgerService.CreateTransaction(c.Request.Context(), companyID, userID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, txn)
}

// ListTransactions handles GET /api/v1/transactions
// @Summary List transactions
// @Description Filter by account_id for a per-account statement.
// @Tags cash-bank
// @Produce json
// @Param account_id query string false "Account ID (UUID)"
// @Param type query string false "Transaction type"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param sort query string false "Sort key, prefix with - for descending"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Transaction,meta=PagMeta}
// @Security BearerAuth
// @Router /transactions [get]
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}
	offset, limit := parsePagination(c)

	accountID, ok := optionalUUIDQuery(c, "account_id")
	if !ok {
		return
	}
	from, ok := optionalDateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := optionalDateQuery(c, "to")
	if !ok {
		return
	}

	filter := port.TransactionFilter{
		ListParams:      port.ListParams{Offset: offset, Limit: limit, Sort: c.Query("sort")},
		AccountID:       accountID,
		TransactionType: domain.TransactionType(c.Query("type")),
		From:            from,
		To:              to,
	}
	txns, total, err := h.ledgerService.ListTransactions(c.Request.Context(), companyID, filter)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, txns, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetTransaction handles GET /api/v1/transactions/:id
func (h *LedgerHandler) GetTransaction(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}
	txnID, ok := pathID(c, "id", "transaction")
	if !ok {
		return
	}

	txn, err := h.ledgerService.GetTransaction(c.Request.Context(), companyID, txnID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, txn)
}

// UpdateTransaction handles PUT /api/v1/transactions/:id
// @Summary Edit a manual transaction
// @Description Lines owned by a payment, refund or transfer cannot be edited here.
// @Tags cash-bank
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID (UUID)"
// @Param body body service.UpdateTransactionInput true "Fields to change"
// @Success 200 {object} Response{data=domain.Transaction}
// @Failure 404 {object} ErrorResponseBody "Transaction not found"
// @Failure 409 {object} ErrorResponseBody "Transaction is linked"
// @Security BearerAuth
// @Router /transactions/{id} [put]
func (h *LedgerHandler) UpdateTransaction(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}
	txnID, ok := pathID(c, "id", "transaction")
	if !ok {
		return
	}

	var input service.UpdateTransactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, err)
		return
	}

	txn, err := h.ledgerService.UpdateTransaction(c.Request.Context(), companyID, txnID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, txn)
}

// DeleteTransaction handles DELETE /api/v1/transactions/:id
func (h *LedgerHandler) DeleteTransaction(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}
	txnID, ok := pathID(c, "id", "transaction")
	if !ok {
		return
	}

	if err := h.ledgerService.DeleteTransaction(c.Request.Context(), companyID, txnID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "transaction deleted"})
}
