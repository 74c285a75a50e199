package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrCompanyInactive     = errors.New("company is inactive")
	ErrUserInactive        = errors.New("user is inactive")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrDuplicateEmail      = errors.New("email already exists for this company")
	ErrDuplicateSlug       = errors.New("company slug already exists")
	ErrInvalidSlug         = errors.New("slug may contain only lowercase letters, digits and hyphens")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrInsufficientRole    = errors.New("insufficient role for this action")
	ErrInvalidRole         = errors.New("invalid role")
	ErrInvalidUserStatus   = errors.New("status must be active or disabled")
	ErrLastOwner           = errors.New("company must keep at least one owner")
	ErrInviteInvalid       = errors.New("invitation is invalid or has already been used")
	ErrRateLimited         = errors.New("rate limit exceeded")
	ErrInvalidGranularity  = errors.New("granularity must be daily, weekly, monthly, quarterly or yearly")

	ErrPartyNotFound     = errors.New("party not found")
	ErrPartyTypeMismatch = errors.New("party type does not match this document")
	ErrPartyHasActivity  = errors.New("party has invoices or payments")
	ErrProductNotFound   = errors.New("product not found")
	ErrDuplicateItemCode = errors.New("item code already exists")
	ErrNegativeRate      = errors.New("rates and stock levels cannot be negative")

	ErrInvoiceNotFound          = errors.New("invoice not found")
	ErrInvalidInvoiceType       = errors.New("invalid invoice type")
	ErrEmptyInvoice             = errors.New("invoice must have at least one item")
	ErrInvalidLineItem          = errors.New("invalid line item")
	ErrDuplicateInvoiceNumber   = errors.New("invoice number already exists")
	ErrInvoiceHasPayments       = errors.New("invoice has payments applied")
	ErrInvoiceOverpaid          = errors.New("invoice total cannot be less than the amount already paid")
	ErrAllocationExceedsBalance = errors.New("applied amount exceeds invoice balance")

	ErrPaymentNotFound       = errors.New("payment not found")
	ErrInvalidPaymentType    = errors.New("invalid payment type")
	ErrInvalidPaymentMethod  = errors.New("invalid payment method")
	ErrInvalidAmount         = errors.New("amount must be greater than zero")
	ErrInvalidDiscount       = errors.New("discount must be between zero and the payment amount")
	ErrPaymentMethodMismatch = errors.New("payment methods must add up to the payment amount")

	ErrAccountNotFound        = errors.New("bank account not found")
	ErrAccountHasTransactions = errors.New("bank account has transactions")
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrTransactionLinked      = errors.New("transaction belongs to a payment, return or transfer")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrSameAccountTransfer    = errors.New("cannot transfer to the same account")
	ErrIdempotencyKeyConflict = errors.New("idempotency key was already used for a different request")
)
