package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"khata/internal/domain"
	"khata/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

type errorMapping struct {
	err    error
	status int
	code   string
}

// errorMappings is checked in order; the first errors.Is match wins.
var errorMappings = []errorMapping{
	{domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{domain.ErrInviteInvalid, http.StatusUnauthorized, "INVALID_INVITE"},
	{domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{domain.ErrCompanyInactive, http.StatusForbidden, "COMPANY_INACTIVE"},
	{domain.ErrUserInactive, http.StatusForbidden, "USER_INACTIVE"},
	{domain.ErrInsufficientRole, http.StatusForbidden, "INSUFFICIENT_ROLE"},
	{domain.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED"},

	{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{domain.ErrPartyNotFound, http.StatusNotFound, "PARTY_NOT_FOUND"},
	{domain.ErrProductNotFound, http.StatusNotFound, "PRODUCT_NOT_FOUND"},
	{domain.ErrInvoiceNotFound, http.StatusNotFound, "INVOICE_NOT_FOUND"},
	{domain.ErrPaymentNotFound, http.StatusNotFound, "PAYMENT_NOT_FOUND"},
	{domain.ErrAccountNotFound, http.StatusNotFound, "ACCOUNT_NOT_FOUND"},
	{domain.ErrTransactionNotFound, http.StatusNotFound, "TRANSACTION_NOT_FOUND"},

	{domain.ErrDuplicateEmail, http.StatusConflict, "DUPLICATE_EMAIL"},
	{domain.ErrDuplicateSlug, http.StatusConflict, "DUPLICATE_SLUG"},
	{domain.ErrDuplicateItemCode, http.StatusConflict, "DUPLICATE_ITEM_CODE"},
	{domain.ErrDuplicateInvoiceNumber, http.StatusConflict, "DUPLICATE_INVOICE_NUMBER"},
	{domain.ErrIdempotencyKeyConflict, http.StatusConflict, "IDEMPOTENCY_KEY_CONFLICT"},
	{domain.ErrPartyHasActivity, http.StatusConflict, "PARTY_HAS_ACTIVITY"},
	{domain.ErrInvoiceHasPayments, http.StatusConflict, "INVOICE_HAS_PAYMENTS"},
	{domain.ErrAccountHasTransactions, http.StatusConflict, "ACCOUNT_HAS_TRANSACTIONS"},
	{domain.ErrTransactionLinked, http.StatusConflict, "TRANSACTION_LINKED"},
	{domain.ErrAllocationExceedsBalance, http.StatusConflict, "ALLOCATION_EXCEEDS_BALANCE"},
	{domain.ErrLastOwner, http.StatusConflict, "LAST_OWNER"},

	{domain.ErrInvalidSlug, http.StatusBadRequest, "INVALID_SLUG"},
	{domain.ErrInvalidRole, http.StatusBadRequest, "INVALID_ROLE"},
	{domain.ErrInvalidUserStatus, http.StatusBadRequest, "INVALID_STATUS"},
	{domain.ErrPartyTypeMismatch, http.StatusBadRequest, "PARTY_TYPE_MISMATCH"},
	{domain.ErrInvalidInvoiceType, http.StatusBadRequest, "INVALID_INVOICE_TYPE"},
	{domain.ErrInvalidGranularity, http.StatusBadRequest, "INVALID_FILTER"},
	{domain.ErrEmptyInvoice, http.StatusBadRequest, "EMPTY_INVOICE"},
	{domain.ErrInvalidLineItem, http.StatusBadRequest, "INVALID_LINE_ITEM"},
	{domain.ErrNegativeRate, http.StatusBadRequest, "NEGATIVE_RATE"},
	{domain.ErrInvoiceOverpaid, http.StatusBadRequest, "INVOICE_OVERPAID"},
	{domain.ErrInvalidPaymentType, http.StatusBadRequest, "INVALID_PAYMENT_TYPE"},
	{domain.ErrInvalidPaymentMethod, http.StatusBadRequest, "INVALID_PAYMENT_METHOD"},
	{domain.ErrInvalidAmount, http.StatusBadRequest, "INVALID_AMOUNT"},
	{domain.ErrInvalidDiscount, http.StatusBadRequest, "INVALID_DISCOUNT"},
	{domain.ErrPaymentMethodMismatch, http.StatusBadRequest, "PAYMENT_METHOD_MISMATCH"},
	{domain.ErrInvalidTransactionType, http.StatusBadRequest, "INVALID_TRANSACTION_TYPE"},
	{domain.ErrSameAccountTransfer, http.StatusBadRequest, "SAME_ACCOUNT_TRANSFER"},

	{domain.ErrUnsupportedFileType, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE"},
	{domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
	{domain.ErrUploadFailed, http.StatusBadGateway, "UPLOAD_FAILED"},
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
// The message is the full error text so wrapped detail such as a line number reaches the client.
func MapDomainError(err error) (status int, code, msg string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m.status, m.code, err.Error()
		}
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("code", code).Msg("request failed")
	}
	RespondError(c, status, code, msg)
}

// respondValidation sends a 400 for a request body or query that failed binding.
func respondValidation(c *gin.Context, err error) {
	RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
}

// extractAuthContext extracts company ID, user ID, and role from the request context.
// Returns false if auth context is missing (error response already written).
func extractAuthContext(c *gin.Context) (companyID, userID uuid.UUID, role domain.UserRole, ok bool) {
	var err error
	companyID, err = middleware.GetCompanyID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing company context")
		return uuid.Nil, uuid.Nil, "", false
	}
	userID, err = middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return uuid.Nil, uuid.Nil, "", false
	}
	role = domain.UserRole(middleware.GetRole(c))
	return companyID, userID, role, true
}

// requireCompanyID extracts only the company ID. Returns false if it is missing.
func requireCompanyID(c *gin.Context) (uuid.UUID, bool) {
	id, err := middleware.GetCompanyID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing company context")
		return uuid.Nil, false
	}
	return id, true
}

// pathID parses a UUID path parameter. Returns false if it is malformed.
func pathID(c *gin.Context, name, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid "+what+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// parsePagination reads offset and limit, defaulting to 0 and 20 with limit capped at 100.
func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

// optionalUUIDQuery parses an optional UUID query parameter.
func optionalUUIDQuery(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid "+name)
		return nil, false
	}
	return &id, true
}

// optionalDateQuery parses an optional YYYY-MM-DD query parameter.
func optionalDateQuery(c *gin.Context, name string) (*domain.Date, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_DATE", "invalid "+name+"; expected YYYY-MM-DD")
		return nil, false
	}
	return &d, true
}

// idempotencyKey returns the client's Idempotency-Key header, if any.
func idempotencyKey(c *gin.Context) string {
	key := c.GetHeader("Idempotency-Key")
	if len(key) > 128 {
		return key[:128]
	}
	return key
}
