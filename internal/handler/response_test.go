package handler_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"khata/internal/domain"
	"khata/internal/handler"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", domain.ErrPartyNotFound, http.StatusNotFound, "PARTY_NOT_FOUND"},
		{"wrapped line error", fmt.Errorf("item 3: %w", domain.ErrInvalidLineItem), http.StatusBadRequest, "INVALID_LINE_ITEM"},
		{"conflict", domain.ErrInvoiceHasPayments, http.StatusConflict, "INVOICE_HAS_PAYMENTS"},
		{"granularity", domain.ErrInvalidGranularity, http.StatusBadRequest, "INVALID_FILTER"},
		{"too large", domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{"rate limited", domain.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, msg := handler.MapDomainError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.err.Error(), msg)
		})
	}
}

func TestMapDomainError_UnknownHidesDetail(t *testing.T) {
	status, code, msg := handler.MapDomainError(errors.New("pq: relation does not exist"))

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "INTERNAL_ERROR", code)
	assert.NotContains(t, msg, "relation")
}
