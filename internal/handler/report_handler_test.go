package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"khata/internal/domain"
	"khata/internal/handler"
	"khata/mocks"
)

func TestReportHandler_PeriodSummary_ParsesFilters(t *testing.T) {
	svc := new(mocks.MockReportService)
	h := handler.NewReportHandler(svc)
	companyID := uuid.New()
	from := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)

	svc.On("PeriodSummary", mock.Anything, companyID, mock.MatchedBy(func(f *domain.ReportFilters) bool {
		return f.Granularity == "quarterly" &&
			f.InvoiceType == domain.InvoiceTypePurchase &&
			f.From != nil && f.From.Equal(from) &&
			f.To == nil
	})).Return([]domain.PeriodSummaryRow{{Period: "2024-Q2", InvoiceCount: 12}}, nil)

	c, w := newTestContext(http.MethodGet, "/api/v1/reports/period-summary?type=purchase&granularity=quarterly&from=2024-04-01", nil)
	setAuthContext(c, companyID, uuid.New(), domain.RoleAccountant)

	h.PeriodSummary(c)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestReportHandler_PeriodSummary_InvalidGranularity(t *testing.T) {
	svc := new(mocks.MockReportService)
	h := handler.NewReportHandler(svc)

	c, w := newTestContext(http.MethodGet, "/api/v1/reports/period-summary?granularity=hourly", nil)
	setAuthContext(c, uuid.New(), uuid.New(), domain.RoleViewer)

	h.PeriodSummary(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "INVALID_FILTER", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "granularity")
	svc.AssertNotCalled(t, "PeriodSummary", mock.Anything, mock.Anything, mock.Anything)
}

func TestReportHandler_PeriodSummary_InvalidDate(t *testing.T) {
	h := handler.NewReportHandler(new(mocks.MockReportService))

	c, w := newTestContext(http.MethodGet, "/api/v1/reports/period-summary?from=01-04-2024", nil)
	setAuthContext(c, uuid.New(), uuid.New(), domain.RoleViewer)

	h.PeriodSummary(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_FILTER", decodeResponse(t, w).Error.Code)
}

func TestReportHandler_GSTSummary_ServiceError(t *testing.T) {
	svc := new(mocks.MockReportService)
	h := handler.NewReportHandler(svc)

	svc.On("GSTSummary", mock.Anything, mock.Anything, mock.Anything).Return(nil, domain.ErrInvalidInvoiceType)

	c, w := newTestContext(http.MethodGet, "/api/v1/reports/gst-summary", nil)
	setAuthContext(c, uuid.New(), uuid.New(), domain.RoleOwner)

	h.GSTSummary(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_INVOICE_TYPE", decodeResponse(t, w).Error.Code)
}
