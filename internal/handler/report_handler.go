package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"khata/internal/domain"
	"khata/internal/service"
)

// ReportHandler handles report endpoints.
type ReportHandler struct {
	reportService service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// parseReportFilters extracts common report filter parameters from query params.
func parseReportFilters(c *gin.Context) (*domain.ReportFilters, error) {
	filters := &domain.ReportFilters{
		Offset: 0,
		Limit:  20,
	}

	// Parse date filters.
	if fromStr := c.Query("from"); fromStr != "" {
		t, err := time.Parse(domain.DateLayout, fromStr)
		if err != nil {
			return nil, fmt.Errorf("invalid 'from' date: must be YYYY-MM-DD")
		}
		filters.From = &t
	}
	if toStr := c.Query("to"); toStr != "" {
		t, err := time.Parse(domain.DateLayout, toStr)
		if err != nil {
			return nil, fmt.Errorf("invalid 'to' date: must be YYYY-MM-DD")
		}
		filters.To = &t
	}

	if pidStr := c.Query("party_id"); pidStr != "" {
		pid, err := uuid.Parse(pidStr)
		if err != nil {
			return nil, fmt.Errorf("invalid 'party_id': must be a valid UUID")
		}
		filters.PartyID = &pid
	}

	if t := c.Query("type"); t != "" {
		filters.InvoiceType = domain.InvoiceType(t)
		if !domain.ValidInvoiceTypes[filters.InvoiceType] {
			return nil, fmt.Errorf("invalid 'type': must be sale, purchase, sale_return or purchase_return")
		}
	}

	if pt := c.Query("party_type"); pt != "" {
		filters.PartyType = domain.PartyType(pt)
		if filters.PartyType != domain.PartyTypeCustomer && filters.PartyType != domain.PartyTypeVendor {
			return nil, fmt.Errorf("invalid 'party_type': must be customer or vendor")
		}
	}

	// Parse granularity with default.
	granularity := c.Query("granularity")
	if granularity == "" {
		granularity = "monthly"
	}
	if !domain.ValidGranularities[granularity] {
		return nil, fmt.Errorf("invalid 'granularity': must be one of daily, weekly, monthly, quarterly, yearly")
	}
	filters.Granularity = granularity

	// Parse pagination.
	if offsetStr := c.Query("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return nil, fmt.Errorf("invalid 'offset': must be a non-negative integer")
		}
		filters.Offset = offset
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 || limit > 100 {
			return nil, fmt.Errorf("invalid 'limit': must be between 1 and 100")
		}
		filters.Limit = limit
	}

	return filters, nil
}

// PeriodSummary handles GET /api/v1/reports/period-summary
// @Summary      Sales or purchase totals per period
// @Description  Invoice count, taxable value, tax and totals bucketed by granularity
// @Tags         reports
// @Produce      json
// @Param        type query string false "Invoice type" default(sale)
// @Param        granularity query string false "daily, weekly, monthly, quarterly or yearly" default(monthly)
// @Param        from query string false "Start date (YYYY-MM-DD)"
// @Param        to query string false "End date (YYYY-MM-DD)"
// @Param        party_id query string false "Party UUID"
// @Success      200 {object} Response{data=[]domain.PeriodSummaryRow}
// @Failure      400 {object} ErrorResponseBody
// @Failure      401 {object} ErrorResponseBody
// @Security     BearerAuth
// @Router       /reports/period-summary [get]
func (h *ReportHandler) PeriodSummary(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}
	filters, err := parseReportFilters(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FILTER", err.Error())
		return
	}

	rows, err := h.reportService.PeriodSummary(c.Request.Context(), companyID, filters)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, rows)
}

// Outstanding handles GET /api/v1/reports/outstanding
// @Summary      Outstanding balances with aging
// @Description  Per-party unpaid balances split into 0-30, 31-60, 61-90 and 90+ day buckets
// @Tags         reports
// @Produce      json
// @Param        party_type query string false "customer or vendor"
// @Param        as_of query string false "Aging date (YYYY-MM-DD), default today"
// @Param        offset query int false "Pagination offset" default(0)
// @Param        limit query int false "Pagination limit" default(20)
// @Success      200 {object} Response{data=[]domain.OutstandingRow,meta=PagMeta}
// @Failure      400 {object} ErrorResponseBody
// @Security     BearerAuth
// @Router       /reports/outstanding [get]
func (h *ReportHandler) Outstanding(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}
	filters, err := parseReportFilters(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FILTER", err.Error())
		return
	}
	asOf, ok := optionalDateQuery(c, "as_of")
	if !ok {
		return
	}
	var asOfTime time.Time
	if asOf != nil {
		asOfTime = asOf.Time
	}

	rows, total, err := h.reportService.Outstanding(c.Request.Context(), companyID, asOfTime, filters)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, rows, PagMeta{Total: total, Offset: filters.Offset, Limit: filters.Limit})
}

// GSTSummary handles GET /api/v1/reports/gst-summary
// @Summary      Tax collected or paid by GST rate
// @Tags         reports
// @Produce      json
// @Param        type query string false "Invoice type"
// @Param        from query string false "Start date (YYYY-MM-DD)"
// @Param        to query string false "End date (YYYY-MM-DD)"
// @Success      200 {object} Response{data=[]domain.GSTSummaryRow}
// @Failure      400 {object} ErrorResponseBody
// @Security     BearerAuth
// @Router       /reports/gst-summary [get]
func (h *ReportHandler) GSTSummary(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}
	filters, err := parseReportFilters(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FILTER", err.Error())
		return
	}

	rows, err := h.reportService.GSTSummary(c.Request.Context(), companyID, filters)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, rows)
}

// LowStock handles GET /api/v1/reports/low-stock
func (h *ReportHandler) LowStock(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}
	offset, limit := parsePagination(c)

	products, total, err := h.reportService.LowStock(c.Request.Context(), companyID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, products, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Reconciliation handles GET /api/v1/reports/reconciliation
// @Summary      Account balance reconciliation
// @Description  Compares each account's stored balance with opening balance plus ledger total
// @Tags         reports
// @Produce      json
// @Param        offset query int false "Pagination offset" default(0)
// @Param        limit query int false "Pagination limit" default(20)
// @Success      200 {object} Response{data=[]domain.ReconciliationRow}
// @Security     BearerAuth
// @Router       /reports/reconciliation [get]
func (h *ReportHandler) Reconciliation(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}
	offset, limit := parsePagination(c)

	rows, err := h.reportService.Reconciliation(c.Request.Context(), companyID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, rows)
}
