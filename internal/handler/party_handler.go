package handler

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"khata/internal/domain"
	"khata/internal/export"
	"khata/internal/port"
	"khata/internal/service"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// PartyHandler handles customer and vendor endpoints.
type PartyHandler struct {
	partyService service.PartyService
}

// NewPartyHandler creates a new PartyHandler.
func NewPartyHandler(partyService service.PartyService) *PartyHandler {
	return &PartyHandler{partyService: partyService}
}

// Create handles POST /api/v1/parties
// @Summary Create a party
// @Description Create a customer or vendor. A positive opening balance is owed to the company.
// @Tags parties
// @Accept json
// @Produce json
// @Param body body CreatePartyRequest true "Party"
// @Success 201 {object} Response{data=domain.Party}
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Security BearerAuth
// @Router /parties [post]
func (h *PartyHandler) Create(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}

	var input service.CreatePartyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, err)
		return
	}

	party, err := h.partyService.Create(c.Request.Context(), companyID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, party)
}

// List handles GET /api/v1/parties
// @Summary List parties
// @Tags parties
// @Produce json
// @Param type query string false "customer or vendor"
// @Param group query string false "Party group"
// @Param search query string false "Matches name, phone or GST number"
// @Param sort query string false "Sort key, prefix with - for descending" example(-receivable_balance)
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Party,meta=PagMeta}
// @Security BearerAuth
// @Router /parties [get]
func (h *PartyHandler) List(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}
	offset, limit := parsePagination(c)

	partyType := domain.PartyType(c.Query("type"))
	if partyType != "" && partyType != domain.PartyTypeCustomer && partyType != domain.PartyTypeVendor {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "type must be customer or vendor")
		return
	}

	filter := port.PartyFilter{
		ListParams: port.ListParams{Offset: offset, Limit: limit, Sort: c.Query("sort")},
		PartyType:  partyType,
		PartyGroup: c.Query("group"),
		Search:     c.Query("search"),
	}
	parties, total, err := h.partyService.List(c.Request.Context(), companyID, filter)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, parties, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/parties/:id
func (h *PartyHandler) GetByID(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}
	partyID, ok := pathID(c, "id", "party")
	if !ok {
		return
	}

	party, err := h.partyService.Get(c.Request.Context(), companyID, partyID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, party)
}

// Update handles PUT /api/v1/parties/:id
// @Summary Update a party
// @Description Changing the opening balance shifts the running balance by the difference
// @Tags parties
// @Accept json
// @Produce json
// @Param id path string true "Party ID (UUID)"
// @Param body body service.UpdatePartyInput true "Fields to change"
// @Success 200 {object} Response{data=domain.Party}
// @Failure 404 {object} ErrorResponseBody "Party not found"
// @Security BearerAuth
// @Router /parties/{id} [put]
func (h *PartyHandler) Update(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}
	partyID, ok := pathID(c, "id", "party")
	if !ok {
		return
	}

	var input service.UpdatePartyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, err)
		return
	}

	party, err := h.partyService.Update(c.Request.Context(), companyID, partyID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, party)
}

// Delete handles DELETE /api/v1/parties/:id
// @Summary Delete a party
// @Tags parties
// @Produce json
// @Param id path string true "Party ID (UUID)"
// @Success 200 {object} Response{data=MessageResponse}
// @Failure 404 {object} ErrorResponseBody "Party not found"
// @Failure 409 {object} ErrorResponseBody "Party has invoices or payments"
// @Security BearerAuth
// @Router /parties/{id} [delete]
func (h *PartyHandler) Delete(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}
	partyID, ok := pathID(c, "id", "party")
	if !ok {
		return
	}

	if err := h.partyService.Delete(c.Request.Context(), companyID, partyID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "party deleted"})
}

// Outstanding handles GET /api/v1/parties/:id/outstanding
// @Summary Open invoices of a party
// @Description Unpaid and partially paid invoices, oldest first, as candidates for linking
// @Tags parties
// @Produce json
// @Param id path string true "Party ID (UUID)"
// @Success 200 {object} Response{data=[]domain.Invoice}
// @Security BearerAuth
// @Router /parties/{id}/outstanding [get]
func (h *PartyHandler) Outstanding(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}
	partyID, ok := pathID(c, "id", "party")
	if !ok {
		return
	}

	invoices, err := h.partyService.Outstanding(c.Request.Context(), companyID, partyID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, invoices)
}

// Statement handles GET /api/v1/parties/:id/statement
// @Summary Party statement
// @Description Ledger of invoices, returns and payments with a running balance
// @Tags parties
// @Produce json
// @Param id path string true "Party ID (UUID)"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} Response{data=domain.PartyStatement}
// @Failure 404 {object} ErrorResponseBody "Party not found"
// @Security BearerAuth
// @Router /parties/{id}/statement [get]
func (h *PartyHandler) Statement(c *gin.Context) {
	st, ok := h.loadStatement(c)
	if !ok {
		return
	}
	RespondOK(c, st)
}

// ExportStatement handles GET /api/v1/parties/:id/statement/export
// @Summary Download a party statement
// @Tags parties
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Party ID (UUID)"
// @Param format query string false "csv or xlsx" default(xlsx)
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponseBody "Unknown format"
// @Security BearerAuth
// @Router /parties/{id}/statement/export [get]
func (h *PartyHandler) ExportStatement(c *gin.Context) {
	format := c.DefaultQuery("format", "xlsx")
	if format != "csv" && format != "xlsx" {
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be csv or xlsx")
		return
	}

	st, ok := h.loadStatement(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	contentType := contentTypeXLSX
	if format == "csv" {
		contentType = contentTypeCSV
		w := export.NewWriter(&buf)
		if err := w.WriteStatement(st); err != nil {
			HandleError(c, err)
			return
		}
		w.Flush()
		if err := w.Error(); err != nil {
			HandleError(c, err)
			return
		}
	} else if err := export.WriteStatementXLSX(&buf, st); err != nil {
		HandleError(c, err)
		return
	}

	filename := export.BuildFilename(st.Party.Name, format)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (h *PartyHandler) loadStatement(c *gin.Context) (*domain.PartyStatement, bool) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return nil, false
	}
	partyID, ok := pathID(c, "id", "party")
	if !ok {
		return nil, false
	}
	from, ok := optionalDateQuery(c, "from")
	if !ok {
		return nil, false
	}
	to, ok := optionalDateQuery(c, "to")
	if !ok {
		return nil, false
	}

	st, err := h.partyService.Statement(c.Request.Context(), companyID, partyID, dateTime(from), dateTime(to))
	if err != nil {
		HandleError(c, err)
		return nil, false
	}
	return st, true
}

func dateTime(d *domain.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}
