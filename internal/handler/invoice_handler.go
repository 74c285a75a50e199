package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"khata/internal/domain"
	"khata/internal/middleware"
	"khata/internal/port"
	"khata/internal/rbac"
	"khata/internal/service"
)

// InvoiceHandler handles sales, purchases and their returns.
// Permission checks depend on the invoice type, so they run here rather than in the router.
type InvoiceHandler struct {
	invoiceService service.InvoiceService
	permissions    *rbac.Table
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService service.InvoiceService, permissions *rbac.Table) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService, permissions: permissions}
}

func invoiceModule(t domain.InvoiceType) rbac.Module {
	if t == domain.InvoiceTypeSale || t == domain.InvoiceTypeSaleReturn {
		return rbac.ModuleSales
	}
	return rbac.ModulePurchases
}

func (h *InvoiceHandler) authorize(c *gin.Context, t domain.InvoiceType, action rbac.Action) bool {
	role := domain.UserRole(middleware.GetRole(c))
	if !h.permissions.Allowed(role, invoiceModule(t), action) {
		RespondError(c, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
		return false
	}
	return true
}

// Create handles POST /api/v1/invoices
// @Summary Create a sale or purchase invoice
// @Description Totals, tax split and round-off are computed server-side. Stock and the party balance move with the invoice.
// @Tags invoices
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replays return the original invoice"
// @Param body body CreateInvoiceRequest true "Invoice"
// @Success 201 {object} Response{data=domain.Invoice}
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 403 {object} ErrorResponseBody "Insufficient permissions"
// @Failure 404 {object} ErrorResponseBody "Party or product not found"
// @Failure 409 {object} ErrorResponseBody "Invoice number already exists"
// @Security BearerAuth
// @Router /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	companyID, userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	var input service.CreateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, err)
		return
	}
	if !h.authorize(c, input.InvoiceType, rbac.ActionWrite) {
		return
	}
	input.RequestID = idempotencyKey(c)

	invoice, err := h.invoiceService.Create(c.Request.Context(), companyID, userID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, invoice)
}

// CreateReturn handles POST /api/v1/returns
// @Summary Create a sale or purchase return
// @Description The return value settles invoices of the original type; any refund is posted to the chosen account.
// @Tags invoices
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replays return the original return"
// @Param body body service.CreateReturnInput true "Return"
// @Success 201 {object} Response{data=domain.Invoice}
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 409 {object} ErrorResponseBody "Applied amount exceeds invoice balance"
// @Security BearerAuth
// @Router /returns [post]
func (h *InvoiceHandler) CreateReturn(c *gin.Context) {
	companyID, userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	var input service.CreateReturnInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, err)
		return
	}
	if !h.authorize(c, input.InvoiceType, rbac.ActionWrite) {
		return
	}
	input.RequestID = idempotencyKey(c)

	ret, err := h.invoiceService.CreateReturn(c.Request.Context(), companyID, userID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, ret)
}

// List handles GET /api/v1/invoices
// @Summary List invoices
// @Description Without a type filter the caller needs read access to both sales and purchases.
// @Tags invoices
// @Produce json
// @Param type query string false "sale, purchase, sale_return or purchase_return"
// @Param party_id query string false "Party ID (UUID)"
// @Param status query string false "unpaid, partial or paid"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param search query string false "Matches invoice number or party name"
// @Param sort query string false "Sort key, prefix with - for descending" example(-invoice_date)
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Invoice,meta=PagMeta}
// @Failure 400 {object} ErrorResponseBody "Invalid filter"
// @Security BearerAuth
// @Router /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}
	offset, limit := parsePagination(c)

	invoiceType := domain.InvoiceType(c.Query("type"))
	switch {
	case invoiceType == "":
		if !h.authorize(c, domain.InvoiceTypeSale, rbac.ActionRead) || !h.authorize(c, domain.InvoiceTypePurchase, rbac.ActionRead) {
			return
		}
	case !domain.ValidInvoiceTypes[invoiceType]:
		RespondError(c, http.StatusBadRequest, "INVALID_INVOICE_TYPE", "invalid invoice type")
		return
	default:
		if !h.authorize(c, invoiceType, rbac.ActionRead) {
			return
		}
	}

	partyID, ok := optionalUUIDQuery(c, "party_id")
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

	filter := port.InvoiceFilter{
		ListParams:    port.ListParams{Offset: offset, Limit: limit, Sort: c.Query("sort")},
		InvoiceType:   invoiceType,
		PartyID:       partyID,
		PaymentStatus: domain.PaymentStatus(c.Query("status")),
		From:          from,
		To:            to,
		Search:        c.Query("search"),
	}
	invoices, total, err := h.invoiceService.List(c.Request.Context(), companyID, filter)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, invoices, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/invoices/:id
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	_, invoice, ok := h.load(c, rbac.ActionRead)
	if !ok {
		return
	}
	RespondOK(c, invoice)
}

// Update handles PUT /api/v1/invoices/:id
// @Summary Update an invoice
// @Description Totals are recomputed; stock and the party balance move by the difference. Returns cannot be edited.
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID (UUID)"
// @Param body body service.UpdateInvoiceInput true "Fields to change"
// @Success 200 {object} Response{data=domain.Invoice}
// @Failure 400 {object} ErrorResponseBody "New total below the amount already paid"
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	companyID, existing, ok := h.load(c, rbac.ActionWrite)
	if !ok {
		return
	}

	var input service.UpdateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, err)
		return
	}

	invoice, err := h.invoiceService.Update(c.Request.Context(), companyID, existing.ID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, invoice)
}

// Delete handles DELETE /api/v1/invoices/:id
// @Summary Delete an invoice or return
// @Description Invoices with payments applied cannot be deleted. Deleting a return reverses its settlements and refund.
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID (UUID)"
// @Success 200 {object} Response{data=MessageResponse}
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Failure 409 {object} ErrorResponseBody "Invoice has payments applied"
// @Security BearerAuth
// @Router /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	companyID, existing, ok := h.load(c, rbac.ActionDelete)
	if !ok {
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), companyID, existing.ID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "invoice deleted"})
}

// load fetches the invoice named in the path and checks the caller may act on its type.
// The company comes from the auth context, never from the loaded row.
func (h *InvoiceHandler) load(c *gin.Context, action rbac.Action) (uuid.UUID, *domain.Invoice, bool) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return uuid.Nil, nil, false
	}
	invoiceID, ok := pathID(c, "id", "invoice")
	if !ok {
		return uuid.Nil, nil, false
	}

	invoice, err := h.invoiceService.Get(c.Request.Context(), companyID, invoiceID)
	if err != nil {
		HandleError(c, err)
		return uuid.Nil, nil, false
	}
	if !h.authorize(c, invoice.InvoiceType, action) {
		return uuid.Nil, nil, false
	}
	return companyID, invoice, true
}
