package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"khata/internal/domain"
	"khata/internal/port"
	"khata/internal/service"
)

// PaymentHandler handles payments and link previews.
type PaymentHandler struct {
	paymentService service.PaymentService
	linkingService service.LinkingService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService service.PaymentService, linkingService service.LinkingService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, linkingService: linkingService}
}

// Create handles POST /api/v1/payments
// @Summary Record a payment
// @Description Applies the payment to open invoices (auto-link or manual links) and posts each method with an account to the ledger.
// @Tags payments
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replays return the original payment"
// @Param body body CreatePaymentRequest true "Payment"
// @Success 201 {object} Response{data=domain.Payment}
// @Failure 400 {object} ErrorResponseBody "Validation error or methods do not add up"
// @Failure 404 {object} ErrorResponseBody "Party, invoice or account not found"
// @Failure 409 {object} ErrorResponseBody "Applied amount exceeds invoice balance"
// @Security BearerAuth
// @Router /payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	companyID, userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	var input service.CreatePaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, err)
		return
	}
	input.RequestID = idempotencyKey(c)

	payment, err := h.paymentService.Create(c.Request.Context(), companyID, userID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, payment)
}

// List handles GET /api/v1/payments
// @Summary List payments
// @Tags payments
// @Produce json
// @Param type query string false "payment_in or payment_out"
// @Param party_id query string false "Party ID (UUID)"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param sort query string false "Sort key, prefix with - for descending"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Payment,meta=PagMeta}
// @Security BearerAuth
// @Router /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}
	offset, limit := parsePagination(c)

	paymentType := domain.PaymentType(c.Query("type"))
	if paymentType != "" && !domain.ValidPaymentTypes[paymentType] {
		RespondError(c, http.StatusBadRequest, "INVALID_PAYMENT_TYPE", "type must be payment_in or payment_out")
		return
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

	filter := port.PaymentFilter{
		ListParams:  port.ListParams{Offset: offset, Limit: limit, Sort: c.Query("sort")},
		PaymentType: paymentType,
		PartyID:     partyID,
		From:        from,
		To:          to,
	}
	payments, total, err := h.paymentService.List(c.Request.Context(), companyID, filter)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, payments, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/payments/:id
func (h *PaymentHandler) GetByID(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}
	paymentID, ok := pathID(c, "id", "payment")
	if !ok {
		return
	}

	payment, err := h.paymentService.Get(c.Request.Context(), companyID, paymentID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, payment)
}

// Delete handles DELETE /api/v1/payments/:id
// @Summary Delete a payment
// @Description Reverses every invoice application, ledger posting and the party balance effect.
// @Tags payments
// @Produce json
// @Param id path string true "Payment ID (UUID)"
// @Success 200 {object} Response{data=MessageResponse}
// @Failure 404 {object} ErrorResponseBody "Payment not found"
// @Security BearerAuth
// @Router /payments/{id} [delete]
func (h *PaymentHandler) Delete(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}
	paymentID, ok := pathID(c, "id", "payment")
	if !ok {
		return
	}

	if err := h.paymentService.Delete(c.Request.Context(), companyID, paymentID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "payment deleted"})
}

// PreviewLinks handles POST /api/v1/linking/preview
// @Summary Preview invoice links
// @Description Runs the allocator against the party's open invoices without saving anything.
// @Tags payments
// @Accept json
// @Produce json
// @Param body body service.PreviewLinksInput true "Amount and allocation"
// @Success 200 {object} Response{data=service.LinkPreview}
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Security BearerAuth
// @Router /linking/preview [post]
func (h *PaymentHandler) PreviewLinks(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}

	var input service.PreviewLinksInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, err)
		return
	}
	if !input.Mode.Valid() {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid mode")
		return
	}

	preview, err := h.linkingService.Preview(c.Request.Context(), companyID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, preview)
}
