package handler_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"khata/internal/domain"
	"khata/internal/handler"
	"khata/internal/service"
	"khata/mocks"
)

func paymentBody(partyID uuid.UUID) map[string]interface{} {
	return map[string]interface{}{
		"payment_type": "payment_in",
		"party_id":     partyID.String(),
		"payment_date": "2024-04-01",
		"total_amount": "1000",
		"payment_methods": []map[string]interface{}{
			{"method": "cash", "amount": "1000"},
		},
	}
}

func TestPaymentHandler_Create_PassesIdempotencyKey(t *testing.T) {
	svc := new(mocks.MockPaymentService)
	h := handler.NewPaymentHandler(svc, new(mocks.MockLinkingService))
	companyID, userID, partyID := uuid.New(), uuid.New(), uuid.New()

	svc.On("Create", mock.Anything, companyID, userID, mock.MatchedBy(func(in service.CreatePaymentInput) bool {
		return in.RequestID == "retry-7f3a" && in.PartyID == partyID && len(in.Methods) == 1
	})).Return(&domain.Payment{ID: uuid.New(), PaymentNumber: "PI-0001"}, nil)

	c, w := newTestContext(http.MethodPost, "/api/v1/payments", paymentBody(partyID))
	c.Request.Header.Set("Idempotency-Key", "retry-7f3a")
	setAuthContext(c, companyID, userID, domain.RoleSales)

	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestPaymentHandler_Create_MethodMismatch(t *testing.T) {
	svc := new(mocks.MockPaymentService)
	h := handler.NewPaymentHandler(svc, new(mocks.MockLinkingService))

	svc.On("Create", mock.Anything, mock.Anything, mock.Anything, mock.AnythingOfType("service.CreatePaymentInput")).
		Return(nil, domain.ErrPaymentMethodMismatch)

	c, w := newTestContext(http.MethodPost, "/api/v1/payments", paymentBody(uuid.New()))
	setAuthContext(c, uuid.New(), uuid.New(), domain.RoleAccountant)

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "PAYMENT_METHOD_MISMATCH", decodeResponse(t, w).Error.Code)
}

func TestPaymentHandler_Create_MissingUser(t *testing.T) {
	svc := new(mocks.MockPaymentService)
	h := handler.NewPaymentHandler(svc, new(mocks.MockLinkingService))

	c, w := newTestContext(http.MethodPost, "/api/v1/payments", paymentBody(uuid.New()))
	c.Set("company_id", uuid.New())

	h.Create(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentHandler_List_InvalidType(t *testing.T) {
	h := handler.NewPaymentHandler(new(mocks.MockPaymentService), new(mocks.MockLinkingService))

	c, w := newTestContext(http.MethodGet, "/api/v1/payments?type=refund", nil)
	setAuthContext(c, uuid.New(), uuid.New(), domain.RoleViewer)

	h.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_PAYMENT_TYPE", decodeResponse(t, w).Error.Code)
}
