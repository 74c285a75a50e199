package handler_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"khata/internal/domain"
	"khata/internal/handler"
	"khata/internal/port"
	"khata/internal/service"
	"khata/mocks"
)

func TestPartyHandler_Create_Success(t *testing.T) {
	svc := new(mocks.MockPartyService)
	h := handler.NewPartyHandler(svc)
	companyID, userID := uuid.New(), uuid.New()

	svc.On("Create", mock.Anything, companyID, mock.MatchedBy(func(in service.CreatePartyInput) bool {
		return in.PartyType == domain.PartyTypeCustomer && in.Name == "Sharma Traders" && in.OpeningBalance.String() == "1500"
	})).Return(&domain.Party{ID: uuid.New(), Name: "Sharma Traders"}, nil)

	c, w := newTestContext(http.MethodPost, "/api/v1/parties", map[string]interface{}{
		"party_type":      "customer",
		"name":            "Sharma Traders",
		"opening_balance": "1500",
	})
	setAuthContext(c, companyID, userID, domain.RoleSales)

	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decodeResponse(t, w).Success)
	svc.AssertExpectations(t)
}

func TestPartyHandler_Create_ValidationError(t *testing.T) {
	svc := new(mocks.MockPartyService)
	h := handler.NewPartyHandler(svc)

	c, w := newTestContext(http.MethodPost, "/api/v1/parties", map[string]interface{}{
		"party_type": "supplier",
		"name":       "Gupta Agencies",
	})
	setAuthContext(c, uuid.New(), uuid.New(), domain.RoleOwner)

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeResponse(t, w).Error.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestPartyHandler_Create_MissingCompany(t *testing.T) {
	h := handler.NewPartyHandler(new(mocks.MockPartyService))

	c, w := newTestContext(http.MethodPost, "/api/v1/parties", map[string]interface{}{"name": "x"})

	h.Create(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPartyHandler_List_FiltersByType(t *testing.T) {
	svc := new(mocks.MockPartyService)
	h := handler.NewPartyHandler(svc)
	companyID := uuid.New()

	svc.On("List", mock.Anything, companyID, port.PartyFilter{
		ListParams: port.ListParams{Offset: 0, Limit: 50, Sort: "-receivable_balance"},
		PartyType:  domain.PartyTypeVendor,
		Search:     "gupta",
	}).Return([]domain.Party{{ID: uuid.New()}}, 1, nil)

	c, w := newTestContext(http.MethodGet, "/api/v1/parties?type=vendor&search=gupta&sort=-receivable_balance&limit=50", nil)
	setAuthContext(c, companyID, uuid.New(), domain.RoleViewer)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, 1, resp.Meta.Total)
	assert.Equal(t, 50, resp.Meta.Limit)
}

func TestPartyHandler_List_InvalidType(t *testing.T) {
	h := handler.NewPartyHandler(new(mocks.MockPartyService))

	c, w := newTestContext(http.MethodGet, "/api/v1/parties?type=supplier", nil)
	setAuthContext(c, uuid.New(), uuid.New(), domain.RoleViewer)

	h.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPartyHandler_GetByID_InvalidID(t *testing.T) {
	h := handler.NewPartyHandler(new(mocks.MockPartyService))

	c, w := newTestContext(http.MethodGet, "/api/v1/parties/not-a-uuid", nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}
	setAuthContext(c, uuid.New(), uuid.New(), domain.RoleViewer)

	h.GetByID(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", decodeResponse(t, w).Error.Code)
}

func TestPartyHandler_Delete_HasActivity(t *testing.T) {
	svc := new(mocks.MockPartyService)
	h := handler.NewPartyHandler(svc)
	companyID, partyID := uuid.New(), uuid.New()

	svc.On("Delete", mock.Anything, companyID, partyID).Return(domain.ErrPartyHasActivity)

	c, w := newTestContext(http.MethodDelete, "/api/v1/parties/"+partyID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: partyID.String()}}
	setAuthContext(c, companyID, uuid.New(), domain.RoleOwner)

	h.Delete(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "PARTY_HAS_ACTIVITY", resp.Error.Code)
}
