package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"khata/internal/domain"
	"khata/internal/middleware"
	"khata/internal/rbac"
	"khata/internal/service"
	"khata/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error.Code
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	mockAuth := new(mocks.MockAuthService)
	companyID, userID := uuid.New(), uuid.New()
	mockAuth.On("ValidateToken", "valid-token").Return(&service.Claims{
		CompanyID: companyID,
		UserID:    userID,
		Email:     "clerk@shop.in",
		Role:      domain.RoleSales,
	}, nil)

	r := gin.New()
	r.Use(middleware.AuthMiddleware(mockAuth))
	r.GET("/test", func(c *gin.Context) {
		cid, _ := middleware.GetCompanyID(c)
		uid, _ := middleware.GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"company_id": cid, "user_id": uid, "role": middleware.GetRole(c)})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("Authorization", "Bearer valid-token")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, companyID.String(), resp["company_id"])
	assert.Equal(t, userID.String(), resp["user_id"])
	assert.Equal(t, "sales", resp["role"])
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	mockAuth := new(mocks.MockAuthService)

	r := gin.New()
	r.Use(middleware.AuthMiddleware(mockAuth))
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("Authorization", "Basic abc")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, w))
	mockAuth.AssertNotCalled(t, "ValidateToken", "abc")
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	mockAuth := new(mocks.MockAuthService)
	mockAuth.On("ValidateToken", "expired").Return(nil, errors.New("token is expired"))

	r := gin.New()
	r.Use(middleware.AuthMiddleware(mockAuth))
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("Authorization", "Bearer expired")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func permissionRouter(role string, module rbac.Module, action rbac.Action) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if role != "" {
			c.Set(middleware.ContextKeyRole, role)
		}
		c.Next()
	})
	r.GET("/test", middleware.RequirePermission(module, action), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestRequirePermission(t *testing.T) {
	tests := []struct {
		name   string
		role   string
		module rbac.Module
		action rbac.Action
		status int
	}{
		{"owner manages team", "owner", rbac.ModuleTeam, rbac.ActionDelete, http.StatusOK},
		{"sales records receipts", "sales", rbac.ModulePayments, rbac.ActionWrite, http.StatusOK},
		{"sales cannot delete payments", "sales", rbac.ModulePayments, rbac.ActionDelete, http.StatusForbidden},
		{"viewer reads cash and bank", "viewer", rbac.ModuleCashBank, rbac.ActionRead, http.StatusOK},
		{"viewer cannot write parties", "viewer", rbac.ModuleParties, rbac.ActionWrite, http.StatusForbidden},
		{"accountant cannot edit settings", "accountant", rbac.ModuleSettings, rbac.ActionWrite, http.StatusForbidden},
		{"unknown role", "intern", rbac.ModuleReports, rbac.ActionRead, http.StatusForbidden},
		{"missing role", "", rbac.ModuleReports, rbac.ActionRead, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
			permissionRouter(tt.role, tt.module, tt.action).ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestCompanyGuard(t *testing.T) {
	r := gin.New()
	r.GET("/open", middleware.CompanyGuard(), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/scoped", func(c *gin.Context) {
		c.Set(middleware.ContextKeyCompanyID, uuid.New())
		c.Next()
	}, middleware.CompanyGuard(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/open", http.NoBody)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/scoped", http.NoBody)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
