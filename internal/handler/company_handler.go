package handler

import (
	"github.com/gin-gonic/gin"

	"khata/internal/service"
)

// CompanyHandler handles the company profile and its app settings.
type CompanyHandler struct {
	companyService  service.CompanyService
	settingsService service.SettingsService
}

// NewCompanyHandler creates a new CompanyHandler.
func NewCompanyHandler(companyService service.CompanyService, settingsService service.SettingsService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService, settingsService: settingsService}
}

// Get handles GET /api/v1/company
// @Summary Get company profile
// @Tags company
// @Produce json
// @Success 200 {object} Response{data=domain.Company}
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /company [get]
func (h *CompanyHandler) Get(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}

	company, err := h.companyService.Get(c.Request.Context(), companyID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, company)
}

// Update handles PUT /api/v1/company
// @Summary Update company profile
// @Description Update name, GST number, state, contact details or logo URL
// @Tags company
// @Accept json
// @Produce json
// @Param body body service.UpdateCompanyInput true "Fields to change"
// @Success 200 {object} Response{data=domain.Company}
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 403 {object} ErrorResponseBody "Forbidden"
// @Security BearerAuth
// @Router /company [put]
func (h *CompanyHandler) Update(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}

	var input service.UpdateCompanyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, err)
		return
	}

	company, err := h.companyService.Update(c.Request.Context(), companyID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, company)
}

// GetSettings handles GET /api/v1/settings
func (h *CompanyHandler) GetSettings(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}

	settings, err := h.settingsService.Get(c.Request.Context(), companyID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, settings)
}

// UpdateSettings handles PUT /api/v1/settings
// @Summary Update app settings
// @Description Change number prefixes, round-off, default GST rate or low-stock alerts
// @Tags company
// @Accept json
// @Produce json
// @Param body body service.UpdateSettingsInput true "Fields to change"
// @Success 200 {object} Response{data=domain.AppSettings}
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Security BearerAuth
// @Router /settings [put]
func (h *CompanyHandler) UpdateSettings(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}

	var input service.UpdateSettingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, err)
		return
	}

	settings, err := h.settingsService.Update(c.Request.Context(), companyID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, settings)
}
