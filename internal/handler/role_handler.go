package handler

import (
	"github.com/gin-gonic/gin"

	"khata/internal/rbac"
)

// RoleHandler serves the role permission table.
type RoleHandler struct {
	table *rbac.Table
}

// NewRoleHandler creates a new RoleHandler.
func NewRoleHandler(table *rbac.Table) *RoleHandler {
	return &RoleHandler{table: table}
}

// List handles GET /api/v1/roles
// @Summary List roles
// @Description Return every role with its module permissions and the table version
// @Tags team
// @Produce json
// @Success 200 {object} Response{data=RolesResponse}
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /roles [get]
func (h *RoleHandler) List(c *gin.Context) {
	RespondOK(c, RolesResponse{Version: h.table.Version(), Roles: h.table.Roles()})
}
