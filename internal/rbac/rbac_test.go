package rbac_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"khata/internal/domain"
	"khata/internal/rbac"
)

func TestDefault_LoadsEmbeddedTable(t *testing.T) {
	table := rbac.Default()

	require.NotNil(t, table)
	assert.Positive(t, table.Version())
	assert.Len(t, table.Roles(), len(domain.ValidUserRoles))
}

func TestDefault_Grants(t *testing.T) {
	table := rbac.Default()

	tests := []struct {
		role   domain.UserRole
		module rbac.Module
		action rbac.Action
		want   bool
	}{
		{domain.RoleOwner, rbac.ModuleTeam, rbac.ActionDelete, true},
		{domain.RoleAdmin, rbac.ModuleSettings, rbac.ActionWrite, true},
		{domain.RoleAccountant, rbac.ModulePayments, rbac.ActionDelete, true},
		{domain.RoleAccountant, rbac.ModuleTeam, rbac.ActionRead, false},
		{domain.RoleAccountant, rbac.ModuleProducts, rbac.ActionWrite, false},
		{domain.RoleSales, rbac.ModuleSales, rbac.ActionWrite, true},
		{domain.RoleSales, rbac.ModuleSales, rbac.ActionDelete, false},
		{domain.RoleSales, rbac.ModulePurchases, rbac.ActionRead, false},
		{domain.RoleViewer, rbac.ModuleReports, rbac.ActionRead, true},
		{domain.RoleViewer, rbac.ModuleParties, rbac.ActionWrite, false},
		{domain.UserRole("ghost"), rbac.ModuleParties, rbac.ActionRead, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.module)+"/"+string(tt.action), func(t *testing.T) {
			assert.Equal(t, tt.want, table.Allowed(tt.role, tt.module, tt.action))
		})
	}
}

func TestRoles_SortedWithOrderedActions(t *testing.T) {
	roles := rbac.Default().Roles()

	assert.Equal(t, domain.RoleAccountant, roles[0].Role)
	for _, r := range roles {
		if r.Role == domain.RoleOwner {
			assert.Equal(t, []rbac.Action{rbac.ActionRead, rbac.ActionWrite, rbac.ActionDelete},
				r.Permissions[rbac.ModuleParties])
		}
	}
}

func TestParse_RejectsUnknownNames(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown role", "version: 1\nmodules: [parties]\nroles:\n  janitor:\n    grants:\n      parties: [read]\n"},
		{"unknown module", "version: 1\nmodules: [parties]\nroles:\n  viewer:\n    grants:\n      stock: [read]\n"},
		{"unknown action", "version: 1\nmodules: [parties]\nroles:\n  viewer:\n    grants:\n      parties: [approve]\n"},
		{"no modules", "version: 1\nroles: {}\n"},
		{"malformed", "version: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rbac.Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParse_ExpandsWildcard(t *testing.T) {
	table, err := rbac.Parse([]byte("version: 7\nmodules: [parties, reports]\nroles:\n  admin:\n    grants:\n      \"*\": [read]\n"))

	require.NoError(t, err)
	assert.Equal(t, 7, table.Version())
	assert.True(t, table.Allowed(domain.RoleAdmin, rbac.ModuleReports, rbac.ActionRead))
	assert.False(t, table.Allowed(domain.RoleAdmin, rbac.ModuleReports, rbac.ActionWrite))
}
