// Package rbac holds the role-to-permission table.
package rbac

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"khata/internal/domain"
)

// Module is a functional area of the application.
type Module string

const (
	ModuleParties   Module = "parties"
	ModuleProducts  Module = "products"
	ModuleSales     Module = "sales"
	ModulePurchases Module = "purchases"
	ModulePayments  Module = "payments"
	ModuleCashBank  Module = "cashbank"
	ModuleReports   Module = "reports"
	ModuleTeam      Module = "team"
	ModuleSettings  Module = "settings"
)

// Action is an operation on a module.
type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionDelete Action = "delete"
)

const wildcard = "*"

var validActions = map[Action]bool{ActionRead: true, ActionWrite: true, ActionDelete: true}

//go:embed permissions.yaml
var defaultYAML []byte

type roleDef struct {
	Description string              `yaml:"description"`
	Grants      map[string][]Action `yaml:"grants"`
}

type fileDef struct {
	Version int                         `yaml:"version"`
	Modules []Module                    `yaml:"modules"`
	Roles   map[domain.UserRole]roleDef `yaml:"roles"`
}

// RolePermissions is the resolved grant set of one role.
type RolePermissions struct {
	Role        domain.UserRole     `json:"role"`
	Description string              `json:"description"`
	Permissions map[Module][]Action `json:"permissions"`
}

// Table answers permission checks.
type Table struct {
	version int
	modules []Module
	roles   map[domain.UserRole]RolePermissions
	allowed map[domain.UserRole]map[Module]map[Action]bool
}

// Parse builds a Table from YAML, expanding wildcards and rejecting unknown names.
func Parse(data []byte) (*Table, error) {
	var def fileDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("rbac.Parse: %w", err)
	}
	if len(def.Modules) == 0 {
		return nil, fmt.Errorf("rbac.Parse: no modules declared")
	}

	known := make(map[Module]bool, len(def.Modules))
	for _, m := range def.Modules {
		known[m] = true
	}

	t := &Table{
		version: def.Version,
		modules: def.Modules,
		roles:   make(map[domain.UserRole]RolePermissions, len(def.Roles)),
		allowed: make(map[domain.UserRole]map[Module]map[Action]bool, len(def.Roles)),
	}

	for role, rd := range def.Roles {
		if !domain.ValidUserRoles[role] {
			return nil, fmt.Errorf("rbac.Parse: unknown role %q", role)
		}
		grants := make(map[Module]map[Action]bool)
		for name, actions := range rd.Grants {
			targets := def.Modules
			if name != wildcard {
				if !known[Module(name)] {
					return nil, fmt.Errorf("rbac.Parse: role %s: unknown module %q", role, name)
				}
				targets = []Module{Module(name)}
			}
			for _, a := range actions {
				if !validActions[a] {
					return nil, fmt.Errorf("rbac.Parse: role %s: unknown action %q", role, a)
				}
				for _, m := range targets {
					if grants[m] == nil {
						grants[m] = make(map[Action]bool)
					}
					grants[m][a] = true
				}
			}
		}
		t.allowed[role] = grants
		t.roles[role] = RolePermissions{
			Role:        role,
			Description: rd.Description,
			Permissions: flatten(grants),
		}
	}
	return t, nil
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the table compiled into the binary.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := Parse(defaultYAML)
		if err != nil {
			panic(err)
		}
		defaultTable = t
	})
	return defaultTable
}

// Version identifies the revision of the permission table.
func (t *Table) Version() int { return t.version }

// Allowed reports whether role may perform action on module.
func (t *Table) Allowed(role domain.UserRole, module Module, action Action) bool {
	return t.allowed[role][module][action]
}

// Roles lists every role with its resolved permissions, ordered by role name.
func (t *Table) Roles() []RolePermissions {
	out := make([]RolePermissions, 0, len(t.roles))
	for _, rp := range t.roles {
		out = append(out, rp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Role < out[j].Role })
	return out
}

func flatten(grants map[Module]map[Action]bool) map[Module][]Action {
	out := make(map[Module][]Action, len(grants))
	for m, actions := range grants {
		list := make([]Action, 0, len(actions))
		for _, a := range []Action{ActionRead, ActionWrite, ActionDelete} {
			if actions[a] {
				list = append(list, a)
			}
		}
		out[m] = list
	}
	return out
}
