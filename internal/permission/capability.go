package permission

import (
	"github.com/designxcel/storefront/internal/auth"
)

// rolePermissions is the static role → implied-permission table. It is the
// server-side source for the capability payload the UI mirrors; the granular
// matrix adds per-user rows on top of it for employees.
var rolePermissions = map[auth.Role][]string{
	auth.RoleCustomer: {},
	auth.RoleEmployee: {
		Name(SectionSupport, ActionView),
	},
	auth.RoleOrderSupport: {
		Name(SectionOrders, ActionView),
		Name(SectionOrders, ActionUpdate),
		Name(SectionSupport, ActionView),
		Name(SectionSupport, ActionUpdate),
	},
	auth.RoleInventoryManager: {
		Name(SectionProducts, ActionView),
		Name(SectionProducts, ActionCreate),
		Name(SectionProducts, ActionUpdate),
		Name(SectionProducts, ActionDelete),
	},
	auth.RoleUserManager: {
		Name(SectionUsers, ActionView),
		Name(SectionUsers, ActionCreate),
		Name(SectionUsers, ActionUpdate),
		Name(SectionUsers, ActionDelete),
		Name(SectionContent, ActionView),
	},
	auth.RoleTransactionManager: {
		Name(SectionTransactions, ActionView),
		Name(SectionTransactions, ActionCreate),
		Name(SectionTransactions, ActionUpdate),
		Name(SectionTransactions, ActionDelete),
		Name(SectionOrders, ActionView),
	},
	// Admin short-circuits every predicate; the explicit list exists so the
	// serialized capability payload is complete for the UI.
	auth.RoleAdmin: AllNames(),
}

// dashboardSections maps a dashboard area to the permissions that unlock it.
// Any one of the listed permissions is enough.
var dashboardSections = map[string][]string{
	SectionProducts:     {Name(SectionProducts, ActionView)},
	SectionOrders:       {Name(SectionOrders, ActionView)},
	SectionUsers:        {Name(SectionUsers, ActionView)},
	SectionContent:      {Name(SectionContent, ActionView)},
	SectionTransactions: {Name(SectionTransactions, ActionView)},
	SectionSupport:      {Name(SectionSupport, ActionView)},
}

// RolePermissions returns a copy of the static implied permissions for a role.
func RolePermissions(role auth.Role) []string {
	perms := rolePermissions[role]
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// CapabilitySet is the effective permission set for one identity: static
// role-implied permissions merged with granular matrix rows (employees only).
// It backs the payload served to clients so the UI can hide controls without
// a round trip; the middleware gates remain the enforcement point.
type CapabilitySet struct {
	role  auth.Role
	typ   auth.UserType
	perms map[string]struct{}
}

// NewCapabilitySet merges the static table with server-fetched granular
// permissions. Granular rows only apply to employees; customers get the
// static role table alone.
func NewCapabilitySet(identity auth.Identity, granular []string) *CapabilitySet {
	set := &CapabilitySet{
		role:  identity.Role,
		typ:   identity.Type,
		perms: make(map[string]struct{}),
	}

	for _, name := range rolePermissions[identity.Role] {
		set.perms[name] = struct{}{}
	}

	if identity.Type == auth.UserTypeEmployee {
		for _, name := range granular {
			set.perms[name] = struct{}{}
		}
	}

	return set
}

func (c *CapabilitySet) HasPermission(name string) bool {
	if c.role == auth.RoleAdmin {
		return true
	}
	_, ok := c.perms[name]
	return ok
}

func (c *CapabilitySet) HasAnyPermission(names []string) bool {
	if c.role == auth.RoleAdmin {
		return true
	}
	for _, name := range names {
		if _, ok := c.perms[name]; ok {
			return true
		}
	}
	return false
}

func (c *CapabilitySet) HasAllPermissions(names []string) bool {
	if c.role == auth.RoleAdmin {
		return true
	}
	for _, name := range names {
		if _, ok := c.perms[name]; !ok {
			return false
		}
	}
	return true
}

func (c *CapabilitySet) HasRole(role auth.Role) bool {
	return c.role == role
}

func (c *CapabilitySet) HasRoleOrHigher(role auth.Role) bool {
	return c.role.AtLeast(role)
}

func (c *CapabilitySet) HasSectionPermission(section, action string) bool {
	return c.HasPermission(Name(section, action))
}

func (c *CapabilitySet) CanAccessDashboardSection(section string) bool {
	if c.role == auth.RoleAdmin {
		return true
	}
	required, ok := dashboardSections[section]
	if !ok {
		return false
	}
	return c.HasAnyPermission(required)
}

// Permissions returns the effective permission names, sorted by section order.
func (c *CapabilitySet) Permissions() []string {
	if c.role == auth.RoleAdmin {
		return AllNames()
	}
	out := make([]string, 0, len(c.perms))
	for _, name := range AllNames() {
		if _, ok := c.perms[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// DashboardAccess reports which dashboard sections the set unlocks.
func (c *CapabilitySet) DashboardAccess() map[string]bool {
	access := make(map[string]bool, len(dashboardSections))
	for section := range dashboardSections {
		access[section] = c.CanAccessDashboardSection(section)
	}
	return access
}

// UnlockedSections lists only the unlocked dashboard sections, in display
// order. This is the shape the capability payload serializes.
func (c *CapabilitySet) UnlockedSections() []string {
	out := make([]string, 0, len(Sections))
	for _, section := range Sections {
		if c.CanAccessDashboardSection(section) {
			out = append(out, section)
		}
	}
	return out
}
