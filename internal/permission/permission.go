package permission

import (
	"context"
	"errors"
	"time"
)

// Sections are the administrative areas of the storefront dashboard. Each
// carries its own view/create/update/delete flags in the matrix.
const (
	SectionProducts     = "products"
	SectionOrders       = "orders"
	SectionUsers        = "users"
	SectionContent      = "content"
	SectionTransactions = "transactions"
	SectionSupport      = "support"
)

const (
	ActionView   = "canView"
	ActionCreate = "canCreate"
	ActionUpdate = "canUpdate"
	ActionDelete = "canDelete"
)

var Sections = []string{
	SectionProducts,
	SectionOrders,
	SectionUsers,
	SectionContent,
	SectionTransactions,
	SectionSupport,
}

var Actions = []string{ActionView, ActionCreate, ActionUpdate, ActionDelete}

// Name builds the matrix key for a section and action, e.g. "products.canCreate".
func Name(section, action string) string {
	return section + "." + action
}

// AllNames returns every section.action combination the matrix knows about.
func AllNames() []string {
	names := make([]string, 0, len(Sections)*len(Actions))
	for _, section := range Sections {
		for _, action := range Actions {
			names = append(names, Name(section, action))
		}
	}
	return names
}

// Known reports whether name is a valid section.action key.
func Known(name string) bool {
	for _, section := range Sections {
		for _, action := range Actions {
			if Name(section, action) == name {
				return true
			}
		}
	}
	return false
}

// Entry is one persisted matrix row projected for the admin editor. A name
// with no underlying row reports CanAccess false, matching the gate's
// deny-by-default reading.
type Entry struct {
	Name      string     `json:"name"`
	CanAccess bool       `json:"canAccess"`
	GrantedBy *int64     `json:"grantedBy,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

var ErrUnknownPermission = errors.New("unknown permission name")

// MatrixStore is the persistence contract for the per-user permission matrix.
// Lookups return (false, nil) when no row exists; only infrastructure failures
// surface as errors, and callers must treat those as denial.
type MatrixStore interface {
	HasPermission(ctx context.Context, userID int64, name string) (bool, error)
	CountGranted(ctx context.Context, userID int64, names []string) (int, error)
	Grant(ctx context.Context, userID int64, name string, grantedBy int64) error
	Revoke(ctx context.Context, userID int64, name string) error
	ListForUser(ctx context.Context, userID int64) ([]Entry, error)
}
