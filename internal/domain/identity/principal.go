package identity

import (
	"github.com/google/uuid"
)

// Role is the resolved role of a caller. The core performs no
// authentication; it only scopes which records a principal may act on.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleAgent    Role = "agent"
	RoleLandlord Role = "landlord"
	RoleTenant   Role = "tenant"
)

// IsValid checks if the role is a known Role
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleAgent, RoleLandlord, RoleTenant:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// Principal is the resolved caller passed explicitly into every core
// operation. Operations never read the acting caller from ambient state.
type Principal struct {
	ID   uuid.UUID
	Role Role
}

// NewPrincipal creates a principal with the given identity and role
func NewPrincipal(id uuid.UUID, role Role) Principal {
	return Principal{ID: id, Role: role}
}

// System returns the principal used by batch jobs and schedulers
func System() Principal {
	return Principal{ID: uuid.Nil, Role: RoleAdmin}
}

// CanManageTenancies reports whether the principal may assign and end
// tenancies. The switch is exhaustive over all roles.
func (p Principal) CanManageTenancies() bool {
	switch p.Role {
	case RoleAdmin, RoleAgent, RoleLandlord:
		return true
	case RoleTenant:
		return false
	}
	return false
}

// CanManageBilling reports whether the principal may create invoices,
// record payments and run billing jobs
func (p Principal) CanManageBilling() bool {
	switch p.Role {
	case RoleAdmin, RoleAgent, RoleLandlord:
		return true
	case RoleTenant:
		return false
	}
	return false
}

// CanViewTenant reports whether the principal may read records belonging
// to the given tenant
func (p Principal) CanViewTenant(tenantID uuid.UUID) bool {
	switch p.Role {
	case RoleAdmin, RoleAgent, RoleLandlord:
		return true
	case RoleTenant:
		return p.ID == tenantID
	}
	return false
}
