package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRole_IsValid(t *testing.T) {
	tests := []struct {
		role    Role
		isValid bool
	}{
		{RoleAdmin, true},
		{RoleAgent, true},
		{RoleLandlord, true},
		{RoleTenant, true},
		{Role("manager"), false},
		{Role(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.role.IsValid())
		})
	}
}

func TestPrincipal_CanManageTenancies(t *testing.T) {
	assert.True(t, NewPrincipal(uuid.New(), RoleAdmin).CanManageTenancies())
	assert.True(t, NewPrincipal(uuid.New(), RoleAgent).CanManageTenancies())
	assert.True(t, NewPrincipal(uuid.New(), RoleLandlord).CanManageTenancies())
	assert.False(t, NewPrincipal(uuid.New(), RoleTenant).CanManageTenancies())
}

func TestPrincipal_CanViewTenant(t *testing.T) {
	tenantID := uuid.New()

	t.Run("tenant can view own records", func(t *testing.T) {
		p := NewPrincipal(tenantID, RoleTenant)
		assert.True(t, p.CanViewTenant(tenantID))
	})

	t.Run("tenant cannot view other tenants", func(t *testing.T) {
		p := NewPrincipal(uuid.New(), RoleTenant)
		assert.False(t, p.CanViewTenant(tenantID))
	})

	t.Run("staff roles can view any tenant", func(t *testing.T) {
		for _, role := range []Role{RoleAdmin, RoleAgent, RoleLandlord} {
			assert.True(t, NewPrincipal(uuid.New(), role).CanViewTenant(tenantID))
		}
	})
}

func TestSystemPrincipal(t *testing.T) {
	p := System()
	assert.Equal(t, uuid.Nil, p.ID)
	assert.True(t, p.CanManageBilling())
}
