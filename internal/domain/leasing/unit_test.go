package leasing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rently/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestUnit(t *testing.T) *Unit {
	u, err := NewUnit(uuid.New(), "A-101", "2BR/2BA/OK", valueobject.NewMoneyKESFromFloat(1000))
	require.NoError(t, err)
	return u
}

func TestOccupancyState_IsValid(t *testing.T) {
	tests := []struct {
		state   OccupancyState
		isValid bool
	}{
		{OccupancyStateVacant, true},
		{OccupancyStateOccupied, true},
		{OccupancyStateMaintenance, true},
		{OccupancyState("RESERVED"), false},
		{OccupancyState(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.state.IsValid())
		})
	}
}

func TestNewUnit(t *testing.T) {
	t.Run("creates vacant unit", func(t *testing.T) {
		u := createTestUnit(t)
		assert.Equal(t, OccupancyStateVacant, u.Status)
		assert.Nil(t, u.CurrentTenantID)
		assert.NoError(t, u.CheckIntegrity())
	})

	t.Run("rejects empty property", func(t *testing.T) {
		_, err := NewUnit(uuid.Nil, "A-101", "2BR/2BA/OK", valueobject.ZeroKES())
		assert.Error(t, err)
	})

	t.Run("rejects empty unit number", func(t *testing.T) {
		_, err := NewUnit(uuid.New(), "", "2BR/2BA/OK", valueobject.ZeroKES())
		assert.Error(t, err)
	})

	t.Run("rejects negative rent", func(t *testing.T) {
		_, err := NewUnit(uuid.New(), "A-101", "2BR/2BA/OK", valueobject.NewMoneyKESFromFloat(-1))
		assert.Error(t, err)
	})
}

func TestUnit_Occupy(t *testing.T) {
	t.Run("binds tenant and opens lease window", func(t *testing.T) {
		u := createTestUnit(t)
		tenantID := uuid.New()
		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

		err := u.Occupy(tenantID, start, &end)
		require.NoError(t, err)

		assert.Equal(t, OccupancyStateOccupied, u.Status)
		require.NotNil(t, u.CurrentTenantID)
		assert.Equal(t, tenantID, *u.CurrentTenantID)
		assert.Equal(t, start, *u.LeaseStart)
		assert.Equal(t, end, *u.LeaseEnd)
		assert.NoError(t, u.CheckIntegrity())

		events := u.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, "TenantAssigned", events[0].EventType())
	})

	t.Run("rejects occupy while occupied", func(t *testing.T) {
		u := createTestUnit(t)
		require.NoError(t, u.Occupy(uuid.New(), time.Now(), nil))

		err := u.Occupy(uuid.New(), time.Now(), nil)
		assert.Error(t, err)
	})

	t.Run("rejects occupy while under maintenance", func(t *testing.T) {
		u := createTestUnit(t)
		require.NoError(t, u.StartMaintenance())

		err := u.Occupy(uuid.New(), time.Now(), nil)
		assert.Error(t, err)
	})

	t.Run("rejects lease end before lease start", func(t *testing.T) {
		u := createTestUnit(t)
		start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, -1, 0)

		err := u.Occupy(uuid.New(), start, &end)
		assert.Error(t, err)
	})

	t.Run("rejects nil tenant", func(t *testing.T) {
		u := createTestUnit(t)
		err := u.Occupy(uuid.Nil, time.Now(), nil)
		assert.Error(t, err)
	})
}

func TestUnit_Vacate(t *testing.T) {
	t.Run("clears tenant and lease window", func(t *testing.T) {
		u := createTestUnit(t)
		tenantID := uuid.New()
		require.NoError(t, u.Occupy(tenantID, time.Now(), nil))

		displaced := u.Vacate(time.Now())

		assert.Equal(t, tenantID, displaced)
		assert.Equal(t, OccupancyStateVacant, u.Status)
		assert.Nil(t, u.CurrentTenantID)
		assert.Nil(t, u.LeaseStart)
		assert.Nil(t, u.LeaseEnd)
		assert.NoError(t, u.CheckIntegrity())
	})

	t.Run("noop on vacant unit", func(t *testing.T) {
		u := createTestUnit(t)
		displaced := u.Vacate(time.Now())
		assert.Equal(t, uuid.Nil, displaced)
		assert.Equal(t, OccupancyStateVacant, u.Status)
	})
}

func TestUnit_OccupancyCycle(t *testing.T) {
	// VACANT -> OCCUPIED -> VACANT -> OCCUPIED: units cycle indefinitely
	u := createTestUnit(t)

	require.NoError(t, u.Occupy(uuid.New(), time.Now(), nil))
	u.Vacate(time.Now())
	require.NoError(t, u.Occupy(uuid.New(), time.Now(), nil))

	assert.True(t, u.IsOccupied())
	assert.NoError(t, u.CheckIntegrity())
}

func TestUnit_Maintenance(t *testing.T) {
	t.Run("vacant to maintenance and back", func(t *testing.T) {
		u := createTestUnit(t)
		require.NoError(t, u.StartMaintenance())
		assert.True(t, u.UnderMaintenance())
		assert.NoError(t, u.CheckIntegrity())

		require.NoError(t, u.EndMaintenance())
		assert.True(t, u.IsVacant())
	})

	t.Run("cannot start maintenance on occupied unit", func(t *testing.T) {
		u := createTestUnit(t)
		require.NoError(t, u.Occupy(uuid.New(), time.Now(), nil))
		assert.Error(t, u.StartMaintenance())
	})

	t.Run("cannot end maintenance on vacant unit", func(t *testing.T) {
		u := createTestUnit(t)
		assert.Error(t, u.EndMaintenance())
	})
}

func TestUnit_CheckIntegrity(t *testing.T) {
	t.Run("detects occupied without tenant", func(t *testing.T) {
		u := createTestUnit(t)
		u.Status = OccupancyStateOccupied
		assert.Error(t, u.CheckIntegrity())
	})

	t.Run("detects tenant on vacant unit", func(t *testing.T) {
		u := createTestUnit(t)
		tenantID := uuid.New()
		u.CurrentTenantID = &tenantID
		assert.Error(t, u.CheckIntegrity())
	})
}

func TestUnit_LeaseExpiresWithin(t *testing.T) {
	u := createTestUnit(t)
	end := time.Now().AddDate(0, 0, 14)
	require.NoError(t, u.Occupy(uuid.New(), time.Now(), &end))

	assert.True(t, u.LeaseExpiresWithin(30))
	assert.False(t, u.LeaseExpiresWithin(7))
}
