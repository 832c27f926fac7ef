package leasing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rently/backend/internal/domain/leasing"
	"github.com/stretchr/testify/mock"
)

// mockUnitRepo is a mock implementation of leasing.UnitRepository
type mockUnitRepo struct {
	mock.Mock
}

func (m *mockUnitRepo) FindByID(ctx context.Context, id uuid.UUID) (*leasing.Unit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leasing.Unit), args.Error(1)
}

func (m *mockUnitRepo) FindByProperty(ctx context.Context, propertyID uuid.UUID) ([]leasing.Unit, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]leasing.Unit), args.Error(1)
}

func (m *mockUnitRepo) FindExpiringLeases(ctx context.Context, propertyID uuid.UUID, cutoff time.Time) ([]leasing.Unit, error) {
	args := m.Called(ctx, propertyID, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]leasing.Unit), args.Error(1)
}

func (m *mockUnitRepo) Save(ctx context.Context, unit *leasing.Unit) error {
	args := m.Called(ctx, unit)
	return args.Error(0)
}

func (m *mockUnitRepo) SaveWithLock(ctx context.Context, unit *leasing.Unit) error {
	args := m.Called(ctx, unit)
	return args.Error(0)
}

func (m *mockUnitRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// mockTenantRepo is a mock implementation of leasing.TenantRepository
type mockTenantRepo struct {
	mock.Mock
}

func (m *mockTenantRepo) FindByID(ctx context.Context, id uuid.UUID) (*leasing.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leasing.Tenant), args.Error(1)
}

func (m *mockTenantRepo) FindByLandlord(ctx context.Context, landlordID uuid.UUID) ([]leasing.Tenant, error) {
	args := m.Called(ctx, landlordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]leasing.Tenant), args.Error(1)
}

func (m *mockTenantRepo) FindActiveWithUnit(ctx context.Context) ([]leasing.Tenant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]leasing.Tenant), args.Error(1)
}

func (m *mockTenantRepo) Save(ctx context.Context, tenant *leasing.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *mockTenantRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// mockPropertyRepo is a mock implementation of leasing.PropertyRepository
type mockPropertyRepo struct {
	mock.Mock
}

func (m *mockPropertyRepo) FindByID(ctx context.Context, id uuid.UUID) (*leasing.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leasing.Property), args.Error(1)
}

func (m *mockPropertyRepo) FindByLandlord(ctx context.Context, landlordID uuid.UUID) ([]leasing.Property, error) {
	args := m.Called(ctx, landlordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]leasing.Property), args.Error(1)
}

func (m *mockPropertyRepo) Save(ctx context.Context, property *leasing.Property) error {
	args := m.Called(ctx, property)
	return args.Error(0)
}

func (m *mockPropertyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// mockRecordRepo is a mock implementation of leasing.TenancyRecordRepository
type mockRecordRepo struct {
	mock.Mock
}

func (m *mockRecordRepo) FindByID(ctx context.Context, id uuid.UUID) (*leasing.TenancyRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leasing.TenancyRecord), args.Error(1)
}

func (m *mockRecordRepo) FindByUnit(ctx context.Context, unitID uuid.UUID) ([]leasing.TenancyRecord, error) {
	args := m.Called(ctx, unitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]leasing.TenancyRecord), args.Error(1)
}

func (m *mockRecordRepo) FindOpenByUnit(ctx context.Context, unitID uuid.UUID) (*leasing.TenancyRecord, error) {
	args := m.Called(ctx, unitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leasing.TenancyRecord), args.Error(1)
}

func (m *mockRecordRepo) CountOpenByUnit(ctx context.Context, unitID uuid.UUID) (int64, error) {
	args := m.Called(ctx, unitID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRecordRepo) Save(ctx context.Context, record *leasing.TenancyRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// mockTenancyWriter captures the change handed to SaveChange
type mockTenancyWriter struct {
	mock.Mock
	lastChange *leasing.TenancyChange
}

func (m *mockTenancyWriter) SaveChange(ctx context.Context, change *leasing.TenancyChange) error {
	m.lastChange = change
	args := m.Called(ctx, change)
	return args.Error(0)
}
