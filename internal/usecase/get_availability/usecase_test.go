package get_availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/HCS-BookingService/internal/domain"
	"github.com/m04kA/HCS-BookingService/pkg/types"
)

type fakeBookingRepo struct {
	occupancies []domain.SlotOccupancy
}

func (f *fakeBookingRepo) GetOccupancy(_ context.Context, _ int64, _, _ time.Time) ([]domain.SlotOccupancy, error) {
	return f.occupancies, nil
}

type fakeCatalogRepo struct {
	org *domain.Organization
}

func (f *fakeCatalogRepo) GetOrganization(_ context.Context, _ int64) (*domain.Organization, error) {
	return f.org, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func mustTime(t *testing.T, s string) types.TimeString {
	t.Helper()
	ts, err := types.NewTimeStringFromString(s)
	require.NoError(t, err)
	return ts
}

func TestExecute_OccupancyProjection(t *testing.T) {
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	bookingRepo := &fakeBookingRepo{
		occupancies: []domain.SlotOccupancy{
			{Date: date, Time: mustTime(t, "10:00"), BookingCount: 1},
			{Date: date, Time: mustTime(t, "14:00"), BookingCount: 2},
		},
	}
	uc := NewUseCase(bookingRepo, &fakeCatalogRepo{org: &domain.Organization{ID: 1, SlotCapacity: 2}}, nopLogger{})

	resp, err := uc.Execute(context.Background(), &Request{
		OrganizationID: 1,
		StartDate:      date,
		EndDate:        date,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.SlotCapacity)
	require.Len(t, resp.Slots, 2)

	assert.Equal(t, "2026-03-10", resp.Slots[0].Date)
	assert.Equal(t, "10:00", resp.Slots[0].Time)
	assert.Equal(t, 1, resp.Slots[0].AvailableSpots)
	assert.True(t, resp.Slots[0].IsAvailable)

	// Полный слот
	assert.Equal(t, 0, resp.Slots[1].AvailableSpots)
	assert.False(t, resp.Slots[1].IsAvailable)
}

func TestExecute_DefaultCapacity(t *testing.T) {
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	bookingRepo := &fakeBookingRepo{
		occupancies: []domain.SlotOccupancy{
			{Date: date, Time: mustTime(t, "10:00"), BookingCount: 1},
		},
	}
	// Вместимость не настроена, действует дефолт 1
	uc := NewUseCase(bookingRepo, &fakeCatalogRepo{org: &domain.Organization{ID: 1}}, nopLogger{})

	resp, err := uc.Execute(context.Background(), &Request{
		OrganizationID: 1,
		StartDate:      date,
		EndDate:        date,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultSlotCapacity, resp.SlotCapacity)
	assert.False(t, resp.Slots[0].IsAvailable)
}

func TestExecute_InvalidRange(t *testing.T) {
	uc := NewUseCase(&fakeBookingRepo{}, &fakeCatalogRepo{org: &domain.Organization{ID: 1}}, nopLogger{})

	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	_, err := uc.Execute(context.Background(), &Request{
		OrganizationID: 1,
		StartDate:      start,
		EndDate:        start.AddDate(0, 0, -1),
	})
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = uc.Execute(context.Background(), &Request{
		OrganizationID: 1,
		StartDate:      start,
		EndDate:        start.AddDate(0, 0, 100),
	})
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}
