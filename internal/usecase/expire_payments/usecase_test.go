package expire_payments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/HCS-BookingService/internal/domain"
	bookingRepo "github.com/m04kA/HCS-BookingService/internal/infra/storage/booking"
	"github.com/m04kA/HCS-BookingService/internal/notify"
	"github.com/m04kA/HCS-BookingService/pkg/ptr"
	"github.com/m04kA/HCS-BookingService/pkg/types"
)

type fakeBookingRepo struct {
	expired []*domain.Booking
	marked  map[int64]bool
}

func (f *fakeBookingRepo) GetExpiredAwaitingPayment(_ context.Context, _ time.Time) ([]*domain.Booking, error) {
	return f.expired, nil
}

func (f *fakeBookingRepo) MarkPaymentExpired(_ context.Context, id int64) error {
	if f.marked[id] {
		// Условное обновление не нашло строку с reminder_sent = false
		return bookingRepo.ErrBookingNotFound
	}
	f.marked[id] = true
	return nil
}

type fakeCatalogRepo struct{}

func (fakeCatalogRepo) GetOrganization(_ context.Context, id int64) (*domain.Organization, error) {
	return &domain.Organization{ID: id, LineChannelToken: ptr.Ptr("token")}, nil
}

type fakeCustomerRepo struct{}

func (fakeCustomerRepo) GetByID(_ context.Context, id int64) (*domain.Customer, error) {
	return &domain.Customer{ID: id, Name: "山田太郎", LineUserID: ptr.Ptr("U123")}, nil
}

type fakePublisher struct {
	events []notify.Event
}

func (f *fakePublisher) Publish(_ context.Context, event notify.Event) {
	f.events = append(f.events, event)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func expiredBooking(t *testing.T, id int64) *domain.Booking {
	t.Helper()
	slot, err := types.NewTimeStringFromString("10:00")
	require.NoError(t, err)
	due := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return &domain.Booking{
		ID:             id,
		OrganizationID: 1,
		CustomerID:     7,
		SelectedDate:   time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		SelectedTime:   slot,
		Status:         domain.StatusAwaitingPayment,
		PaymentStatus:  domain.PaymentAwaiting,
		PaymentDueAt:   &due,
		ServiceSummary: "エアコンクリーニング",
		TotalPrice:     10000,
	}
}

func TestExecute_ExpiresAndNotifies(t *testing.T) {
	repo := &fakeBookingRepo{
		expired: []*domain.Booking{expiredBooking(t, 1), expiredBooking(t, 2)},
		marked:  map[int64]bool{},
	}
	publisher := &fakePublisher{}
	uc := NewUseCase(repo, fakeCatalogRepo{}, fakeCustomerRepo{}, publisher, nopLogger{})

	n, err := uc.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.True(t, repo.marked[1])
	assert.True(t, repo.marked[2])

	require.Len(t, publisher.events, 2)
	assert.Equal(t, notify.EventPaymentExpired, publisher.events[0].Type)
	assert.Equal(t, "山田太郎", publisher.events[0].CustomerName)
}

func TestExecute_Idempotent(t *testing.T) {
	repo := &fakeBookingRepo{
		expired: []*domain.Booking{expiredBooking(t, 1)},
		marked:  map[int64]bool{},
	}
	publisher := &fakePublisher{}
	uc := NewUseCase(repo, fakeCatalogRepo{}, fakeCustomerRepo{}, publisher, nopLogger{})

	n, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Повторный прогон видит ту же запись, но условное обновление ее пропускает
	n, err = uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	assert.Len(t, publisher.events, 1)
}

func TestExecute_NothingToExpire(t *testing.T) {
	repo := &fakeBookingRepo{marked: map[int64]bool{}}
	publisher := &fakePublisher{}
	uc := NewUseCase(repo, fakeCatalogRepo{}, fakeCustomerRepo{}, publisher, nopLogger{})

	n, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, publisher.events)
}
