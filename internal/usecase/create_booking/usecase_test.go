package create_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/HCS-BookingService/internal/domain"
	"github.com/m04kA/HCS-BookingService/internal/notify"
	"github.com/m04kA/HCS-BookingService/pkg/ptr"
	"github.com/m04kA/HCS-BookingService/pkg/types"
)

type fakeBookingRepo struct {
	occupied     int
	nextID       int64
	created      []*domain.Booking
	serviceLines []domain.BookingServiceLine
	optionLines  []domain.BookingOptionLine
}

func (f *fakeBookingRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	f.nextID++
	b.ID = f.nextID
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	f.created = append(f.created, b)
	return b, nil
}

func (f *fakeBookingRepo) CreateServiceLines(_ context.Context, _ int64, lines []domain.BookingServiceLine) error {
	f.serviceLines = append(f.serviceLines, lines...)
	return nil
}

func (f *fakeBookingRepo) CreateOptionLines(_ context.Context, _ int64, lines []domain.BookingOptionLine) error {
	f.optionLines = append(f.optionLines, lines...)
	return nil
}

func (f *fakeBookingRepo) CountSlotOccupancy(_ context.Context, _ int64, _ time.Time, _ types.TimeString) (int, error) {
	return f.occupied, nil
}

type fakeCatalogRepo struct {
	org      *domain.Organization
	services []domain.Service
	options  []domain.ServiceOption
}

func (f *fakeCatalogRepo) GetOrganization(_ context.Context, _ int64) (*domain.Organization, error) {
	return f.org, nil
}

func (f *fakeCatalogRepo) GetServices(_ context.Context, _ int64) ([]domain.Service, error) {
	return f.services, nil
}

func (f *fakeCatalogRepo) GetOptionsByServiceIDs(_ context.Context, _ []int64) ([]domain.ServiceOption, error) {
	return f.options, nil
}

type fakeCustomerRepo struct {
	calls int
}

func (f *fakeCustomerRepo) FindOrCreate(_ context.Context, identity domain.CustomerIdentity) (*domain.Customer, error) {
	f.calls++
	return &domain.Customer{
		ID:             7,
		OrganizationID: identity.OrganizationID,
		Name:           identity.Name,
		LineUserID:     identity.LineUserID,
	}, nil
}

type fakePublisher struct {
	events []notify.Event
}

func (f *fakePublisher) Publish(_ context.Context, event notify.Event) {
	f.events = append(f.events, event)
}

type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

func testEnv() (*UseCase, *fakeBookingRepo, *fakeCatalogRepo, *fakePublisher) {
	bookingRepo := &fakeBookingRepo{}
	catalogRepo := &fakeCatalogRepo{
		org: &domain.Organization{
			ID:               1,
			Name:             "クリーンサービス東京",
			SlotCapacity:     2,
			LineChannelToken: ptr.Ptr("channel-token"),
			AdminLineUserID:  ptr.Ptr("Uadmin0001"),
			SetDiscounts: []domain.SetDiscountRule{
				{ID: "set-1", Title: "エアコン+キッチン", DiscountRate: 0.1, ServiceIDs: []int64{1, 2}},
			},
		},
		services: []domain.Service{
			{ID: 1, OrganizationID: 1, Title: "エアコンクリーニング", BasePrice: 10000, QuantityDiscounts: []domain.QuantityDiscount{
				{MinQuantity: 2, DiscountRate: 0.1},
			}},
			{ID: 2, OrganizationID: 1, Title: "キッチンクリーニング", BasePrice: 20000},
		},
		options: []domain.ServiceOption{
			{ID: 10, ServiceID: 1, Title: "防カビコート", Price: 3000},
		},
	}
	publisher := &fakePublisher{}

	uc := NewUseCase(bookingRepo, catalogRepo, &fakeCustomerRepo{}, publisher, fakeTxManager{}, nopLogger{})
	uc.timeProvider = fixedTime{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}

	return uc, bookingRepo, catalogRepo, publisher
}

func validRequest() *Request {
	slot, _ := types.NewTimeStringFromString("10:00")
	return &Request{
		OrganizationID: 1,
		Services:       []ServiceSelection{{ServiceID: 1, Quantity: 1}},
		Date:           time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Time:           slot,
		Customer: domain.CustomerIdentity{
			OrganizationID: 1,
			Name:           "山田太郎",
			LineUserID:     ptr.Ptr("U1234567890"),
		},
		ExpectedPrice: 10000,
	}
}

func TestExecute_Success(t *testing.T) {
	uc, bookingRepo, _, publisher := testEnv()

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(10000), resp.TotalPrice)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Equal(t, string(domain.PaymentUnpaid), resp.PaymentStatus)
	assert.Equal(t, int64(7), resp.CustomerID)
	assert.Equal(t, "エアコンクリーニング", resp.ServiceSummary)
	require.Len(t, bookingRepo.created, 1)
	require.Len(t, bookingRepo.serviceLines, 1)

	// Клиент и админ получают по событию, каждое на свой LINE ID
	require.Len(t, publisher.events, 2)
	assert.Equal(t, notify.EventBookingConfirmed, publisher.events[0].Type)
	require.NotNil(t, publisher.events[0].LineUserID)
	assert.Equal(t, "U1234567890", *publisher.events[0].LineUserID)
	assert.Equal(t, notify.EventAdminNewBooking, publisher.events[1].Type)
	require.NotNil(t, publisher.events[1].LineUserID)
	assert.Equal(t, "Uadmin0001", *publisher.events[1].LineUserID)
}

func TestExecute_NoAdminRecipientSkipsAdminAlert(t *testing.T) {
	uc, _, catalogRepo, publisher := testEnv()
	catalogRepo.org.AdminLineUserID = nil

	_, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, notify.EventBookingConfirmed, publisher.events[0].Type)
}

func TestExecute_PayOnlineSetsDeadline(t *testing.T) {
	uc, bookingRepo, _, _ := testEnv()

	req := validRequest()
	req.PayOnline = true

	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusAwaitingPayment), resp.Status)
	assert.Equal(t, string(domain.PaymentAwaiting), resp.PaymentStatus)
	require.NotNil(t, resp.PaymentDueAt)
	assert.Equal(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), *resp.PaymentDueAt)
	require.Len(t, bookingRepo.created, 1)
}

func TestExecute_SlotFull(t *testing.T) {
	uc, bookingRepo, _, publisher := testEnv()
	bookingRepo.occupied = 2 // вместимость организации тоже 2

	_, err := uc.Execute(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Empty(t, bookingRepo.created)
	assert.Empty(t, publisher.events)
}

func TestExecute_LastSpot(t *testing.T) {
	uc, bookingRepo, _, _ := testEnv()
	bookingRepo.occupied = 1 // осталось одно место из двух

	_, err := uc.Execute(context.Background(), validRequest())

	require.NoError(t, err)
	require.Len(t, bookingRepo.created, 1)
}

func TestExecute_PriceMismatch(t *testing.T) {
	uc, bookingRepo, _, publisher := testEnv()

	req := validRequest()
	req.ExpectedPrice = 9000 // клиент видел старую цену

	_, err := uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrPriceMismatch)
	assert.Empty(t, bookingRepo.created)
	assert.Empty(t, publisher.events)
}

func TestExecute_ServerRecalculatesDiscounts(t *testing.T) {
	uc, bookingRepo, _, _ := testEnv()

	// Обе услуги сета: сервер должен сам применить сет-скидку
	req := validRequest()
	req.Services = []ServiceSelection{
		{ServiceID: 1, Quantity: 1},
		{ServiceID: 2, Quantity: 1},
	}
	req.ExpectedPrice = 27000 // 30000 - floor(0.1*30000)

	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, int64(27000), resp.TotalPrice)
	assert.Equal(t, int64(3000), resp.SetDiscount)
	require.Len(t, bookingRepo.serviceLines, 2)
}

func TestExecute_UnknownService(t *testing.T) {
	uc, _, _, _ := testEnv()

	req := validRequest()
	req.Services = []ServiceSelection{{ServiceID: 999, Quantity: 1}}

	_, err := uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestExecute_OptionWithoutService(t *testing.T) {
	uc, _, _, _ := testEnv()

	req := validRequest()
	req.Services = []ServiceSelection{{ServiceID: 2, Quantity: 1}}
	req.Options = []OptionSelection{{OptionID: 10, Quantity: 1}} // опция услуги 1
	req.ExpectedPrice = 23000

	_, err := uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrOptionWithoutService)
}

func TestExecute_DuplicateService(t *testing.T) {
	uc, _, _, _ := testEnv()

	req := validRequest()
	req.Services = []ServiceSelection{{ServiceID: 1, Quantity: 1}, {ServiceID: 1, Quantity: 1}}

	_, err := uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_DuplicateOption(t *testing.T) {
	uc, _, _, _ := testEnv()

	req := validRequest()
	req.Options = []OptionSelection{{OptionID: 10, Quantity: 1}, {OptionID: 10, Quantity: 1}}
	req.ExpectedPrice = 16000

	_, err := uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_DateInPast(t *testing.T) {
	uc, _, _, _ := testEnv()

	req := validRequest()
	req.Date = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	_, err := uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestExecute_InvalidInput(t *testing.T) {
	uc, _, _, _ := testEnv()

	req := validRequest()
	req.Services = nil

	_, err := uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrInvalidInput)
}
