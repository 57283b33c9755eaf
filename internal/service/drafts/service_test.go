package drafts

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/HCS-BookingService/internal/domain"
	"github.com/m04kA/HCS-BookingService/internal/draft"
	"github.com/m04kA/HCS-BookingService/internal/infra/draftstore"
	"github.com/m04kA/HCS-BookingService/internal/integrations/postalservice"
	"github.com/m04kA/HCS-BookingService/internal/service/drafts/models"
	"github.com/m04kA/HCS-BookingService/internal/usecase/create_booking"
	"github.com/m04kA/HCS-BookingService/pkg/ptr"
)

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

// fakeStore гоняет черновик через JSON, как это делает Redis-хранилище
type fakeStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]byte)}
}

func (f *fakeStore) Save(_ context.Context, d *draft.Draft) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.data[d.ID] = raw
	f.mu.Unlock()
	return nil
}

func (f *fakeStore) Get(_ context.Context, draftID string) (*draft.Draft, error) {
	f.mu.Lock()
	raw, ok := f.data[draftID]
	f.mu.Unlock()
	if !ok {
		return nil, draftstore.ErrDraftNotFound
	}
	var d draft.Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (f *fakeStore) Delete(_ context.Context, draftID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, draftID)
	return nil
}

type fakePostal struct {
	address *postalservice.Address
}

func (f *fakePostal) LookupWithGracefulDegradation(_ context.Context, postalCode string) (*postalservice.Address, error) {
	if f.address == nil {
		return nil, nil
	}
	addr := *f.address
	addr.PostalCode = postalCode
	return &addr, nil
}

type fakeCreator struct {
	req  *create_booking.Request
	resp *create_booking.Response
	err  error
}

func (f *fakeCreator) Execute(_ context.Context, req *create_booking.Request) (*create_booking.Response, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func testCatalog() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		org: &domain.Organization{
			ID:   1,
			Name: "クリーンサービス東京",
			SetDiscounts: []domain.SetDiscountRule{
				{ID: "set-1", Title: "エアコン+キッチンセット", DiscountRate: 0.1, ServiceIDs: []int64{1, 2}},
			},
		},
		services: []domain.Service{
			{
				ID: 1, OrganizationID: 1, Title: "エアコンクリーニング", BasePrice: 10000,
				QuantityDiscounts: []domain.QuantityDiscount{{MinQuantity: 2, DiscountRate: 0.1}},
			},
			{ID: 2, OrganizationID: 1, Title: "キッチンクリーニング", BasePrice: 20000},
		},
		options: []domain.ServiceOption{
			{ID: 10, ServiceID: 1, Title: "防カビコート", Price: 3000},
		},
	}
}

func newTestService(store *fakeStore, creator *fakeCreator) *Service {
	return NewService(testCatalog(), store, nil, &fakePostal{}, creator, nopLogger{})
}

func futureDate() string {
	return time.Now().AddDate(0, 0, 7).Format("2006-01-02")
}

func validCustomer() *models.CustomerInput {
	return &models.CustomerInput{
		Name:  "山田太郎",
		Email: ptr.Ptr("taro@example.com"),
	}
}

func TestService_Start(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeCreator{})

	resp, err := svc.Start(context.Background(), 1)
	require.NoError(t, err)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, int64(1), resp.OrganizationID)
	assert.Equal(t, "service_selection", resp.Step)
	assert.Len(t, resp.Services, 2)
	assert.Len(t, resp.Options, 1)
	assert.Equal(t, int64(0), resp.Quote.TotalPrice)

	_, ok := store.data[resp.ID]
	assert.True(t, ok)
}

func TestService_Get_NotFound(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeCreator{})

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestService_ApplyStep_RecomputesQuote(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeCreator{})

	created, err := svc.Start(context.Background(), 1)
	require.NoError(t, err)

	resp, err := svc.ApplyStep(context.Background(), created.ID, &models.ApplyStepRequest{
		Services: []models.ServiceQuantity{{ServiceID: 1, Quantity: 2}},
	})
	require.NoError(t, err)

	// 2 x 10000 со скидкой 10% за количество
	assert.Equal(t, int64(18000), resp.Quote.TotalPrice)
	assert.Equal(t, int64(2000), resp.Quote.TierDiscount)
	assert.Equal(t, "service_selection", resp.Step)
}

func TestService_ApplyStep_AdvanceWithoutServices(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeCreator{})

	created, err := svc.Start(context.Background(), 1)
	require.NoError(t, err)

	_, err = svc.ApplyStep(context.Background(), created.ID, &models.ApplyStepRequest{Advance: true})
	assert.ErrorIs(t, err, ErrStepIncomplete)
}

func TestService_ApplyStep_UnknownService(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeCreator{})

	created, err := svc.Start(context.Background(), 1)
	require.NoError(t, err)

	_, err = svc.ApplyStep(context.Background(), created.ID, &models.ApplyStepRequest{
		Services: []models.ServiceQuantity{{ServiceID: 999, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_Back_PreservesSelections(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeCreator{})

	created, err := svc.Start(context.Background(), 1)
	require.NoError(t, err)

	_, err = svc.ApplyStep(context.Background(), created.ID, &models.ApplyStepRequest{
		Services: []models.ServiceQuantity{{ServiceID: 1, Quantity: 1}},
		Advance:  true,
	})
	require.NoError(t, err)

	resp, err := svc.Back(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Equal(t, "service_selection", resp.Step)
	require.Len(t, resp.ServiceSelections, 1)
	assert.Equal(t, int64(10000), resp.Quote.TotalPrice)
}

func TestService_PostalEnrichment(t *testing.T) {
	store := newFakeStore()
	svc := NewService(testCatalog(), store, nil, &fakePostal{
		address: &postalservice.Address{Prefecture: "東京都", City: "渋谷区", Town: "神南"},
	}, &fakeCreator{}, nopLogger{})

	created, err := svc.Start(context.Background(), 1)
	require.NoError(t, err)

	advanceToCustomerInfo(t, svc, created.ID)

	resp, err := svc.ApplyStep(context.Background(), created.ID, &models.ApplyStepRequest{
		Customer: &models.CustomerInput{
			Name:       "山田太郎",
			PostalCode: ptr.Ptr("1500041"),
		},
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Customer)
	require.NotNil(t, resp.Customer.Address)
	assert.Equal(t, "東京都渋谷区神南", *resp.Customer.Address)
}

func TestService_PostalEnrichment_KeepsManualAddress(t *testing.T) {
	svc := NewService(testCatalog(), newFakeStore(), nil, &fakePostal{
		address: &postalservice.Address{Prefecture: "東京都", City: "渋谷区", Town: "神南"},
	}, &fakeCreator{}, nopLogger{})

	created, err := svc.Start(context.Background(), 1)
	require.NoError(t, err)

	advanceToCustomerInfo(t, svc, created.ID)

	resp, err := svc.ApplyStep(context.Background(), created.ID, &models.ApplyStepRequest{
		Customer: &models.CustomerInput{
			Name:       "山田太郎",
			PostalCode: ptr.Ptr("1500041"),
			Address:    ptr.Ptr("自分で入力した住所"),
		},
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Customer.Address)
	assert.Equal(t, "自分で入力した住所", *resp.Customer.Address)
}

func TestService_FullWizardAndSubmit(t *testing.T) {
	store := newFakeStore()
	creator := &fakeCreator{
		resp: &create_booking.Response{
			ID:            42,
			CustomerID:    7,
			Status:        string(domain.StatusConfirmed),
			PaymentStatus: string(domain.PaymentUnpaid),
			TotalPrice:    13000,
		},
	}
	svc := newTestService(store, creator)

	created, err := svc.Start(context.Background(), 1)
	require.NoError(t, err)
	draftID := created.ID

	// Шаг 1: услуги
	_, err = svc.ApplyStep(context.Background(), draftID, &models.ApplyStepRequest{
		Services: []models.ServiceQuantity{{ServiceID: 1, Quantity: 1}},
		Advance:  true,
	})
	require.NoError(t, err)

	// Шаг 2: опции
	resp, err := svc.ApplyStep(context.Background(), draftID, &models.ApplyStepRequest{
		Options: []models.OptionQuantity{{OptionID: 10, Quantity: 1}},
		Advance: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(13000), resp.Quote.TotalPrice)

	// Шаг 3: дата и время
	_, err = svc.ApplyStep(context.Background(), draftID, &models.ApplyStepRequest{
		Date:    ptr.Ptr(futureDate()),
		Time:    ptr.Ptr("10:00"),
		Advance: true,
	})
	require.NoError(t, err)

	// Шаг 4: контактные данные + диагностика
	resp, err = svc.ApplyStep(context.Background(), draftID, &models.ApplyStepRequest{
		Customer:  validCustomer(),
		Diagnosis: &models.DiagnosisInput{HasParking: true},
		Advance:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, "confirmation", resp.Step)

	result, err := svc.Submit(context.Background(), draftID, &models.SubmitDraftRequest{
		ExpectedTotalPrice: 13000,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(42), result.BookingID)
	assert.Equal(t, int64(7), result.CustomerID)

	require.NotNil(t, creator.req)
	assert.Equal(t, int64(1), creator.req.OrganizationID)
	assert.Equal(t, int64(13000), creator.req.ExpectedPrice)
	assert.True(t, creator.req.HasParking)
	require.Len(t, creator.req.Services, 1)
	require.Len(t, creator.req.Options, 1)
	assert.Equal(t, "山田太郎", creator.req.Customer.Name)

	_, ok := store.data[draftID]
	assert.False(t, ok, "draft must be deleted after submit")
}

func TestService_Submit_NotReady(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeCreator{})

	created, err := svc.Start(context.Background(), 1)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), created.ID, &models.SubmitDraftRequest{ExpectedTotalPrice: 100})
	assert.ErrorIs(t, err, ErrNotReadyForSubmit)
}

func TestService_Submit_PriceMismatchKeepsDraft(t *testing.T) {
	store := newFakeStore()
	creator := &fakeCreator{err: create_booking.ErrPriceMismatch}
	svc := newTestService(store, creator)

	created, err := svc.Start(context.Background(), 1)
	require.NoError(t, err)
	draftID := created.ID

	completeWizard(t, svc, draftID)

	_, err = svc.Submit(context.Background(), draftID, &models.SubmitDraftRequest{ExpectedTotalPrice: 1})
	assert.ErrorIs(t, err, ErrPriceMismatch)

	_, ok := store.data[draftID]
	assert.True(t, ok, "draft must survive a failed submit")
}

func TestService_Submit_SlotNotAvailable(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeCreator{err: create_booking.ErrSlotNotAvailable})

	created, err := svc.Start(context.Background(), 1)
	require.NoError(t, err)

	completeWizard(t, svc, created.ID)

	_, err = svc.Submit(context.Background(), created.ID, &models.SubmitDraftRequest{ExpectedTotalPrice: 10000})
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
}

func TestService_CatalogEventReprices(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeCreator{})

	created, err := svc.Start(context.Background(), 1)
	require.NoError(t, err)

	_, err = svc.ApplyStep(context.Background(), created.ID, &models.ApplyStepRequest{
		Services: []models.ServiceQuantity{{ServiceID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	svc.handleCatalogEvent(created.ID, draft.CatalogEvent{
		Type: draft.CatalogUpdate,
		Service: &domain.Service{
			ID: 1, OrganizationID: 1, Title: "エアコンクリーニング", BasePrice: 12000,
		},
	})

	resp, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(12000), resp.Quote.TotalPrice)
}

func TestService_CatalogEventDeleteDropsSelection(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeCreator{})

	created, err := svc.Start(context.Background(), 1)
	require.NoError(t, err)

	_, err = svc.ApplyStep(context.Background(), created.ID, &models.ApplyStepRequest{
		Services: []models.ServiceQuantity{{ServiceID: 1, Quantity: 1}},
		Options:  []models.OptionQuantity{{OptionID: 10, Quantity: 1}},
	})
	require.NoError(t, err)

	svc.handleCatalogEvent(created.ID, draft.CatalogEvent{
		Type:    draft.CatalogDelete,
		Service: &domain.Service{ID: 1},
	})

	resp, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Empty(t, resp.ServiceSelections)
	assert.Empty(t, resp.OptionSelections)
	assert.Equal(t, int64(0), resp.Quote.TotalPrice)
}

func advanceToCustomerInfo(t *testing.T, svc *Service, draftID string) {
	t.Helper()

	_, err := svc.ApplyStep(context.Background(), draftID, &models.ApplyStepRequest{
		Services: []models.ServiceQuantity{{ServiceID: 1, Quantity: 1}},
		Advance:  true,
	})
	require.NoError(t, err)

	_, err = svc.ApplyStep(context.Background(), draftID, &models.ApplyStepRequest{Advance: true})
	require.NoError(t, err)

	_, err = svc.ApplyStep(context.Background(), draftID, &models.ApplyStepRequest{
		Date:    ptr.Ptr(futureDate()),
		Time:    ptr.Ptr("10:00"),
		Advance: true,
	})
	require.NoError(t, err)
}

func completeWizard(t *testing.T, svc *Service, draftID string) {
	t.Helper()

	advanceToCustomerInfo(t, svc, draftID)

	_, err := svc.ApplyStep(context.Background(), draftID, &models.ApplyStepRequest{
		Customer: validCustomer(),
		Advance:  true,
	})
	require.NoError(t, err)
}

func TestService_CatalogEventConcurrentWithApplyStep(t *testing.T) {
	// Событие каталога и шаг пользователя пишут один и тот же черновик:
	// без сериализации по draftID одна из записей теряется
	for i := 0; i < 25; i++ {
		store := newFakeStore()
		svc := newTestService(store, &fakeCreator{})

		created, err := svc.Start(context.Background(), 1)
		require.NoError(t, err)

		_, err = svc.ApplyStep(context.Background(), created.ID, &models.ApplyStepRequest{
			Services: []models.ServiceQuantity{{ServiceID: 1, Quantity: 1}},
		})
		require.NoError(t, err)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			svc.handleCatalogEvent(created.ID, draft.CatalogEvent{
				Type: draft.CatalogUpdate,
				Service: &domain.Service{
					ID: 1, OrganizationID: 1, Title: "エアコンクリーニング", BasePrice: 12000,
				},
			})
		}()
		go func() {
			defer wg.Done()
			_, applyErr := svc.ApplyStep(context.Background(), created.ID, &models.ApplyStepRequest{
				Options: []models.OptionQuantity{{OptionID: 10, Quantity: 1}},
			})
			assert.NoError(t, applyErr)
		}()
		wg.Wait()

		// Выжить должны оба изменения: новая цена услуги и выбранная опция
		resp, err := svc.Get(context.Background(), created.ID)
		require.NoError(t, err)
		require.Len(t, resp.OptionSelections, 1)
		assert.Equal(t, int64(15000), resp.Quote.TotalPrice)
	}
}
