package drafts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/m04kA/HCS-BookingService/internal/catalogfeed"
	"github.com/m04kA/HCS-BookingService/internal/domain"
	"github.com/m04kA/HCS-BookingService/internal/draft"
	"github.com/m04kA/HCS-BookingService/internal/infra/draftstore"
	catalogRepo "github.com/m04kA/HCS-BookingService/internal/infra/storage/catalog"
	"github.com/m04kA/HCS-BookingService/internal/service/drafts/models"
	"github.com/m04kA/HCS-BookingService/internal/usecase/create_booking"
	"github.com/m04kA/HCS-BookingService/pkg/types"
)

// Service сервис мастера бронирования: ведет черновик по шагам от выбора
// услуг до подтверждения. Каждый открытый черновик подписан на ленту
// изменений каталога и пересчитывает цену при любом изменении.
type Service struct {
	catalogRepo CatalogRepository
	store       DraftStore
	feed        CatalogFeed
	postal      PostalClient
	creator     BookingCreator
	logger      Logger

	mu    sync.Mutex
	subs  map[string]*catalogfeed.Subscription
	locks map[string]*sync.Mutex
}

// NewService создает новый экземпляр сервиса черновиков
func NewService(
	catalogRepo CatalogRepository,
	store DraftStore,
	feed CatalogFeed,
	postal PostalClient,
	creator BookingCreator,
	logger Logger,
) *Service {
	return &Service{
		catalogRepo: catalogRepo,
		store:       store,
		feed:        feed,
		postal:      postal,
		creator:     creator,
		logger:      logger,
		subs:        make(map[string]*catalogfeed.Subscription),
		locks:       make(map[string]*sync.Mutex),
	}
}

// Start создает новый черновик со снимком каталога организации
// и подписывает его на ленту изменений каталога
func (s *Service) Start(ctx context.Context, organizationID int64) (*models.DraftResponse, error) {
	org, err := s.catalogRepo.GetOrganization(ctx, organizationID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrOrganizationNotFound) {
			return nil, fmt.Errorf("%w: organization %d", ErrOrganizationNotFound, organizationID)
		}
		s.logger.Error("drafts.Start: failed to get organization %d: %v", organizationID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	services, err := s.catalogRepo.GetServices(ctx, organizationID)
	if err != nil {
		s.logger.Error("drafts.Start: failed to get services for organization %d: %v", organizationID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	serviceIDs := make([]int64, 0, len(services))
	for _, svc := range services {
		serviceIDs = append(serviceIDs, svc.ID)
	}

	options, err := s.catalogRepo.GetOptionsByServiceIDs(ctx, serviceIDs)
	if err != nil {
		s.logger.Error("drafts.Start: failed to get options for organization %d: %v", organizationID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	d := draft.New(organizationID, services, options, org.SetDiscounts)

	if err := s.store.Save(ctx, d); err != nil {
		s.logger.Error("drafts.Start: failed to save draft %s: %v", d.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if err := s.subscribe(d.ID, organizationID); err != nil {
		// Черновик работоспособен и без ленты - цена пересчитается при Submit
		s.logger.Warn("drafts.Start: draft %s created without catalog feed: %v", d.ID, err)
	}

	s.logger.Info("drafts.Start: draft %s created for organization %d", d.ID, organizationID)
	return models.FromDraft(d), nil
}

// Get возвращает текущее состояние черновика
func (s *Service) Get(ctx context.Context, draftID string) (*models.DraftResponse, error) {
	d, err := s.load(ctx, draftID)
	if err != nil {
		return nil, err
	}
	return models.FromDraft(d), nil
}

// ApplyStep применяет изменения к текущему шагу черновика и, если
// запрошено, переводит черновик на следующий шаг. Любое изменение
// выбора приводит к полному пересчету цены.
func (s *Service) ApplyStep(ctx context.Context, draftID string, req *models.ApplyStepRequest) (*models.DraftResponse, error) {
	lock := s.draftLock(draftID)
	lock.Lock()
	defer lock.Unlock()

	d, err := s.load(ctx, draftID)
	if err != nil {
		return nil, err
	}

	if err := s.applyChanges(ctx, d, req); err != nil {
		return nil, err
	}

	if req.Advance {
		if err := d.Advance(); err != nil {
			if errors.Is(err, draft.ErrAlreadyAtLastStep) {
				return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
			return nil, fmt.Errorf("%w: %v", ErrStepIncomplete, err)
		}
	}

	if err := s.store.Save(ctx, d); err != nil {
		s.logger.Error("drafts.ApplyStep: failed to save draft %s: %v", draftID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	return models.FromDraft(d), nil
}

// Back возвращает черновик на предыдущий шаг, сохраняя все введенные данные
func (s *Service) Back(ctx context.Context, draftID string) (*models.DraftResponse, error) {
	lock := s.draftLock(draftID)
	lock.Lock()
	defer lock.Unlock()

	d, err := s.load(ctx, draftID)
	if err != nil {
		return nil, err
	}

	if err := d.Back(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.store.Save(ctx, d); err != nil {
		s.logger.Error("drafts.Back: failed to save draft %s: %v", draftID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	return models.FromDraft(d), nil
}

// Submit подтверждает черновик: создает бронирование через usecase
// с серверным пересчетом цены и атомарной проверкой слота.
// После успешного создания черновик удаляется.
func (s *Service) Submit(ctx context.Context, draftID string, req *models.SubmitDraftRequest) (*models.SubmitDraftResponse, error) {
	lock := s.draftLock(draftID)
	lock.Lock()
	defer lock.Unlock()

	d, err := s.load(ctx, draftID)
	if err != nil {
		return nil, err
	}

	if err := d.ReadyForSubmit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotReadyForSubmit, err)
	}

	ucReq, err := buildCreateRequest(d, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	resp, err := s.creator.Execute(ctx, ucReq)
	if err != nil {
		return nil, mapCreateError(err)
	}

	if err := s.store.Delete(ctx, draftID); err != nil {
		s.logger.Warn("drafts.Submit: failed to delete draft %s: %v", draftID, err)
	}
	s.dropSubscription(draftID)

	s.logger.Info("drafts.Submit: draft %s submitted, booking %d created", draftID, resp.ID)

	result := &models.SubmitDraftResponse{
		BookingID:     resp.ID,
		CustomerID:    resp.CustomerID,
		Status:        resp.Status,
		PaymentStatus: resp.PaymentStatus,
		TotalPrice:    resp.TotalPrice,
	}
	if resp.PaymentDueAt != nil {
		due := resp.PaymentDueAt.Format(time.RFC3339)
		result.PaymentDueAt = &due
	}
	return result, nil
}

// Close отменяет все подписки на ленту каталога
func (s *Service) Close() {
	s.mu.Lock()
	subs := s.subs
	s.subs = make(map[string]*catalogfeed.Subscription)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
}

// draftLock возвращает мьютекс черновика. Каждая цепочка load-изменение-save
// (шаги пользователя и события каталога) идет под ним, иначе параллельная
// запись теряет один из результатов.
func (s *Service) draftLock(draftID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[draftID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[draftID] = l
	}
	return l
}

func (s *Service) load(ctx context.Context, draftID string) (*draft.Draft, error) {
	d, err := s.store.Get(ctx, draftID)
	if err != nil {
		if errors.Is(err, draftstore.ErrDraftNotFound) {
			return nil, fmt.Errorf("%w: draft %s", ErrDraftNotFound, draftID)
		}
		s.logger.Error("drafts.load: failed to get draft %s: %v", draftID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return d, nil
}

func (s *Service) applyChanges(ctx context.Context, d *draft.Draft, req *models.ApplyStepRequest) error {
	for _, sel := range req.Services {
		if err := d.SetServiceQuantity(sel.ServiceID, sel.Quantity); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	for _, sel := range req.Options {
		if err := d.SetOptionQuantity(sel.OptionID, sel.Quantity); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	if req.Date != nil || req.Time != nil {
		if req.Date == nil || req.Time == nil {
			return fmt.Errorf("%w: date and time must be set together", ErrInvalidInput)
		}
		if err := d.SetDateTime(*req.Date, types.TimeString(*req.Time)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	if req.Diagnosis != nil {
		d.SetDiagnosis(draft.Diagnosis{
			HasParking: req.Diagnosis.HasParking,
			Notes:      req.Diagnosis.Notes,
		})
	}

	if req.Customer != nil {
		info := req.Customer.ToCustomerInfo()
		s.enrichAddress(ctx, &info)
		if err := d.SetCustomerInfo(info); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	return nil
}

// enrichAddress дополняет адрес по почтовому индексу через справочник.
// Недоступность справочника не блокирует шаг - клиент введет адрес вручную.
func (s *Service) enrichAddress(ctx context.Context, info *draft.CustomerInfo) {
	if s.postal == nil || info.PostalCode == nil || info.Address != nil {
		return
	}

	addr, err := s.postal.LookupWithGracefulDegradation(ctx, *info.PostalCode)
	if err != nil {
		s.logger.Warn("drafts.enrichAddress: postal lookup failed for %s: %v", *info.PostalCode, err)
		return
	}
	if addr == nil {
		return
	}

	full := addr.Full()
	info.Address = &full
}

// subscribe подписывает черновик на ленту изменений каталога организации.
// Обработчик перечитывает черновик из хранилища, применяет событие и
// сохраняет результат - без состояния в памяти процесса.
func (s *Service) subscribe(draftID string, organizationID int64) error {
	if s.feed == nil {
		return nil
	}

	sub, err := s.feed.Subscribe(context.Background(), organizationID, func(ev draft.CatalogEvent) {
		s.handleCatalogEvent(draftID, ev)
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.subs[draftID] = sub
	s.mu.Unlock()
	return nil
}

func (s *Service) handleCatalogEvent(draftID string, ev draft.CatalogEvent) {
	lock := s.draftLock(draftID)
	lock.Lock()
	defer lock.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	d, err := s.store.Get(ctx, draftID)
	if err != nil {
		if errors.Is(err, draftstore.ErrDraftNotFound) {
			// Черновик истек или подтвержден - подписка больше не нужна
			s.dropSubscription(draftID)
			return
		}
		s.logger.Error("drafts.handleCatalogEvent: failed to get draft %s: %v", draftID, err)
		return
	}

	d.ApplyCatalogEvent(ev)

	if err := s.store.Save(ctx, d); err != nil {
		s.logger.Error("drafts.handleCatalogEvent: failed to save draft %s: %v", draftID, err)
	}
}

// dropSubscription снимает подписку черновика. Отмена выполняется в отдельной
// горутине: Cancel ждет остановки чтения, а вызов может идти из обработчика
// самой подписки.
func (s *Service) dropSubscription(draftID string) {
	s.mu.Lock()
	sub, ok := s.subs[draftID]
	if ok {
		delete(s.subs, draftID)
	}
	delete(s.locks, draftID)
	s.mu.Unlock()

	if ok {
		go sub.Cancel()
	}
}

func buildCreateRequest(d *draft.Draft, req *models.SubmitDraftRequest) (*create_booking.Request, error) {
	date, err := time.Parse("2006-01-02", *d.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid draft date %q: %v", *d.Date, err)
	}

	services := make([]create_booking.ServiceSelection, 0, len(d.ServiceSelections))
	for _, sel := range d.ServiceSelections {
		services = append(services, create_booking.ServiceSelection{
			ServiceID: sel.ServiceID,
			Quantity:  sel.Quantity,
		})
	}

	options := make([]create_booking.OptionSelection, 0, len(d.OptionSelections))
	for _, sel := range d.OptionSelections {
		options = append(options, create_booking.OptionSelection{
			OptionID: sel.OptionID,
			Quantity: sel.Quantity,
		})
	}

	ucReq := &create_booking.Request{
		OrganizationID: d.OrganizationID,
		Services:       services,
		Options:        options,
		Date:           date,
		Time:           *d.Time,
		Customer: domain.CustomerIdentity{
			OrganizationID:  d.OrganizationID,
			Name:            d.Customer.Name,
			Email:           d.Customer.Email,
			Phone:           d.Customer.Phone,
			LineUserID:      d.Customer.LineUserID,
			AvatarURL:       d.Customer.AvatarURL,
			PostalCode:      d.Customer.PostalCode,
			Address:         d.Customer.Address,
			AddressBuilding: d.Customer.AddressBuilding,
		},
		ExpectedPrice: req.ExpectedTotalPrice,
		PayOnline:     req.PayOnline,
	}

	if d.Diagnosis != nil {
		ucReq.HasParking = d.Diagnosis.HasParking
		ucReq.DiagnosisNotes = d.Diagnosis.Notes
	}

	return ucReq, nil
}

func mapCreateError(err error) error {
	switch {
	case errors.Is(err, create_booking.ErrSlotNotAvailable):
		return fmt.Errorf("%w: %v", ErrSlotNotAvailable, err)
	case errors.Is(err, create_booking.ErrPriceMismatch):
		return fmt.Errorf("%w: %v", ErrPriceMismatch, err)
	case errors.Is(err, create_booking.ErrOrganizationNotFound):
		return fmt.Errorf("%w: %v", ErrOrganizationNotFound, err)
	case errors.Is(err, create_booking.ErrServiceNotFound),
		errors.Is(err, create_booking.ErrOptionNotFound),
		errors.Is(err, create_booking.ErrOptionWithoutService),
		errors.Is(err, create_booking.ErrInvalidDate),
		errors.Is(err, create_booking.ErrInvalidInput):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	default:
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}
