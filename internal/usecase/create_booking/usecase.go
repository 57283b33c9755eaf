package create_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/HCS-BookingService/internal/domain"
	catalogRepo "github.com/m04kA/HCS-BookingService/internal/infra/storage/catalog"
	"github.com/m04kA/HCS-BookingService/internal/notify"
	"github.com/m04kA/HCS-BookingService/internal/pricing"
)

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	catalogRepo  CatalogRepository
	customerRepo CustomerRepository
	publisher    NotificationPublisher
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	catalogRepo CatalogRepository,
	customerRepo CustomerRepository,
	publisher NotificationPublisher,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		catalogRepo:  catalogRepo,
		customerRepo: customerRepo,
		publisher:    publisher,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case создания бронирования
//
// Цена всегда пересчитывается на сервере по текущему каталогу и сверяется
// с ценой, которую видел клиент. Проверка занятости слота и вставка идут
// в одной сериализуемой транзакции: два параллельных запроса на последнее
// место не могут пройти оба.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: organization=%d, services=%d, date=%s, time=%s",
		req.OrganizationID, len(req.Services), req.Date.Format(domain.DateFormat), req.Time)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время и проверяем дату
	now := uc.timeProvider.Now()
	if err := validateDate(req.Date, now); err != nil {
		uc.logger.Warn("CreateBooking: date validation failed: %v", err)
		return nil, err
	}

	// 3. Получаем организацию
	org, err := uc.catalogRepo.GetOrganization(ctx, req.OrganizationID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrOrganizationNotFound) {
			uc.logger.Warn("CreateBooking: organization id=%d not found", req.OrganizationID)
			return nil, ErrOrganizationNotFound
		}
		uc.logger.Error("CreateBooking: failed to get organization id=%d: %v", req.OrganizationID, err)
		return nil, fmt.Errorf("%w: failed to get organization: %v", ErrInternal, err)
	}

	// 4. Получаем каталог и сверяем выбор клиента с ним
	services, err := uc.catalogRepo.GetServices(ctx, req.OrganizationID)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get services: %v", err)
		return nil, fmt.Errorf("%w: failed to get services: %v", ErrInternal, err)
	}

	serviceIDs := make([]int64, 0, len(req.Services))
	for _, sel := range req.Services {
		serviceIDs = append(serviceIDs, sel.ServiceID)
	}
	options, err := uc.catalogRepo.GetOptionsByServiceIDs(ctx, serviceIDs)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get options: %v", err)
		return nil, fmt.Errorf("%w: failed to get options: %v", ErrInternal, err)
	}

	selectedServices, selectedOptions, err := resolveSelections(req, services, options)
	if err != nil {
		uc.logger.Warn("CreateBooking: selection validation failed: %v", err)
		return nil, err
	}

	// 5. Пересчитываем цену на сервере и сверяем с ценой клиента
	quote := pricing.Calculate(selectedServices, selectedOptions, org.SetDiscounts)
	if quote.TotalPrice != req.ExpectedPrice {
		uc.logger.Warn("CreateBooking: price mismatch, client=%d, server=%d", req.ExpectedPrice, quote.TotalPrice)
		return nil, fmt.Errorf("%w: client=%d, server=%d", ErrPriceMismatch, req.ExpectedPrice, quote.TotalPrice)
	}

	// 6. Готовим денормализованные данные
	serviceSummary, optionsSummary := buildSummaries(selectedServices, selectedOptions)
	serviceLines := buildServiceLines(selectedServices)
	optionLines := buildOptionLines(selectedOptions)

	booking := &domain.Booking{
		OrganizationID:      req.OrganizationID,
		SelectedDate:        req.Date,
		SelectedTime:        req.Time,
		Status:              domain.StatusConfirmed,
		PaymentStatus:       domain.PaymentUnpaid,
		TotalPrice:          quote.TotalPrice,
		TierDiscount:        quote.TierDiscount,
		SetDiscount:         quote.SetDiscountTotal,
		ServiceSummary:      serviceSummary,
		OptionsSummary:      optionsSummary,
		DiagnosisHasParking: req.HasParking,
		DiagnosisNotes:      req.DiagnosisNotes,
	}

	// Для онлайн-оплаты бронирование ждет оплату с дедлайном
	if req.PayOnline {
		due := now.Add(paymentDueIn)
		booking.Status = domain.StatusAwaitingPayment
		booking.PaymentStatus = domain.PaymentAwaiting
		booking.PaymentDueAt = &due
	}

	var result *domain.Booking
	var customer *domain.Customer

	// 7. Выполняем операции с БД в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 7.1. Идемпотентно находим или создаем клиента
		customer, err = uc.customerRepo.FindOrCreate(txCtx, req.Customer)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to resolve customer: %v", err)
			return fmt.Errorf("%w: failed to resolve customer: %v", ErrInternal, err)
		}

		// 7.2. Считаем занятость слота с блокировкой (FOR UPDATE)
		occupied, err := uc.bookingRepo.CountSlotOccupancy(txCtx, req.OrganizationID, req.Date, req.Time)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to count slot occupancy: %v", err)
			return fmt.Errorf("%w: failed to count slot occupancy: %v", ErrInternal, err)
		}

		// 7.3. Проверяем вместимость слота
		capacity := org.EffectiveSlotCapacity()
		if occupied >= capacity {
			uc.logger.Warn("CreateBooking: slot not available, %d/%d spots taken", occupied, capacity)
			return ErrSlotNotAvailable
		}

		uc.logger.Info("CreateBooking: slot available, %d/%d spots taken", occupied, capacity)

		// 7.4. Сохраняем бронирование и его строки
		booking.CustomerID = customer.ID
		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		if err := uc.bookingRepo.CreateServiceLines(txCtx, created.ID, serviceLines); err != nil {
			uc.logger.Error("CreateBooking: failed to create service lines: %v", err)
			return fmt.Errorf("%w: failed to create service lines: %v", ErrInternal, err)
		}

		if err := uc.bookingRepo.CreateOptionLines(txCtx, created.ID, optionLines); err != nil {
			uc.logger.Error("CreateBooking: failed to create option lines: %v", err)
			return fmt.Errorf("%w: failed to create option lines: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d", result.ID)

	// 8. Публикуем уведомления после коммита (best-effort)
	uc.publishEvents(ctx, result, org, customer)

	return &Response{
		ID:             result.ID,
		OrganizationID: result.OrganizationID,
		CustomerID:     result.CustomerID,
		Date:           result.SelectedDate,
		Time:           result.SelectedTime,
		Status:         string(result.Status),
		PaymentStatus:  string(result.PaymentStatus),
		TotalPrice:     result.TotalPrice,
		TierDiscount:   result.TierDiscount,
		SetDiscount:    result.SetDiscount,
		ServiceSummary: result.ServiceSummary,
		OptionsSummary: result.OptionsSummary,
		PaymentDueAt:   result.PaymentDueAt,
		CreatedAt:      result.CreatedAt,
		UpdatedAt:      result.UpdatedAt,
	}, nil
}

// publishEvents публикует уведомления о созданном бронировании
// Ошибки публикации не влияют на результат: бронирование уже в БД
func (uc *UseCase) publishEvents(ctx context.Context, booking *domain.Booking, org *domain.Organization, customer *domain.Customer) {
	base := notify.Event{
		BookingID:      booking.ID,
		OrganizationID: booking.OrganizationID,
		CustomerName:   customer.Name,
		LineUserID:     customer.LineUserID,
		ChannelToken:   org.LineChannelToken,
		ServiceSummary: booking.ServiceSummary,
		SelectedDate:   booking.SelectedDate.Format(domain.DateFormat),
		SelectedTime:   booking.SelectedTime.String(),
		TotalPrice:     booking.TotalPrice,
		OccurredAt:     uc.timeProvider.Now(),
	}

	confirmed := base
	confirmed.Type = notify.EventBookingConfirmed
	uc.publisher.Publish(ctx, confirmed)

	// Админское событие адресуется администратору организации, не клиенту
	if org.AdminLineUserID == nil || *org.AdminLineUserID == "" {
		uc.logger.Info("publishEvents: no admin_line_user_id for organization_id=%d, skipping admin alert", org.ID)
		return
	}
	adminEvent := base
	adminEvent.Type = notify.EventAdminNewBooking
	adminEvent.LineUserID = org.AdminLineUserID
	uc.publisher.Publish(ctx, adminEvent)
}
