package expire_payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/HCS-BookingService/internal/domain"
	bookingRepo "github.com/m04kA/HCS-BookingService/internal/infra/storage/booking"
	"github.com/m04kA/HCS-BookingService/internal/notify"
)

// ErrInternal возвращается при внутренних ошибках usecase
var ErrInternal = errors.New("expire_payments: internal error")

// UseCase периодическая обработка просроченных онлайн-оплат
//
// Каждое бронирование обрабатывается независимо: условное обновление
// с проверкой reminder_sent делает прогон идемпотентным, повторный sweep
// не отправит второе уведомление
type UseCase struct {
	bookingRepo  BookingRepository
	catalogRepo  CatalogRepository
	customerRepo CustomerRepository
	publisher    NotificationPublisher
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	catalogRepo CatalogRepository,
	customerRepo CustomerRepository,
	publisher NotificationPublisher,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		catalogRepo:  catalogRepo,
		customerRepo: customerRepo,
		publisher:    publisher,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Run запускает sweep по тикеру до отмены контекста
func (uc *UseCase) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	uc.logger.Info("ExpirePayments: sweep started, interval=%s", interval)

	for {
		select {
		case <-ctx.Done():
			uc.logger.Info("ExpirePayments: sweep stopped")
			return
		case <-ticker.C:
			if n, err := uc.Execute(ctx); err != nil {
				uc.logger.Error("ExpirePayments: sweep failed: %v", err)
			} else if n > 0 {
				uc.logger.Info("ExpirePayments: expired %d bookings", n)
			}
		}
	}
}

// Execute выполняет один проход sweep-а, возвращает число обработанных бронирований
func (uc *UseCase) Execute(ctx context.Context) (int, error) {
	now := uc.timeProvider.Now()

	expired, err := uc.bookingRepo.GetExpiredAwaitingPayment(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to get expired bookings: %v", ErrInternal, err)
	}

	processed := 0
	for _, booking := range expired {
		if err := uc.bookingRepo.MarkPaymentExpired(ctx, booking.ID); err != nil {
			// Другой инстанс мог успеть раньше, это не ошибка sweep-а
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				uc.logger.Info("ExpirePayments: booking id=%d already processed", booking.ID)
				continue
			}
			uc.logger.Error("ExpirePayments: failed to mark booking id=%d: %v", booking.ID, err)
			continue
		}

		uc.notifyExpired(ctx, booking, now)
		processed++
	}

	return processed, nil
}

// notifyExpired публикует уведомление о просроченной оплате (best-effort)
func (uc *UseCase) notifyExpired(ctx context.Context, booking *domain.Booking, now time.Time) {
	event := notify.Event{
		Type:           notify.EventPaymentExpired,
		BookingID:      booking.ID,
		OrganizationID: booking.OrganizationID,
		ServiceSummary: booking.ServiceSummary,
		SelectedDate:   booking.SelectedDate.Format(domain.DateFormat),
		SelectedTime:   booking.SelectedTime.String(),
		TotalPrice:     booking.TotalPrice,
		OccurredAt:     now,
	}

	customer, err := uc.customerRepo.GetByID(ctx, booking.CustomerID)
	if err != nil {
		uc.logger.Warn("ExpirePayments: failed to get customer id=%d: %v", booking.CustomerID, err)
	} else {
		event.CustomerName = customer.Name
		event.LineUserID = customer.LineUserID
	}

	org, err := uc.catalogRepo.GetOrganization(ctx, booking.OrganizationID)
	if err != nil {
		uc.logger.Warn("ExpirePayments: failed to get organization id=%d: %v", booking.OrganizationID, err)
	} else {
		event.ChannelToken = org.LineChannelToken
	}

	uc.publisher.Publish(ctx, event)
}
