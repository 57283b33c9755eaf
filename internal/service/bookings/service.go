package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/HCS-BookingService/internal/domain"
	bookingRepo "github.com/m04kA/HCS-BookingService/internal/infra/storage/booking"
	catalogRepo "github.com/m04kA/HCS-BookingService/internal/infra/storage/catalog"
	customerRepo "github.com/m04kA/HCS-BookingService/internal/infra/storage/customer"
	"github.com/m04kA/HCS-BookingService/internal/notify"
	"github.com/m04kA/HCS-BookingService/internal/service/bookings/models"
)

// Service сервис для работы с бронированиями
type Service struct {
	bookingRepo  BookingRepository
	catalogRepo  CatalogRepository
	customerRepo CustomerRepository
	publisher    NotificationPublisher
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	catalogRepo CatalogRepository,
	customerRepo CustomerRepository,
	publisher NotificationPublisher,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		catalogRepo:  catalogRepo,
		customerRepo: customerRepo,
		publisher:    publisher,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// GetByID получает бронирование по ID вместе со строками услуг и опций
// Доступно только сотрудникам организации бронирования
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, userID)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if err := s.checkStaffAccess(ctx, booking.OrganizationID, userID); err != nil {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", userID, id)
		return nil, err
	}

	resp := models.FromDomainBooking(booking)

	serviceLines, err := s.bookingRepo.GetServiceLines(ctx, id)
	if err != nil {
		s.logger.Error("GetByID: failed to get service lines for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}
	resp.Services = models.FromDomainServiceLines(serviceLines)

	optionLines, err := s.bookingRepo.GetOptionLines(ctx, id)
	if err != nil {
		s.logger.Error("GetByID: failed to get option lines for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}
	resp.Options = models.FromDomainOptionLines(optionLines)

	s.logger.Info("GetByID: successfully fetched booking id=%d", id)
	return resp, nil
}

// GetCustomerBookings получает историю бронирований клиента
// Опционально фильтрует по статусу. Доступно сотрудникам организации клиента
func (s *Service) GetCustomerBookings(ctx context.Context, req *models.GetCustomerBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetCustomerBookings: fetching bookings for customer=%d, user=%d", req.CustomerID, req.UserID)

	customer, err := s.customerRepo.GetByID(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, customerRepo.ErrCustomerNotFound) {
			s.logger.Warn("GetCustomerBookings: customer id=%d not found", req.CustomerID)
			return nil, ErrCustomerNotFound
		}
		s.logger.Error("GetCustomerBookings: failed to get customer id=%d: %v", req.CustomerID, err)
		return nil, fmt.Errorf("%w: GetCustomerBookings - repository error: %v", ErrInternal, err)
	}

	if err := s.checkStaffAccess(ctx, customer.OrganizationID, req.UserID); err != nil {
		s.logger.Warn("GetCustomerBookings: access denied for user=%d to customer=%d", req.UserID, req.CustomerID)
		return nil, err
	}

	// Конвертируем статус из строки в domain.BookingStatus
	var domainStatus *domain.BookingStatus
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetCustomerBookings: invalid status=%s for customer=%d", *req.Status, req.CustomerID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	bookings, err := s.bookingRepo.GetByCustomerID(ctx, req.CustomerID, domainStatus)
	if err != nil {
		s.logger.Error("GetCustomerBookings: repository error for customer=%d: %v", req.CustomerID, err)
		return nil, fmt.Errorf("%w: GetCustomerBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetCustomerBookings: successfully fetched %d bookings for customer=%d", len(bookings), req.CustomerID)
	return models.FromDomainBookingList(bookings), nil
}

// GetOrganizationBookings получает бронирования организации с гибкой фильтрацией
// Поддерживает фильтрацию по периоду, статусу и включению отмененных бронирований
// Доступно только сотрудникам организации
func (s *Service) GetOrganizationBookings(ctx context.Context, req *models.GetOrganizationBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetOrganizationBookings: fetching bookings for organization=%d, user=%d", req.OrganizationID, req.UserID)

	if err := s.checkStaffAccess(ctx, req.OrganizationID, req.UserID); err != nil {
		return nil, err
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetOrganizationBookings: invalid filter for organization=%d: %v", req.OrganizationID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.GetByOrganizationWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetOrganizationBookings: repository error for organization=%d: %v", req.OrganizationID, err)
		return nil, fmt.Errorf("%w: GetOrganizationBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetOrganizationBookings: successfully fetched %d bookings for organization=%d", len(bookings), req.OrganizationID)
	return models.FromDomainBookingList(bookings), nil
}

// Cancel отменяет бронирование
// Доступно сотрудникам организации; после отмены клиенту уходит уведомление
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) error {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d", bookingID, req.UserID)

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("Cancel: booking id=%d not found", bookingID)
			return ErrBookingNotFound
		}
		s.logger.Error("Cancel: repository error for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	if err := s.checkStaffAccess(ctx, booking.OrganizationID, req.UserID); err != nil {
		s.logger.Warn("Cancel: access denied for user=%d to cancel booking id=%d", req.UserID, bookingID)
		return err
	}

	if !booking.CanBeCancelled() {
		s.logger.Warn("Cancel: booking id=%d cannot be cancelled, status=%s", bookingID, booking.Status)
		return ErrCannotCancel
	}

	if err := s.bookingRepo.Cancel(ctx, bookingID, req.CancellationReason); err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("Cancel: booking id=%d not found during cancellation", bookingID)
			return ErrBookingNotFound
		}
		s.logger.Error("Cancel: repository error for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Cancel: successfully cancelled booking id=%d", bookingID)

	// Уведомление об отмене (best-effort, бронирование уже отменено)
	s.publishCancelled(ctx, booking)

	return nil
}

// publishCancelled публикует уведомления об отмене: клиенту и администратору
func (s *Service) publishCancelled(ctx context.Context, booking *domain.Booking) {
	event := notify.Event{
		Type:           notify.EventBookingCancelled,
		BookingID:      booking.ID,
		OrganizationID: booking.OrganizationID,
		ServiceSummary: booking.ServiceSummary,
		SelectedDate:   booking.SelectedDate.Format(domain.DateFormat),
		SelectedTime:   booking.SelectedTime.String(),
		TotalPrice:     booking.TotalPrice,
		OccurredAt:     s.timeProvider.Now(),
	}

	customer, err := s.customerRepo.GetByID(ctx, booking.CustomerID)
	if err != nil {
		s.logger.Warn("publishCancelled: failed to get customer id=%d: %v", booking.CustomerID, err)
	} else {
		event.CustomerName = customer.Name
		event.LineUserID = customer.LineUserID
	}

	org, err := s.catalogRepo.GetOrganization(ctx, booking.OrganizationID)
	if err != nil {
		s.logger.Warn("publishCancelled: failed to get organization id=%d: %v", booking.OrganizationID, err)
	} else {
		event.ChannelToken = org.LineChannelToken
	}

	s.publisher.Publish(ctx, event)

	// Админское событие адресуется администратору организации
	if org == nil || org.AdminLineUserID == nil || *org.AdminLineUserID == "" {
		s.logger.Info("publishCancelled: no admin_line_user_id for organization_id=%d, skipping admin alert", booking.OrganizationID)
		return
	}
	adminEvent := event
	adminEvent.Type = notify.EventAdminBookingCancelled
	adminEvent.LineUserID = org.AdminLineUserID
	s.publisher.Publish(ctx, adminEvent)
}

// checkStaffAccess проверяет, что пользователь является сотрудником организации
func (s *Service) checkStaffAccess(ctx context.Context, organizationID, userID int64) error {
	isStaff, err := s.catalogRepo.IsOrganizationStaff(ctx, organizationID, userID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrOrganizationNotFound) {
			s.logger.Warn("checkStaffAccess: organization id=%d not found", organizationID)
			return ErrOrganizationNotFound
		}
		s.logger.Error("checkStaffAccess: failed to check staff for organization id=%d: %v", organizationID, err)
		return fmt.Errorf("%w: checkStaffAccess - repository error: %v", ErrInternal, err)
	}
	if !isStaff {
		return ErrAccessDenied
	}
	return nil
}
