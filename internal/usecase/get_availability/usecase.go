package get_availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/HCS-BookingService/internal/domain"
	catalogRepo "github.com/m04kA/HCS-BookingService/internal/infra/storage/catalog"
)

// UseCase use case для получения занятости слотов
type UseCase struct {
	bookingRepo BookingRepository
	catalogRepo CatalogRepository
	logger      Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(bookingRepo BookingRepository, catalogRepo CatalogRepository, logger Logger) *UseCase {
	return &UseCase{
		bookingRepo: bookingRepo,
		catalogRepo: catalogRepo,
		logger:      logger,
	}
}

// Execute возвращает занятость слотов организации за период
// Отмененные бронирования не занимают места и не попадают в счетчики
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailability: organization=%d, start=%s, end=%s",
		req.OrganizationID, req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat))

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailability: validation failed: %v", err)
		return nil, err
	}

	org, err := uc.catalogRepo.GetOrganization(ctx, req.OrganizationID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrOrganizationNotFound) {
			uc.logger.Warn("GetAvailability: organization id=%d not found", req.OrganizationID)
			return nil, ErrOrganizationNotFound
		}
		uc.logger.Error("GetAvailability: failed to get organization id=%d: %v", req.OrganizationID, err)
		return nil, fmt.Errorf("%w: failed to get organization: %v", ErrInternal, err)
	}

	occupancies, err := uc.bookingRepo.GetOccupancy(ctx, req.OrganizationID, req.StartDate, req.EndDate)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to get occupancy: %v", err)
		return nil, fmt.Errorf("%w: failed to get occupancy: %v", ErrInternal, err)
	}

	capacity := org.EffectiveSlotCapacity()
	slots := make([]Slot, 0, len(occupancies))
	for _, occ := range occupancies {
		slots = append(slots, Slot{
			Date:           occ.Date.Format(domain.DateFormat),
			Time:           occ.Time.String(),
			BookingCount:   occ.BookingCount,
			AvailableSpots: occ.AvailableSpots(capacity),
			IsAvailable:    !occ.IsFull(capacity),
		})
	}

	return &Response{
		OrganizationID: req.OrganizationID,
		SlotCapacity:   capacity,
		Slots:          slots,
	}, nil
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.OrganizationID <= 0 {
		return fmt.Errorf("%w: organizationID must be positive", ErrInvalidInput)
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return fmt.Errorf("%w: startDate and endDate are required", ErrInvalidInput)
	}
	if req.EndDate.Before(req.StartDate) {
		return fmt.Errorf("%w: endDate is before startDate", ErrInvalidDateRange)
	}
	if req.EndDate.Sub(req.StartDate).Hours() > maxRangeDays*24 {
		return fmt.Errorf("%w: range exceeds %d days", ErrInvalidDateRange, maxRangeDays)
	}
	return nil
}
