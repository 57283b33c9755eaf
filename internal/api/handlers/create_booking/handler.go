package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/HCS-BookingService/internal/api/handlers"
	createBooking "github.com/m04kA/HCS-BookingService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidDateTime      = "некорректная дата или время, ожидается YYYY-MM-DD и HH:MM"
	msgOrganizationNotFound = "организация не найдена"
	msgServiceNotFound      = "услуга не найдена"
	msgOptionNotFound       = "опция не найдена"
	msgOptionWithoutService = "опция выбрана без родительской услуги"
	msgInvalidDate          = "некорректная дата бронирования"
	msgSlotNotAvailable     = "выбранный временной слот недоступен"
	msgPriceChanged         = "цена изменилась, проверьте итоговую сумму"
	msgInvalidInput         = "некорректные данные бронирования"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrSlotNotAvailable):
			h.logger.Warn("POST /bookings - Slot not available: organization_id=%d, date=%s, time=%s",
				req.OrganizationID, req.Date, req.Time)
			handlers.RespondError(w, http.StatusConflict, msgSlotNotAvailable)

		case errors.Is(err, createBooking.ErrPriceMismatch):
			h.logger.Warn("POST /bookings - Price mismatch: organization_id=%d, expected=%d",
				req.OrganizationID, req.ExpectedPrice)
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgPriceChanged)

		case errors.Is(err, createBooking.ErrOrganizationNotFound):
			h.logger.Warn("POST /bookings - Organization not found: organization_id=%d", req.OrganizationID)
			handlers.RespondNotFound(w, msgOrganizationNotFound)

		case errors.Is(err, createBooking.ErrServiceNotFound):
			h.logger.Warn("POST /bookings - Service not found: organization_id=%d", req.OrganizationID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createBooking.ErrOptionNotFound):
			h.logger.Warn("POST /bookings - Option not found: organization_id=%d", req.OrganizationID)
			handlers.RespondNotFound(w, msgOptionNotFound)

		case errors.Is(err, createBooking.ErrOptionWithoutService):
			h.logger.Warn("POST /bookings - Option without service: organization_id=%d", req.OrganizationID)
			handlers.RespondBadRequest(w, msgOptionWithoutService)

		case errors.Is(err, createBooking.ErrInvalidDate):
			h.logger.Warn("POST /bookings - Invalid booking date: organization_id=%d, date=%s",
				req.OrganizationID, req.Date)
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: organization_id=%d, error=%v",
				req.OrganizationID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: organization_id=%d, error=%v",
				req.OrganizationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, organization_id=%d",
		result.ID, req.OrganizationID)
	handlers.RespondJSON(w, http.StatusCreated, response)
}
