package get_availability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/HCS-BookingService/internal/api/handlers"
	getAvailability "github.com/m04kA/HCS-BookingService/internal/usecase/get_availability"
)

const (
	msgInvalidOrganizationID = "некорректный ID организации"
	msgInvalidDateRange      = "некорректный период, ожидается startDate и endDate в формате YYYY-MM-DD"
	msgOrganizationNotFound  = "организация не найдена"
)

const dateFormat = "2006-01-02"

type Handler struct {
	useCase AvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase AvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/organizations/{organizationId}/availability
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	organizationID, err := strconv.ParseInt(vars["organizationId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /organizations/{id}/availability - Invalid organization ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidOrganizationID)
		return
	}

	query := r.URL.Query()
	startDate, err := time.Parse(dateFormat, query.Get("startDate"))
	if err != nil {
		h.logger.Warn("GET /organizations/{id}/availability - Invalid startDate: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateRange)
		return
	}
	endDate, err := time.Parse(dateFormat, query.Get("endDate"))
	if err != nil {
		h.logger.Warn("GET /organizations/{id}/availability - Invalid endDate: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateRange)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &getAvailability.Request{
		OrganizationID: organizationID,
		StartDate:      startDate,
		EndDate:        endDate,
	})
	if err != nil {
		switch {
		case errors.Is(err, getAvailability.ErrOrganizationNotFound):
			h.logger.Warn("GET /organizations/{id}/availability - Organization not found: organization_id=%d", organizationID)
			handlers.RespondNotFound(w, msgOrganizationNotFound)

		case errors.Is(err, getAvailability.ErrInvalidDateRange):
			h.logger.Warn("GET /organizations/{id}/availability - Invalid date range: organization_id=%d", organizationID)
			handlers.RespondBadRequest(w, msgInvalidDateRange)

		default:
			h.logger.Error("GET /organizations/{id}/availability - Failed to get availability: organization_id=%d, error=%v",
				organizationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /organizations/{id}/availability - Availability retrieved: organization_id=%d, slots=%d",
		organizationID, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, result)
}
