package get_services

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/HCS-BookingService/internal/api/handlers"
	"github.com/m04kA/HCS-BookingService/internal/service/catalog"
)

const (
	msgInvalidOrganizationID = "некорректный ID организации"
	msgOrganizationNotFound  = "организация не найдена"
)

type Handler struct {
	service CatalogService
	logger  Logger
}

func NewHandler(service CatalogService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/organizations/{organizationId}/services
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	organizationID, err := strconv.ParseInt(vars["organizationId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /organizations/{id}/services - Invalid organization ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidOrganizationID)
		return
	}

	result, err := h.service.GetCatalog(r.Context(), organizationID)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrOrganizationNotFound):
			h.logger.Warn("GET /organizations/{id}/services - Organization not found: organization_id=%d", organizationID)
			handlers.RespondNotFound(w, msgOrganizationNotFound)

		default:
			h.logger.Error("GET /organizations/{id}/services - Failed to get catalog: organization_id=%d, error=%v",
				organizationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /organizations/{id}/services - Catalog retrieved: organization_id=%d, services=%d",
		organizationID, len(result.Services))
	handlers.RespondJSON(w, http.StatusOK, result)
}
