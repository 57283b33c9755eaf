package drafts

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/HCS-BookingService/internal/api/handlers"
	draftsService "github.com/m04kA/HCS-BookingService/internal/service/drafts"
	"github.com/m04kA/HCS-BookingService/internal/service/drafts/models"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgDraftNotFound        = "черновик не найден или истек"
	msgOrganizationNotFound = "организация не найдена"
	msgInvalidInput         = "некорректные данные шага"
	msgStepIncomplete       = "текущий шаг заполнен не полностью"
	msgNotReadyForSubmit    = "черновик не готов к подтверждению"
	msgSlotNotAvailable     = "выбранный временной слот недоступен"
	msgPriceChanged         = "цена изменилась, проверьте итоговую сумму"
)

type Handler struct {
	service DraftService
	logger  Logger
}

func NewHandler(service DraftService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// HandleStart POST /api/v1/drafts
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	var req models.StartDraftRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /drafts - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Start(r.Context(), req.OrganizationID)
	if err != nil {
		switch {
		case errors.Is(err, draftsService.ErrOrganizationNotFound):
			h.logger.Warn("POST /drafts - Organization not found: organization_id=%d", req.OrganizationID)
			handlers.RespondNotFound(w, msgOrganizationNotFound)

		default:
			h.logger.Error("POST /drafts - Failed to start draft: organization_id=%d, error=%v",
				req.OrganizationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /drafts - Draft started: draft_id=%s, organization_id=%d", result.ID, req.OrganizationID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

// HandleGet GET /api/v1/drafts/{draftId}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	draftID := mux.Vars(r)["draftId"]

	result, err := h.service.Get(r.Context(), draftID)
	if err != nil {
		h.respondDraftError(w, "GET /drafts/{id}", draftID, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandleApplyStep POST /api/v1/drafts/{draftId}/steps
func (h *Handler) HandleApplyStep(w http.ResponseWriter, r *http.Request) {
	draftID := mux.Vars(r)["draftId"]

	var req models.ApplyStepRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /drafts/{id}/steps - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.ApplyStep(r.Context(), draftID, &req)
	if err != nil {
		h.respondDraftError(w, "POST /drafts/{id}/steps", draftID, err)
		return
	}

	h.logger.Info("POST /drafts/{id}/steps - Step applied: draft_id=%s, step=%s", draftID, result.Step)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandleBack POST /api/v1/drafts/{draftId}/back
func (h *Handler) HandleBack(w http.ResponseWriter, r *http.Request) {
	draftID := mux.Vars(r)["draftId"]

	result, err := h.service.Back(r.Context(), draftID)
	if err != nil {
		h.respondDraftError(w, "POST /drafts/{id}/back", draftID, err)
		return
	}

	h.logger.Info("POST /drafts/{id}/back - Step reverted: draft_id=%s, step=%s", draftID, result.Step)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandleSubmit POST /api/v1/drafts/{draftId}/submit
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	draftID := mux.Vars(r)["draftId"]

	var req models.SubmitDraftRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /drafts/{id}/submit - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Submit(r.Context(), draftID, &req)
	if err != nil {
		switch {
		case errors.Is(err, draftsService.ErrSlotNotAvailable):
			h.logger.Warn("POST /drafts/{id}/submit - Slot not available: draft_id=%s", draftID)
			handlers.RespondError(w, http.StatusConflict, msgSlotNotAvailable)

		case errors.Is(err, draftsService.ErrPriceMismatch):
			h.logger.Warn("POST /drafts/{id}/submit - Price mismatch: draft_id=%s", draftID)
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgPriceChanged)

		case errors.Is(err, draftsService.ErrNotReadyForSubmit):
			h.logger.Warn("POST /drafts/{id}/submit - Draft not ready: draft_id=%s", draftID)
			handlers.RespondError(w, http.StatusConflict, msgNotReadyForSubmit)

		default:
			h.respondDraftError(w, "POST /drafts/{id}/submit", draftID, err)
		}
		return
	}

	h.logger.Info("POST /drafts/{id}/submit - Draft submitted: draft_id=%s, booking_id=%d",
		draftID, result.BookingID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

// respondDraftError обрабатывает общие для всех операций черновика ошибки
func (h *Handler) respondDraftError(w http.ResponseWriter, op, draftID string, err error) {
	switch {
	case errors.Is(err, draftsService.ErrDraftNotFound):
		h.logger.Warn("%s - Draft not found: draft_id=%s", op, draftID)
		handlers.RespondNotFound(w, msgDraftNotFound)

	case errors.Is(err, draftsService.ErrStepIncomplete):
		h.logger.Warn("%s - Step incomplete: draft_id=%s, error=%v", op, draftID, err)
		handlers.RespondError(w, http.StatusUnprocessableEntity, msgStepIncomplete)

	case errors.Is(err, draftsService.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: draft_id=%s, error=%v", op, draftID, err)
		handlers.RespondBadRequest(w, msgInvalidInput)

	default:
		h.logger.Error("%s - Internal error: draft_id=%s, error=%v", op, draftID, err)
		handlers.RespondInternalError(w)
	}
}
