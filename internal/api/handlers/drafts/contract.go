package drafts

import (
	"context"

	"github.com/m04kA/HCS-BookingService/internal/service/drafts/models"
)

type DraftService interface {
	Start(ctx context.Context, organizationID int64) (*models.DraftResponse, error)
	Get(ctx context.Context, draftID string) (*models.DraftResponse, error)
	ApplyStep(ctx context.Context, draftID string, req *models.ApplyStepRequest) (*models.DraftResponse, error)
	Back(ctx context.Context, draftID string) (*models.DraftResponse, error)
	Submit(ctx context.Context, draftID string, req *models.SubmitDraftRequest) (*models.SubmitDraftResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
