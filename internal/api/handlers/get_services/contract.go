package get_services

import (
	"context"

	"github.com/m04kA/HCS-BookingService/internal/service/catalog/models"
)

type CatalogService interface {
	GetCatalog(ctx context.Context, organizationID int64) (*models.CatalogResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
