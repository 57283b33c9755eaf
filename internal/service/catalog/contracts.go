package catalog

import (
	"context"

	"github.com/m04kA/HCS-BookingService/internal/domain"
)

// CatalogRepository интерфейс репозитория каталога
type CatalogRepository interface {
	GetOrganization(ctx context.Context, id int64) (*domain.Organization, error)
	GetServices(ctx context.Context, organizationID int64) ([]domain.Service, error)
	GetOptionsByServiceIDs(ctx context.Context, serviceIDs []int64) ([]domain.ServiceOption, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
