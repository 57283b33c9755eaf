package drafts

import (
	"context"

	"github.com/m04kA/HCS-BookingService/internal/catalogfeed"
	"github.com/m04kA/HCS-BookingService/internal/domain"
	"github.com/m04kA/HCS-BookingService/internal/draft"
	"github.com/m04kA/HCS-BookingService/internal/integrations/postalservice"
	"github.com/m04kA/HCS-BookingService/internal/usecase/create_booking"
)

// CatalogRepository интерфейс репозитория каталога
type CatalogRepository interface {
	GetOrganization(ctx context.Context, id int64) (*domain.Organization, error)
	GetServices(ctx context.Context, organizationID int64) ([]domain.Service, error)
	GetOptionsByServiceIDs(ctx context.Context, serviceIDs []int64) ([]domain.ServiceOption, error)
}

// DraftStore интерфейс хранилища черновиков
type DraftStore interface {
	Save(ctx context.Context, d *draft.Draft) error
	Get(ctx context.Context, draftID string) (*draft.Draft, error)
	Delete(ctx context.Context, draftID string) error
}

// PostalClient интерфейс справочника почтовых индексов
type PostalClient interface {
	LookupWithGracefulDegradation(ctx context.Context, postalCode string) (*postalservice.Address, error)
}

// CatalogFeed интерфейс ленты событий каталога
type CatalogFeed interface {
	Subscribe(ctx context.Context, organizationID int64, handler catalogfeed.Handler) (*catalogfeed.Subscription, error)
}

// BookingCreator интерфейс usecase создания бронирования
type BookingCreator interface {
	Execute(ctx context.Context, req *create_booking.Request) (*create_booking.Response, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
