package bookings

import (
	"context"
	"time"

	"github.com/m04kA/HCS-BookingService/internal/domain"
	"github.com/m04kA/HCS-BookingService/internal/notify"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByCustomerID(ctx context.Context, customerID int64, status *domain.BookingStatus) ([]*domain.Booking, error)
	GetByOrganizationWithFilter(ctx context.Context, filter domain.OrganizationBookingsFilter) ([]*domain.Booking, error)
	GetServiceLines(ctx context.Context, bookingID int64) ([]domain.BookingServiceLine, error)
	GetOptionLines(ctx context.Context, bookingID int64) ([]domain.BookingOptionLine, error)
	Cancel(ctx context.Context, id int64, reason string) error
}

// CatalogRepository интерфейс репозитория каталога
type CatalogRepository interface {
	GetOrganization(ctx context.Context, id int64) (*domain.Organization, error)
	IsOrganizationStaff(ctx context.Context, organizationID, userID int64) (bool, error)
}

// CustomerRepository интерфейс репозитория клиентов
type CustomerRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
}

// NotificationPublisher интерфейс публикации уведомлений (fire-and-forget)
type NotificationPublisher interface {
	Publish(ctx context.Context, event notify.Event)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
