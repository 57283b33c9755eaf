package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/HCS-BookingService/internal/domain"
	"github.com/m04kA/HCS-BookingService/internal/notify"
	"github.com/m04kA/HCS-BookingService/pkg/types"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	CreateServiceLines(ctx context.Context, bookingID int64, lines []domain.BookingServiceLine) error
	CreateOptionLines(ctx context.Context, bookingID int64, lines []domain.BookingOptionLine) error
	CountSlotOccupancy(ctx context.Context, organizationID int64, date time.Time, slot types.TimeString) (int, error)
}

// CatalogRepository интерфейс репозитория каталога
type CatalogRepository interface {
	GetOrganization(ctx context.Context, id int64) (*domain.Organization, error)
	GetServices(ctx context.Context, organizationID int64) ([]domain.Service, error)
	GetOptionsByServiceIDs(ctx context.Context, serviceIDs []int64) ([]domain.ServiceOption, error)
}

// CustomerRepository интерфейс репозитория клиентов
type CustomerRepository interface {
	FindOrCreate(ctx context.Context, identity domain.CustomerIdentity) (*domain.Customer, error)
}

// NotificationPublisher интерфейс публикации уведомлений (fire-and-forget)
type NotificationPublisher interface {
	Publish(ctx context.Context, event notify.Event)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
