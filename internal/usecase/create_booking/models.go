package create_booking

import (
	"time"

	"github.com/m04kA/HCS-BookingService/internal/domain"
	"github.com/m04kA/HCS-BookingService/pkg/types"
)

// Минимальный срок оплаты онлайн-бронирования
const paymentDueIn = 24 * time.Hour

// ServiceSelection выбранная услуга с количеством
type ServiceSelection struct {
	ServiceID int64
	Quantity  int
}

// OptionSelection выбранная опция с количеством
type OptionSelection struct {
	OptionID int64
	Quantity int
}

// Request модель запроса на создание бронирования
type Request struct {
	OrganizationID int64                   // ID организации
	Services       []ServiceSelection      // Выбранные услуги (минимум одна)
	Options        []OptionSelection       // Выбранные опции (опционально)
	Date           time.Time               // Дата бронирования (без времени)
	Time           types.TimeString        // Время слота (например, "10:00")
	Customer       domain.CustomerIdentity // Контактные данные клиента
	HasParking     bool                    // Есть ли парковка у клиента
	DiagnosisNotes *string                 // Заметки предварительной диагностики
	ExpectedPrice  int64                   // Итоговая цена, показанная клиенту
	PayOnline      bool                    // Онлайн-оплата (true) или оплата на месте
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID             int64            // ID созданного бронирования
	OrganizationID int64            // ID организации
	CustomerID     int64            // ID клиента (найденного или созданного)
	Date           time.Time        // Дата бронирования
	Time           types.TimeString // Время слота
	Status         string           // Статус бронирования
	PaymentStatus  string           // Статус оплаты

	// Зафиксированная разбивка цены
	TotalPrice   int64 // Итоговая цена
	TierDiscount int64 // Количественная скидка
	SetDiscount  int64 // Сет-скидка

	ServiceSummary string     // Названия услуг одной строкой
	OptionsSummary []string   // Названия опций с количеством
	PaymentDueAt   *time.Time // Срок оплаты (для онлайн-оплаты)

	CreatedAt time.Time // Время создания
	UpdatedAt time.Time // Время обновления
}
