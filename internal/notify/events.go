package notify

import "time"

// EventType тип события уведомления
type EventType string

const (
	EventBookingConfirmed      EventType = "booking_confirmed"
	EventBookingCancelled      EventType = "booking_cancelled"
	EventBookingReminder       EventType = "booking_reminder"
	EventPaymentExpired        EventType = "payment_expired"
	EventAdminNewBooking       EventType = "admin_new_booking"
	EventAdminBookingCancelled EventType = "admin_booking_cancelled"
)

// Event событие, публикуемое в топик уведомлений
// Несет денормализованный снимок бронирования: диспетчер не ходит в БД.
// LineUserID это получатель сообщения: для клиентских событий LINE ID
// клиента, для админских LINE ID администратора организации
type Event struct {
	Type           EventType `json:"type"`
	BookingID      int64     `json:"booking_id"`
	OrganizationID int64     `json:"organization_id"`
	CustomerName   string    `json:"customer_name"`
	LineUserID     *string   `json:"line_user_id,omitempty"`
	ChannelToken   *string   `json:"channel_token,omitempty"`
	ServiceSummary string    `json:"service_summary"`
	SelectedDate   string    `json:"selected_date"` // YYYY-MM-DD
	SelectedTime   string    `json:"selected_time"` // HH:MM
	TotalPrice     int64     `json:"total_price"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Logger интерфейс логгера
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
