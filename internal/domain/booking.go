package domain

import (
	"time"

	"github.com/m04kA/HCS-BookingService/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending         BookingStatus = "pending"
	StatusAwaitingPayment BookingStatus = "awaiting_payment"
	StatusConfirmed       BookingStatus = "confirmed"
	StatusCompleted       BookingStatus = "completed"
	StatusCancelled       BookingStatus = "cancelled"
)

// PaymentStatus represents the payment state of a booking
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentAwaiting PaymentStatus = "awaiting_payment"
	PaymentPaid     PaymentStatus = "paid"
	PaymentExpired  PaymentStatus = "expired"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// Booking represents a cleaning-service booking in the system
type Booking struct {
	ID             int64
	OrganizationID int64
	CustomerID     int64
	SelectedDate   time.Time
	SelectedTime   types.TimeString
	Status         BookingStatus
	PaymentStatus  PaymentStatus

	// Price breakdown, fixed at creation time
	TotalPrice   int64 // smallest currency unit (yen)
	TierDiscount int64 // quantity-tier discount portion
	SetDiscount  int64 // set-discount portion

	// Denormalized data for history
	ServiceSummary string   // joined service titles
	OptionsSummary []string // option titles with quantities

	DiagnosisHasParking bool
	DiagnosisNotes      *string

	PaymentDueAt *time.Time
	ReminderSent bool

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking still occupies its slot
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelled
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed || b.Status == StatusAwaitingPayment
}

// IsCancelled returns true if the booking has been cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// IsCompleted returns true if the work has been completed
func (b *Booking) IsCompleted() bool {
	return b.Status == StatusCompleted
}

// PaymentOverdue returns true if an online payment was requested and its
// deadline has passed without payment
func (b *Booking) PaymentOverdue(now time.Time) bool {
	return b.PaymentStatus == PaymentAwaiting &&
		b.PaymentDueAt != nil &&
		b.PaymentDueAt.Before(now)
}

// BookingServiceLine is a denormalized per-service line of a booking.
// Title and price are copied at booking time so later catalog edits
// never alter historical records.
type BookingServiceLine struct {
	ID               int64
	BookingID        int64
	ServiceID        int64
	ServiceTitle     string
	ServiceQuantity  int
	ServiceBasePrice int64
	TierDiscount     int64
}

// BookingOptionLine is a denormalized per-option line of a booking
type BookingOptionLine struct {
	ID             int64
	BookingID      int64
	OptionID       int64
	OptionTitle    string
	OptionPrice    int64
	OptionQuantity int
}

// OrganizationBookingsFilter фильтр для получения бронирований организации
type OrganizationBookingsFilter struct {
	OrganizationID  int64             // Обязательный параметр
	StartDate       *time.Time        // Начало периода (опционально)
	EndDate         *time.Time        // Конец периода (опционально)
	Time            *types.TimeString // Конкретный слот (опционально, для проверки занятости)
	Status          *BookingStatus    // Фильтр по статусу (опционально)
	IncludeInactive bool              // Включать ли отмененные бронирования
}
