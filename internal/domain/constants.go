package domain

// Default configuration values
const (
	DefaultSlotCapacity = 1
)

// Business validation constants
const (
	MinSlotCapacity             = 1
	MaxSlotCapacity             = 100
	MaxServiceQuantity          = 99
	MaxOptionQuantity           = 99
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
	MinSetDiscountServices      = 2
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// InactiveStatuses список статусов, не занимающих слот
// Используется при подсчете занятости слотов
var InactiveStatuses = []BookingStatus{
	StatusCancelled,
}

// ActiveStatuses список статусов, занимающих слот
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusAwaitingPayment,
	StatusConfirmed,
	StatusCompleted,
}
