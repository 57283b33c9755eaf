package models

import (
	"errors"
	"time"

	"github.com/m04kA/HCS-BookingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	UserID             int64  `json:"userId"`
	CancellationReason string `json:"cancellationReason"`
}

// GetCustomerBookingsRequest запрос на получение бронирований клиента
type GetCustomerBookingsRequest struct {
	UserID     int64   `json:"userId"`
	CustomerID int64   `json:"customerId"`
	Status     *string `json:"status,omitempty"`
}

// GetOrganizationBookingsRequest запрос на получение бронирований организации
type GetOrganizationBookingsRequest struct {
	UserID          int64      `json:"userId"`
	OrganizationID  int64      `json:"organizationId"`
	StartDate       *time.Time `json:"startDate,omitempty"`       // Начало периода (опционально)
	EndDate         *time.Time `json:"endDate,omitempty"`         // Конец периода (опционально)
	Status          *string    `json:"status,omitempty"`          // Фильтр по статусу (опционально)
	IncludeInactive bool       `json:"includeInactive,omitempty"` // Включить отмененные бронирования
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetOrganizationBookingsRequest) ToDomainFilter() (domain.OrganizationBookingsFilter, error) {
	filter := domain.OrganizationBookingsFilter{
		OrganizationID:  r.OrganizationID,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		IncludeInactive: r.IncludeInactive,
	}

	// Конвертируем статус если указан
	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// ServiceLineResponse строка услуги бронирования
type ServiceLineResponse struct {
	ServiceID        int64  `json:"serviceId"`
	ServiceTitle     string `json:"serviceTitle"`
	ServiceQuantity  int    `json:"serviceQuantity"`
	ServiceBasePrice int64  `json:"serviceBasePrice"`
	TierDiscount     int64  `json:"tierDiscount"`
}

// OptionLineResponse строка опции бронирования
type OptionLineResponse struct {
	OptionID       int64  `json:"optionId"`
	OptionTitle    string `json:"optionTitle"`
	OptionPrice    int64  `json:"optionPrice"`
	OptionQuantity int    `json:"optionQuantity"`
}

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID             int64  `json:"id"`
	OrganizationID int64  `json:"organizationId"`
	CustomerID     int64  `json:"customerId"`
	Date           string `json:"date"` // "2026-03-10"
	Time           string `json:"time"` // "10:00"
	Status         string `json:"status"`
	PaymentStatus  string `json:"paymentStatus"`

	// Зафиксированная разбивка цены
	TotalPrice   int64 `json:"totalPrice"`
	TierDiscount int64 `json:"tierDiscount"`
	SetDiscount  int64 `json:"setDiscount"`

	// Денормализованные данные
	ServiceSummary string                `json:"serviceSummary"`
	OptionsSummary []string              `json:"optionsSummary,omitempty"`
	Services       []ServiceLineResponse `json:"services,omitempty"`
	Options        []OptionLineResponse  `json:"options,omitempty"`

	DiagnosisHasParking bool    `json:"diagnosisHasParking"`
	DiagnosisNotes      *string `json:"diagnosisNotes,omitempty"`

	PaymentDueAt *string `json:"paymentDueAt,omitempty"` // ISO 8601 format

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                  b.ID,
		OrganizationID:      b.OrganizationID,
		CustomerID:          b.CustomerID,
		Date:                b.SelectedDate.Format(domain.DateFormat),
		Time:                b.SelectedTime.String(),
		Status:              string(b.Status),
		PaymentStatus:       string(b.PaymentStatus),
		TotalPrice:          b.TotalPrice,
		TierDiscount:        b.TierDiscount,
		SetDiscount:         b.SetDiscount,
		ServiceSummary:      b.ServiceSummary,
		OptionsSummary:      b.OptionsSummary,
		DiagnosisHasParking: b.DiagnosisHasParking,
		DiagnosisNotes:      b.DiagnosisNotes,
		CancellationReason:  b.CancellationReason,
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
	}

	// Конвертируем временные метки в строки ISO 8601
	if b.PaymentDueAt != nil {
		dueStr := b.PaymentDueAt.Format(time.RFC3339)
		resp.PaymentDueAt = &dueStr
	}
	if b.CancelledAt != nil {
		cancelledStr := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}
	for _, b := range bookings {
		resp.Bookings = append(resp.Bookings, *FromDomainBooking(b))
	}
	return resp
}

// FromDomainServiceLines конвертирует строки услуг в DTO
func FromDomainServiceLines(lines []domain.BookingServiceLine) []ServiceLineResponse {
	out := make([]ServiceLineResponse, 0, len(lines))
	for _, line := range lines {
		out = append(out, ServiceLineResponse{
			ServiceID:        line.ServiceID,
			ServiceTitle:     line.ServiceTitle,
			ServiceQuantity:  line.ServiceQuantity,
			ServiceBasePrice: line.ServiceBasePrice,
			TierDiscount:     line.TierDiscount,
		})
	}
	return out
}

// FromDomainOptionLines конвертирует строки опций в DTO
func FromDomainOptionLines(lines []domain.BookingOptionLine) []OptionLineResponse {
	out := make([]OptionLineResponse, 0, len(lines))
	for _, line := range lines {
		out = append(out, OptionLineResponse{
			OptionID:       line.OptionID,
			OptionTitle:    line.OptionTitle,
			OptionPrice:    line.OptionPrice,
			OptionQuantity: line.OptionQuantity,
		})
	}
	return out
}

// ToDomainBookingStatus конвертирует строку в domain статус
func ToDomainBookingStatus(s string) (domain.BookingStatus, error) {
	switch domain.BookingStatus(s) {
	case domain.StatusPending,
		domain.StatusAwaitingPayment,
		domain.StatusConfirmed,
		domain.StatusCompleted,
		domain.StatusCancelled:
		return domain.BookingStatus(s), nil
	default:
		return "", ErrInvalidStatus
	}
}
