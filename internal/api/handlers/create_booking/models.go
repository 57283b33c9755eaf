package create_booking

import (
	"time"

	"github.com/m04kA/HCS-BookingService/internal/domain"
	createBooking "github.com/m04kA/HCS-BookingService/internal/usecase/create_booking"
	"github.com/m04kA/HCS-BookingService/pkg/types"
)

// ServiceSelection выбранная услуга в HTTP запросе
type ServiceSelection struct {
	ServiceID int64 `json:"serviceId"`
	Quantity  int   `json:"quantity"`
}

// OptionSelection выбранная опция в HTTP запросе
type OptionSelection struct {
	OptionID int64 `json:"optionId"`
	Quantity int   `json:"quantity"`
}

// CustomerInfo контактные данные клиента в HTTP запросе
type CustomerInfo struct {
	Name            string  `json:"name"`
	Email           *string `json:"email,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	LineUserID      *string `json:"lineUserId,omitempty"`
	AvatarURL       *string `json:"avatarUrl,omitempty"`
	PostalCode      *string `json:"postalCode,omitempty"`
	Address         *string `json:"address,omitempty"`
	AddressBuilding *string `json:"addressBuilding,omitempty"`
}

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	OrganizationID int64              `json:"organizationId"`
	Services       []ServiceSelection `json:"services"`
	Options        []OptionSelection  `json:"options,omitempty"`
	Date           string             `json:"date"` // "2026-04-01"
	Time           string             `json:"time"` // "10:00"
	Customer       CustomerInfo       `json:"customer"`
	HasParking     bool               `json:"hasParking"`
	DiagnosisNotes *string            `json:"diagnosisNotes,omitempty"`
	ExpectedPrice  int64              `json:"expectedPrice"`
	PayOnline      bool               `json:"payOnline"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID             int64    `json:"id"`
	OrganizationID int64    `json:"organizationId"`
	CustomerID     int64    `json:"customerId"`
	Date           string   `json:"date"`
	Time           string   `json:"time"`
	Status         string   `json:"status"`
	PaymentStatus  string   `json:"paymentStatus"`
	TotalPrice     int64    `json:"totalPrice"`
	TierDiscount   int64    `json:"tierDiscount"`
	SetDiscount    int64    `json:"setDiscount"`
	ServiceSummary string   `json:"serviceSummary"`
	OptionsSummary []string `json:"optionsSummary,omitempty"`
	PaymentDueAt   *string  `json:"paymentDueAt,omitempty"`
	CreatedAt      string   `json:"createdAt"`
	UpdatedAt      string   `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest() (*createBooking.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	slot := types.TimeString(r.Time)
	if err := slot.Validate(); err != nil {
		return nil, err
	}

	services := make([]createBooking.ServiceSelection, 0, len(r.Services))
	for _, sel := range r.Services {
		services = append(services, createBooking.ServiceSelection{
			ServiceID: sel.ServiceID,
			Quantity:  sel.Quantity,
		})
	}

	options := make([]createBooking.OptionSelection, 0, len(r.Options))
	for _, sel := range r.Options {
		options = append(options, createBooking.OptionSelection{
			OptionID: sel.OptionID,
			Quantity: sel.Quantity,
		})
	}

	return &createBooking.Request{
		OrganizationID: r.OrganizationID,
		Services:       services,
		Options:        options,
		Date:           date,
		Time:           slot,
		Customer: domain.CustomerIdentity{
			OrganizationID:  r.OrganizationID,
			Name:            r.Customer.Name,
			Email:           r.Customer.Email,
			Phone:           r.Customer.Phone,
			LineUserID:      r.Customer.LineUserID,
			AvatarURL:       r.Customer.AvatarURL,
			PostalCode:      r.Customer.PostalCode,
			Address:         r.Customer.Address,
			AddressBuilding: r.Customer.AddressBuilding,
		},
		HasParking:     r.HasParking,
		DiagnosisNotes: r.DiagnosisNotes,
		ExpectedPrice:  r.ExpectedPrice,
		PayOnline:      r.PayOnline,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	result := &BookingResponse{
		ID:             resp.ID,
		OrganizationID: resp.OrganizationID,
		CustomerID:     resp.CustomerID,
		Date:           resp.Date.Format(domain.DateFormat),
		Time:           resp.Time.String(),
		Status:         resp.Status,
		PaymentStatus:  resp.PaymentStatus,
		TotalPrice:     resp.TotalPrice,
		TierDiscount:   resp.TierDiscount,
		SetDiscount:    resp.SetDiscount,
		ServiceSummary: resp.ServiceSummary,
		OptionsSummary: resp.OptionsSummary,
		CreatedAt:      resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      resp.UpdatedAt.Format(time.RFC3339),
	}

	if resp.PaymentDueAt != nil {
		due := resp.PaymentDueAt.Format(time.RFC3339)
		result.PaymentDueAt = &due
	}

	return result
}
