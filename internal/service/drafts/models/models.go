package models

import (
	"time"

	"github.com/m04kA/HCS-BookingService/internal/domain"
	"github.com/m04kA/HCS-BookingService/internal/draft"
)

// StartDraftRequest модель запроса на создание черновика
type StartDraftRequest struct {
	OrganizationID int64 `json:"organizationId"`
}

// ServiceQuantity выбор услуги с количеством (quantity = 0 убирает услугу)
type ServiceQuantity struct {
	ServiceID int64 `json:"serviceId"`
	Quantity  int   `json:"quantity"`
}

// OptionQuantity выбор опции с количеством (quantity = 0 убирает опцию)
type OptionQuantity struct {
	OptionID int64 `json:"optionId"`
	Quantity int   `json:"quantity"`
}

// DiagnosisInput данные шага предварительной диагностики
type DiagnosisInput struct {
	HasParking bool    `json:"hasParking"`
	Notes      *string `json:"notes,omitempty"`
}

// CustomerInput данные шага контактной информации
type CustomerInput struct {
	Name            string  `json:"name"`
	Email           *string `json:"email,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	LineUserID      *string `json:"lineUserId,omitempty"`
	AvatarURL       *string `json:"avatarUrl,omitempty"`
	PostalCode      *string `json:"postalCode,omitempty"`
	Address         *string `json:"address,omitempty"`
	AddressBuilding *string `json:"addressBuilding,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

// ApplyStepRequest модель запроса на изменение текущего шага черновика.
// Заполняются только поля, относящиеся к текущему шагу. Признак advance
// управляет переходом к следующему шагу после применения изменений.
type ApplyStepRequest struct {
	Services  []ServiceQuantity `json:"services,omitempty"`
	Options   []OptionQuantity  `json:"options,omitempty"`
	Date      *string           `json:"date,omitempty"` // YYYY-MM-DD
	Time      *string           `json:"time,omitempty"` // HH:MM
	Diagnosis *DiagnosisInput   `json:"diagnosis,omitempty"`
	Customer  *CustomerInput    `json:"customer,omitempty"`
	Advance   bool              `json:"advance"`
}

// SubmitDraftRequest модель запроса на подтверждение черновика
type SubmitDraftRequest struct {
	ExpectedTotalPrice int64 `json:"expectedTotalPrice"`
	PayOnline          bool  `json:"payOnline"`
}

// CatalogServiceResponse услуга каталога в ответе черновика
type CatalogServiceResponse struct {
	ID                int64                      `json:"id"`
	Title             string                     `json:"title"`
	Description       string                     `json:"description,omitempty"`
	BasePrice         int64                      `json:"basePrice"`
	DurationMinutes   int                        `json:"durationMinutes"`
	Category          string                     `json:"category,omitempty"`
	QuantityDiscounts []QuantityDiscountResponse `json:"quantityDiscounts,omitempty"`
}

// QuantityDiscountResponse ступень количественной скидки
type QuantityDiscountResponse struct {
	MinQuantity  int     `json:"minQuantity"`
	DiscountRate float64 `json:"discountRate"`
}

// CatalogOptionResponse опция услуги в ответе черновика
type CatalogOptionResponse struct {
	ID          int64   `json:"id"`
	ServiceID   int64   `json:"serviceId"`
	Title       string  `json:"title"`
	Price       int64   `json:"price"`
	Description *string `json:"description,omitempty"`
}

// AppliedSetDiscountResponse сработавшая сет-скидка
type AppliedSetDiscountResponse struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	DiscountAmount int64   `json:"discountAmount"`
	DiscountRate   float64 `json:"discountRate"`
}

// QuoteResponse расчет стоимости черновика
type QuoteResponse struct {
	TotalPrice          int64                        `json:"totalPrice"`
	TierDiscount        int64                        `json:"tierDiscount"`
	SetDiscountTotal    int64                        `json:"setDiscountTotal"`
	OptionsTotal        int64                        `json:"optionsTotal"`
	TotalDiscount       int64                        `json:"totalDiscount"`
	AppliedSetDiscounts []AppliedSetDiscountResponse `json:"appliedSetDiscounts,omitempty"`
}

// SetSuggestionResponse подсказка "добавьте еще одну услугу для сет-скидки"
type SetSuggestionResponse struct {
	MissingServiceID int64   `json:"missingServiceId"`
	RuleID           string  `json:"ruleId"`
	RuleTitle        string  `json:"ruleTitle"`
	DiscountRate     float64 `json:"discountRate"`
}

// TierSuggestionResponse подсказка "добавьте еще N штук для скидки"
type TierSuggestionResponse struct {
	ServiceID int64   `json:"serviceId"`
	Remaining int     `json:"remaining"`
	Rate      float64 `json:"rate"`
	Savings   int64   `json:"savings"`
}

// DraftResponse полное состояние черновика для клиента
type DraftResponse struct {
	ID             string `json:"id"`
	OrganizationID int64  `json:"organizationId"`
	Step           string `json:"step"`

	Services []CatalogServiceResponse `json:"services"`
	Options  []CatalogOptionResponse  `json:"options"`

	ServiceSelections []ServiceQuantity `json:"serviceSelections"`
	OptionSelections  []OptionQuantity  `json:"optionSelections"`

	Date      *string         `json:"date,omitempty"`
	Time      *string         `json:"time,omitempty"`
	Diagnosis *DiagnosisInput `json:"diagnosis,omitempty"`
	Customer  *CustomerInput  `json:"customer,omitempty"`

	Quote            QuoteResponse            `json:"quote"`
	UpsellCandidates []CatalogOptionResponse  `json:"upsellCandidates,omitempty"`
	SetSuggestions   []SetSuggestionResponse  `json:"setSuggestions,omitempty"`
	TierSuggestions  []TierSuggestionResponse `json:"tierSuggestions,omitempty"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// SubmitDraftResponse модель ответа на подтверждение черновика
type SubmitDraftResponse struct {
	BookingID     int64   `json:"bookingId"`
	CustomerID    int64   `json:"customerId"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"paymentStatus"`
	TotalPrice    int64   `json:"totalPrice"`
	PaymentDueAt  *string `json:"paymentDueAt,omitempty"`
}

// FromDraft преобразует доменный черновик в модель ответа
func FromDraft(d *draft.Draft) *DraftResponse {
	resp := &DraftResponse{
		ID:                d.ID,
		OrganizationID:    d.OrganizationID,
		Step:              d.Step.String(),
		Services:          fromDomainServices(d.Services),
		Options:           fromDomainOptions(d.Options),
		ServiceSelections: fromServiceSelections(d.ServiceSelections),
		OptionSelections:  fromOptionSelections(d.OptionSelections),
		Date:              d.Date,
		Quote:             fromQuote(d),
		UpsellCandidates:  fromDomainOptions(d.UpsellCandidates()),
		SetSuggestions:    fromSetSuggestions(d),
		TierSuggestions:   fromTierSuggestions(d),
		CreatedAt:         d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         d.UpdatedAt.Format(time.RFC3339),
	}

	if d.Time != nil {
		t := string(*d.Time)
		resp.Time = &t
	}
	if d.Diagnosis != nil {
		resp.Diagnosis = &DiagnosisInput{
			HasParking: d.Diagnosis.HasParking,
			Notes:      d.Diagnosis.Notes,
		}
	}
	if d.Customer != nil {
		resp.Customer = &CustomerInput{
			Name:            d.Customer.Name,
			Email:           d.Customer.Email,
			Phone:           d.Customer.Phone,
			LineUserID:      d.Customer.LineUserID,
			AvatarURL:       d.Customer.AvatarURL,
			PostalCode:      d.Customer.PostalCode,
			Address:         d.Customer.Address,
			AddressBuilding: d.Customer.AddressBuilding,
			Notes:           d.Customer.Notes,
		}
	}

	return resp
}

// ToCustomerInfo преобразует входные контактные данные в доменную модель
func (c CustomerInput) ToCustomerInfo() draft.CustomerInfo {
	return draft.CustomerInfo{
		Name:            c.Name,
		Email:           c.Email,
		Phone:           c.Phone,
		LineUserID:      c.LineUserID,
		AvatarURL:       c.AvatarURL,
		PostalCode:      c.PostalCode,
		Address:         c.Address,
		AddressBuilding: c.AddressBuilding,
		Notes:           c.Notes,
	}
}

func fromDomainServices(services []domain.Service) []CatalogServiceResponse {
	result := make([]CatalogServiceResponse, 0, len(services))
	for _, svc := range services {
		tiers := make([]QuantityDiscountResponse, 0, len(svc.QuantityDiscounts))
		for _, tier := range svc.QuantityDiscounts {
			tiers = append(tiers, QuantityDiscountResponse{
				MinQuantity:  tier.MinQuantity,
				DiscountRate: tier.DiscountRate,
			})
		}
		result = append(result, CatalogServiceResponse{
			ID:                svc.ID,
			Title:             svc.Title,
			Description:       svc.Description,
			BasePrice:         svc.BasePrice,
			DurationMinutes:   svc.DurationMinutes,
			Category:          svc.Category,
			QuantityDiscounts: tiers,
		})
	}
	return result
}

func fromDomainOptions(options []domain.ServiceOption) []CatalogOptionResponse {
	result := make([]CatalogOptionResponse, 0, len(options))
	for _, opt := range options {
		result = append(result, CatalogOptionResponse{
			ID:          opt.ID,
			ServiceID:   opt.ServiceID,
			Title:       opt.Title,
			Price:       opt.Price,
			Description: opt.Description,
		})
	}
	return result
}

func fromServiceSelections(selections []draft.ServiceSelection) []ServiceQuantity {
	result := make([]ServiceQuantity, 0, len(selections))
	for _, sel := range selections {
		result = append(result, ServiceQuantity{ServiceID: sel.ServiceID, Quantity: sel.Quantity})
	}
	return result
}

func fromOptionSelections(selections []draft.OptionSelection) []OptionQuantity {
	result := make([]OptionQuantity, 0, len(selections))
	for _, sel := range selections {
		result = append(result, OptionQuantity{OptionID: sel.OptionID, Quantity: sel.Quantity})
	}
	return result
}

func fromQuote(d *draft.Draft) QuoteResponse {
	applied := make([]AppliedSetDiscountResponse, 0, len(d.Quote.AppliedSetDiscounts))
	for _, a := range d.Quote.AppliedSetDiscounts {
		applied = append(applied, AppliedSetDiscountResponse{
			ID:             a.ID,
			Title:          a.Title,
			DiscountAmount: a.DiscountAmount,
			DiscountRate:   a.DiscountRate,
		})
	}
	return QuoteResponse{
		TotalPrice:          d.Quote.TotalPrice,
		TierDiscount:        d.Quote.TierDiscount,
		SetDiscountTotal:    d.Quote.SetDiscountTotal,
		OptionsTotal:        d.Quote.OptionsTotal,
		TotalDiscount:       d.Quote.TotalDiscount(),
		AppliedSetDiscounts: applied,
	}
}

func fromTierSuggestions(d *draft.Draft) []TierSuggestionResponse {
	suggestions := d.TierSuggestions()
	result := make([]TierSuggestionResponse, 0, len(suggestions))
	for _, s := range suggestions {
		result = append(result, TierSuggestionResponse{
			ServiceID: s.ServiceID,
			Remaining: s.Remaining,
			Rate:      s.Rate,
			Savings:   s.Savings,
		})
	}
	return result
}

func fromSetSuggestions(d *draft.Draft) []SetSuggestionResponse {
	suggestions := d.SetSuggestions()
	result := make([]SetSuggestionResponse, 0, len(suggestions))
	for _, s := range suggestions {
		result = append(result, SetSuggestionResponse{
			MissingServiceID: s.MissingServiceID,
			RuleID:           s.Rule.ID,
			RuleTitle:        s.Rule.Title,
			DiscountRate:     s.Rule.DiscountRate,
		})
	}
	return result
}
