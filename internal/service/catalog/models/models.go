package models

import "github.com/m04kA/HCS-BookingService/internal/domain"

// QuantityDiscountResponse ступень количественной скидки
type QuantityDiscountResponse struct {
	MinQuantity  int     `json:"minQuantity"`
	DiscountRate float64 `json:"discountRate"`
}

// OptionResponse опция услуги
type OptionResponse struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Price       int64   `json:"price"`
	Description *string `json:"description,omitempty"`
}

// ServiceResponse услуга каталога вместе со своими опциями
type ServiceResponse struct {
	ID                int64                      `json:"id"`
	Title             string                     `json:"title"`
	Description       string                     `json:"description,omitempty"`
	BasePrice         int64                      `json:"basePrice"`
	DurationMinutes   int                        `json:"durationMinutes"`
	Category          string                     `json:"category,omitempty"`
	QuantityDiscounts []QuantityDiscountResponse `json:"quantityDiscounts,omitempty"`
	Options           []OptionResponse           `json:"options,omitempty"`
}

// SetDiscountResponse правило сет-скидки организации
type SetDiscountResponse struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Description  *string `json:"description,omitempty"`
	DiscountRate float64 `json:"discountRate"`
	ServiceIDs   []int64 `json:"serviceIds"`
}

// CatalogResponse каталог организации для мастера бронирования
type CatalogResponse struct {
	OrganizationID int64                 `json:"organizationId"`
	Services       []ServiceResponse     `json:"services"`
	SetDiscounts   []SetDiscountResponse `json:"setDiscounts,omitempty"`
}

// FromDomain собирает каталог организации, раскладывая опции по услугам
func FromDomain(org *domain.Organization, services []domain.Service, options []domain.ServiceOption) *CatalogResponse {
	optionsByService := make(map[int64][]OptionResponse, len(services))
	for _, opt := range options {
		optionsByService[opt.ServiceID] = append(optionsByService[opt.ServiceID], OptionResponse{
			ID:          opt.ID,
			Title:       opt.Title,
			Price:       opt.Price,
			Description: opt.Description,
		})
	}

	result := &CatalogResponse{
		OrganizationID: org.ID,
		Services:       make([]ServiceResponse, 0, len(services)),
		SetDiscounts:   make([]SetDiscountResponse, 0, len(org.SetDiscounts)),
	}

	for _, svc := range services {
		tiers := make([]QuantityDiscountResponse, 0, len(svc.QuantityDiscounts))
		for _, tier := range svc.QuantityDiscounts {
			tiers = append(tiers, QuantityDiscountResponse{
				MinQuantity:  tier.MinQuantity,
				DiscountRate: tier.DiscountRate,
			})
		}
		result.Services = append(result.Services, ServiceResponse{
			ID:                svc.ID,
			Title:             svc.Title,
			Description:       svc.Description,
			BasePrice:         svc.BasePrice,
			DurationMinutes:   svc.DurationMinutes,
			Category:          svc.Category,
			QuantityDiscounts: tiers,
			Options:           optionsByService[svc.ID],
		})
	}

	for _, rule := range org.SetDiscounts {
		result.SetDiscounts = append(result.SetDiscounts, SetDiscountResponse{
			ID:           rule.ID,
			Title:        rule.Title,
			Description:  rule.Description,
			DiscountRate: rule.DiscountRate,
			ServiceIDs:   rule.ServiceIDs,
		})
	}

	return result
}
