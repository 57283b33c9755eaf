package create_booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/HCS-BookingService/internal/domain"
	"github.com/m04kA/HCS-BookingService/internal/pricing"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.OrganizationID <= 0 {
		return fmt.Errorf("%w: organizationID must be positive", ErrInvalidInput)
	}

	if len(req.Services) == 0 {
		return fmt.Errorf("%w: at least one service is required", ErrInvalidInput)
	}

	seenServices := make(map[int64]struct{}, len(req.Services))
	for _, sel := range req.Services {
		if sel.ServiceID <= 0 {
			return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
		}
		if sel.Quantity <= 0 || sel.Quantity > domain.MaxServiceQuantity {
			return fmt.Errorf("%w: service quantity must be between 1 and %d", ErrInvalidInput, domain.MaxServiceQuantity)
		}
		// Количество задается одной строкой на услугу
		if _, ok := seenServices[sel.ServiceID]; ok {
			return fmt.Errorf("%w: duplicate serviceID=%d", ErrInvalidInput, sel.ServiceID)
		}
		seenServices[sel.ServiceID] = struct{}{}
	}

	seenOptions := make(map[int64]struct{}, len(req.Options))
	for _, sel := range req.Options {
		if sel.OptionID <= 0 {
			return fmt.Errorf("%w: optionID must be positive", ErrInvalidInput)
		}
		if sel.Quantity <= 0 || sel.Quantity > domain.MaxOptionQuantity {
			return fmt.Errorf("%w: option quantity must be between 1 and %d", ErrInvalidInput, domain.MaxOptionQuantity)
		}
		if _, ok := seenOptions[sel.OptionID]; ok {
			return fmt.Errorf("%w: duplicate optionID=%d", ErrInvalidInput, sel.OptionID)
		}
		seenOptions[sel.OptionID] = struct{}{}
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.Time.IsZero() {
		return fmt.Errorf("%w: time is required", ErrInvalidInput)
	}

	if err := req.Time.Validate(); err != nil {
		return fmt.Errorf("%w: invalid time format: %v", ErrInvalidInput, err)
	}

	if req.Customer.Name == "" {
		return fmt.Errorf("%w: customer name is required", ErrInvalidInput)
	}

	if req.ExpectedPrice < 0 {
		return fmt.Errorf("%w: expected price must not be negative", ErrInvalidInput)
	}

	return nil
}

// validateDate проверяет, что дата не в прошлом
func validateDate(bookingDate, now time.Time) error {
	dateOnly := time.Date(bookingDate.Year(), bookingDate.Month(), bookingDate.Day(), 0, 0, 0, 0, bookingDate.Location())
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if dateOnly.Before(nowOnly) {
		return ErrInvalidDate
	}
	return nil
}

// resolveSelections сверяет выбор клиента с каталогом организации
// Возвращает пары (услуга, количество) и (опция, количество) для пересчета цены
func resolveSelections(
	req *Request,
	services []domain.Service,
	options []domain.ServiceOption,
) ([]pricing.SelectedService, []pricing.SelectedOption, error) {
	serviceByID := make(map[int64]domain.Service, len(services))
	for _, svc := range services {
		serviceByID[svc.ID] = svc
	}

	selectedServiceIDs := make(map[int64]struct{}, len(req.Services))
	selectedServices := make([]pricing.SelectedService, 0, len(req.Services))
	for _, sel := range req.Services {
		svc, ok := serviceByID[sel.ServiceID]
		if !ok {
			return nil, nil, fmt.Errorf("%w: id=%d", ErrServiceNotFound, sel.ServiceID)
		}
		selectedServiceIDs[sel.ServiceID] = struct{}{}
		selectedServices = append(selectedServices, pricing.SelectedService{Service: svc, Quantity: sel.Quantity})
	}

	optionByID := make(map[int64]domain.ServiceOption, len(options))
	for _, opt := range options {
		optionByID[opt.ID] = opt
	}

	selectedOptions := make([]pricing.SelectedOption, 0, len(req.Options))
	for _, sel := range req.Options {
		opt, ok := optionByID[sel.OptionID]
		if !ok {
			return nil, nil, fmt.Errorf("%w: id=%d", ErrOptionNotFound, sel.OptionID)
		}
		if _, ok := selectedServiceIDs[opt.ServiceID]; !ok {
			return nil, nil, fmt.Errorf("%w: option id=%d requires service id=%d", ErrOptionWithoutService, opt.ID, opt.ServiceID)
		}
		selectedOptions = append(selectedOptions, pricing.SelectedOption{Option: opt, Quantity: sel.Quantity})
	}

	return selectedServices, selectedOptions, nil
}

// buildSummaries собирает денормализованные строки для истории бронирования
func buildSummaries(services []pricing.SelectedService, options []pricing.SelectedOption) (string, []string) {
	serviceTitles := make([]string, 0, len(services))
	for _, sel := range services {
		if sel.Quantity > 1 {
			serviceTitles = append(serviceTitles, fmt.Sprintf("%s x%d", sel.Service.Title, sel.Quantity))
		} else {
			serviceTitles = append(serviceTitles, sel.Service.Title)
		}
	}

	optionTitles := make([]string, 0, len(options))
	for _, sel := range options {
		if sel.Quantity > 1 {
			optionTitles = append(optionTitles, fmt.Sprintf("%s x%d", sel.Option.Title, sel.Quantity))
		} else {
			optionTitles = append(optionTitles, sel.Option.Title)
		}
	}

	return strings.Join(serviceTitles, ", "), optionTitles
}

// buildServiceLines строит строки услуг с зафиксированными ценами
func buildServiceLines(services []pricing.SelectedService) []domain.BookingServiceLine {
	lines := make([]domain.BookingServiceLine, 0, len(services))
	for _, sel := range services {
		discount, _ := pricing.CalculateDiscount(sel.Service.BasePrice, sel.Quantity, sel.Service.QuantityDiscounts)
		lines = append(lines, domain.BookingServiceLine{
			ServiceID:        sel.Service.ID,
			ServiceTitle:     sel.Service.Title,
			ServiceQuantity:  sel.Quantity,
			ServiceBasePrice: sel.Service.BasePrice,
			TierDiscount:     discount,
		})
	}
	return lines
}

// buildOptionLines строит строки опций с зафиксированными ценами
func buildOptionLines(options []pricing.SelectedOption) []domain.BookingOptionLine {
	lines := make([]domain.BookingOptionLine, 0, len(options))
	for _, sel := range options {
		lines = append(lines, domain.BookingOptionLine{
			OptionID:       sel.Option.ID,
			OptionTitle:    sel.Option.Title,
			OptionPrice:    sel.Option.Price,
			OptionQuantity: sel.Quantity,
		})
	}
	return lines
}
