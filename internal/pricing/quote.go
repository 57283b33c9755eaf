package pricing

import "github.com/m04kA/HCS-BookingService/internal/domain"

// SelectedService выбранная услуга с количеством
type SelectedService struct {
	Service  domain.Service
	Quantity int
}

// SelectedOption выбранная опция с количеством
type SelectedOption struct {
	Option   domain.ServiceOption
	Quantity int
}

// Quote полный результат пересчета стоимости черновика
type Quote struct {
	TotalPrice          int64
	TierDiscount        int64
	SetDiscountTotal    int64
	OptionsTotal        int64
	AppliedSetDiscounts []domain.AppliedSetDiscount
}

// TotalDiscount возвращает суммарную скидку (количественная + сет)
func (q Quote) TotalDiscount() int64 {
	return q.TierDiscount + q.SetDiscountTotal
}

// Calculate пересчитывает стоимость черновика С НУЛЯ:
//
//	total = Σ(basePrice*qty - tierDiscount) - setDiscount + Σ(optionPrice*optionQty)
//
// Никаких инкрементальных накопителей - любое изменение выбора приводит
// к полному пересчету, чтобы исключить расхождение частичных обновлений.
func Calculate(services []SelectedService, options []SelectedOption, rules []domain.SetDiscountRule) Quote {
	var quote Quote

	subtotals := make([]ServiceSubtotal, 0, len(services))
	for _, sel := range services {
		baseTotal := sel.Service.BasePrice * int64(sel.Quantity)
		discount, _ := CalculateDiscount(sel.Service.BasePrice, sel.Quantity, sel.Service.QuantityDiscounts)

		subtotal := baseTotal - discount
		quote.TotalPrice += subtotal
		quote.TierDiscount += discount

		subtotals = append(subtotals, ServiceSubtotal{
			ServiceID: sel.Service.ID,
			Subtotal:  subtotal,
		})
	}

	for _, sel := range options {
		optionTotal := sel.Option.Price * int64(sel.Quantity)
		quote.OptionsTotal += optionTotal
		quote.TotalPrice += optionTotal
	}

	setTotal, applied := CalculateSetDiscount(subtotals, rules)
	quote.SetDiscountTotal = setTotal
	quote.AppliedSetDiscounts = applied
	quote.TotalPrice -= setTotal

	return quote
}
