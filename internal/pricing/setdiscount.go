package pricing

import (
	"math"

	"github.com/m04kA/HCS-BookingService/internal/domain"
)

// ServiceSubtotal промежуточная сумма по услуге после количественной скидки
// Используется как база для расчета сет-скидок
type ServiceSubtotal struct {
	ServiceID int64
	Subtotal  int64
}

// CalculateSetDiscount применяет сет-скидки к промежуточным суммам услуг
// Правило срабатывает, только когда выбраны ВСЕ услуги из его списка;
// скидка = floor(ставка * сумма subtotal участвующих услуг).
// Результат пересчитывается заново при каждом вызове и нигде не хранится.
func CalculateSetDiscount(subtotals []ServiceSubtotal, rules []domain.SetDiscountRule) (int64, []domain.AppliedSetDiscount) {
	if len(subtotals) == 0 || len(rules) == 0 {
		return 0, nil
	}

	byService := make(map[int64]int64, len(subtotals))
	for _, s := range subtotals {
		byService[s.ServiceID] = s.Subtotal
	}

	var total int64
	var applied []domain.AppliedSetDiscount

	for _, rule := range rules {
		// Некорректно настроенные правила (меньше двух услуг) игнорируем
		if len(rule.ServiceIDs) < domain.MinSetDiscountServices {
			continue
		}

		var base int64
		matched := true
		for _, id := range rule.ServiceIDs {
			subtotal, ok := byService[id]
			if !ok {
				matched = false
				break
			}
			base += subtotal
		}
		if !matched {
			continue
		}

		amount := int64(math.Floor(float64(base) * rule.DiscountRate))
		if amount <= 0 {
			continue
		}

		total += amount
		applied = append(applied, domain.AppliedSetDiscount{
			ID:             rule.ID,
			Title:          rule.Title,
			DiscountAmount: amount,
			DiscountRate:   rule.DiscountRate,
		})
	}

	return total, applied
}

// SetSuggestion подсказка: какую услугу добавить, чтобы сработала сет-скидка
type SetSuggestion struct {
	MissingServiceID int64
	Rule             domain.SetDiscountRule
}

// SuggestedSetServices возвращает правила, до срабатывания которых не хватает
// ровно одной услуги - кандидаты для upsell блока
func SuggestedSetServices(selectedServiceIDs []int64, rules []domain.SetDiscountRule) []SetSuggestion {
	selected := make(map[int64]struct{}, len(selectedServiceIDs))
	for _, id := range selectedServiceIDs {
		selected[id] = struct{}{}
	}

	var suggestions []SetSuggestion
	for _, rule := range rules {
		if len(rule.ServiceIDs) < domain.MinSetDiscountServices {
			continue
		}

		var missing []int64
		for _, id := range rule.ServiceIDs {
			if _, ok := selected[id]; !ok {
				missing = append(missing, id)
			}
		}

		if len(missing) == 1 {
			suggestions = append(suggestions, SetSuggestion{
				MissingServiceID: missing[0],
				Rule:             rule,
			})
		}
	}

	return suggestions
}
