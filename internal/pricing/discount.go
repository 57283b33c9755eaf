// Package pricing содержит чистые функции расчета стоимости бронирования:
// количественные скидки, сет-скидки и полный пересчет итоговой суммы.
package pricing

import (
	"math"

	"github.com/m04kA/HCS-BookingService/internal/domain"
)

// CalculateDiscount вычисляет количественную скидку для услуги
// Из всех подходящих уровней (minQuantity <= quantity) выбирается уровень
// с НАИБОЛЬШЕЙ ставкой, а не с наибольшим minQuantity - политика
// "максимальная выгода клиенту". При равных ставках берется первый
// встреченный уровень (детерминированно).
//
// Округление всегда вниз (floor): клиент никогда не получает скидку
// больше, чем дает ставка.
func CalculateDiscount(basePrice int64, quantity int, tiers []domain.QuantityDiscount) (discount int64, rate float64) {
	if basePrice <= 0 || quantity <= 0 || len(tiers) == 0 {
		return 0, 0
	}

	best := -1
	for i, tier := range tiers {
		if quantity < tier.MinQuantity {
			continue
		}
		if best == -1 || tier.DiscountRate > tiers[best].DiscountRate {
			best = i
		}
	}

	if best == -1 {
		return 0, 0
	}

	rate = tiers[best].DiscountRate
	discount = int64(math.Floor(float64(basePrice) * float64(quantity) * rate))
	return discount, rate
}

// NextTier подсказка о следующем доступном уровне скидки (для upsell блока)
type NextTier struct {
	Remaining int     // сколько еще нужно добавить к количеству
	Rate      float64 // ставка следующего уровня
	Savings   int64   // экономия при достижении уровня
}

// NextDiscountTier возвращает ближайший еще не достигнутый уровень скидки
// или nil, если уровней нет или все уже достигнуты
func NextDiscountTier(basePrice int64, quantity int, tiers []domain.QuantityDiscount) *NextTier {
	if len(tiers) == 0 {
		return nil
	}

	// Ищем уровень с минимальным minQuantity среди не достигнутых
	var next *domain.QuantityDiscount
	for i := range tiers {
		tier := &tiers[i]
		if quantity >= tier.MinQuantity {
			continue
		}
		if next == nil || tier.MinQuantity < next.MinQuantity {
			next = tier
		}
	}

	if next == nil {
		return nil
	}

	return &NextTier{
		Remaining: next.MinQuantity - quantity,
		Rate:      next.DiscountRate,
		Savings:   int64(math.Floor(float64(basePrice) * float64(next.MinQuantity) * next.DiscountRate)),
	}
}
