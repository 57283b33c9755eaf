package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/HCS-BookingService/internal/domain"
)

func TestCalculateDiscount_NoTiers(t *testing.T) {
	discount, rate := CalculateDiscount(10000, 1, nil)
	assert.Equal(t, int64(0), discount)
	assert.Equal(t, 0.0, rate)
}

func TestCalculateDiscount_NoQualifyingTier(t *testing.T) {
	tiers := []domain.QuantityDiscount{
		{MinQuantity: 3, DiscountRate: 0.1},
	}

	discount, rate := CalculateDiscount(10000, 2, tiers)
	assert.Equal(t, int64(0), discount)
	assert.Equal(t, 0.0, rate)
}

func TestCalculateDiscount_HighestRateWins(t *testing.T) {
	// Оба уровня подходят при quantity=5; побеждает ставка 0.15, а не больший minQuantity
	tiers := []domain.QuantityDiscount{
		{MinQuantity: 2, DiscountRate: 0.1},
		{MinQuantity: 5, DiscountRate: 0.15},
	}

	discount, rate := CalculateDiscount(10000, 5, tiers)
	assert.Equal(t, int64(7500), discount) // floor(10000*5*0.15)
	assert.Equal(t, 0.15, rate)
}

func TestCalculateDiscount_HighestRateWinsRegardlessOfOrder(t *testing.T) {
	// Порядок уровней не влияет на результат
	tiers := []domain.QuantityDiscount{
		{MinQuantity: 5, DiscountRate: 0.15},
		{MinQuantity: 2, DiscountRate: 0.2},
	}

	discount, rate := CalculateDiscount(10000, 5, tiers)
	assert.Equal(t, int64(10000), discount)
	assert.Equal(t, 0.2, rate)
}

func TestCalculateDiscount_FloorRounding(t *testing.T) {
	// 333 * 1 * 0.1 = 33.3 -> floor 33, не 34
	tiers := []domain.QuantityDiscount{
		{MinQuantity: 1, DiscountRate: 0.1},
	}

	discount, _ := CalculateDiscount(333, 1, tiers)
	assert.Equal(t, int64(33), discount)
}

func TestCalculateDiscount_Bounds(t *testing.T) {
	tiers := []domain.QuantityDiscount{
		{MinQuantity: 1, DiscountRate: 0.99},
	}

	for _, quantity := range []int{1, 2, 10, 99} {
		discount, _ := CalculateDiscount(12345, quantity, tiers)
		assert.GreaterOrEqual(t, discount, int64(0))
		assert.LessOrEqual(t, discount, 12345*int64(quantity))
	}
}

func TestCalculateDiscount_Pure(t *testing.T) {
	tiers := []domain.QuantityDiscount{
		{MinQuantity: 2, DiscountRate: 0.1},
		{MinQuantity: 5, DiscountRate: 0.15},
	}

	d1, r1 := CalculateDiscount(10000, 5, tiers)
	d2, r2 := CalculateDiscount(10000, 5, tiers)
	assert.Equal(t, d1, d2)
	assert.Equal(t, r1, r2)
}

func TestCalculateDiscount_RateMonotonicity(t *testing.T) {
	// Рост количества не уменьшает применимую ставку:
	// больший quantity только расширяет множество подходящих уровней
	tiers := []domain.QuantityDiscount{
		{MinQuantity: 2, DiscountRate: 0.05},
		{MinQuantity: 4, DiscountRate: 0.1},
		{MinQuantity: 8, DiscountRate: 0.2},
	}

	prevRate := 0.0
	for quantity := 1; quantity <= 12; quantity++ {
		_, rate := CalculateDiscount(10000, quantity, tiers)
		assert.GreaterOrEqual(t, rate, prevRate, "quantity=%d", quantity)
		prevRate = rate
	}
}

func TestNextDiscountTier(t *testing.T) {
	tiers := []domain.QuantityDiscount{
		{MinQuantity: 2, DiscountRate: 0.1},
		{MinQuantity: 5, DiscountRate: 0.15},
	}

	next := NextDiscountTier(10000, 1, tiers)
	assert.NotNil(t, next)
	assert.Equal(t, 1, next.Remaining)
	assert.Equal(t, 0.1, next.Rate)
	assert.Equal(t, int64(2000), next.Savings) // floor(10000*2*0.1)

	next = NextDiscountTier(10000, 3, tiers)
	assert.NotNil(t, next)
	assert.Equal(t, 2, next.Remaining)
	assert.Equal(t, 0.15, next.Rate)

	assert.Nil(t, NextDiscountTier(10000, 5, tiers))
	assert.Nil(t, NextDiscountTier(10000, 1, nil))
}
