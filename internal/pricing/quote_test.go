package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/HCS-BookingService/internal/domain"
	"github.com/m04kA/HCS-BookingService/pkg/ptr"
)

func service(id int64, basePrice int64, tiers ...domain.QuantityDiscount) domain.Service {
	return domain.Service{
		ID:                id,
		Title:             "service",
		BasePrice:         basePrice,
		QuantityDiscounts: tiers,
	}
}

func TestCalculate_SingleServiceNoDiscount(t *testing.T) {
	// Сценарий из исходных данных: базовая цена 10000, количество 1, без уровней
	quote := Calculate(
		[]SelectedService{{Service: service(1, 10000), Quantity: 1}},
		nil,
		nil,
	)

	assert.Equal(t, int64(10000), quote.TotalPrice)
	assert.Equal(t, int64(0), quote.TierDiscount)
	assert.Equal(t, int64(0), quote.SetDiscountTotal)
}

func TestCalculate_QuantityDiscountApplied(t *testing.T) {
	svc := service(1, 10000,
		domain.QuantityDiscount{MinQuantity: 2, DiscountRate: 0.1},
		domain.QuantityDiscount{MinQuantity: 5, DiscountRate: 0.15},
	)

	quote := Calculate(
		[]SelectedService{{Service: svc, Quantity: 5}},
		nil,
		nil,
	)

	assert.Equal(t, int64(7500), quote.TierDiscount)
	assert.Equal(t, int64(42500), quote.TotalPrice) // 50000 - 7500
}

func TestCalculate_OptionsAdded(t *testing.T) {
	opt := domain.ServiceOption{ID: 10, ServiceID: 1, Title: "wax", Price: 1500}

	quote := Calculate(
		[]SelectedService{{Service: service(1, 10000), Quantity: 1}},
		[]SelectedOption{{Option: opt, Quantity: 2}},
		nil,
	)

	assert.Equal(t, int64(3000), quote.OptionsTotal)
	assert.Equal(t, int64(13000), quote.TotalPrice)
}

func TestCalculate_SetDiscountAppliedWhenAllSelected(t *testing.T) {
	rules := []domain.SetDiscountRule{
		{
			ID:           "set-1",
			Title:        "エアコン+キッチンセット",
			Description:  ptr.Ptr("同時予約で10%OFF"),
			DiscountRate: 0.1,
			ServiceIDs:   []int64{1, 2},
		},
	}

	quote := Calculate(
		[]SelectedService{
			{Service: service(1, 10000), Quantity: 1},
			{Service: service(2, 20000), Quantity: 1},
		},
		nil,
		rules,
	)

	require.Len(t, quote.AppliedSetDiscounts, 1)
	assert.Equal(t, "set-1", quote.AppliedSetDiscounts[0].ID)
	assert.Equal(t, int64(3000), quote.SetDiscountTotal) // floor(0.1*30000)
	assert.Equal(t, int64(27000), quote.TotalPrice)
}

func TestCalculate_SetDiscountNotAppliedWhenIncomplete(t *testing.T) {
	rules := []domain.SetDiscountRule{
		{ID: "set-1", Title: "set", DiscountRate: 0.1, ServiceIDs: []int64{1, 2}},
	}

	quote := Calculate(
		[]SelectedService{{Service: service(1, 10000), Quantity: 1}},
		nil,
		rules,
	)

	assert.Empty(t, quote.AppliedSetDiscounts)
	assert.Equal(t, int64(0), quote.SetDiscountTotal)
	assert.Equal(t, int64(10000), quote.TotalPrice)
}

func TestCalculate_SetDiscountOverDiscountedSubtotals(t *testing.T) {
	// Сет-скидка считается от subtotal ПОСЛЕ количественной скидки
	svc1 := service(1, 10000, domain.QuantityDiscount{MinQuantity: 2, DiscountRate: 0.1})
	rules := []domain.SetDiscountRule{
		{ID: "set-1", Title: "set", DiscountRate: 0.1, ServiceIDs: []int64{1, 2}},
	}

	quote := Calculate(
		[]SelectedService{
			{Service: svc1, Quantity: 2},             // 20000 - 2000 = 18000
			{Service: service(2, 5000), Quantity: 1}, // 5000
		},
		nil,
		rules,
	)

	assert.Equal(t, int64(2000), quote.TierDiscount)
	assert.Equal(t, int64(2300), quote.SetDiscountTotal) // floor(0.1*23000)
	assert.Equal(t, int64(20700), quote.TotalPrice)
	assert.Equal(t, int64(4300), quote.TotalDiscount())
}

func TestCalculate_InvalidSetRuleIgnored(t *testing.T) {
	// Правило с одной услугой не является сетом и игнорируется
	rules := []domain.SetDiscountRule{
		{ID: "bad", Title: "bad", DiscountRate: 0.5, ServiceIDs: []int64{1}},
	}

	quote := Calculate(
		[]SelectedService{{Service: service(1, 10000), Quantity: 1}},
		nil,
		rules,
	)

	assert.Equal(t, int64(0), quote.SetDiscountTotal)
}

func TestSuggestedSetServices(t *testing.T) {
	rules := []domain.SetDiscountRule{
		{ID: "set-1", Title: "a+b", DiscountRate: 0.1, ServiceIDs: []int64{1, 2}},
		{ID: "set-2", Title: "a+b+c", DiscountRate: 0.2, ServiceIDs: []int64{1, 2, 3}},
	}

	suggestions := SuggestedSetServices([]int64{1}, rules)
	require.Len(t, suggestions, 1)
	assert.Equal(t, int64(2), suggestions[0].MissingServiceID)
	assert.Equal(t, "set-1", suggestions[0].Rule.ID)

	suggestions = SuggestedSetServices([]int64{1, 2}, rules)
	require.Len(t, suggestions, 1)
	assert.Equal(t, int64(3), suggestions[0].MissingServiceID)
}
