package draft

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/HCS-BookingService/internal/domain"
	"github.com/m04kA/HCS-BookingService/pkg/ptr"
	"github.com/m04kA/HCS-BookingService/pkg/types"
)

func testCatalog() ([]domain.Service, []domain.ServiceOption, []domain.SetDiscountRule) {
	services := []domain.Service{
		{ID: 1, Title: "エアコンクリーニング", BasePrice: 10000, QuantityDiscounts: []domain.QuantityDiscount{
			{MinQuantity: 2, DiscountRate: 0.1},
		}},
		{ID: 2, Title: "キッチンクリーニング", BasePrice: 20000},
	}
	options := []domain.ServiceOption{
		{ID: 10, ServiceID: 1, Title: "防カビコート", Price: 3000},
		{ID: 11, ServiceID: 2, Title: "換気扇分解洗浄", Price: 5000},
	}
	rules := []domain.SetDiscountRule{
		{ID: "set-1", Title: "エアコン+キッチン", DiscountRate: 0.1, ServiceIDs: []int64{1, 2}},
	}
	return services, options, rules
}

func newTestDraft(t *testing.T) *Draft {
	t.Helper()
	services, options, rules := testCatalog()
	return New(42, services, options, rules)
}

func futureDate() string {
	return time.Now().UTC().AddDate(0, 0, 7).Format(domain.DateFormat)
}

func TestNew(t *testing.T) {
	d := newTestDraft(t)

	assert.NotEmpty(t, d.ID)
	assert.Equal(t, int64(42), d.OrganizationID)
	assert.Equal(t, StepServiceSelection, d.Step)
	assert.Equal(t, int64(0), d.Quote.TotalPrice)
}

func TestSetServiceQuantity(t *testing.T) {
	d := newTestDraft(t)

	require.NoError(t, d.SetServiceQuantity(1, 1))
	assert.Equal(t, int64(10000), d.Quote.TotalPrice)

	// Изменение количества пересчитывает цену с нуля
	require.NoError(t, d.SetServiceQuantity(1, 2))
	assert.Equal(t, int64(18000), d.Quote.TotalPrice) // 20000 - 10% tier
	assert.Equal(t, int64(2000), d.Quote.TierDiscount)

	// Нулевое количество снимает выбор
	require.NoError(t, d.SetServiceQuantity(1, 0))
	assert.Empty(t, d.ServiceSelections)
	assert.Equal(t, int64(0), d.Quote.TotalPrice)
}

func TestSetServiceQuantity_Errors(t *testing.T) {
	d := newTestDraft(t)

	assert.ErrorIs(t, d.SetServiceQuantity(999, 1), ErrUnknownService)
	assert.ErrorIs(t, d.SetServiceQuantity(1, -1), ErrQuantityOutOfRange)
	assert.ErrorIs(t, d.SetServiceQuantity(1, domain.MaxServiceQuantity+1), ErrQuantityOutOfRange)
}

func TestSetOptionQuantity(t *testing.T) {
	d := newTestDraft(t)

	// Опция без выбранной родительской услуги недоступна
	assert.ErrorIs(t, d.SetOptionQuantity(10, 1), ErrOptionServiceNotSelected)

	require.NoError(t, d.SetServiceQuantity(1, 1))
	require.NoError(t, d.SetOptionQuantity(10, 1))
	assert.Equal(t, int64(13000), d.Quote.TotalPrice)

	assert.ErrorIs(t, d.SetOptionQuantity(999, 1), ErrUnknownOption)
}

func TestRemovingServiceDropsItsOptions(t *testing.T) {
	d := newTestDraft(t)
	require.NoError(t, d.SetServiceQuantity(1, 1))
	require.NoError(t, d.SetOptionQuantity(10, 1))

	require.NoError(t, d.SetServiceQuantity(1, 0))

	assert.Empty(t, d.OptionSelections)
	assert.Equal(t, int64(0), d.Quote.TotalPrice)
}

func TestSetDiscountInQuote(t *testing.T) {
	d := newTestDraft(t)
	require.NoError(t, d.SetServiceQuantity(1, 1))
	require.NoError(t, d.SetServiceQuantity(2, 1))

	require.Len(t, d.Quote.AppliedSetDiscounts, 1)
	assert.Equal(t, int64(3000), d.Quote.SetDiscountTotal)
	assert.Equal(t, int64(27000), d.Quote.TotalPrice)
}

func TestAdvance_GatedByValidation(t *testing.T) {
	d := newTestDraft(t)

	// Пустой выбор услуг не пропускает вперед
	assert.ErrorIs(t, d.Advance(), ErrNoServicesSelected)
	assert.Equal(t, StepServiceSelection, d.Step)

	require.NoError(t, d.SetServiceQuantity(1, 1))
	require.NoError(t, d.Advance())
	assert.Equal(t, StepOptions, d.Step)

	// Шаг опций необязателен
	require.NoError(t, d.Advance())
	assert.Equal(t, StepDateTime, d.Step)

	assert.ErrorIs(t, d.Advance(), ErrDateTimeNotSet)

	slot, err := types.NewTimeStringFromString("10:00")
	require.NoError(t, err)
	require.NoError(t, d.SetDateTime(futureDate(), slot))
	require.NoError(t, d.Advance())
	assert.Equal(t, StepCustomerInfo, d.Step)

	assert.ErrorIs(t, d.Advance(), ErrInvalidCustomerInfo)

	require.NoError(t, d.SetCustomerInfo(CustomerInfo{Name: "山田太郎"}))
	require.NoError(t, d.Advance())
	assert.Equal(t, StepConfirmation, d.Step)

	assert.ErrorIs(t, d.Advance(), ErrAlreadyAtLastStep)
}

func TestBack_PreservesFields(t *testing.T) {
	d := newTestDraft(t)
	require.NoError(t, d.SetServiceQuantity(1, 2))
	require.NoError(t, d.Advance())
	require.NoError(t, d.SetOptionQuantity(10, 1))
	require.NoError(t, d.Advance())

	slot, err := types.NewTimeStringFromString("14:30")
	require.NoError(t, err)
	require.NoError(t, d.SetDateTime(futureDate(), slot))

	priceBefore := d.Quote.TotalPrice

	// Назад до первого шага и снова вперед, данные на месте
	require.NoError(t, d.Back())
	require.NoError(t, d.Back())
	assert.Equal(t, StepServiceSelection, d.Step)
	assert.ErrorIs(t, d.Back(), ErrAlreadyAtFirstStep)

	require.NoError(t, d.Advance())
	require.NoError(t, d.Advance())

	require.NotNil(t, d.Date)
	require.NotNil(t, d.Time)
	assert.Equal(t, "14:30", d.Time.String())
	assert.Len(t, d.ServiceSelections, 1)
	assert.Len(t, d.OptionSelections, 1)
	assert.Equal(t, priceBefore, d.Quote.TotalPrice)
}

func TestSetDateTime_InvalidDate(t *testing.T) {
	d := newTestDraft(t)
	slot, err := types.NewTimeStringFromString("10:00")
	require.NoError(t, err)

	assert.Error(t, d.SetDateTime("not-a-date", slot))
}

func TestValidateStep_DateInPast(t *testing.T) {
	d := newTestDraft(t)
	slot, err := types.NewTimeStringFromString("10:00")
	require.NoError(t, err)
	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format(domain.DateFormat)
	require.NoError(t, d.SetDateTime(yesterday, slot))

	assert.ErrorIs(t, d.ValidateStep(StepDateTime), ErrDateInPast)
}

func TestSetCustomerInfo_Validation(t *testing.T) {
	d := newTestDraft(t)

	assert.ErrorIs(t, d.SetCustomerInfo(CustomerInfo{}), ErrInvalidCustomerInfo)
	assert.ErrorIs(t, d.SetCustomerInfo(CustomerInfo{Name: "山田", Email: ptr.Ptr("not-an-email")}), ErrInvalidCustomerInfo)
	assert.ErrorIs(t, d.SetCustomerInfo(CustomerInfo{Name: "山田", PostalCode: ptr.Ptr("12-3")}), ErrInvalidCustomerInfo)

	assert.NoError(t, d.SetCustomerInfo(CustomerInfo{
		Name:       "山田太郎",
		Email:      ptr.Ptr("taro@example.com"),
		PostalCode: ptr.Ptr("1500041"),
	}))
}

func TestReadyForSubmit(t *testing.T) {
	d := newTestDraft(t)
	assert.ErrorIs(t, d.ReadyForSubmit(), ErrNotReadyForSubmit)

	require.NoError(t, d.SetServiceQuantity(1, 1))
	slot, err := types.NewTimeStringFromString("10:00")
	require.NoError(t, err)
	require.NoError(t, d.SetDateTime(futureDate(), slot))
	require.NoError(t, d.SetCustomerInfo(CustomerInfo{Name: "山田太郎"}))

	for d.Step < StepConfirmation {
		require.NoError(t, d.Advance())
	}
	assert.NoError(t, d.ReadyForSubmit())
}

func TestUpsellCandidates(t *testing.T) {
	d := newTestDraft(t)

	// Без выбранных услуг предлагать нечего
	assert.Empty(t, d.UpsellCandidates())

	require.NoError(t, d.SetServiceQuantity(1, 1))
	candidates := d.UpsellCandidates()
	require.Len(t, candidates, 1)
	assert.Equal(t, int64(10), candidates[0].ID)

	// Выбранная опция исчезает из кандидатов
	require.NoError(t, d.SetOptionQuantity(10, 1))
	assert.Empty(t, d.UpsellCandidates())
}

func TestSetSuggestions(t *testing.T) {
	d := newTestDraft(t)
	require.NoError(t, d.SetServiceQuantity(1, 1))

	suggestions := d.SetSuggestions()
	require.Len(t, suggestions, 1)
	assert.Equal(t, int64(2), suggestions[0].MissingServiceID)

	require.NoError(t, d.SetServiceQuantity(2, 1))
	assert.Empty(t, d.SetSuggestions())
}

func TestTierSuggestions(t *testing.T) {
	d := newTestDraft(t)

	// Одна штука: до уровня {2, 0.1} не хватает одной
	require.NoError(t, d.SetServiceQuantity(1, 1))
	suggestions := d.TierSuggestions()
	require.Len(t, suggestions, 1)
	assert.Equal(t, int64(1), suggestions[0].ServiceID)
	assert.Equal(t, 1, suggestions[0].Remaining)
	assert.Equal(t, 0.1, suggestions[0].Rate)
	assert.Equal(t, int64(2000), suggestions[0].Savings)

	// Уровень достигнут: подсказки больше нет
	require.NoError(t, d.SetServiceQuantity(1, 2))
	assert.Empty(t, d.TierSuggestions())

	// У услуги без уровней подсказок не бывает
	require.NoError(t, d.SetServiceQuantity(2, 1))
	assert.Empty(t, d.TierSuggestions())
}
