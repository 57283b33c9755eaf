package draft

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/m04kA/HCS-BookingService/internal/domain"
)

var validate = validator.New()

// ValidateStep checks whether the given step is complete enough to leave.
func (d *Draft) ValidateStep(step Step) error {
	switch step {
	case StepServiceSelection:
		if len(d.ServiceSelections) == 0 {
			return ErrNoServicesSelected
		}
		return nil
	case StepOptions:
		// Опции необязательны, шаг всегда проходим
		return nil
	case StepDateTime:
		if d.Date == nil || d.Time == nil {
			return ErrDateTimeNotSet
		}
		day, err := time.Parse(domain.DateFormat, *d.Date)
		if err != nil {
			return ErrDateTimeNotSet
		}
		today, _ := time.Parse(domain.DateFormat, time.Now().UTC().Format(domain.DateFormat))
		if day.Before(today) {
			return ErrDateInPast
		}
		return nil
	case StepCustomerInfo:
		if d.Customer == nil {
			return ErrInvalidCustomerInfo
		}
		return validateCustomerInfo(*d.Customer)
	default:
		return nil
	}
}

func validateCustomerInfo(info CustomerInfo) error {
	if err := validate.Struct(info); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCustomerInfo, err)
	}
	return nil
}
