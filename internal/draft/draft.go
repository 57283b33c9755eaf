package draft

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/HCS-BookingService/internal/domain"
	"github.com/m04kA/HCS-BookingService/internal/pricing"
	"github.com/m04kA/HCS-BookingService/pkg/types"
)

// Step is a position in the linear booking wizard.
type Step int

const (
	StepServiceSelection Step = 1
	StepOptions          Step = 2
	StepDateTime         Step = 3
	StepCustomerInfo     Step = 4
	StepConfirmation     Step = 5
)

// String returns the wire name of the step.
func (s Step) String() string {
	switch s {
	case StepServiceSelection:
		return "service_selection"
	case StepOptions:
		return "options"
	case StepDateTime:
		return "date_time"
	case StepCustomerInfo:
		return "customer_info"
	case StepConfirmation:
		return "confirmation"
	default:
		return "unknown"
	}
}

// ServiceSelection is one chosen service with its quantity.
type ServiceSelection struct {
	ServiceID int64 `json:"service_id"`
	Quantity  int   `json:"quantity"`
}

// OptionSelection is one chosen add-on with its quantity.
type OptionSelection struct {
	OptionID int64 `json:"option_id"`
	Quantity int   `json:"quantity"`
}

// Diagnosis holds pre-visit answers collected alongside scheduling.
type Diagnosis struct {
	HasParking bool    `json:"has_parking"`
	Notes      *string `json:"notes,omitempty"`
}

// CustomerInfo is the contact data entered on step four.
type CustomerInfo struct {
	Name            string  `json:"name" validate:"required,max=100"`
	Email           *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone           *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	LineUserID      *string `json:"line_user_id,omitempty"`
	AvatarURL       *string `json:"avatar_url,omitempty"`
	PostalCode      *string `json:"postal_code,omitempty" validate:"omitempty,len=7,numeric"`
	Address         *string `json:"address,omitempty" validate:"omitempty,max=200"`
	AddressBuilding *string `json:"address_building,omitempty" validate:"omitempty,max=200"`
	Notes           *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// Draft is the full wizard state for one booking-in-progress.
//
// The catalog fields are a snapshot taken when the draft is started and
// kept current by ApplyCatalogEvent. Every mutation recomputes the quote
// from scratch; nothing incremental is ever stored.
type Draft struct {
	ID             string `json:"id"`
	OrganizationID int64  `json:"organization_id"`
	Step           Step   `json:"step"`

	Services     []domain.Service         `json:"services"`
	Options      []domain.ServiceOption   `json:"options"`
	SetDiscounts []domain.SetDiscountRule `json:"set_discounts"`

	ServiceSelections []ServiceSelection `json:"service_selections"`
	OptionSelections  []OptionSelection  `json:"option_selections"`

	Date      *string           `json:"date,omitempty"` // YYYY-MM-DD
	Time      *types.TimeString `json:"time,omitempty"`
	Diagnosis *Diagnosis        `json:"diagnosis,omitempty"`
	Customer  *CustomerInfo     `json:"customer,omitempty"`

	Quote pricing.Quote `json:"quote"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New starts a draft at the first step over a catalog snapshot.
func New(organizationID int64, services []domain.Service, options []domain.ServiceOption, setDiscounts []domain.SetDiscountRule) *Draft {
	now := time.Now().UTC()
	return &Draft{
		ID:             uuid.NewString(),
		OrganizationID: organizationID,
		Step:           StepServiceSelection,
		Services:       services,
		Options:        options,
		SetDiscounts:   setDiscounts,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (d *Draft) findService(serviceID int64) *domain.Service {
	for i := range d.Services {
		if d.Services[i].ID == serviceID {
			return &d.Services[i]
		}
	}
	return nil
}

func (d *Draft) findOption(optionID int64) *domain.ServiceOption {
	for i := range d.Options {
		if d.Options[i].ID == optionID {
			return &d.Options[i]
		}
	}
	return nil
}

func (d *Draft) serviceSelected(serviceID int64) bool {
	for _, sel := range d.ServiceSelections {
		if sel.ServiceID == serviceID {
			return true
		}
	}
	return false
}

// SelectedServiceIDs returns the ids of every selected service,
// in selection order.
func (d *Draft) SelectedServiceIDs() []int64 {
	ids := make([]int64, 0, len(d.ServiceSelections))
	for _, sel := range d.ServiceSelections {
		ids = append(ids, sel.ServiceID)
	}
	return ids
}

// SetServiceQuantity selects a service, changes its quantity, or removes
// it when quantity is zero. Options of a removed service are dropped too.
func (d *Draft) SetServiceQuantity(serviceID int64, quantity int) error {
	if quantity < 0 || quantity > domain.MaxServiceQuantity {
		return ErrQuantityOutOfRange
	}
	svc := d.findService(serviceID)
	if svc == nil {
		return ErrUnknownService
	}

	if quantity == 0 {
		d.removeServiceSelection(serviceID)
		d.touch()
		return nil
	}

	for i := range d.ServiceSelections {
		if d.ServiceSelections[i].ServiceID == serviceID {
			d.ServiceSelections[i].Quantity = quantity
			d.touch()
			return nil
		}
	}
	d.ServiceSelections = append(d.ServiceSelections, ServiceSelection{ServiceID: serviceID, Quantity: quantity})
	d.touch()
	return nil
}

func (d *Draft) removeServiceSelection(serviceID int64) {
	kept := d.ServiceSelections[:0]
	for _, sel := range d.ServiceSelections {
		if sel.ServiceID != serviceID {
			kept = append(kept, sel)
		}
	}
	d.ServiceSelections = kept

	// Опции удаленной услуги теряют смысл и снимаются вместе с ней
	keptOpts := d.OptionSelections[:0]
	for _, sel := range d.OptionSelections {
		opt := d.findOption(sel.OptionID)
		if opt != nil && opt.ServiceID != serviceID {
			keptOpts = append(keptOpts, sel)
		}
	}
	d.OptionSelections = keptOpts
}

// SetOptionQuantity selects an add-on, changes its quantity, or removes
// it when quantity is zero. The parent service must already be selected.
func (d *Draft) SetOptionQuantity(optionID int64, quantity int) error {
	if quantity < 0 || quantity > domain.MaxOptionQuantity {
		return ErrQuantityOutOfRange
	}
	opt := d.findOption(optionID)
	if opt == nil {
		return ErrUnknownOption
	}
	if !d.serviceSelected(opt.ServiceID) {
		return ErrOptionServiceNotSelected
	}

	if quantity == 0 {
		kept := d.OptionSelections[:0]
		for _, sel := range d.OptionSelections {
			if sel.OptionID != optionID {
				kept = append(kept, sel)
			}
		}
		d.OptionSelections = kept
		d.touch()
		return nil
	}

	for i := range d.OptionSelections {
		if d.OptionSelections[i].OptionID == optionID {
			d.OptionSelections[i].Quantity = quantity
			d.touch()
			return nil
		}
	}
	d.OptionSelections = append(d.OptionSelections, OptionSelection{OptionID: optionID, Quantity: quantity})
	d.touch()
	return nil
}

// SetDateTime records the desired slot. Validation against availability
// happens later, at submission.
func (d *Draft) SetDateTime(date string, t types.TimeString) error {
	if _, err := time.Parse(domain.DateFormat, date); err != nil {
		return ErrDateTimeNotSet
	}
	if err := t.Validate(); err != nil {
		return err
	}
	d.Date = &date
	d.Time = &t
	d.touch()
	return nil
}

// SetDiagnosis records pre-visit answers. Always allowed, never gates a step.
func (d *Draft) SetDiagnosis(diag Diagnosis) {
	d.Diagnosis = &diag
	d.touch()
}

// SetCustomerInfo records contact data after structural validation.
func (d *Draft) SetCustomerInfo(info CustomerInfo) error {
	if err := validateCustomerInfo(info); err != nil {
		return err
	}
	d.Customer = &info
	d.touch()
	return nil
}

// Advance moves one step forward. The move is refused while the current
// step is incomplete; field values are never touched.
func (d *Draft) Advance() error {
	if d.Step >= StepConfirmation {
		return ErrAlreadyAtLastStep
	}
	if err := d.ValidateStep(d.Step); err != nil {
		return err
	}
	d.Step++
	d.touch()
	return nil
}

// Back moves one step backward. All entered data survives the move, so
// going back and forward again loses nothing.
func (d *Draft) Back() error {
	if d.Step <= StepServiceSelection {
		return ErrAlreadyAtFirstStep
	}
	d.Step--
	d.touch()
	return nil
}

// ReadyForSubmit reports whether the draft reached confirmation with
// every preceding step still valid.
func (d *Draft) ReadyForSubmit() error {
	if d.Step != StepConfirmation {
		return ErrNotReadyForSubmit
	}
	for s := StepServiceSelection; s < StepConfirmation; s++ {
		if err := d.ValidateStep(s); err != nil {
			return err
		}
	}
	return nil
}

// UpsellCandidates returns options attached to selected services that the
// customer has not picked yet.
func (d *Draft) UpsellCandidates() []domain.ServiceOption {
	selectedOpts := make(map[int64]struct{}, len(d.OptionSelections))
	for _, sel := range d.OptionSelections {
		selectedOpts[sel.OptionID] = struct{}{}
	}

	var out []domain.ServiceOption
	for _, opt := range d.Options {
		if !d.serviceSelected(opt.ServiceID) {
			continue
		}
		if _, ok := selectedOpts[opt.ID]; ok {
			continue
		}
		out = append(out, opt)
	}
	return out
}

// SetSuggestions returns set-discount rules one selected service away
// from matching.
func (d *Draft) SetSuggestions() []pricing.SetSuggestion {
	return pricing.SuggestedSetServices(d.SelectedServiceIDs(), d.SetDiscounts)
}

// TierSuggestion is the nearest quantity-discount level a selected service
// has not reached yet.
type TierSuggestion struct {
	ServiceID int64   `json:"service_id"`
	Remaining int     `json:"remaining"`
	Rate      float64 `json:"rate"`
	Savings   int64   `json:"savings"`
}

// TierSuggestions returns one hint per selected service that still has an
// unreached discount tier.
func (d *Draft) TierSuggestions() []TierSuggestion {
	var out []TierSuggestion
	for _, sel := range d.ServiceSelections {
		svc := d.findService(sel.ServiceID)
		if svc == nil {
			continue
		}
		next := pricing.NextDiscountTier(svc.BasePrice, sel.Quantity, svc.QuantityDiscounts)
		if next == nil {
			continue
		}
		out = append(out, TierSuggestion{
			ServiceID: sel.ServiceID,
			Remaining: next.Remaining,
			Rate:      next.Rate,
			Savings:   next.Savings,
		})
	}
	return out
}

// Recompute rebuilds the quote from the current snapshot and selections.
// Selections pointing at catalog entries that no longer exist are dropped
// first, so the quote never references a stale price.
func (d *Draft) Recompute() {
	d.reconcileSelections()

	services := make([]pricing.SelectedService, 0, len(d.ServiceSelections))
	for _, sel := range d.ServiceSelections {
		svc := d.findService(sel.ServiceID)
		services = append(services, pricing.SelectedService{Service: *svc, Quantity: sel.Quantity})
	}

	options := make([]pricing.SelectedOption, 0, len(d.OptionSelections))
	for _, sel := range d.OptionSelections {
		opt := d.findOption(sel.OptionID)
		options = append(options, pricing.SelectedOption{Option: *opt, Quantity: sel.Quantity})
	}

	d.Quote = pricing.Calculate(services, options, d.SetDiscounts)
}

// reconcileSelections drops selections whose catalog entry disappeared.
func (d *Draft) reconcileSelections() {
	keptSvcs := d.ServiceSelections[:0]
	for _, sel := range d.ServiceSelections {
		if d.findService(sel.ServiceID) != nil {
			keptSvcs = append(keptSvcs, sel)
		}
	}
	d.ServiceSelections = keptSvcs

	keptOpts := d.OptionSelections[:0]
	for _, sel := range d.OptionSelections {
		opt := d.findOption(sel.OptionID)
		if opt != nil && d.serviceSelected(opt.ServiceID) {
			keptOpts = append(keptOpts, sel)
		}
	}
	d.OptionSelections = keptOpts
}

func (d *Draft) touch() {
	d.Recompute()
	d.UpdatedAt = time.Now().UTC()
}
