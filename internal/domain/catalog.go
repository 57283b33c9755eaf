package domain

import "time"

// Organization represents a tenant of the platform (a cleaning business)
type Organization struct {
	ID               int64
	Name             string
	SlotCapacity     int // max concurrent bookings per (date, time) slot
	LineChannelToken *string
	AdminLineUserID  *string // recipient of admin alerts, optional
	SetDiscounts     []SetDiscountRule
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// SupportsParallelBookings returns true if more than one booking may share a slot
func (o *Organization) SupportsParallelBookings() bool {
	return o.SlotCapacity > 1
}

// EffectiveSlotCapacity returns the configured slot capacity or the default
func (o *Organization) EffectiveSlotCapacity() int {
	if o.SlotCapacity <= 0 {
		return DefaultSlotCapacity
	}
	return o.SlotCapacity
}

// Service represents an offerable unit of cleaning work
type Service struct {
	ID                int64
	OrganizationID    int64
	Title             string
	Description       string
	BasePrice         int64 // smallest currency unit (yen)
	DurationMinutes   int
	Category          string
	QuantityDiscounts []QuantityDiscount
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// QuantityDiscount is a tiered discount rule attached to a service.
// When several tiers qualify, the one with the highest rate wins.
type QuantityDiscount struct {
	MinQuantity  int     `json:"min_quantity"`
	DiscountRate float64 `json:"discount_rate"`
}

// ServiceOption is an add-on tied to exactly one service
type ServiceOption struct {
	ID          int64
	ServiceID   int64
	Title       string
	Price       int64 // smallest currency unit (yen)
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SetDiscountRule is a discount triggered by selecting a specific
// combination of services together (at least two)
type SetDiscountRule struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Description  *string `json:"description,omitempty"`
	DiscountRate float64 `json:"discount_rate"`
	ServiceIDs   []int64 `json:"service_ids"`
}

// AppliedSetDiscount is the derived result of a matched set-discount rule.
// Computed fresh on every pricing recalculation, never stored as its own row.
type AppliedSetDiscount struct {
	ID             string
	Title          string
	DiscountAmount int64
	DiscountRate   float64
}
