package domain

import (
	"time"

	"github.com/m04kA/HCS-BookingService/pkg/types"
)

// SlotOccupancy is the occupancy of a single (date, time) slot.
// It deliberately carries no customer-identifying data: the availability
// read path exposes only that a slot is taken, never by whom.
type SlotOccupancy struct {
	Date         time.Time
	Time         types.TimeString
	BookingCount int
}

// AvailableSpots returns how many bookings the slot can still take
// given the organization's per-slot capacity
func (s *SlotOccupancy) AvailableSpots(capacity int) int {
	spots := capacity - s.BookingCount
	if spots < 0 {
		return 0
	}
	return spots
}

// IsFull returns true if the slot has no spots left for the given capacity
func (s *SlotOccupancy) IsFull(capacity int) bool {
	return s.BookingCount >= capacity
}
