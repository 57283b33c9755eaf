package get_availability

import "time"

// Максимальный период запроса доступности
const maxRangeDays = 92

// Request модель запроса доступности слотов
type Request struct {
	OrganizationID int64     // ID организации
	StartDate      time.Time // Начало периода (включительно)
	EndDate        time.Time // Конец периода (включительно)
}

// Slot занятость одного слота
// Проекция содержит только счетчики, никаких данных клиентов
type Slot struct {
	Date           string `json:"date"` // YYYY-MM-DD
	Time           string `json:"time"` // HH:MM
	BookingCount   int    `json:"booking_count"`
	AvailableSpots int    `json:"available_spots"`
	IsAvailable    bool   `json:"is_available"`
}

// Response модель ответа с занятостью слотов
type Response struct {
	OrganizationID int64  `json:"organization_id"`
	SlotCapacity   int    `json:"slot_capacity"`
	Slots          []Slot `json:"slots"`
}
