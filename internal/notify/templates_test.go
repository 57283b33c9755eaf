package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testEvent(eventType EventType) Event {
	return Event{
		Type:           eventType,
		BookingID:      42,
		OrganizationID: 1,
		CustomerName:   "山田太郎",
		ServiceSummary: "エアコンクリーニング x2",
		SelectedDate:   "2026-09-15",
		SelectedTime:   "10:00",
		TotalPrice:     18000,
		OccurredAt:     time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMessageFor_Confirmed(t *testing.T) {
	msg := MessageFor(testEvent(EventBookingConfirmed))

	assert.Contains(t, msg, "山田太郎様")
	assert.Contains(t, msg, "エアコンクリーニング x2")
	assert.Contains(t, msg, "2026-09-15 10:00")
	assert.Contains(t, msg, "¥18000")
}

func TestMessageFor_Cancelled(t *testing.T) {
	msg := MessageFor(testEvent(EventBookingCancelled))

	assert.Contains(t, msg, "キャンセル")
	assert.Contains(t, msg, "山田太郎様")
	assert.NotContains(t, msg, "¥")
}

func TestMessageFor_Reminder(t *testing.T) {
	msg := MessageFor(testEvent(EventBookingReminder))

	assert.Contains(t, msg, "ご予約日が近づいて")
	assert.Contains(t, msg, "2026-09-15 10:00")
}

func TestMessageFor_PaymentExpired(t *testing.T) {
	msg := MessageFor(testEvent(EventPaymentExpired))

	assert.Contains(t, msg, "お支払い期限")
	assert.Contains(t, msg, "¥18000")
}

func TestMessageFor_AdminNewBooking(t *testing.T) {
	msg := MessageFor(testEvent(EventAdminNewBooking))

	assert.Contains(t, msg, "予約ID: 42")
	assert.Contains(t, msg, "お客様: 山田太郎様")
}

func TestMessageFor_AdminBookingCancelled(t *testing.T) {
	msg := MessageFor(testEvent(EventAdminBookingCancelled))

	assert.Contains(t, msg, "予約がキャンセルされました")
	assert.Contains(t, msg, "予約ID: 42")
	assert.Contains(t, msg, "お客様: 山田太郎様")
}

func TestMessageFor_UnknownType(t *testing.T) {
	assert.Empty(t, MessageFor(testEvent(EventType("unknown"))))
}
