package notify

import "fmt"

// Шаблоны LINE-сообщений для клиентов (на японском)

func confirmedMessage(e Event) string {
	return fmt.Sprintf(
		"%s様\nご予約ありがとうございます。\n\n【ご予約内容】\nサービス: %s\n日時: %s %s\n合計金額: ¥%d\n\n当日お会いできるのを楽しみにしております。",
		e.CustomerName, e.ServiceSummary, e.SelectedDate, e.SelectedTime, e.TotalPrice,
	)
}

func cancelledMessage(e Event) string {
	return fmt.Sprintf(
		"%s様\nご予約のキャンセルを承りました。\n\n【キャンセル内容】\nサービス: %s\n日時: %s %s\n\nまたのご利用をお待ちしております。",
		e.CustomerName, e.ServiceSummary, e.SelectedDate, e.SelectedTime,
	)
}

func reminderMessage(e Event) string {
	return fmt.Sprintf(
		"%s様\nご予約日が近づいてまいりました。\n\n【ご予約内容】\nサービス: %s\n日時: %s %s\n\nご不明な点がございましたらお気軽にお問い合わせください。",
		e.CustomerName, e.ServiceSummary, e.SelectedDate, e.SelectedTime,
	)
}

func paymentExpiredMessage(e Event) string {
	return fmt.Sprintf(
		"%s様\nお支払い期限が過ぎたため、ご予約を保留しております。\n\n【ご予約内容】\nサービス: %s\n日時: %s %s\n合計金額: ¥%d\n\nご予約を続ける場合はお手数ですが再度お手続きをお願いいたします。",
		e.CustomerName, e.ServiceSummary, e.SelectedDate, e.SelectedTime, e.TotalPrice,
	)
}

func adminNewBookingMessage(e Event) string {
	return fmt.Sprintf(
		"新しい予約が入りました。\n\n予約ID: %d\nお客様: %s様\nサービス: %s\n日時: %s %s\n合計金額: ¥%d",
		e.BookingID, e.CustomerName, e.ServiceSummary, e.SelectedDate, e.SelectedTime, e.TotalPrice,
	)
}

func adminBookingCancelledMessage(e Event) string {
	return fmt.Sprintf(
		"予約がキャンセルされました。\n\n予約ID: %d\nお客様: %s様\nサービス: %s\n日時: %s %s",
		e.BookingID, e.CustomerName, e.ServiceSummary, e.SelectedDate, e.SelectedTime,
	)
}

// MessageFor возвращает текст сообщения для события
// Пустая строка означает, что для типа события сообщение не предусмотрено
func MessageFor(e Event) string {
	switch e.Type {
	case EventBookingConfirmed:
		return confirmedMessage(e)
	case EventBookingCancelled:
		return cancelledMessage(e)
	case EventBookingReminder:
		return reminderMessage(e)
	case EventPaymentExpired:
		return paymentExpiredMessage(e)
	case EventAdminNewBooking:
		return adminNewBookingMessage(e)
	case EventAdminBookingCancelled:
		return adminBookingCancelledMessage(e)
	default:
		return ""
	}
}
