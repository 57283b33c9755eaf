package lineservice

import "errors"

var (
	// ErrNoChannelToken возвращается, когда у организации не настроен LINE-канал
	ErrNoChannelToken = errors.New("organization has no line channel token")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("lineservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от LINE API
	ErrInvalidResponse = errors.New("lineservice client: invalid response")

	// ErrServiceDegraded возвращается при применении graceful degradation
	// Указывает, что LINE API недоступен и уведомление пропущено
	ErrServiceDegraded = errors.New("lineservice unavailable: graceful degradation applied")
)
