package postalservice

import "errors"

var (
	// ErrAddressNotFound возвращается, когда по индексу не найден адрес
	ErrAddressNotFound = errors.New("no address found for postal code")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("postalservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("postalservice client: invalid response")

	// ErrServiceDegraded возвращается при применении graceful degradation
	// Указывает, что справочник недоступен и адрес нужно ввести вручную
	ErrServiceDegraded = errors.New("postalservice unavailable: graceful degradation applied")
)
