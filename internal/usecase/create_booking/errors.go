package create_booking

import "errors"

var (
	// ErrOrganizationNotFound возвращается, когда организация не найдена
	ErrOrganizationNotFound = errors.New("create_booking: organization not found")

	// ErrServiceNotFound возвращается, когда выбранная услуга не найдена в каталоге
	ErrServiceNotFound = errors.New("create_booking: service not found")

	// ErrOptionNotFound возвращается, когда выбранная опция не найдена в каталоге
	ErrOptionNotFound = errors.New("create_booking: option not found")

	// ErrOptionWithoutService возвращается, когда опция выбрана без родительской услуги
	ErrOptionWithoutService = errors.New("create_booking: option selected without its service")

	// ErrInvalidDate возвращается при некорректной дате бронирования
	ErrInvalidDate = errors.New("create_booking: invalid booking date")

	// ErrSlotNotAvailable возвращается, когда выбранный слот недоступен (все места заняты)
	ErrSlotNotAvailable = errors.New("create_booking: slot is not available")

	// ErrPriceMismatch возвращается, когда цена клиента не совпадает с пересчитанной сервером
	// Каталог мог измениться между показом подтверждения и отправкой
	ErrPriceMismatch = errors.New("create_booking: client price does not match server price")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
