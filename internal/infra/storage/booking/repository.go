package booking

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/HCS-BookingService/internal/domain"
	"github.com/m04kA/HCS-BookingService/pkg/dbmetrics"
	"github.com/m04kA/HCS-BookingService/pkg/psqlbuilder"
	"github.com/m04kA/HCS-BookingService/pkg/types"
)

const bookingColumns = `id, organization_id, customer_id, selected_date, selected_time, status, payment_status,
total_price, tier_discount, set_discount, service_summary, options_summary,
diagnosis_has_parking, diagnosis_notes, payment_due_at, reminder_sent,
cancellation_reason, cancelled_at, created_at, updated_at`

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование
// Если в контексте передана активная транзакция (через context.Value), использует её.
// Иначе выполняет обычный запрос без транзакции.
//
// При создании с проверкой занятости слота обязательно вызывать внутри
// сериализуемой транзакции (см. usecase create_booking): вставка и
// подсчет занятости должны видеть один снимок данных.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"organization_id",
			"customer_id",
			"selected_date",
			"selected_time",
			"status",
			"payment_status",
			"total_price",
			"tier_discount",
			"set_discount",
			"service_summary",
			"options_summary",
			"diagnosis_has_parking",
			"diagnosis_notes",
			"payment_due_at",
		).
		Values(
			booking.OrganizationID,
			booking.CustomerID,
			booking.SelectedDate,
			booking.SelectedTime,
			booking.Status,
			booking.PaymentStatus,
			booking.TotalPrice,
			booking.TierDiscount,
			booking.SetDiscount,
			booking.ServiceSummary,
			pq.Array(booking.OptionsSummary),
			booking.DiagnosisHasParking,
			booking.DiagnosisNotes,
			booking.PaymentDueAt,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// CreateServiceLines сохраняет денормализованные строки услуг бронирования
func (r *Repository) CreateServiceLines(ctx context.Context, bookingID int64, lines []domain.BookingServiceLine) error {
	if len(lines) == 0 {
		return nil
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertBuilder := psqlbuilder.Insert("booking_services").
		Columns(
			"booking_id",
			"service_id",
			"service_title",
			"service_quantity",
			"service_base_price",
			"tier_discount",
		)

	for _, line := range lines {
		insertBuilder = insertBuilder.Values(
			bookingID,
			line.ServiceID,
			line.ServiceTitle,
			line.ServiceQuantity,
			line.ServiceBasePrice,
			line.TierDiscount,
		)
	}

	query, args, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: CreateServiceLines - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: CreateServiceLines - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// CreateOptionLines сохраняет денормализованные строки опций бронирования
func (r *Repository) CreateOptionLines(ctx context.Context, bookingID int64, lines []domain.BookingOptionLine) error {
	if len(lines) == 0 {
		return nil
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertBuilder := psqlbuilder.Insert("booking_options").
		Columns(
			"booking_id",
			"option_id",
			"option_title",
			"option_price",
			"option_quantity",
		)

	for _, line := range lines {
		insertBuilder = insertBuilder.Values(
			bookingID,
			line.OptionID,
			line.OptionTitle,
			line.OptionPrice,
			line.OptionQuantity,
		)
	}

	query, args, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: CreateOptionLines - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: CreateOptionLines - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns).
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := r.scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// GetByCustomerID получает список бронирований клиента
// Опционально фильтрует по статусу
func (r *Repository) GetByCustomerID(ctx context.Context, customerID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns).
		From("bookings").
		Where(squirrel.Eq{"customer_id": customerID}).
		OrderBy("selected_date DESC, selected_time DESC")

	// Фильтрация по статусу, если указан
	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCustomerID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCustomerID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// GetByOrganizationWithFilter получает бронирования организации с гибкой фильтрацией
// Поддерживает фильтрацию по периоду (StartDate, EndDate), конкретному
// слоту (Time), статусу (Status) и включению отмененных (IncludeInactive)
func (r *Repository) GetByOrganizationWithFilter(ctx context.Context, filter domain.OrganizationBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns).
		From("bookings").
		Where(squirrel.Eq{"organization_id": filter.OrganizationID})

	// Фильтрация по периоду
	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"selected_date": *filter.StartDate})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"selected_date": *filter.EndDate})
	}

	// Фильтрация по конкретному слоту
	if filter.Time != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"selected_time": *filter.Time})
	}

	// Фильтрация по статусу
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		// Если не указан конкретный статус и не нужны неактивные - исключаем их
		inactiveStatusStrings := make([]string, len(domain.InactiveStatuses))
		for i, s := range domain.InactiveStatuses {
			inactiveStatusStrings[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": inactiveStatusStrings})
	}

	// Для конкретной даты сортируем по времени начала, иначе сначала новые
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.Equal(*filter.EndDate) {
		selectBuilder = selectBuilder.OrderBy("selected_time ASC")
	} else {
		selectBuilder = selectBuilder.OrderBy("selected_date DESC, selected_time DESC")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByOrganizationWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByOrganizationWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// CountSlotOccupancy считает активные бронирования в конкретном слоте
// Внутри транзакции добавляет FOR UPDATE, строки слота блокируются до
// конца транзакции, что вместе с serializable-уровнем закрывает гонку
// двух одновременных бронирований последнего места
func (r *Repository) CountSlotOccupancy(ctx context.Context, organizationID int64, date time.Time, slot types.TimeString) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	activeStatusStrings := make([]string, len(domain.ActiveStatuses))
	for i, s := range domain.ActiveStatuses {
		activeStatusStrings[i] = string(s)
	}

	selectBuilder := psqlbuilder.Select("id").
		From("bookings").
		Where(squirrel.Eq{"organization_id": organizationID}).
		Where(squirrel.Eq{"selected_date": date}).
		Where(squirrel.Eq{"selected_time": slot}).
		Where(squirrel.Eq{"status": activeStatusStrings})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CountSlotOccupancy - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: CountSlotOccupancy - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("%w: CountSlotOccupancy - scan row: %v", ErrScanRow, err)
		}
		count++
	}

	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("%w: CountSlotOccupancy - rows error: %v", ErrScanRow, err)
	}

	return count, nil
}

// GetOccupancy возвращает занятость слотов организации за период
// Используется для построения календаря доступности
func (r *Repository) GetOccupancy(ctx context.Context, organizationID int64, startDate, endDate time.Time) ([]domain.SlotOccupancy, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	activeStatusStrings := make([]string, len(domain.ActiveStatuses))
	for i, s := range domain.ActiveStatuses {
		activeStatusStrings[i] = string(s)
	}

	query, args, err := psqlbuilder.Select(
		"selected_date",
		"selected_time",
		"COUNT(*) AS booking_count",
	).
		From("bookings").
		Where(squirrel.Eq{"organization_id": organizationID}).
		Where(squirrel.GtOrEq{"selected_date": startDate}).
		Where(squirrel.LtOrEq{"selected_date": endDate}).
		Where(squirrel.Eq{"status": activeStatusStrings}).
		GroupBy("selected_date", "selected_time").
		OrderBy("selected_date ASC, selected_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetOccupancy - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetOccupancy - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	occupancies := make([]domain.SlotOccupancy, 0)
	for rows.Next() {
		var occ domain.SlotOccupancy
		if err := rows.Scan(&occ.Date, &occ.Time, &occ.BookingCount); err != nil {
			return nil, fmt.Errorf("%w: GetOccupancy - scan row: %v", ErrScanRow, err)
		}
		occupancies = append(occupancies, occ)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetOccupancy - rows error: %v", ErrScanRow, err)
	}

	return occupancies, nil
}

// UpdateStatus обновляет статус бронирования
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// Cancel отменяет бронирование с указанием причины
func (r *Repository) Cancel(ctx context.Context, id int64, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Cancel - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Cancel - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// GetExpiredAwaitingPayment возвращает бронирования с истекшим сроком оплаты,
// по которым напоминание еще не отправлялось
func (r *Repository) GetExpiredAwaitingPayment(ctx context.Context, now time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns).
		From("bookings").
		Where(squirrel.Eq{"payment_status": domain.PaymentAwaiting}).
		Where(squirrel.Lt{"payment_due_at": now}).
		Where(squirrel.Eq{"reminder_sent": false}).
		OrderBy("payment_due_at ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetExpiredAwaitingPayment - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetExpiredAwaitingPayment - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// MarkPaymentExpired помечает бронирование как просроченное по оплате
// Условие reminder_sent = false делает операцию идемпотентной: повторный
// прогон sweep-а не тронет уже обработанные записи
func (r *Repository) MarkPaymentExpired(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("payment_status", domain.PaymentExpired).
		Set("reminder_sent", true).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"reminder_sent": false}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkPaymentExpired - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: MarkPaymentExpired - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: MarkPaymentExpired - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// GetServiceLines возвращает строки услуг бронирования
func (r *Repository) GetServiceLines(ctx context.Context, bookingID int64) ([]domain.BookingServiceLine, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"booking_id",
		"service_id",
		"service_title",
		"service_quantity",
		"service_base_price",
		"tier_discount",
	).
		From("booking_services").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetServiceLines - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetServiceLines - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	lines := make([]domain.BookingServiceLine, 0)
	for rows.Next() {
		var line domain.BookingServiceLine
		err := rows.Scan(
			&line.ID,
			&line.BookingID,
			&line.ServiceID,
			&line.ServiceTitle,
			&line.ServiceQuantity,
			&line.ServiceBasePrice,
			&line.TierDiscount,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: GetServiceLines - scan row: %v", ErrScanRow, err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetServiceLines - rows error: %v", ErrScanRow, err)
	}

	return lines, nil
}

// GetOptionLines возвращает строки опций бронирования
func (r *Repository) GetOptionLines(ctx context.Context, bookingID int64) ([]domain.BookingOptionLine, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"booking_id",
		"option_id",
		"option_title",
		"option_price",
		"option_quantity",
	).
		From("booking_options").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetOptionLines - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetOptionLines - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	lines := make([]domain.BookingOptionLine, 0)
	for rows.Next() {
		var line domain.BookingOptionLine
		err := rows.Scan(
			&line.ID,
			&line.BookingID,
			&line.OptionID,
			&line.OptionTitle,
			&line.OptionPrice,
			&line.OptionQuantity,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: GetOptionLines - scan row: %v", ErrScanRow, err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetOptionLines - rows error: %v", ErrScanRow, err)
	}

	return lines, nil
}

// scanBooking сканирует одну строку результата в бронирование
func (r *Repository) scanBooking(row squirrel.RowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var createdAt, updatedAt sql.NullTime
	var optionsSummary pq.StringArray

	err := row.Scan(
		&booking.ID,
		&booking.OrganizationID,
		&booking.CustomerID,
		&booking.SelectedDate,
		&booking.SelectedTime,
		&booking.Status,
		&booking.PaymentStatus,
		&booking.TotalPrice,
		&booking.TierDiscount,
		&booking.SetDiscount,
		&booking.ServiceSummary,
		&optionsSummary,
		&booking.DiagnosisHasParking,
		&booking.DiagnosisNotes,
		&booking.PaymentDueAt,
		&booking.ReminderSent,
		&booking.CancellationReason,
		&booking.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.OptionsSummary = optionsSummary
	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func (r *Repository) scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := r.scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}
