package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/HCS-BookingService/internal/domain"
	"github.com/m04kA/HCS-BookingService/pkg/dbmetrics"
	"github.com/m04kA/HCS-BookingService/pkg/psqlbuilder"
)

// Repository репозиторий для чтения каталога организации
// Каталогом владеет админка, сервис бронирования его только читает
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория каталога
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetOrganization получает организацию по ID
// Сет-скидки хранятся JSONB-массивом прямо в строке организации
func (r *Repository) GetOrganization(ctx context.Context, id int64) (*domain.Organization, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"name",
		"slot_capacity",
		"line_channel_token",
		"admin_line_user_id",
		"set_discounts",
		"created_at",
		"updated_at",
	).
		From("organizations").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetOrganization - build select query: %v", ErrBuildQuery, err)
	}

	var org domain.Organization
	var setDiscountsRaw []byte
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&org.ID,
		&org.Name,
		&org.SlotCapacity,
		&org.LineChannelToken,
		&org.AdminLineUserID,
		&setDiscountsRaw,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrOrganizationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetOrganization - scan organization: %v", ErrScanRow, err)
	}

	if len(setDiscountsRaw) > 0 {
		if err := json.Unmarshal(setDiscountsRaw, &org.SetDiscounts); err != nil {
			return nil, fmt.Errorf("%w: GetOrganization - unmarshal set_discounts: %v", ErrScanRow, err)
		}
	}

	org.CreatedAt = createdAt.Time
	org.UpdatedAt = updatedAt.Time

	return &org, nil
}

// GetServices получает все услуги организации
func (r *Repository) GetServices(ctx context.Context, organizationID int64) ([]domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := serviceSelect().
		Where(squirrel.Eq{"organization_id": organizationID}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetServices - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetServices - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	services := make([]domain.Service, 0)
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: GetServices - scan row: %v", ErrScanRow, err)
		}
		services = append(services, *svc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetServices - rows error: %v", ErrScanRow, err)
	}

	return services, nil
}

// GetOptionsByServiceIDs получает опции для набора услуг
func (r *Repository) GetOptionsByServiceIDs(ctx context.Context, serviceIDs []int64) ([]domain.ServiceOption, error) {
	if len(serviceIDs) == 0 {
		return []domain.ServiceOption{}, nil
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"service_id",
		"title",
		"price",
		"description",
		"created_at",
		"updated_at",
	).
		From("service_options").
		Where(squirrel.Eq{"service_id": serviceIDs}).
		OrderBy("service_id ASC, id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetOptionsByServiceIDs - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetOptionsByServiceIDs - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	options := make([]domain.ServiceOption, 0)
	for rows.Next() {
		var opt domain.ServiceOption
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&opt.ID,
			&opt.ServiceID,
			&opt.Title,
			&opt.Price,
			&opt.Description,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: GetOptionsByServiceIDs - scan row: %v", ErrScanRow, err)
		}

		opt.CreatedAt = createdAt.Time
		opt.UpdatedAt = updatedAt.Time
		options = append(options, opt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetOptionsByServiceIDs - rows error: %v", ErrScanRow, err)
	}

	return options, nil
}

// IsOrganizationStaff проверяет, является ли пользователь сотрудником организации
func (r *Repository) IsOrganizationStaff(ctx context.Context, organizationID, userID int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("1").
		From("organization_staff").
		Where(squirrel.Eq{"organization_id": organizationID}).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: IsOrganizationStaff - build select query: %v", ErrBuildQuery, err)
	}

	var one int
	err = executor.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: IsOrganizationStaff - scan row: %v", ErrScanRow, err)
	}

	return true, nil
}

func serviceSelect() squirrel.SelectBuilder {
	return psqlbuilder.Select(
		"id",
		"organization_id",
		"title",
		"description",
		"base_price",
		"duration_minutes",
		"category",
		"quantity_discounts",
		"created_at",
		"updated_at",
	).From("services")
}

// scanService сканирует строку услуги, разбирая JSONB-массив уровней скидок
func scanService(row squirrel.RowScanner) (*domain.Service, error) {
	var svc domain.Service
	var discountsRaw []byte
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&svc.ID,
		&svc.OrganizationID,
		&svc.Title,
		&svc.Description,
		&svc.BasePrice,
		&svc.DurationMinutes,
		&svc.Category,
		&discountsRaw,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(discountsRaw) > 0 {
		if err := json.Unmarshal(discountsRaw, &svc.QuantityDiscounts); err != nil {
			return nil, err
		}
	}

	svc.CreatedAt = createdAt.Time
	svc.UpdatedAt = updatedAt.Time

	return &svc, nil
}
