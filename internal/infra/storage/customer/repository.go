package customer

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/HCS-BookingService/internal/domain"
	"github.com/m04kA/HCS-BookingService/pkg/dbmetrics"
	"github.com/m04kA/HCS-BookingService/pkg/psqlbuilder"
)

const customerColumns = `id, organization_id, name, email, phone, line_user_id, avatar_url,
postal_code, address, address_building, created_at, updated_at`

// Repository репозиторий для работы с клиентами
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория клиентов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// FindOrCreate идемпотентно находит или создает клиента организации
//
// Дедупликация опирается на частичные уникальные индексы:
//   - (organization_id, line_user_id) WHERE line_user_id IS NOT NULL
//   - (organization_id, lower(email)) WHERE email IS NOT NULL
//
// Вставка с ON CONFLICT ... DO UPDATE атомарна: два параллельных запроса
// с одинаковым ключом вернут один и тот же id без дублей. При конфликте
// контактные данные обновляются свежими значениями.
func (r *Repository) FindOrCreate(ctx context.Context, identity domain.CustomerIdentity) (*domain.Customer, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertBuilder := psqlbuilder.Insert("customers").
		Columns(
			"organization_id",
			"name",
			"email",
			"phone",
			"line_user_id",
			"avatar_url",
			"postal_code",
			"address",
			"address_building",
		).
		Values(
			identity.OrganizationID,
			identity.Name,
			identity.Email,
			identity.Phone,
			identity.LineUserID,
			identity.AvatarURL,
			identity.PostalCode,
			identity.Address,
			identity.AddressBuilding,
		)

	// Цель конфликта выбирается по старшинству ключей: LINE ID, затем email.
	// Без ключа дедупликация невозможна, выполняется обычная вставка новой записи.
	switch {
	case identity.LineUserID != nil && *identity.LineUserID != "":
		insertBuilder = insertBuilder.Suffix(`ON CONFLICT (organization_id, line_user_id) WHERE line_user_id IS NOT NULL
DO UPDATE SET name = EXCLUDED.name,
	email = COALESCE(EXCLUDED.email, customers.email),
	phone = COALESCE(EXCLUDED.phone, customers.phone),
	avatar_url = COALESCE(EXCLUDED.avatar_url, customers.avatar_url),
	postal_code = COALESCE(EXCLUDED.postal_code, customers.postal_code),
	address = COALESCE(EXCLUDED.address, customers.address),
	address_building = COALESCE(EXCLUDED.address_building, customers.address_building),
	updated_at = NOW()`)
	case identity.Email != nil && *identity.Email != "":
		insertBuilder = insertBuilder.Suffix(`ON CONFLICT (organization_id, lower(email)) WHERE email IS NOT NULL
DO UPDATE SET name = EXCLUDED.name,
	phone = COALESCE(EXCLUDED.phone, customers.phone),
	postal_code = COALESCE(EXCLUDED.postal_code, customers.postal_code),
	address = COALESCE(EXCLUDED.address, customers.address),
	address_building = COALESCE(EXCLUDED.address_building, customers.address_building),
	updated_at = NOW()`)
	}

	query, args, err := insertBuilder.
		Suffix("RETURNING " + customerColumns).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: FindOrCreate - build insert query: %v", ErrBuildQuery, err)
	}

	cust, err := scanCustomer(executor.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("%w: FindOrCreate - execute upsert: %v", ErrExecQuery, err)
	}

	return cust, nil
}

// GetByID получает клиента по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(customerColumns).
		From("customers").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	cust, err := scanCustomer(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan customer: %v", ErrScanRow, err)
	}

	return cust, nil
}

// GetByLineUserID получает клиента организации по LINE ID
func (r *Repository) GetByLineUserID(ctx context.Context, organizationID int64, lineUserID string) (*domain.Customer, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(customerColumns).
		From("customers").
		Where(squirrel.Eq{"organization_id": organizationID}).
		Where(squirrel.Eq{"line_user_id": lineUserID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByLineUserID - build select query: %v", ErrBuildQuery, err)
	}

	cust, err := scanCustomer(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByLineUserID - scan customer: %v", ErrScanRow, err)
	}

	return cust, nil
}

// scanCustomer сканирует одну строку результата в клиента
func scanCustomer(row squirrel.RowScanner) (*domain.Customer, error) {
	var cust domain.Customer
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&cust.ID,
		&cust.OrganizationID,
		&cust.Name,
		&cust.Email,
		&cust.Phone,
		&cust.LineUserID,
		&cust.AvatarURL,
		&cust.PostalCode,
		&cust.Address,
		&cust.AddressBuilding,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	cust.CreatedAt = createdAt.Time
	cust.UpdatedAt = updatedAt.Time

	return &cust, nil
}
