package domain

import "time"

// Customer represents a resolved customer identity within an organization
type Customer struct {
	ID              int64
	OrganizationID  int64
	Name            string
	Email           *string
	Phone           *string
	LineUserID      *string
	AvatarURL       *string
	PostalCode      *string
	Address         *string
	AddressBuilding *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CustomerIdentity данные для идемпотентного поиска/создания клиента
// Поиск идет по (organization_id, line_user_id), затем по (organization_id, email)
type CustomerIdentity struct {
	OrganizationID  int64
	Name            string
	Email           *string
	Phone           *string
	LineUserID      *string
	AvatarURL       *string
	PostalCode      *string
	Address         *string
	AddressBuilding *string
}

// HasLookupKey returns true if the identity carries at least one
// deduplication key (LINE user id or email)
func (c CustomerIdentity) HasLookupKey() bool {
	return (c.LineUserID != nil && *c.LineUserID != "") ||
		(c.Email != nil && *c.Email != "")
}
