package catalog

import "errors"

var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrInternal             = errors.New("internal error")
)
