package drafts

import "errors"

var (
	ErrDraftNotFound        = errors.New("draft not found")
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrInvalidInput         = errors.New("invalid input data")
	ErrStepIncomplete       = errors.New("current step is not complete")
	ErrNotReadyForSubmit    = errors.New("draft is not ready for submit")
	ErrSlotNotAvailable     = errors.New("selected slot is not available")
	ErrPriceMismatch        = errors.New("price has changed since confirmation")
	ErrInternal             = errors.New("internal error")
)
