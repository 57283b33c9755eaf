package draft

import "errors"

var (
	ErrUnknownService           = errors.New("service is not offered by the organization")
	ErrUnknownOption            = errors.New("option is not offered by the organization")
	ErrOptionServiceNotSelected = errors.New("option belongs to a service that is not selected")
	ErrQuantityOutOfRange       = errors.New("quantity is out of the allowed range")
	ErrStepIncomplete           = errors.New("current step is not complete")
	ErrAlreadyAtFirstStep       = errors.New("draft is already at the first step")
	ErrAlreadyAtLastStep        = errors.New("draft is already at the last step")
	ErrNoServicesSelected       = errors.New("at least one service must be selected")
	ErrDateTimeNotSet           = errors.New("booking date and time are not set")
	ErrDateInPast               = errors.New("booking date is in the past")
	ErrInvalidCustomerInfo      = errors.New("customer info failed validation")
	ErrNotReadyForSubmit        = errors.New("draft has not reached the confirmation step")
)
