package order

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidStatus        = errors.New("invalid order status")
)

type Status string

const (
	StatusPending          Status = "PENDING"
	StatusPaymentPending   Status = "PAYMENT_PENDING"
	StatusPaymentSubmitted Status = "PAYMENT_SUBMITTED"
	StatusPaymentVerified  Status = "PAYMENT_VERIFIED"
	StatusPaymentRejected  Status = "PAYMENT_REJECTED"
	StatusProcessing       Status = "PROCESSING"
	StatusCodeDelivered    Status = "CODE_DELIVERED"
	StatusCompleted        Status = "COMPLETED"
	StatusCancelled        Status = "CANCELLED"
)

func NewStatus(value string) (Status, error) {
	s := Status(value)
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPaymentPending, StatusPaymentSubmitted,
		StatusPaymentVerified, StatusPaymentRejected, StatusProcessing,
		StatusCodeDelivered, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusPaymentRejected, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

type PaymentMethod string

const (
	PaymentCOD          PaymentMethod = "COD"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentStripe       PaymentMethod = "STRIPE"
)

func NewPaymentMethod(value string) (PaymentMethod, error) {
	pm := PaymentMethod(value)
	if !pm.IsValid() {
		return "", ErrInvalidPaymentMethod
	}
	return pm, nil
}

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCOD, PaymentBankTransfer, PaymentStripe:
		return true
	default:
		return false
	}
}

func (m PaymentMethod) String() string {
	return string(m)
}

// InitialStatus maps the payment method to the state a fresh order
// starts in: cash-style methods skip payment submission, bank transfers
// arrive with proof attached, gateway payments wait for the gateway.
func (m PaymentMethod) InitialStatus() Status {
	switch m {
	case PaymentCOD:
		return StatusPending
	case PaymentBankTransfer:
		return StatusPaymentSubmitted
	default:
		return StatusPaymentPending
	}
}

// InvalidTransitionError is returned by every guarded transition when the
// order is not in a legal source state for the requested event.
type InvalidTransitionError struct {
	From  Status
	Event string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: cannot apply %q from %s", e.Event, e.From)
}

// transitions is the single source of truth for the lifecycle graph.
// Status is only ever written through the entity methods that consult it.
var transitions = map[string]map[Status]Status{
	"submit_payment": {
		StatusPaymentPending: StatusPaymentSubmitted,
	},
	"verify_payment": {
		StatusPaymentSubmitted: StatusPaymentVerified,
	},
	"reject_payment": {
		StatusPaymentSubmitted: StatusPaymentRejected,
	},
	"begin_processing": {
		StatusPending:         StatusProcessing,
		StatusPaymentVerified: StatusProcessing,
	},
	"deliver_codes": {
		StatusPending:         StatusCodeDelivered,
		StatusPaymentVerified: StatusCodeDelivered,
		StatusProcessing:      StatusCodeDelivered,
	},
	"complete": {
		StatusProcessing:    StatusCompleted,
		StatusCodeDelivered: StatusCompleted,
	},
}

func nextStatus(current Status, event string) (Status, error) {
	targets, ok := transitions[event]
	if !ok {
		return "", &InvalidTransitionError{From: current, Event: event}
	}
	next, ok := targets[current]
	if !ok {
		return "", &InvalidTransitionError{From: current, Event: event}
	}
	return next, nil
}
