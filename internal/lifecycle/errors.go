// Package lifecycle implements the guest service request core: the status
// transition engine, the billing reconciliation engine, the front-desk
// transfer coordinator and the facade that coordinates them per staff
// action.  All failures are values; precondition failures are returned
// synchronously while collaborator failures surface as warnings on an
// otherwise successful result.
package lifecycle

import "errors"

// ErrRequestNotFound is returned when no request with the given id exists
// within the caller's tenant.  Handlers should translate this into an
// HTTP 404 response.
var ErrRequestNotFound = errors.New("request not found")

// ErrInvalidTransition is returned when the requested status or billing
// edge is not permitted from the current state.  The request is rejected
// before any mutation occurs.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrOverpayment is returned when a collection amount exceeds the
// remaining balance.  The request is rejected before any mutation.
var ErrOverpayment = errors.New("amount exceeds remaining balance")

// ErrApprovalRequired is returned when a privileged action (complimentary
// write-off) is attempted without a valid manager approval token.
var ErrApprovalRequired = errors.New("manager approval required")

// ErrAlreadyTransferred signals that billing responsibility already moved
// to the front desk.  For repeated transfer calls the facade converts it
// into an idempotent no-op; for direct billing attempts it is a hard
// precondition failure.
var ErrAlreadyTransferred = errors.New("request already transferred to frontdesk")

// ErrAlreadySettled signals that the billing obligation is already in a
// terminal or fully settled state.  Repeat complimentary calls are
// converted into idempotent no-ops by the billing engine.
var ErrAlreadySettled = errors.New("request billing already settled")

// ErrConcurrentModification is returned when an atomic conditional write
// lost the race against another staff session.  Callers should refetch
// and retry or surface the conflict to the user.
var ErrConcurrentModification = errors.New("request modified concurrently")
