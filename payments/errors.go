package payments

import "errors"

var (
	// ErrValidation covers malformed initiation input (amount, phone) caught
	// before any external call is made.
	ErrValidation = errors.New("payments: validation failed")

	// ErrOrderNotFound means the order id does not exist or belongs to
	// another user.
	ErrOrderNotFound = errors.New("payments: order not found")

	// ErrAlreadyPaid means the order has already been paid for; a second
	// charge must not be initiated.
	ErrAlreadyPaid = errors.New("payments: order already paid")

	// ErrPaymentInFlight means a correlation id is already stored on the
	// order, so a push is (or was) in flight. One order carries at most one
	// payment attempt at a time.
	ErrPaymentInFlight = errors.New("payments: payment already in flight")

	// ErrCorrelationNotFound means a callback referenced a correlation id no
	// order carries. The webhook answers non-2xx so the gateway retries, in
	// case the order write was lagging.
	ErrCorrelationNotFound = errors.New("payments: no order for correlation id")

	// ErrCorrelationWrite means the push went out but the correlation id
	// could not be stored, leaving a payment that may succeed without being
	// reconcilable. The operator is alerted before this is returned.
	ErrCorrelationWrite = errors.New("payments: failed to store correlation id after push")

	// ErrDuplicateLedgerEntry means a ledger row with the same receipt
	// already exists. Callers treat it as a successful no-op.
	ErrDuplicateLedgerEntry = errors.New("payments: duplicate ledger entry")

	// ErrPersistence covers database write failures during reconciliation.
	// The webhook answers non-2xx so the gateway redelivers.
	ErrPersistence = errors.New("payments: persistence failure")
)
