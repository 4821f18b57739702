package payments

import (
	"context"
	"sync"
	"time"

	"github.com/Mwangi-K/ElimuStore/models"
)

// WaiterState is the client-visible state of a payment attempt
type WaiterState string

const (
	StateIdle                 WaiterState = "idle"
	StateInitiating           WaiterState = "initiating"
	StateAwaitingConfirmation WaiterState = "awaitingConfirmation"
	StateConfirmed            WaiterState = "confirmed"
	StateFailed               WaiterState = "failed"
	StateTimedOut             WaiterState = "timedOut"
)

const (
	// DefaultPollInterval is how often the waiter re-reads payment status
	DefaultPollInterval = 5 * time.Second
	// DefaultWaitTimeout bounds how long the waiter observes before giving
	// up. The order stays pending server-side; the callback may still arrive
	// after the waiter stops watching.
	DefaultWaitTimeout = 120 * time.Second
)

// StatusFunc reads the current payment status of the order being watched
type StatusFunc func(ctx context.Context) (*StatusView, error)

// InitiateFunc performs the payment initiation (the STK push request)
type InitiateFunc func(ctx context.Context) error

// Waiter bridges asynchronous reconciliation back to a synchronous-feeling
// flow: it initiates a payment, then polls the status surface until a
// terminal payment status appears or the timeout elapses. Cancel stops the
// polling without touching server-side state; the gateway attempt keeps
// running on the payer's handset either way.
type Waiter struct {
	status   StatusFunc
	interval time.Duration
	timeout  time.Duration

	mu       sync.Mutex
	state    WaiterState
	stopOnce sync.Once
	stopCh   chan struct{}
}

// WaiterOption customizes a Waiter
type WaiterOption func(*Waiter)

// WithPollInterval overrides the polling interval
func WithPollInterval(d time.Duration) WaiterOption {
	return func(w *Waiter) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithTimeout overrides the waiting window
func WithTimeout(d time.Duration) WaiterOption {
	return func(w *Waiter) {
		if d > 0 {
			w.timeout = d
		}
	}
}

// NewWaiter builds a waiter over the given status reader
func NewWaiter(status StatusFunc, opts ...WaiterOption) *Waiter {
	w := &Waiter{
		status:   status,
		interval: DefaultPollInterval,
		timeout:  DefaultWaitTimeout,
		state:    StateIdle,
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// State returns the current client-visible state
func (w *Waiter) State() WaiterState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Waiter) setState(s WaiterState) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}

// Cancel stops the waiter and returns it to idle. Safe to call more than
// once; only the first call closes the stop channel. Cancelling does not
// cancel the in-flight gateway request: the payer may still complete the
// payment, and the order will reflect that the next time it is read.
func (w *Waiter) Cancel() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
}

// Run drives the full client flow: initiate, then poll until terminal.
// It returns the final state. Poll errors are treated as transient ("no
// update yet" is a valid state, not a failure); only a terminal payment
// status or the timeout ends the wait.
func (w *Waiter) Run(ctx context.Context, initiate InitiateFunc) (WaiterState, error) {
	w.setState(StateInitiating)
	if err := initiate(ctx); err != nil {
		w.setState(StateFailed)
		return StateFailed, err
	}

	w.setState(StateAwaitingConfirmation)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	deadline := time.NewTimer(w.timeout)
	defer deadline.Stop()

	for {
		select {
		case <-w.stopCh:
			w.setState(StateIdle)
			return StateIdle, nil
		case <-ctx.Done():
			w.setState(StateIdle)
			return StateIdle, ctx.Err()
		case <-deadline.C:
			w.setState(StateTimedOut)
			return StateTimedOut, nil
		case <-ticker.C:
			view, err := w.status(ctx)
			if err != nil {
				continue
			}
			switch view.PaymentStatus {
			case models.PaymentStatusPaid:
				w.setState(StateConfirmed)
				return StateConfirmed, nil
			case models.PaymentStatusFailed:
				w.setState(StateFailed)
				return StateFailed, nil
			}
		}
	}
}
