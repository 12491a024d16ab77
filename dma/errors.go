package dma

import (
	"errors"
	"fmt"
)

// Errors returned by the controller. Returned errors wrap one of these and can
// be matched with errors.Is.
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrBusy              = errors.New("channel busy")
	ErrIO                = errors.New("i/o error")
	ErrNotSupported      = errors.New("not supported")
	ErrCanceled          = errors.New("transfer canceled")
	ErrInvariantViolated = errors.New("invariant violated")
)

// An InvariantViolation reports a condition that can only be reached through
// misuse of the controller, such as a channel linked to itself or a channel
// reconfigured while its transfer is in flight.
type InvariantViolation struct {
	Channel uint32
	Reason  string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("channel %d: %s: %s",
		e.Channel, ErrInvariantViolated, e.Reason)
}

// Unwrap makes errors.Is(err, ErrInvariantViolated) hold.
func (e *InvariantViolation) Unwrap() error {
	return ErrInvariantViolated
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
