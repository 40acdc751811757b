package marketdata

import "fmt"

// Stable subscription error codes, mirrored into error confirmations.
const (
	CodeUnknownSession   = "UNKNOWN_SESSION"
	CodeCapacityExceeded = "CAPACITY_EXCEEDED"
	CodeEmptySymbols     = "EMPTY_SYMBOLS"
)

// SubscriptionError is the closed set of subscription failures. Each
// rejects a single request and leaves existing subscriptions untouched.
type SubscriptionError interface {
	error
	Code() string
}

// UnknownSessionError means the session id was never registered or has
// already been deregistered.
type UnknownSessionError struct {
	SessionID string
}

func (e *UnknownSessionError) Code() string { return CodeUnknownSession }

func (e *UnknownSessionError) Error() string {
	return fmt.Sprintf("unknown session %s", e.SessionID)
}

// CapacityError means the request would push the session past the
// per-session subscription limit.
type CapacityError struct {
	SessionID string
	Limit     int
	Requested int
}

func (e *CapacityError) Code() string { return CodeCapacityExceeded }

func (e *CapacityError) Error() string {
	return fmt.Sprintf("session %s would hold %d subscriptions, limit is %d", e.SessionID, e.Requested, e.Limit)
}

// EmptySymbolsError means the request carried no symbols.
type EmptySymbolsError struct {
	SessionID string
}

func (e *EmptySymbolsError) Code() string { return CodeEmptySymbols }

func (e *EmptySymbolsError) Error() string {
	return fmt.Sprintf("session %s sent an empty symbol set", e.SessionID)
}
