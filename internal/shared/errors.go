package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Session errors
	ErrNotAuthenticated   = fmt.Errorf("not authenticated")
	ErrAuthFailed         = fmt.Errorf("authentication failed")
	ErrSessionInvalid     = fmt.Errorf("session invalid, please log in again")
	ErrPreconditionNotMet = fmt.Errorf("precondition not met")
	ErrNotLinked          = fmt.Errorf("%w: spotify account not linked", ErrPreconditionNotMet)
	ErrLinkFailed         = fmt.Errorf("spotify linking failed")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// API and transport errors
	ErrRequestFailed      = fmt.Errorf("request failed")
	ErrNetwork            = fmt.Errorf("network error")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrInvalidResponse    = fmt.Errorf("invalid response")
	ErrSnapshotNotFound   = fmt.Errorf("snapshot not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
