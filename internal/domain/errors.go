package domain

import (
	"errors"
	"fmt"
)

// ValidationError reports missing or invalid input detected before any
// network call. The reason is safe to show to the user.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// NoStopsFoundError reports a directory lookup that succeeded but returned
// no stops for the line.
type NoStopsFoundError struct {
	LineID string
}

func (e *NoStopsFoundError) Error() string {
	return fmt.Sprintf("no stops found for route %q, try a different route", e.LineID)
}

// RemoteError reports a collaborator that answered with a failure status or
// an explicit error payload. Message is shown to the user verbatim.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string { return e.Message }

// TransportError reports that no response was obtained at all (dial, DNS,
// timeout). Message is generic; Err keeps the technical cause for logs.
type TransportError struct {
	Message string
	Err     error
}

func (e *TransportError) Error() string { return e.Message }

func (e *TransportError) Unwrap() error { return e.Err }

// ComputationError reports a violated internal invariant. It signals a
// defect and is logged apart from user-caused failures.
type ComputationError struct {
	Reason string
}

func (e *ComputationError) Error() string { return "computation: " + e.Reason }

// IsUserCorrectable reports whether err can be fixed by the user changing
// their input (as opposed to a remote, transport or internal failure).
func IsUserCorrectable(err error) bool {
	var ve *ValidationError
	var nf *NoStopsFoundError
	return errors.As(err, &ve) || errors.As(err, &nf)
}
