// Package simerr defines the error-kind taxonomy of this simulator's
// consensus layer (spec §7). Only ConfigurationError is fatal; the rest are
// returned from Peer methods as ordinary values for logging and test
// assertions, never panics — a simulation run never aborts on peer-level
// errors.
package simerr

import "github.com/pkg/errors"

// Kind distinguishes the diagnostic classes a Peer can report.
type Kind int

const (
	InvalidBlock Kind = iota
	DuplicateMessage
	StaleMiningEvent
)

func (k Kind) String() string {
	switch k {
	case InvalidBlock:
		return "invalid-block"
	case DuplicateMessage:
		return "duplicate-message"
	case StaleMiningEvent:
		return "stale-mining-event"
	default:
		return "unknown"
	}
}

// PeerError carries a Kind plus a human-readable reason. It is returned, not
// raised: every call site in peer/ treats it as a drop decision.
type PeerError struct {
	Kind   Kind
	Reason string
}

func (e *PeerError) Error() string {
	return e.Kind.String() + ": " + e.Reason
}

func New(kind Kind, reason string) *PeerError {
	return &PeerError{Kind: kind, Reason: reason}
}

// ConfigurationError is the one fatal class (spec §7): a non-connected graph
// after exhausting retries, out-of-range percentages, or negative times.
// Wrapped with pkg/errors so the network builder's failure carries a stack
// trace back to the offending Validate/Build call, the way the teacher wraps
// startup failures.
type ConfigurationError struct {
	cause error
}

func NewConfigurationError(reason string) error {
	return &ConfigurationError{cause: errors.New(reason)}
}

func WrapConfigurationError(cause error, reason string) error {
	return &ConfigurationError{cause: errors.Wrap(cause, reason)}
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.cause.Error()
}

func (e *ConfigurationError) Unwrap() error {
	return e.cause
}
