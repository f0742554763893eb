package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a gateway failure for caller branching
type ErrorKind string

const (
	// KindStructuredFault is a gateway-level fault document, independent of
	// any specific operation (bad credentials, disabled account)
	KindStructuredFault ErrorKind = "STRUCTURED_FAULT"

	// KindBusinessFailure is a well-formed response rejecting the requested
	// operation (declined card, invalid card number). User-correctable;
	// retryable only with explicit caller intent.
	KindBusinessFailure ErrorKind = "BUSINESS_FAILURE"

	// KindMalformedResponse is a response matching no recognized shape
	KindMalformedResponse ErrorKind = "MALFORMED_RESPONSE"

	// KindTransportFailure is a non-success HTTP status or connection-level failure
	KindTransportFailure ErrorKind = "TRANSPORT_FAILURE"

	// KindValidationFailure is a caller-argument precondition violation,
	// raised before any network call
	KindValidationFailure ErrorKind = "VALIDATION_FAILURE"
)

// GatewayError is the typed error surfaced by every failed gateway call.
// Original carries the parsed record, fault subtree, raw body, or split
// fields that produced the failure, for audit. Errors are never swallowed
// inside the adapter.
type GatewayError struct {
	Kind     ErrorKind
	Message  string
	Original interface{}
	Err      error
}

// Error implements the error interface
func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// NewGatewayError creates a new gateway error
func NewGatewayError(kind ErrorKind, message string) *GatewayError {
	return &GatewayError{Kind: kind, Message: message}
}

// WithOriginal attaches the offending payload to the error
func (e *GatewayError) WithOriginal(original interface{}) *GatewayError {
	e.Original = original
	return e
}

// WrapGatewayError wraps an existing error with a gateway error kind
func WrapGatewayError(kind ErrorKind, message string, err error) *GatewayError {
	return &GatewayError{Kind: kind, Message: message, Err: err}
}

// NewValidationError creates a ValidationFailure for a bad caller argument
func NewValidationError(field, message string) *GatewayError {
	return &GatewayError{
		Kind:    KindValidationFailure,
		Message: fmt.Sprintf("%s: %s", field, message),
	}
}

// AsGatewayError extracts a GatewayError from an error chain
func AsGatewayError(err error) (*GatewayError, bool) {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr, true
	}
	return nil, false
}

// IsKind checks if an error is a GatewayError with the given kind
func IsKind(err error, kind ErrorKind) bool {
	if gwErr, ok := AsGatewayError(err); ok {
		return gwErr.Kind == kind
	}
	return false
}

// IsBusinessFailure reports whether the gateway rejected the operation itself
// rather than failing at the protocol or transport level
func IsBusinessFailure(err error) bool {
	return IsKind(err, KindBusinessFailure)
}

// IsInfrastructureFailure reports transport or protocol-shape failures,
// the cases a caller should treat as infrastructure rather than user error
func IsInfrastructureFailure(err error) bool {
	return IsKind(err, KindTransportFailure) || IsKind(err, KindMalformedResponse)
}
