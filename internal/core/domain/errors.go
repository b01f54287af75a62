package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent workflow failures.
// Typed errors below wrap one of these so callers can use errors.Is.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPrecondition indicates a workflow step was invoked before the
	// state it depends on exists. These never reach the gateway.
	ErrPrecondition = errors.New("precondition failed")

	// ErrValidation indicates malformed local input caught before dispatch.
	ErrValidation = errors.New("validation failed")

	// ErrGateway indicates the gateway answered with a non-success status.
	ErrGateway = errors.New("gateway error")

	// ErrMalformedResponse indicates a success response that is missing
	// required fields.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrWorkflowBusy indicates another workflow operation is in flight.
	ErrWorkflowBusy = errors.New("workflow operation in progress")
)

// PreconditionError reports a step invoked out of order.
type PreconditionError struct {
	Op     string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// Is matches ErrPrecondition.
func (e *PreconditionError) Is(target error) bool {
	return target == ErrPrecondition
}

// ValidationError reports local input rejected before any remote call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is matches ErrValidation and ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation || target == ErrInvalidInput
}

// GatewayError reports a non-success gateway response.
type GatewayError struct {
	// Op is the gateway operation (extract, index, underwrite, trace, replay).
	Op string

	// Status is the HTTP status code.
	Status int

	// Message is the human-readable message taken from the error envelope.
	Message string

	// RequestID is the server-side request id echoed in the response, if any.
	RequestID string
}

func (e *GatewayError) Error() string {
	return e.Message
}

// Is matches ErrGateway.
func (e *GatewayError) Is(target error) bool {
	return target == ErrGateway
}

// MalformedResponseError reports a success response that failed normalisation.
type MalformedResponseError struct {
	Op     string
	Field  string
	Reason string
}

func (e *MalformedResponseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("malformed %s response: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("malformed %s response: %s: %s", e.Op, e.Field, e.Reason)
}

// Is matches ErrMalformedResponse.
func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}
