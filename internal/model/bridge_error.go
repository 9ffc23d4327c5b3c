package model

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	ErrorKindValidation        ErrorKind = "validation"
	ErrorKindConflict          ErrorKind = "conflict"
	ErrorKindNotFound          ErrorKind = "not_found"
	ErrorKindInvalidTransition ErrorKind = "invalid_transition"
)

// Reasons attached to invalid_transition errors.
const (
	TransitionReasonTerminal   = "terminal"
	TransitionReasonRegression = "regression"
)

// BridgeError is the structured error every bridge operation returns to its caller.
type BridgeError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
	Reason  string    `json:"reason,omitempty"`
}

func (e *BridgeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func NewValidationError(field, message string) *BridgeError {
	return &BridgeError{Kind: ErrorKindValidation, Field: field, Message: message}
}

func NewConflictError(message string) *BridgeError {
	return &BridgeError{Kind: ErrorKindConflict, Message: message}
}

func NewNotFoundError(message string) *BridgeError {
	return &BridgeError{Kind: ErrorKindNotFound, Message: message}
}

func NewInvalidTransitionError(reason, message string) *BridgeError {
	return &BridgeError{Kind: ErrorKindInvalidTransition, Reason: reason, Message: message}
}

// AsBridgeError unwraps err into a *BridgeError when possible.
func AsBridgeError(err error) (*BridgeError, bool) {
	var be *BridgeError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

func IsKind(err error, kind ErrorKind) bool {
	be, ok := AsBridgeError(err)
	return ok && be.Kind == kind
}

// IsRegression reports a stale or out-of-order update, which replaying watchers produce routinely.
func IsRegression(err error) bool {
	be, ok := AsBridgeError(err)
	return ok && be.Kind == ErrorKindInvalidTransition && be.Reason == TransitionReasonRegression
}

func IsTerminalOverwrite(err error) bool {
	be, ok := AsBridgeError(err)
	return ok && be.Kind == ErrorKindInvalidTransition && be.Reason == TransitionReasonTerminal
}
