package view

import (
	"github.com/dwarvesf/ape-bridge-backend/internal/model"
)

const ErrorKindInternal = "internal"

type Response[T any] struct {
	Data    T          `json:"data"`
	Message string     `json:"message,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// CreateResponse builds the API envelope. Bridge errors keep their kind, field
// and reason; any other error is reported as internal without its details.
// field overrides the error field when the error does not carry one.
func CreateResponse[T any](data T, err error, field string, message string) Response[T] {
	resp := Response[T]{
		Data:    data,
		Message: message,
	}
	if err == nil {
		return resp
	}

	if bridgeErr, ok := model.AsBridgeError(err); ok {
		resp.Error = &ErrorBody{
			Kind:    string(bridgeErr.Kind),
			Message: bridgeErr.Message,
			Field:   bridgeErr.Field,
			Reason:  bridgeErr.Reason,
		}
	} else {
		resp.Error = &ErrorBody{
			Kind:    ErrorKindInternal,
			Message: "internal server error",
		}
	}

	if resp.Error.Field == "" {
		resp.Error.Field = field
	}
	return resp
}
