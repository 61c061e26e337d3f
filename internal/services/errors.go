package services

import (
	"fmt"

	"warehouse/internal/models"
)

// Messages carried by RequestError.
const (
	ErrMsgProductNotFound  = "Product not found."
	ErrMsgNegativeQuantity = "Negative integer entered!"
	ErrMsgEmptyName        = "Name of product is null or empty!"
)

// RequestError is an expected rejection of a warehouse request. Reason is
// the code reported to the caller.
type RequestError struct {
	Reason  models.ErrorReason
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

func newRequestError(reason models.ErrorReason, message string) *RequestError {
	return &RequestError{Reason: reason, Message: message}
}

func newRequestErrorf(reason models.ErrorReason, format string, args ...interface{}) *RequestError {
	return &RequestError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}
