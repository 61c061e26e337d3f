package models

// ErrorReason tells a caller why a warehouse request was rejected.
type ErrorReason string

const (
	ErrorReasonInvalidRequest    ErrorReason = "InvalidRequest"
	ErrorReasonQuantityInvalid   ErrorReason = "QuantityInvalid"
	ErrorReasonNotEnoughQuantity ErrorReason = "NotEnoughQuantity"
)

// UpdateQuantityRequest is the body of the order, ship and restock endpoints.
type UpdateQuantityRequest struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"quantity"`
}

// UpdateResponse reports the outcome of a quantity update.
type UpdateResponse struct {
	Success     bool         `json:"success"`
	ErrorReason *ErrorReason `json:"errorReason"`
}

// CreateResponse reports the outcome of a create request. Model is nil on failure.
type CreateResponse[T any] struct {
	Success     bool         `json:"success"`
	Model       *T           `json:"model"`
	ErrorReason *ErrorReason `json:"errorReason"`
}

// UpdateSucceeded returns a successful UpdateResponse.
func UpdateSucceeded() UpdateResponse {
	return UpdateResponse{Success: true}
}

// UpdateFailed returns a failed UpdateResponse carrying reason.
func UpdateFailed(reason ErrorReason) UpdateResponse {
	return UpdateResponse{Success: false, ErrorReason: &reason}
}
