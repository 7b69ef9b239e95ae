// Package dto defines request and response shapes for the v1 API.
package dto

// IDResponse carries the identifier of a created resource.
type IDResponse struct {
	ID int64 `json:"id"`
}

// SuccessResponse is a generic acknowledgement.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
