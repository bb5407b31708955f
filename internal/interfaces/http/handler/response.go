package handler

import "github.com/tileshop/backend/internal/interfaces/http/dto"

// Swagger-only envelope shapes. Handlers write dto.Response; these give swag
// a concrete data type per endpoint.

// APIResponse is the success envelope with a typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success" example:"true"`
	Data    T              `json:"data,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// ErrorResponse is the failure envelope
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error"`
}
