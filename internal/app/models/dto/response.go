package dto

import "time"

// Response is the success envelope shared by every handler
type Response[T any] struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message,omitempty"`
	Data      T         `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// NewResponse wraps data in the success envelope
func NewResponse[T any](data T, message string) Response[T] {
	return Response[T]{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// PaginationInfo represents pagination metadata; Pages is ceil(Total/Limit)
type PaginationInfo struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// Page is a paginated list with metadata
type Page[T any] struct {
	Items      []T            `json:"items"`
	Pagination PaginationInfo `json:"pagination"`
}

// NewPage builds a Page, never serializing a nil slice
func NewPage[T any](items []T, info PaginationInfo) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Pagination: info}
}

// MessageResponse is the payload of operations that only report an outcome
type MessageResponse struct {
	Message string `json:"message"`
}

// CountResponse is the payload of count endpoints
type CountResponse struct {
	Count int64 `json:"count"`
}
