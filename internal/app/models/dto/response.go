package dto

import "github.com/yigit/majlis/internal/app/models"

// APIResponse wraps every successful payload. Toasts are the notifications
// raised for the session while handling the request.
type APIResponse struct {
	Data       interface{}     `json:"data,omitempty"`
	Message    string          `json:"message,omitempty"`
	Toasts     []models.Toast  `json:"toasts,omitempty"`
	Pagination *PaginationInfo `json:"pagination,omitempty"`
}

// PaginationInfo describes one page of a list
type PaginationInfo struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	PageSize    int   `json:"pageSize"`
	TotalItems  int64 `json:"totalItems"`
}

// SuccessResponse represents a standard success response for API endpoints
type SuccessResponse struct {
	Message string `json:"message"`
}
