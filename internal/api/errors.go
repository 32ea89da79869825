package api

import "github.com/gin-gonic/gin"

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ErrorCode defines standard error codes.
type ErrorCode string

const (
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrCodeInvalidOrder   ErrorCode = "INVALID_ORDER"
	ErrCodeDuplicateOrder ErrorCode = "DUPLICATE_ORDER"
	ErrCodeOrderNotFound  ErrorCode = "ORDER_NOT_FOUND"
	ErrCodeCannotCancel   ErrorCode = "ORDER_CANNOT_CANCEL"
	ErrCodeInternalError  ErrorCode = "INTERNAL_ERROR"
)

// NewErrorResponse creates a new error response.
func NewErrorResponse(code ErrorCode, message string) *ErrorResponse {
	return &ErrorResponse{
		Error:   string(code),
		Message: message,
		Code:    string(code),
	}
}

// AbortWithError aborts the request with a standardized error response.
func AbortWithError(c *gin.Context, status int, code ErrorCode, message string) {
	c.AbortWithStatusJSON(status, NewErrorResponse(code, message))
}
