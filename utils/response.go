package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every non-2xx API answer.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
	Code    int    `json:"code"`
}

// MessageResponse acknowledges a write that has nothing else to return.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func OK(c *gin.Context, message string) {
	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: message})
}

// ErrorResponseWithCode aborts the request with a JSON error body. Server
// errors are logged with the request path; the client only sees message.
func ErrorResponseWithCode(c *gin.Context, statusCode int, message string, err error) {
	errorMsg := message
	if err != nil && statusCode < http.StatusInternalServerError {
		errorMsg = err.Error()
	}
	if statusCode >= http.StatusInternalServerError {
		LogError(message, err, zap.String("path", c.FullPath()), zap.String("method", c.Request.Method))
	}

	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Success: false,
		Message: message,
		Error:   errorMsg,
		Code:    statusCode,
	})
}

func BadRequestError(c *gin.Context, message string, err error) {
	ErrorResponseWithCode(c, http.StatusBadRequest, message, err)
}

func InternalServerError(c *gin.Context, message string, err error) {
	if err == nil {
		err = errors.New(message)
	}
	ErrorResponseWithCode(c, http.StatusInternalServerError, message, err)
}

func UnauthorizedError(c *gin.Context, message string) {
	ErrorResponseWithCode(c, http.StatusUnauthorized, message, nil)
}

func NotFoundError(c *gin.Context, message string) {
	ErrorResponseWithCode(c, http.StatusNotFound, message, nil)
}

func ServiceUnavailableError(c *gin.Context, message string) {
	ErrorResponseWithCode(c, http.StatusServiceUnavailable, message, errors.New(message))
}

// ValidationError answers 422 with the validation failure.
func ValidationError(c *gin.Context, err error) {
	ErrorResponseWithCode(c, http.StatusUnprocessableEntity, "Validation failed", err)
}
