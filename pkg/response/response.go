package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
)

// Envelope represents the common response contract.
type Envelope struct {
	Success   bool                   `json:"success"`
	Message   string                 `json:"message,omitempty"`
	Code      string                 `json:"code,omitempty"`
	Data      interface{}            `json:"data,omitempty"`
	Errors    []appErrors.FieldError `json:"errors,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// Page wraps list results with pagination metadata.
type Page struct {
	Items      interface{}        `json:"items"`
	Pagination *models.Pagination `json:"pagination"`
}

// JSON sends a success response.
func JSON(c *gin.Context, status int, data interface{}, message string) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, Envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: now(),
	})
}

// OK responds with HTTP 200.
func OK(c *gin.Context, data interface{}, message string) {
	JSON(c, http.StatusOK, data, message)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}, message string) {
	JSON(c, http.StatusCreated, data, message)
}

// Paginated wraps items with pagination metadata.
func Paginated(c *gin.Context, items interface{}, pagination *models.Pagination, message string) {
	JSON(c, http.StatusOK, Page{Items: items, Pagination: pagination}, message)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if !appErr.Operational() {
		_ = c.Error(err)
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, Envelope{
		Success:   false,
		Message:   appErr.Message,
		Code:      appErr.Code,
		Errors:    appErr.Details,
		Timestamp: now(),
	})
}

// Abort writes the error envelope and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
