package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/dorm-adp-api/pkg/errors"
	"github.com/noah-isme/dorm-adp-api/pkg/listing"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope represents the common response contract.
type Envelope struct {
	Status     string                 `json:"status"`
	Message    string                 `json:"message,omitempty"`
	Results    *int                   `json:"results,omitempty"`
	Total      *int                   `json:"total,omitempty"`
	Data       interface{}            `json:"data"`
	Pagination *listing.Meta          `json:"pagination,omitempty"`
	Warnings   []listing.Warning      `json:"warnings,omitempty"`
	Error      *appErrors.Error       `json:"error,omitempty"`
	Errors     []appErrors.FieldError `json:"errors,omitempty"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}

// JSON sends a single-resource success response.
func JSON(c *gin.Context, status int, data interface{}, meta ...map[string]interface{}) {
	noStore(c)
	envelope := Envelope{Status: StatusSuccess, Data: data}
	if len(meta) > 0 && meta[0] != nil {
		envelope.Meta = meta[0]
	}
	c.JSON(status, envelope)
}

// List sends a page of records. results is the slice length and total the number
// of matching rows irrespective of pagination.
func List(c *gin.Context, data interface{}, count int, page *listing.Meta, warnings []listing.Warning) {
	noStore(c)
	envelope := Envelope{
		Status:     StatusSuccess,
		Results:    &count,
		Data:       data,
		Pagination: page,
		Warnings:   warnings,
	}
	if page != nil {
		total := page.Total
		envelope.Total = &total
	}
	c.JSON(http.StatusOK, envelope)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Deleted confirms a removal with an explicit null payload.
func Deleted(c *gin.Context, message string) {
	noStore(c)
	c.JSON(http.StatusOK, Envelope{Status: StatusSuccess, Message: message, Data: nil})
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	c.JSON(appErr.Status, Envelope{
		Status:  StatusError,
		Message: appErr.Message,
		Error:   appErr,
		Errors:  appErr.Fields,
	})
}

// File streams an export download.
func File(c *gin.Context, filename, contentType string, payload []byte) {
	noStore(c)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, payload)
}
