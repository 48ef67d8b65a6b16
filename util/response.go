package util

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// MessageResponse represents a json response carrying a client facing message, used for rejected requests
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorDetail is the error object embedded in an ErrorDetailResponse
type ErrorDetail struct {
	Message string `json:"message"`
}

// ErrorDetailResponse represents a json response whose error is an object rather than a string
type ErrorDetailResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrInvalidInput is returned when a field fails validation
type ErrInvalidInput struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e ErrInvalidInput) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid input %s: %s", e.Field, e.Reason)
}

// ErrHTTP represents an error returned from an HTTP request
type ErrHTTP struct {
	URL    string
	Status int
	Err    error
}

func (h ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP Error Status - %d | URL - %s | Error: %s", h.Status, h.URL, h.Err)
}

// MessageErrResponse rejects a request with a client facing message
func MessageErrResponse(c *gin.Context, code int, err error) {
	c.Error(err).SetType(gin.ErrorTypePublic)
	c.JSON(code, MessageResponse{Message: err.Error()})
}

// DetailErrResponse sends a json response whose error field is an object
func DetailErrResponse(c *gin.Context, code int, err error) {
	c.Error(err)
	c.JSON(code, ErrorDetailResponse{Error: ErrorDetail{Message: err.Error()}})
}

// BodyAsError returns the HTTP body as an error
func BodyAsError(res *http.Response) error {
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	return ErrHTTP{URL: res.Request.URL.String(), Status: res.StatusCode, Err: fmt.Errorf("%s", body)}
}
