// Package response writes the JSON error envelope shared by handlers and
// middleware.
package response

import (
	"friendzone/apperr"

	"github.com/gin-gonic/gin"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "requestId"

type ErrorBody struct {
	Error     string            `json:"error"`
	Message   string            `json:"message"`
	RequestID string            `json:"requestId,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

// Abort stops the chain with the given status and error body.
func Abort(c *gin.Context, status int, kind apperr.Kind, message string) {
	c.AbortWithStatusJSON(status, ErrorBody{
		Error:     string(kind),
		Message:   message,
		RequestID: c.GetString(RequestIDKey),
	})
}

// Error translates err into its status and body. The error is attached to
// the gin context so the access log records the cause.
func Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(apperr.HTTPStatus(err), ErrorBody{
		Error:     string(apperr.KindOf(err)),
		Message:   apperr.Message(err),
		RequestID: c.GetString(RequestIDKey),
		Details:   apperr.Details(err),
	})
}
