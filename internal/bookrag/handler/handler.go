// Package handler provides the HTTP handlers of the bookrag service.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/bookrag-io/bookrag/pkg/utils/errors"
)

// SuccessResponse is the standard success envelope.
type SuccessResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// writeSuccess writes the success envelope.
func writeSuccess(c *gin.Context, data any) {
	c.JSON(http.StatusOK, SuccessResponse{Code: 0, Message: "success", Data: data})
}

// writeError maps an error onto the error envelope via the error
// registry, so every failure carries a stable machine-readable code.
func writeError(c *gin.Context, err error) {
	// Only the registered message goes to the client; the cause stays in
	// the logs.
	errno := apierrors.FromError(err)
	c.JSON(errno.HTTPStatus(), ErrorResponse{Code: errno.Code, Message: errno.Message})
}

// writeBadRequest reports a request binding failure.
func writeBadRequest(c *gin.Context, err error) {
	writeError(c, apierrors.ErrInvalidRequest.WithCause(err))
}
