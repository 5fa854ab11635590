// Package handlers implements the HTTP endpoints for classification, duty
// calculation, catalog lookup, and health.
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/clearfreight/tariffscope/pkg/errors"
)

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// respondError translates an error into the standard body, mapping AppError
// codes through the shared status table.  Internal details are masked.
func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := code.HTTPStatus()

	resp := ErrorResponse{Code: string(code), Message: "internal server error"}
	if appErr, ok := err.(*errors.AppError); ok && status < 500 {
		resp.Message = appErr.Message
		resp.Detail = appErr.Detail
	}

	c.AbortWithStatusJSON(status, resp)
}
