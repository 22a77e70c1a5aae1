package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// SuccessResponse writes data as-is with a 200 status. Endpoint payload
// shapes are part of the external contract, so no envelope is added.
func SuccessResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

// ErrorResponse writes the standard {error, details} body.
func ErrorResponse(c echo.Context, status int, message, details string) error {
	return c.JSON(status, ErrorBody{Error: message, Details: details})
}

// BadRequestResponse writes a 400 with validation detail.
func BadRequestResponse(c echo.Context, details string) error {
	return ErrorResponse(c, http.StatusBadRequest, "invalid request", details)
}

// AppErrorResponse maps an AppError to its status with the standard error
// body; anything else becomes an opaque 500. The wrapped cause stays on the
// server side for logging and is never rendered to the caller.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return ErrorResponse(c, appErr.Status, appErr.Message, appErr.Details)
	}
	return ErrorResponse(c, http.StatusInternalServerError, "internal error", "")
}
