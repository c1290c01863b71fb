package common

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"thirdcoast.systems/fetchbox/internal/fetcherr"
)

// ErrBadRequest returns a 400 Bad Request error.
func ErrBadRequest(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}

// ErrNotFound returns a 404 Not Found error.
func ErrNotFound(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusNotFound, msg)
}

// ErrInternal returns a 500 Internal Server Error.
func ErrInternal(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusInternalServerError, msg)
}

// StatusFor maps a pipeline failure to an HTTP status. Only bad input is the
// caller's fault; everything else, including resolution failures, is a 500.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case fetcherr.IsClient(err):
		return http.StatusBadRequest
	case errors.Is(err, fetcherr.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ErrorBody is the JSON shape of every API failure.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSONError writes err as {"error": "..."} with the status StatusFor picks.
func JSONError(c echo.Context, err error) error {
	return c.JSON(StatusFor(err), ErrorBody{Error: fetcherr.Message(err)})
}
