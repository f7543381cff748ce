package http

import (
	"errors"
	"net/http"

	"golang-news-insight/internal/pipeline/repository"
	"golang-news-insight/internal/pipeline/service"

	"github.com/labstack/echo/v4"
)

// statusFor maps service errors to HTTP status codes. Everything unknown is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrBatchInProgress):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidFilter):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrRecordNotFound), errors.Is(err, repository.ErrRunNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func errorJSON(c echo.Context, err error) error {
	return c.JSON(statusFor(err), echo.Map{"error": err.Error()})
}
