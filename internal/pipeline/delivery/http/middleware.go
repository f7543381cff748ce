package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	corsAllowMethods = "POST, OPTIONS"
	corsAllowHeaders = "authorization, x-client-info, apikey, content-type, x-self-test"
)

// TriggerCORS sets permissive CORS headers on every response under path,
// including router-generated 404 and 405 answers. It must be installed with
// Echo.Use so that it wraps those handlers too.
func TriggerCORS(path string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if strings.TrimSuffix(c.Request().URL.Path, "/") == path {
				h := c.Response().Header()
				h.Set(echo.HeaderAccessControlAllowOrigin, "*")
				h.Set(echo.HeaderAccessControlAllowMethods, corsAllowMethods)
				h.Set(echo.HeaderAccessControlAllowHeaders, corsAllowHeaders)
			}
			return next(c)
		}
	}
}

// preflight answers CORS preflight requests with 200.
func preflight(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}
