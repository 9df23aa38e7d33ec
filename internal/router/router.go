// Package router wires handlers and middleware onto an echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/film-catalog/internal/handler"
)

// Configure installs the request validator and the HTML not-found page.
func Configure(e *echo.Echo) {
	e.Validator = handler.Validator{}
	e.HTTPErrorHandler = handler.HTTPErrorHandler(e)
}

// RegisterRoutes registers the unauthenticated pages: health check and
// the placeholder site.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/", handler.Index)
	e.GET("/films/:film_id", handler.Film)
}
