package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Placeholder public pages.  The real site is not built yet; these only
// acknowledge the request.

func Index(c echo.Context) error {
	return c.String(http.StatusOK, "kinosite application page")
}

// Film echoes the id without looking it up.  It stands in for the film
// detail page.
func Film(c echo.Context) error {
	return c.String(http.StatusOK, "kinosite application page:\nFilm: "+c.Param("film_id"))
}

const notFoundHTML = "<h1>Page not found :(</h1>"

// HTTPErrorHandler renders unmatched routes as the HTML not-found page and
// leaves every other error to echo's default handler.
func HTTPErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var he *echo.HTTPError
		if errors.As(err, &he) && he.Code == http.StatusNotFound && !c.Response().Committed {
			if c.Request().Method == http.MethodHead {
				_ = c.NoContent(http.StatusNotFound)
				return
			}
			_ = c.HTML(http.StatusNotFound, notFoundHTML)
			return
		}
		e.DefaultHTTPErrorHandler(err, c)
	}
}
