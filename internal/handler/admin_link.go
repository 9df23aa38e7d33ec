package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/film-catalog/internal/database"
	"github.com/iliyamo/film-catalog/internal/model"
	"github.com/iliyamo/film-catalog/internal/queue"
	"github.com/iliyamo/film-catalog/internal/repository"
)

// ListFilmStaff filters by ?film_id, ?staff_id and ?staff_type_id.
func (h *AdminHandler) ListFilmStaff(c echo.Context) error {
	var f repository.FilmStaffFilter
	var err error
	if f.FilmID, err = queryID(c, "film_id"); err != nil {
		return badRequest(c, err.Error())
	}
	if f.StaffID, err = queryID(c, "staff_id"); err != nil {
		return badRequest(c, err.Error())
	}
	if f.StaffTypeID, err = queryID(c, "staff_type_id"); err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	items, err := h.Links.ListFilmStaff(ctx, f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// CreateFilmStaff credits a member on a film.  The same (member, film,
// role) twice is a 409 naming film_staff_unique_key.
func (h *AdminHandler) CreateFilmStaff(c echo.Context) error {
	var l model.FilmStaffLink
	if err := c.Bind(&l); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Links.CreateFilmStaff(ctx, &l); err != nil {
		return writeError(c, err)
	}
	notify(c, h.Events, database.TableFilmStaff, queue.ActionCreated, l.ID, l)
	return c.JSON(http.StatusCreated, l)
}

func (h *AdminHandler) DeleteFilmStaff(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	l, err := h.Links.GetFilmStaff(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.Links.DeleteFilmStaff(ctx, id); err != nil {
		return writeError(c, err)
	}
	notify(c, h.Events, database.TableFilmStaff, queue.ActionDeleted, id, l)
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) ListFilmCountries(c echo.Context) error {
	filmID, err := queryID(c, "film_id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	countryID, err := queryID(c, "country_id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	items, err := h.Links.ListFilmCountries(ctx, filmID, countryID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func (h *AdminHandler) CreateFilmCountry(c echo.Context) error {
	var l model.FilmCountryLink
	if err := c.Bind(&l); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Links.CreateFilmCountry(ctx, &l); err != nil {
		return writeError(c, err)
	}
	notify(c, h.Events, database.TableFilmCountries, queue.ActionCreated, l.ID, l)
	return c.JSON(http.StatusCreated, l)
}

func (h *AdminHandler) DeleteFilmCountry(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	l, err := h.Links.GetFilmCountry(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.Links.DeleteFilmCountry(ctx, id); err != nil {
		return writeError(c, err)
	}
	notify(c, h.Events, database.TableFilmCountries, queue.ActionDeleted, id, l)
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) ListFilmGenres(c echo.Context) error {
	filmID, err := queryID(c, "film_id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	genreID, err := queryID(c, "genre_id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	items, err := h.Links.ListFilmGenres(ctx, filmID, genreID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func (h *AdminHandler) CreateFilmGenre(c echo.Context) error {
	var l model.FilmGenreLink
	if err := c.Bind(&l); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Links.CreateFilmGenre(ctx, &l); err != nil {
		return writeError(c, err)
	}
	notify(c, h.Events, database.TableFilmGenres, queue.ActionCreated, l.ID, l)
	return c.JSON(http.StatusCreated, l)
}

func (h *AdminHandler) DeleteFilmGenre(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	l, err := h.Links.GetFilmGenre(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.Links.DeleteFilmGenre(ctx, id); err != nil {
		return writeError(c, err)
	}
	notify(c, h.Events, database.TableFilmGenres, queue.ActionDeleted, id, l)
	return c.NoContent(http.StatusNoContent)
}
