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

// ListFilms returns films by release date then name; ?q= searches name.
func (h *AdminHandler) ListFilms(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	items, err := h.Films.List(ctx, c.QueryParam("q"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// filmDetail is the film edit page: the film plus its four inline lists.
type filmDetail struct {
	*model.Film
	Photos    []*model.FilmPhoto       `json:"photos"`
	Countries []*model.FilmCountryLink `json:"countries"`
	Genres    []*model.FilmGenreLink   `json:"genres"`
	Staff     []*model.FilmStaffLink   `json:"staff"`
}

func (h *AdminHandler) loadFilmDetail(ctx context.Context, id uint64) (*filmDetail, error) {
	f, err := h.Films.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d := &filmDetail{Film: f}
	if d.Photos, err = h.Photos.ListByFilm(ctx, id); err != nil {
		return nil, err
	}
	for _, p := range d.Photos {
		p.ImageURL = h.imageURL(p.Image)
	}
	if d.Countries, err = h.Links.ListFilmCountries(ctx, id, 0); err != nil {
		return nil, err
	}
	if d.Genres, err = h.Links.ListFilmGenres(ctx, id, 0); err != nil {
		return nil, err
	}
	if d.Staff, err = h.Links.ListFilmStaff(ctx, repository.FilmStaffFilter{FilmID: id}); err != nil {
		return nil, err
	}
	return d, nil
}

func (h *AdminHandler) GetFilm(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	d, err := h.loadFilmDetail(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *AdminHandler) CreateFilm(c echo.Context) error {
	var f model.Film
	if err := c.Bind(&f); err != nil {
		return badRequest(c, "invalid body")
	}
	f.ID = 0
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Films.Create(ctx, &f); err != nil {
		return writeError(c, err)
	}
	notify(c, h.Events, database.TableFilms, queue.ActionCreated, f.ID, f)
	return c.JSON(http.StatusCreated, f)
}

func (h *AdminHandler) UpdateFilm(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	f, err := h.Films.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	if err := c.Bind(f); err != nil {
		return badRequest(c, "invalid body")
	}
	f.ID = id
	if err := h.Films.Update(ctx, f); err != nil {
		return writeError(c, err)
	}
	notify(c, h.Events, database.TableFilms, queue.ActionUpdated, f.ID, f)
	return c.JSON(http.StatusOK, f)
}

// DeleteFilm removes the film with its photos and links.  Photo objects
// stay in storage: their keys may be shared with a later upload.
func (h *AdminHandler) DeleteFilm(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	f, err := h.Films.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.Films.Delete(ctx, id); err != nil {
		return writeError(c, err)
	}
	notify(c, h.Events, database.TableFilms, queue.ActionDeleted, id, f)
	return c.NoContent(http.StatusNoContent)
}

// filmFormReq mirrors the film edit page.  An omitted list leaves that
// association untouched; an empty list clears it.
type filmFormReq struct {
	model.Film
	CountryIDs []uint64               `json:"country_ids"`
	GenreIDs   []uint64               `json:"genre_ids"`
	Staff      []repository.StaffRole `json:"staff"`
}

// CreateFilmForm creates a film together with its associations.
func (h *AdminHandler) CreateFilmForm(c echo.Context) error {
	var req filmFormReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Film.ID = 0
	return h.saveFilmForm(c, req, queue.ActionCreated, http.StatusCreated)
}

// SaveFilmForm updates a film and its associations in one transaction.
func (h *AdminHandler) SaveFilmForm(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	f, err := h.Films.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	req := filmFormReq{Film: *f}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Film.ID = id
	return h.saveFilmForm(c, req, queue.ActionUpdated, http.StatusOK)
}

func (h *AdminHandler) saveFilmForm(c echo.Context, req filmFormReq, action string, status int) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	form := &repository.FilmForm{
		Film:       req.Film,
		CountryIDs: req.CountryIDs,
		GenreIDs:   req.GenreIDs,
		Staff:      req.Staff,
	}
	if err := h.Films.SaveForm(ctx, form); err != nil {
		return writeError(c, err)
	}
	notify(c, h.Events, database.TableFilms, action, form.Film.ID, form.Film)
	d, err := h.loadFilmDetail(ctx, form.Film.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(status, d)
}
