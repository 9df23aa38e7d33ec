package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/film-catalog/internal/model"
	"github.com/iliyamo/film-catalog/internal/queue"
	"github.com/iliyamo/film-catalog/internal/repository"
)

// DictionaryHandler serves CRUD for one lookup table.  The router mounts
// one instance each for countries, genres, photo types and staff types.
type DictionaryHandler struct {
	Repo   *repository.DictionaryRepo
	Events Publisher
}

func NewDictionaryHandler(repo *repository.DictionaryRepo, events Publisher) *DictionaryHandler {
	if repo == nil {
		panic("nil repository passed to NewDictionaryHandler")
	}
	return &DictionaryHandler{Repo: repo, Events: events}
}

type dictionaryReq struct {
	Name string `json:"name"`
}

// List returns all rows ordered by name; ?q= filters by substring.
func (h *DictionaryHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	items, err := h.Repo.List(ctx, c.QueryParam("q"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func (h *DictionaryHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	d, err := h.Repo.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *DictionaryHandler) Create(c echo.Context) error {
	var req dictionaryReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	d := &model.Dictionary{Name: req.Name}
	if err := h.Repo.Create(ctx, d); err != nil {
		return writeError(c, err)
	}
	notify(c, h.Events, h.Repo.Table(), queue.ActionCreated, d.ID, d)
	return c.JSON(http.StatusCreated, d)
}

// Update renames the row (PUT and PATCH alike: name is the only field).
func (h *DictionaryHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req dictionaryReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	d := &model.Dictionary{ID: id, Name: req.Name}
	if err := h.Repo.Update(ctx, d); err != nil {
		return writeError(c, err)
	}
	notify(c, h.Events, h.Repo.Table(), queue.ActionUpdated, d.ID, d)
	return c.JSON(http.StatusOK, d)
}

// Delete cascades to every photo and link that references the row.
func (h *DictionaryHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	d, err := h.Repo.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.Repo.Delete(ctx, id); err != nil {
		return writeError(c, err)
	}
	notify(c, h.Events, h.Repo.Table(), queue.ActionDeleted, id, d)
	return c.NoContent(http.StatusNoContent)
}
