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

// ListStaff returns members newest first; ?q= searches full_name.
func (h *AdminHandler) ListStaff(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	items, err := h.Staff.List(ctx, c.QueryParam("q"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

type staffDetail struct {
	*model.StaffMember
	Photos []*model.StaffPhoto    `json:"photos"`
	Films  []*model.FilmStaffLink `json:"films"`
}

// GetStaff returns the member with photos and film credits, the way the
// edit page shows them.
func (h *AdminHandler) GetStaff(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	m, err := h.Staff.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	photos, err := h.Photos.ListByStaff(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	for _, p := range photos {
		p.ImageURL = h.imageURL(p.Image)
	}
	films, err := h.Links.ListFilmStaff(ctx, repository.FilmStaffFilter{StaffID: id})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, staffDetail{StaffMember: m, Photos: photos, Films: films})
}

func (h *AdminHandler) CreateStaff(c echo.Context) error {
	var m model.StaffMember
	if err := c.Bind(&m); err != nil {
		return badRequest(c, "invalid body")
	}
	m.ID = 0
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Staff.Create(ctx, &m); err != nil {
		return writeError(c, err)
	}
	notify(c, h.Events, database.TableStaffMembers, queue.ActionCreated, m.ID, m)
	return c.JSON(http.StatusCreated, m)
}

// UpdateStaff applies the fields present in the body to the stored row.
func (h *AdminHandler) UpdateStaff(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	m, err := h.Staff.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	if err := c.Bind(m); err != nil {
		return badRequest(c, "invalid body")
	}
	m.ID = id
	if err := h.Staff.Update(ctx, m); err != nil {
		return writeError(c, err)
	}
	notify(c, h.Events, database.TableStaffMembers, queue.ActionUpdated, m.ID, m)
	return c.JSON(http.StatusOK, m)
}

func (h *AdminHandler) DeleteStaff(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	m, err := h.Staff.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.Staff.Delete(ctx, id); err != nil {
		return writeError(c, err)
	}
	notify(c, h.Events, database.TableStaffMembers, queue.ActionDeleted, id, m)
	return c.NoContent(http.StatusNoContent)
}

type staffFormReq struct {
	model.StaffMember
	Films []repository.FilmRole `json:"films"`
}

// SaveStaffForm updates the member and replaces their film credits in one
// transaction.  Omitting "films" leaves the credits as they are.
func (h *AdminHandler) SaveStaffForm(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	m, err := h.Staff.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	req := staffFormReq{StaffMember: *m}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.StaffMember.ID = id
	form := &repository.StaffForm{Staff: req.StaffMember, Roles: req.Films}
	if err := h.Staff.SaveForm(ctx, form); err != nil {
		return writeError(c, err)
	}
	notify(c, h.Events, database.TableStaffMembers, queue.ActionUpdated, id, form.Staff)
	return h.GetStaff(c)
}
