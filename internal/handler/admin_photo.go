package handler

import (
	"context"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/film-catalog/internal/database"
	"github.com/iliyamo/film-catalog/internal/model"
	"github.com/iliyamo/film-catalog/internal/queue"
	"github.com/iliyamo/film-catalog/internal/repository"
	"github.com/iliyamo/film-catalog/internal/storage"
)

// maxPhotoBytes caps a single upload.
const maxPhotoBytes = 20 << 20

// uploadTimeout bounds the object store write of one photo.
const uploadTimeout = 2 * time.Minute

// uploadFile stores the multipart "image" field under key.
func (h *AdminHandler) uploadFile(c echo.Context, fh *multipart.FileHeader, key string) error {
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), uploadTimeout)
	defer cancel()
	return h.Store.Put(ctx, key, f, fh.Size, contentType)
}

// filmPhotoRefs checks that the film and the photo type exist.  It must
// run before the upload: keys are per film and filename, so a stored file
// would replace the existing asset even if the insert then failed.
func (h *AdminHandler) filmPhotoRefs(c echo.Context, filmID, typeID uint64) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if _, err := h.Films.GetByID(ctx, filmID); err != nil {
		return err
	}
	if _, err := h.PhotoTypes.GetByID(ctx, typeID); err != nil {
		if repository.IsNotFound(err) {
			return &repository.ReferenceNotFoundError{Constraint: "film_photos_type_fk"}
		}
		return err
	}
	return nil
}

func (h *AdminHandler) staffExists(c echo.Context, staffID uint64) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	_, err := h.Staff.GetByID(ctx, staffID)
	return err
}

// photoFile validates the uploaded file part.  A message is returned for
// the client when it is unusable.
func photoFile(c echo.Context) (*multipart.FileHeader, string) {
	fh, err := c.FormFile("image")
	if err != nil {
		return nil, "image file required"
	}
	if fh.Size > maxPhotoBytes {
		return nil, "image too large"
	}
	if storage.BaseName(fh.Filename) == "" {
		return nil, "image filename required"
	}
	return fh, ""
}

func formBool(c echo.Context, name string) (bool, error) {
	raw := strings.TrimSpace(c.FormValue(name))
	if raw == "" {
		return false, nil
	}
	return strconv.ParseBool(raw)
}

// UploadFilmPhoto accepts multipart fields image, photo_type_id and
// is_main, stores the file under films/photos/{id}/{filename} and records
// the row.  Re-uploading a filename replaces the stored bytes.
func (h *AdminHandler) UploadFilmPhoto(c echo.Context) error {
	if h.Store == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "asset storage unavailable"})
	}
	filmID, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	typeID, err := strconv.ParseUint(strings.TrimSpace(c.FormValue("photo_type_id")), 10, 64)
	if err != nil || typeID == 0 {
		return writeError(c, &model.ValidationError{Field: "photo_type_id", Reason: "is required"})
	}
	isMain, err := formBool(c, "is_main")
	if err != nil {
		return badRequest(c, "invalid is_main")
	}
	fh, msg := photoFile(c)
	if fh == nil {
		return badRequest(c, msg)
	}

	if err := h.filmPhotoRefs(c, filmID, typeID); err != nil {
		return writeError(c, err)
	}
	key := storage.FilmPhotoPath(filmID, fh.Filename)
	if err := h.uploadFile(c, fh, key); err != nil {
		c.Logger().Errorf("upload %s: %v", key, err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "upload failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	p := &model.FilmPhoto{FilmID: filmID, PhotoTypeID: typeID, Image: key, IsMain: isMain}
	if err := h.Photos.CreateFilmPhoto(ctx, p); err != nil {
		return writeError(c, err)
	}
	p.ImageURL = h.imageURL(p.Image)
	notify(c, h.Events, database.TableFilmPhotos, queue.ActionCreated, p.ID, p)
	return c.JSON(http.StatusCreated, p)
}

func (h *AdminHandler) ListFilmPhotos(c echo.Context) error {
	filmID, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	items, err := h.Photos.ListByFilm(ctx, filmID)
	if err != nil {
		return writeError(c, err)
	}
	for _, p := range items {
		p.ImageURL = h.imageURL(p.Image)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

type filmPhotoPatch struct {
	PhotoTypeID *uint64 `json:"photo_type_id"`
	IsMain      *bool   `json:"is_main"`
}

// UpdateFilmPhoto changes the type or main flag.  Replacing the bytes is
// done by uploading again.
func (h *AdminHandler) UpdateFilmPhoto(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req filmPhotoPatch
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	p, err := h.Photos.GetFilmPhoto(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	if req.PhotoTypeID != nil {
		p.PhotoTypeID = *req.PhotoTypeID
	}
	if req.IsMain != nil {
		p.IsMain = *req.IsMain
	}
	if err := h.Photos.UpdateFilmPhoto(ctx, p); err != nil {
		return writeError(c, err)
	}
	p.ImageURL = h.imageURL(p.Image)
	notify(c, h.Events, database.TableFilmPhotos, queue.ActionUpdated, p.ID, p)
	return c.JSON(http.StatusOK, p)
}

func (h *AdminHandler) DeleteFilmPhoto(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	p, err := h.Photos.GetFilmPhoto(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.Photos.DeleteFilmPhoto(ctx, id); err != nil {
		return writeError(c, err)
	}
	notify(c, h.Events, database.TableFilmPhotos, queue.ActionDeleted, id, p)
	return c.NoContent(http.StatusNoContent)
}

// UploadStaffPhoto stores the file under staff/photos/{id}/{filename}.
func (h *AdminHandler) UploadStaffPhoto(c echo.Context) error {
	if h.Store == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "asset storage unavailable"})
	}
	staffID, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	isMain, err := formBool(c, "is_main")
	if err != nil {
		return badRequest(c, "invalid is_main")
	}
	fh, msg := photoFile(c)
	if fh == nil {
		return badRequest(c, msg)
	}

	if err := h.staffExists(c, staffID); err != nil {
		return writeError(c, err)
	}
	key := storage.StaffPhotoPath(staffID, fh.Filename)
	if err := h.uploadFile(c, fh, key); err != nil {
		c.Logger().Errorf("upload %s: %v", key, err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "upload failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	p := &model.StaffPhoto{StaffID: staffID, Image: key, IsMain: isMain}
	if err := h.Photos.CreateStaffPhoto(ctx, p); err != nil {
		return writeError(c, err)
	}
	p.ImageURL = h.imageURL(p.Image)
	notify(c, h.Events, database.TableStaffPhotos, queue.ActionCreated, p.ID, p)
	return c.JSON(http.StatusCreated, p)
}

func (h *AdminHandler) ListStaffPhotos(c echo.Context) error {
	staffID, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	items, err := h.Photos.ListByStaff(ctx, staffID)
	if err != nil {
		return writeError(c, err)
	}
	for _, p := range items {
		p.ImageURL = h.imageURL(p.Image)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func (h *AdminHandler) UpdateStaffPhoto(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req struct {
		IsMain *bool `json:"is_main"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	p, err := h.Photos.GetStaffPhoto(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	if req.IsMain != nil {
		p.IsMain = *req.IsMain
	}
	if err := h.Photos.UpdateStaffPhoto(ctx, p); err != nil {
		return writeError(c, err)
	}
	p.ImageURL = h.imageURL(p.Image)
	notify(c, h.Events, database.TableStaffPhotos, queue.ActionUpdated, p.ID, p)
	return c.JSON(http.StatusOK, p)
}

func (h *AdminHandler) DeleteStaffPhoto(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	p, err := h.Photos.GetStaffPhoto(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.Photos.DeleteStaffPhoto(ctx, id); err != nil {
		return writeError(c, err)
	}
	notify(c, h.Events, database.TableStaffPhotos, queue.ActionDeleted, id, p)
	return c.NoContent(http.StatusNoContent)
}
