package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/film-catalog/internal/model"
)

// PhotoRepo stores film and staff photo rows.  The image column holds the
// object key in asset storage; the bytes themselves live elsewhere.
type PhotoRepo struct {
	db *sql.DB
}

func NewPhotoRepo(db *sql.DB) *PhotoRepo {
	return &PhotoRepo{db: db}
}

const filmPhotoSelect = `SELECT p.id, p.film_id, p.photo_type_id, p.image, p.is_main, p.created_at, p.updated_at,
       f.name, t.name
FROM film_photos p
JOIN films f ON f.id = p.film_id
JOIN photo_types t ON t.id = p.photo_type_id`

func scanFilmPhoto(s scanner) (*model.FilmPhoto, error) {
	var p model.FilmPhoto
	err := s.Scan(&p.ID, &p.FilmID, &p.PhotoTypeID, &p.Image, &p.IsMain, &p.CreatedAt, &p.UpdatedAt,
		&p.FilmName, &p.PhotoTypeName)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateFilmPhoto inserts the row.  A missing film or photo type is
// reported as *ReferenceNotFoundError.
func (r *PhotoRepo) CreateFilmPhoto(ctx context.Context, p *model.FilmPhoto) error {
	p.Image = strings.TrimSpace(p.Image)
	if err := model.Validate(p); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO film_photos (film_id, photo_type_id, image, is_main) VALUES (?, ?, ?, ?)",
		p.FilmID, p.PhotoTypeID, p.Image, p.IsMain)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	fresh, err := r.GetFilmPhoto(ctx, uint64(id))
	if err != nil {
		return err
	}
	*p = *fresh
	return nil
}

func (r *PhotoRepo) GetFilmPhoto(ctx context.Context, id uint64) (*model.FilmPhoto, error) {
	p, err := scanFilmPhoto(r.db.QueryRowContext(ctx, filmPhotoSelect+" WHERE p.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// ListByFilm returns a film's photos in upload order.
func (r *PhotoRepo) ListByFilm(ctx context.Context, filmID uint64) ([]*model.FilmPhoto, error) {
	rows, err := r.db.QueryContext(ctx,
		filmPhotoSelect+" WHERE p.film_id = ? ORDER BY p.created_at, p.id", filmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*model.FilmPhoto{}
	for rows.Next() {
		p, err := scanFilmPhoto(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateFilmPhoto rewrites type, image and the main flag.  The owning
// film never changes: the image key is derived from it.
func (r *PhotoRepo) UpdateFilmPhoto(ctx context.Context, p *model.FilmPhoto) error {
	p.Image = strings.TrimSpace(p.Image)
	if err := model.Validate(p); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE film_photos SET photo_type_id = ?, image = ?, is_main = ?, updated_at = CURRENT_TIMESTAMP(6) WHERE id = ?`,
		p.PhotoTypeID, p.Image, p.IsMain, p.ID)
	if err != nil {
		return translate(err)
	}
	if err := affectedOne(res); err != nil {
		return err
	}
	fresh, err := r.GetFilmPhoto(ctx, p.ID)
	if err != nil {
		return err
	}
	*p = *fresh
	return nil
}

func (r *PhotoRepo) DeleteFilmPhoto(ctx context.Context, id uint64) error {
	return deleteByID(ctx, r.db, "film_photos", id)
}

const staffPhotoSelect = `SELECT p.id, p.staff_id, p.image, p.is_main, p.created_at, p.updated_at, s.full_name
FROM staff_photos p
JOIN staff_members s ON s.id = p.staff_id`

func scanStaffPhoto(s scanner) (*model.StaffPhoto, error) {
	var p model.StaffPhoto
	if err := s.Scan(&p.ID, &p.StaffID, &p.Image, &p.IsMain, &p.CreatedAt, &p.UpdatedAt, &p.StaffName); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PhotoRepo) CreateStaffPhoto(ctx context.Context, p *model.StaffPhoto) error {
	p.Image = strings.TrimSpace(p.Image)
	if err := model.Validate(p); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO staff_photos (staff_id, image, is_main) VALUES (?, ?, ?)",
		p.StaffID, p.Image, p.IsMain)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	fresh, err := r.GetStaffPhoto(ctx, uint64(id))
	if err != nil {
		return err
	}
	*p = *fresh
	return nil
}

func (r *PhotoRepo) GetStaffPhoto(ctx context.Context, id uint64) (*model.StaffPhoto, error) {
	p, err := scanStaffPhoto(r.db.QueryRowContext(ctx, staffPhotoSelect+" WHERE p.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *PhotoRepo) ListByStaff(ctx context.Context, staffID uint64) ([]*model.StaffPhoto, error) {
	rows, err := r.db.QueryContext(ctx,
		staffPhotoSelect+" WHERE p.staff_id = ? ORDER BY p.created_at, p.id", staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*model.StaffPhoto{}
	for rows.Next() {
		p, err := scanStaffPhoto(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PhotoRepo) UpdateStaffPhoto(ctx context.Context, p *model.StaffPhoto) error {
	p.Image = strings.TrimSpace(p.Image)
	if err := model.Validate(p); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE staff_photos SET image = ?, is_main = ?, updated_at = CURRENT_TIMESTAMP(6) WHERE id = ?",
		p.Image, p.IsMain, p.ID)
	if err != nil {
		return translate(err)
	}
	if err := affectedOne(res); err != nil {
		return err
	}
	fresh, err := r.GetStaffPhoto(ctx, p.ID)
	if err != nil {
		return err
	}
	*p = *fresh
	return nil
}

func (r *PhotoRepo) DeleteStaffPhoto(ctx context.Context, id uint64) error {
	return deleteByID(ctx, r.db, "staff_photos", id)
}
