package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/film-catalog/internal/model"
)

// FilmRepo manages films and the inline save of their associations.
type FilmRepo struct {
	db *sql.DB
}

func NewFilmRepo(db *sql.DB) *FilmRepo {
	return &FilmRepo{db: db}
}

const filmSelect = "SELECT id, name, title, released_at, created_at, updated_at FROM films"

func scanFilm(s scanner) (*model.Film, error) {
	var f model.Film
	if err := s.Scan(&f.ID, &f.Name, &f.Title, &f.ReleasedAt, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func normalizeFilm(f *model.Film) error {
	f.Name = strings.TrimSpace(f.Name)
	f.Title = strings.TrimSpace(f.Title)
	return model.Validate(f)
}

// Create inserts the film and fills ID and timestamps.
func (r *FilmRepo) Create(ctx context.Context, f *model.Film) error {
	if err := normalizeFilm(f); err != nil {
		return err
	}
	return insertFilm(ctx, r.db, f)
}

func insertFilm(ctx context.Context, q querier, f *model.Film) error {
	res, err := q.ExecContext(ctx,
		"INSERT INTO films (name, title, released_at) VALUES (?, ?, ?)",
		f.Name, f.Title, f.ReleasedAt)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	fresh, err := getFilm(ctx, q, uint64(id))
	if err != nil {
		return err
	}
	*f = *fresh
	return nil
}

func (r *FilmRepo) GetByID(ctx context.Context, id uint64) (*model.Film, error) {
	return getFilm(ctx, r.db, id)
}

func getFilm(ctx context.Context, q querier, id uint64) (*model.Film, error) {
	f, err := scanFilm(q.QueryRowContext(ctx, filmSelect+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return f, err
}

// List returns films ordered by release date, then name.  search matches
// a substring of the name.
func (r *FilmRepo) List(ctx context.Context, search string) ([]*model.Film, error) {
	q := filmSelect
	var args []any
	if strings.TrimSpace(search) != "" {
		q += " WHERE LOWER(name) LIKE ?"
		args = append(args, likePattern(search))
	}
	q += " ORDER BY released_at, name, id"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*model.Film{}
	for rows.Next() {
		f, err := scanFilm(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Update rewrites the film's own columns.
func (r *FilmRepo) Update(ctx context.Context, f *model.Film) error {
	if err := normalizeFilm(f); err != nil {
		return err
	}
	return updateFilm(ctx, r.db, f)
}

func updateFilm(ctx context.Context, q querier, f *model.Film) error {
	res, err := q.ExecContext(ctx,
		`UPDATE films SET name = ?, title = ?, released_at = ?, updated_at = CURRENT_TIMESTAMP(6) WHERE id = ?`,
		f.Name, f.Title, f.ReleasedAt, f.ID)
	if err != nil {
		return translate(err)
	}
	if err := affectedOne(res); err != nil {
		return err
	}
	fresh, err := getFilm(ctx, q, f.ID)
	if err != nil {
		return err
	}
	*f = *fresh
	return nil
}

// Delete removes the film.  Its photos and every film_staff,
// film_countries and film_genres row go with it (ON DELETE CASCADE).
func (r *FilmRepo) Delete(ctx context.Context, id uint64) error {
	return deleteByID(ctx, r.db, "films", id)
}

// StaffRole is one credit line in a film form: who, in which role.
type StaffRole struct {
	StaffID     uint64 `json:"staff_id"`
	StaffTypeID uint64 `json:"staff_type_id"`
}

// FilmForm is the film edit form with its inline association lists.  A
// nil list leaves that association untouched; an empty list clears it.
type FilmForm struct {
	Film       model.Film
	CountryIDs []uint64
	GenreIDs   []uint64
	Staff      []StaffRole
}

// SaveForm creates (ID == 0) or updates the film and brings its country,
// genre and staff sets in line with the form, all in one transaction.
// Rows already present are kept so their created_at order survives.
func (r *FilmRepo) SaveForm(ctx context.Context, form *FilmForm) error {
	if err := normalizeFilm(&form.Film); err != nil {
		return err
	}
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		f := &form.Film
		if f.ID == 0 {
			if err := insertFilm(ctx, tx, f); err != nil {
				return err
			}
		} else if err := updateFilm(ctx, tx, f); err != nil {
			return err
		}
		if form.CountryIDs != nil {
			if err := syncPairs(ctx, tx, filmCountries, "film_country_unique_key", f.ID, form.CountryIDs); err != nil {
				return err
			}
		}
		if form.GenreIDs != nil {
			if err := syncPairs(ctx, tx, filmGenres, "film_genre_unique_key", f.ID, form.GenreIDs); err != nil {
				return err
			}
		}
		if form.Staff != nil {
			existing, err := listFilmStaff(ctx, tx, FilmStaffFilter{FilmID: f.ID})
			if err != nil {
				return err
			}
			have := make([]StaffRole, 0, len(existing))
			for _, l := range existing {
				have = append(have, StaffRole{StaffID: l.StaffID, StaffTypeID: l.StaffTypeID})
			}
			if err := syncRoles(ctx, tx, have, form.Staff, func(k StaffRole) model.FilmStaffLink {
				return model.FilmStaffLink{FilmID: f.ID, StaffID: k.StaffID, StaffTypeID: k.StaffTypeID}
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// syncPairs applies a submitted id list to film_countries or film_genres.
func syncPairs(ctx context.Context, tx *sql.Tx, p pairTable, uniqueKey string, filmID uint64, desired []uint64) error {
	rows, err := p.list(ctx, tx, filmID, 0)
	if err != nil {
		return err
	}
	existing := make([]uint64, 0, len(rows))
	for _, row := range rows {
		existing = append(existing, row.OtherID)
	}
	add, remove, dup := diffKeys(existing, desired)
	if dup != nil {
		return &DuplicateKeyError{Constraint: uniqueKey}
	}
	for _, otherID := range remove {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM "+p.table+" WHERE film_id = ? AND "+p.otherCol+" = ?", filmID, otherID); err != nil {
			return translate(err)
		}
	}
	for _, otherID := range add {
		if otherID == 0 {
			return &ValidationError{Field: p.otherCol, Reason: "is required"}
		}
		if _, err := p.create(ctx, tx, otherID, filmID); err != nil {
			return err
		}
	}
	return nil
}

// syncRoles applies a submitted role list to film_staff.  The list is
// scoped to one film or one staff member; build turns a key into the full
// link row.
func syncRoles[K comparable](ctx context.Context, tx *sql.Tx, existing, desired []K, build func(K) model.FilmStaffLink) error {
	add, remove, dup := diffKeys(existing, desired)
	if dup != nil {
		return &DuplicateKeyError{Constraint: "film_staff_unique_key"}
	}
	for _, k := range remove {
		l := build(k)
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM film_staff WHERE staff_id = ? AND film_id = ? AND staff_type_id = ?",
			l.StaffID, l.FilmID, l.StaffTypeID); err != nil {
			return translate(err)
		}
	}
	for _, k := range add {
		l := build(k)
		if err := createFilmStaff(ctx, tx, &l); err != nil {
			return err
		}
	}
	return nil
}
