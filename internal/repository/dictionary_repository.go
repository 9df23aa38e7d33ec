package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/film-catalog/internal/database"
	"github.com/iliyamo/film-catalog/internal/model"
)

// DictionaryRepo serves one of the name-keyed lookup tables (countries,
// genres, photo types, staff types).  All four share columns, ordering
// (by name) and the unique name rule, so a single implementation bound to
// a table name covers them.
type DictionaryRepo struct {
	db    *sql.DB
	table string
}

func NewCountryRepo(db *sql.DB) *DictionaryRepo {
	return &DictionaryRepo{db: db, table: database.TableCountries}
}

func NewGenreRepo(db *sql.DB) *DictionaryRepo {
	return &DictionaryRepo{db: db, table: database.TableGenres}
}

func NewPhotoTypeRepo(db *sql.DB) *DictionaryRepo {
	return &DictionaryRepo{db: db, table: database.TablePhotoTypes}
}

func NewStaffTypeRepo(db *sql.DB) *DictionaryRepo {
	return &DictionaryRepo{db: db, table: database.TableStaffTypes}
}

// Table reports which table the repository is bound to.
func (r *DictionaryRepo) Table() string { return r.table }

func (r *DictionaryRepo) selectCols() string {
	return "SELECT id, name, created_at, updated_at FROM " + r.table
}

func scanDictionary(s scanner) (*model.Dictionary, error) {
	var d model.Dictionary
	if err := s.Scan(&d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a row and fills ID and timestamps from the database.  A
// name already in use yields *DuplicateKeyError.
func (r *DictionaryRepo) Create(ctx context.Context, d *model.Dictionary) error {
	d.Name = strings.TrimSpace(d.Name)
	if err := model.Validate(d); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, "INSERT INTO "+r.table+" (name) VALUES (?)", d.Name)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	fresh, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*d = *fresh
	return nil
}

// GetByID returns ErrNotFound when no row has the id.
func (r *DictionaryRepo) GetByID(ctx context.Context, id uint64) (*model.Dictionary, error) {
	d, err := scanDictionary(r.db.QueryRowContext(ctx, r.selectCols()+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return d, err
}

// List returns rows ordered by name.  A non-empty search restricts the
// result to names containing it, ignoring case.
func (r *DictionaryRepo) List(ctx context.Context, search string) ([]*model.Dictionary, error) {
	q := r.selectCols()
	var args []any
	if strings.TrimSpace(search) != "" {
		q += " WHERE LOWER(name) LIKE ?"
		args = append(args, likePattern(search))
	}
	q += " ORDER BY name, id"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Dictionary{}
	for rows.Next() {
		d, err := scanDictionary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Update renames the row.  created_at is left untouched.
func (r *DictionaryRepo) Update(ctx context.Context, d *model.Dictionary) error {
	d.Name = strings.TrimSpace(d.Name)
	if err := model.Validate(d); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE "+r.table+" SET name = ?, updated_at = CURRENT_TIMESTAMP(6) WHERE id = ?",
		d.Name, d.ID)
	if err != nil {
		return translate(err)
	}
	if err := affectedOne(res); err != nil {
		return err
	}
	fresh, err := r.GetByID(ctx, d.ID)
	if err != nil {
		return err
	}
	*d = *fresh
	return nil
}

// Delete removes the row; photos and links referencing it go with it
// through ON DELETE CASCADE.
func (r *DictionaryRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM "+r.table+" WHERE id = ?", id)
	if err != nil {
		return translate(err)
	}
	return affectedOne(res)
}
