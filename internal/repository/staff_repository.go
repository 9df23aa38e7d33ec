package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/film-catalog/internal/model"
)

// StaffRepo manages staff members (directors, actors, ...).
type StaffRepo struct {
	db *sql.DB
}

func NewStaffRepo(db *sql.DB) *StaffRepo {
	return &StaffRepo{db: db}
}

const staffSelect = "SELECT id, full_name, birthday, created_at, updated_at FROM staff_members"

func scanStaff(s scanner) (*model.StaffMember, error) {
	var m model.StaffMember
	if err := s.Scan(&m.ID, &m.FullName, &m.Birthday, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func normalizeStaff(m *model.StaffMember) error {
	m.FullName = strings.TrimSpace(m.FullName)
	return model.Validate(m)
}

func (r *StaffRepo) Create(ctx context.Context, m *model.StaffMember) error {
	if err := normalizeStaff(m); err != nil {
		return err
	}
	return insertStaff(ctx, r.db, m)
}

func insertStaff(ctx context.Context, q querier, m *model.StaffMember) error {
	res, err := q.ExecContext(ctx,
		"INSERT INTO staff_members (full_name, birthday) VALUES (?, ?)", m.FullName, m.Birthday)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	fresh, err := getStaff(ctx, q, uint64(id))
	if err != nil {
		return err
	}
	*m = *fresh
	return nil
}

func (r *StaffRepo) GetByID(ctx context.Context, id uint64) (*model.StaffMember, error) {
	return getStaff(ctx, r.db, id)
}

func getStaff(ctx context.Context, q querier, id uint64) (*model.StaffMember, error) {
	m, err := scanStaff(q.QueryRowContext(ctx, staffSelect+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

// List returns the newest members first; ties are broken by full name.
func (r *StaffRepo) List(ctx context.Context, search string) ([]*model.StaffMember, error) {
	q := staffSelect
	var args []any
	if strings.TrimSpace(search) != "" {
		q += " WHERE LOWER(full_name) LIKE ?"
		args = append(args, likePattern(search))
	}
	q += " ORDER BY created_at DESC, full_name, id"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*model.StaffMember{}
	for rows.Next() {
		m, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *StaffRepo) Update(ctx context.Context, m *model.StaffMember) error {
	if err := normalizeStaff(m); err != nil {
		return err
	}
	return updateStaff(ctx, r.db, m)
}

func updateStaff(ctx context.Context, q querier, m *model.StaffMember) error {
	res, err := q.ExecContext(ctx,
		"UPDATE staff_members SET full_name = ?, birthday = ?, updated_at = CURRENT_TIMESTAMP(6) WHERE id = ?",
		m.FullName, m.Birthday, m.ID)
	if err != nil {
		return translate(err)
	}
	if err := affectedOne(res); err != nil {
		return err
	}
	fresh, err := getStaff(ctx, q, m.ID)
	if err != nil {
		return err
	}
	*m = *fresh
	return nil
}

// Delete removes the member together with their photos and credits.
func (r *StaffRepo) Delete(ctx context.Context, id uint64) error {
	return deleteByID(ctx, r.db, "staff_members", id)
}

// FilmRole is one credit line in a staff form: which film, in which role.
type FilmRole struct {
	FilmID      uint64 `json:"film_id"`
	StaffTypeID uint64 `json:"staff_type_id"`
}

// StaffForm is the staff edit form with its inline credit list.  A nil
// Roles leaves the credits untouched.
type StaffForm struct {
	Staff model.StaffMember
	Roles []FilmRole
}

// SaveForm creates (ID == 0) or updates the member and aligns their film
// credits with the form in one transaction.
func (r *StaffRepo) SaveForm(ctx context.Context, form *StaffForm) error {
	if err := normalizeStaff(&form.Staff); err != nil {
		return err
	}
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		m := &form.Staff
		if m.ID == 0 {
			if err := insertStaff(ctx, tx, m); err != nil {
				return err
			}
		} else if err := updateStaff(ctx, tx, m); err != nil {
			return err
		}
		if form.Roles == nil {
			return nil
		}
		existing, err := listFilmStaff(ctx, tx, FilmStaffFilter{StaffID: m.ID})
		if err != nil {
			return err
		}
		have := make([]FilmRole, 0, len(existing))
		for _, l := range existing {
			have = append(have, FilmRole{FilmID: l.FilmID, StaffTypeID: l.StaffTypeID})
		}
		return syncRoles(ctx, tx, have, form.Roles, func(k FilmRole) model.FilmStaffLink {
			return model.FilmStaffLink{StaffID: m.ID, FilmID: k.FilmID, StaffTypeID: k.StaffTypeID}
		})
	})
}
