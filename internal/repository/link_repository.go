package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/film-catalog/internal/model"
)

// LinkRepo persists the three film association tables.  film_staff is a
// ternary relation (film, staff member, role); film_countries and
// film_genres are plain pairs.  Each keeps its composite unique key in the
// schema, so a repeated insert fails with *DuplicateKeyError.
type LinkRepo struct {
	db *sql.DB
}

func NewLinkRepo(db *sql.DB) *LinkRepo {
	return &LinkRepo{db: db}
}

// FilmStaffFilter narrows ListFilmStaff.  Zero fields are ignored.
type FilmStaffFilter struct {
	FilmID      uint64
	StaffID     uint64
	StaffTypeID uint64
}

const filmStaffSelect = `SELECT fs.id, fs.staff_id, fs.film_id, fs.staff_type_id, fs.created_at, fs.updated_at,
       f.name, s.full_name, t.name
FROM film_staff fs
JOIN films f ON f.id = fs.film_id
JOIN staff_members s ON s.id = fs.staff_id
JOIN staff_types t ON t.id = fs.staff_type_id`

func scanFilmStaff(s scanner) (*model.FilmStaffLink, error) {
	var l model.FilmStaffLink
	err := s.Scan(&l.ID, &l.StaffID, &l.FilmID, &l.StaffTypeID, &l.CreatedAt, &l.UpdatedAt,
		&l.FilmName, &l.StaffFullName, &l.StaffTypeName)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateFilmStaff credits a staff member on a film in the given role.
func (r *LinkRepo) CreateFilmStaff(ctx context.Context, l *model.FilmStaffLink) error {
	return createFilmStaff(ctx, r.db, l)
}

func createFilmStaff(ctx context.Context, q querier, l *model.FilmStaffLink) error {
	if err := model.Validate(l); err != nil {
		return err
	}
	res, err := q.ExecContext(ctx,
		"INSERT INTO film_staff (staff_id, film_id, staff_type_id) VALUES (?, ?, ?)",
		l.StaffID, l.FilmID, l.StaffTypeID)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	fresh, err := getFilmStaff(ctx, q, uint64(id))
	if err != nil {
		return err
	}
	*l = *fresh
	return nil
}

func (r *LinkRepo) GetFilmStaff(ctx context.Context, id uint64) (*model.FilmStaffLink, error) {
	return getFilmStaff(ctx, r.db, id)
}

func getFilmStaff(ctx context.Context, q querier, id uint64) (*model.FilmStaffLink, error) {
	l, err := scanFilmStaff(q.QueryRowContext(ctx, filmStaffSelect+" WHERE fs.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return l, err
}

// ListFilmStaff returns credits in creation order.
func (r *LinkRepo) ListFilmStaff(ctx context.Context, f FilmStaffFilter) ([]*model.FilmStaffLink, error) {
	return listFilmStaff(ctx, r.db, f)
}

func listFilmStaff(ctx context.Context, q querier, f FilmStaffFilter) ([]*model.FilmStaffLink, error) {
	var where []string
	var args []any
	if f.FilmID != 0 {
		where = append(where, "fs.film_id = ?")
		args = append(args, f.FilmID)
	}
	if f.StaffID != 0 {
		where = append(where, "fs.staff_id = ?")
		args = append(args, f.StaffID)
	}
	if f.StaffTypeID != 0 {
		where = append(where, "fs.staff_type_id = ?")
		args = append(args, f.StaffTypeID)
	}
	query := filmStaffSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY fs.created_at, fs.id"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*model.FilmStaffLink{}
	for rows.Next() {
		l, err := scanFilmStaff(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *LinkRepo) DeleteFilmStaff(ctx context.Context, id uint64) error {
	return deleteByID(ctx, r.db, "film_staff", id)
}

// pairTable describes film_countries and film_genres, which differ only
// in the name of the non-film side.
type pairTable struct {
	table      string // link table
	otherCol   string // foreign key column of the non-film side
	otherTable string // table the other side references
}

var (
	filmCountries = pairTable{table: "film_countries", otherCol: "country_id", otherTable: "countries"}
	filmGenres    = pairTable{table: "film_genres", otherCol: "genre_id", otherTable: "genres"}
)

// pairRow is the scanned form shared by both pair tables.
type pairRow struct {
	ID        uint64
	OtherID   uint64
	FilmID    uint64
	CreatedAt time.Time
	UpdatedAt time.Time
	FilmName  string
	OtherName string
}

func (p pairTable) selectSQL() string {
	return "SELECT l.id, l." + p.otherCol + ", l.film_id, l.created_at, l.updated_at, f.name, o.name" +
		" FROM " + p.table + " l" +
		" JOIN films f ON f.id = l.film_id" +
		" JOIN " + p.otherTable + " o ON o.id = l." + p.otherCol
}

func scanPair(s scanner) (*pairRow, error) {
	var p pairRow
	if err := s.Scan(&p.ID, &p.OtherID, &p.FilmID, &p.CreatedAt, &p.UpdatedAt, &p.FilmName, &p.OtherName); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p pairTable) create(ctx context.Context, q querier, otherID, filmID uint64) (*pairRow, error) {
	res, err := q.ExecContext(ctx,
		"INSERT INTO "+p.table+" ("+p.otherCol+", film_id) VALUES (?, ?)", otherID, filmID)
	if err != nil {
		return nil, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return p.get(ctx, q, uint64(id))
}

func (p pairTable) get(ctx context.Context, q querier, id uint64) (*pairRow, error) {
	row, err := scanPair(q.QueryRowContext(ctx, p.selectSQL()+" WHERE l.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return row, err
}

func (p pairTable) list(ctx context.Context, q querier, filmID, otherID uint64) ([]*pairRow, error) {
	var where []string
	var args []any
	if filmID != 0 {
		where = append(where, "l.film_id = ?")
		args = append(args, filmID)
	}
	if otherID != 0 {
		where = append(where, "l."+p.otherCol+" = ?")
		args = append(args, otherID)
	}
	query := p.selectSQL()
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY l.created_at, l.id"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*pairRow
	for rows.Next() {
		row, err := scanPair(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (p pairRow) country() *model.FilmCountryLink {
	return &model.FilmCountryLink{ID: p.ID, CountryID: p.OtherID, FilmID: p.FilmID,
		CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt, FilmName: p.FilmName, CountryName: p.OtherName}
}

func (p pairRow) genre() *model.FilmGenreLink {
	return &model.FilmGenreLink{ID: p.ID, GenreID: p.OtherID, FilmID: p.FilmID,
		CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt, FilmName: p.FilmName, GenreName: p.OtherName}
}

// CreateFilmCountry links a film to a country.
func (r *LinkRepo) CreateFilmCountry(ctx context.Context, l *model.FilmCountryLink) error {
	if err := model.Validate(l); err != nil {
		return err
	}
	row, err := filmCountries.create(ctx, r.db, l.CountryID, l.FilmID)
	if err != nil {
		return err
	}
	*l = *row.country()
	return nil
}

func (r *LinkRepo) GetFilmCountry(ctx context.Context, id uint64) (*model.FilmCountryLink, error) {
	row, err := filmCountries.get(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	return row.country(), nil
}

// ListFilmCountries filters by film and/or country; zero means any.
func (r *LinkRepo) ListFilmCountries(ctx context.Context, filmID, countryID uint64) ([]*model.FilmCountryLink, error) {
	return listFilmCountries(ctx, r.db, filmID, countryID)
}

func listFilmCountries(ctx context.Context, q querier, filmID, countryID uint64) ([]*model.FilmCountryLink, error) {
	rows, err := filmCountries.list(ctx, q, filmID, countryID)
	if err != nil {
		return nil, err
	}
	out := make([]*model.FilmCountryLink, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.country())
	}
	return out, nil
}

func (r *LinkRepo) DeleteFilmCountry(ctx context.Context, id uint64) error {
	return deleteByID(ctx, r.db, filmCountries.table, id)
}

// CreateFilmGenre tags a film with a genre.
func (r *LinkRepo) CreateFilmGenre(ctx context.Context, l *model.FilmGenreLink) error {
	if err := model.Validate(l); err != nil {
		return err
	}
	row, err := filmGenres.create(ctx, r.db, l.GenreID, l.FilmID)
	if err != nil {
		return err
	}
	*l = *row.genre()
	return nil
}

func (r *LinkRepo) GetFilmGenre(ctx context.Context, id uint64) (*model.FilmGenreLink, error) {
	row, err := filmGenres.get(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	return row.genre(), nil
}

// ListFilmGenres filters by film and/or genre; zero means any.
func (r *LinkRepo) ListFilmGenres(ctx context.Context, filmID, genreID uint64) ([]*model.FilmGenreLink, error) {
	return listFilmGenres(ctx, r.db, filmID, genreID)
}

func listFilmGenres(ctx context.Context, q querier, filmID, genreID uint64) ([]*model.FilmGenreLink, error) {
	rows, err := filmGenres.list(ctx, q, filmID, genreID)
	if err != nil {
		return nil, err
	}
	out := make([]*model.FilmGenreLink, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.genre())
	}
	return out, nil
}

func (r *LinkRepo) DeleteFilmGenre(ctx context.Context, id uint64) error {
	return deleteByID(ctx, r.db, filmGenres.table, id)
}

func deleteByID(ctx context.Context, q querier, table string, id uint64) error {
	res, err := q.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return translate(err)
	}
	return affectedOne(res)
}
