package model

import "time"

// FilmStaffLink credits a staff member on a film in one role.  The
// (staff, film, staff type) triple is unique: a person may hold several
// roles on a film but never the same role twice.
type FilmStaffLink struct {
	ID          uint64    `json:"id"`
	StaffID     uint64    `json:"staff_id" validate:"required"`
	FilmID      uint64    `json:"film_id" validate:"required"`
	StaffTypeID uint64    `json:"staff_type_id" validate:"required"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	FilmName      string `json:"film_name,omitempty" validate:"-"`
	StaffFullName string `json:"staff_full_name,omitempty" validate:"-"`
	StaffTypeName string `json:"staff_type_name,omitempty" validate:"-"`
}

func (l FilmStaffLink) String() string { return l.FilmName + " - " + l.StaffFullName }

// FilmCountryLink marks a film as produced in a country.
type FilmCountryLink struct {
	ID        uint64    `json:"id"`
	CountryID uint64    `json:"country_id" validate:"required"`
	FilmID    uint64    `json:"film_id" validate:"required"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FilmName    string `json:"film_name,omitempty" validate:"-"`
	CountryName string `json:"country_name,omitempty" validate:"-"`
}

func (l FilmCountryLink) String() string { return l.FilmName + " - " + l.CountryName }

// FilmGenreLink tags a film with a genre.
type FilmGenreLink struct {
	ID        uint64    `json:"id"`
	GenreID   uint64    `json:"genre_id" validate:"required"`
	FilmID    uint64    `json:"film_id" validate:"required"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FilmName  string `json:"film_name,omitempty" validate:"-"`
	GenreName string `json:"genre_name,omitempty" validate:"-"`
}

func (l FilmGenreLink) String() string { return l.FilmName + " - " + l.GenreName }
