package model

import "time"

// FilmPhoto is an image asset of a film.  Image is the storage key,
// derived from the film id and the uploaded filename.
type FilmPhoto struct {
	ID          uint64    `json:"id"`
	FilmID      uint64    `json:"film_id" validate:"required"`
	PhotoTypeID uint64    `json:"photo_type_id" validate:"required"`
	Image       string    `json:"image" validate:"notblank,max=512"`
	IsMain      bool      `json:"is_main"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Joined for display; not stored on the row.
	FilmName      string `json:"film_name,omitempty" validate:"-"`
	PhotoTypeName string `json:"photo_type_name,omitempty" validate:"-"`
	ImageURL      string `json:"image_url,omitempty" validate:"-"`
}

func (p FilmPhoto) String() string {
	return p.FilmName + "/" + p.PhotoTypeName + "/" + p.Image
}

// StaffPhoto is an image asset of a staff member.
type StaffPhoto struct {
	ID        uint64    `json:"id"`
	StaffID   uint64    `json:"staff_id" validate:"required"`
	Image     string    `json:"image" validate:"notblank,max=512"`
	IsMain    bool      `json:"is_main"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	StaffName string `json:"staff_name,omitempty" validate:"-"`
	ImageURL  string `json:"image_url,omitempty" validate:"-"`
}

func (p StaffPhoto) String() string { return p.StaffName + "/" + p.Image }
