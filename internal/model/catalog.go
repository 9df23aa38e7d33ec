package model

import "time"

// Dictionary is a name-keyed lookup row.  Countries, genres, photo types
// and staff types share this shape; each lives in its own table with a
// unique name.
//
// Fields:
//
//	ID        - primary key identifier.
//	Name      - unique display name.
//	CreatedAt - set once on insert.
//	UpdatedAt - refreshed on every update.
type Dictionary struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name" validate:"notblank,max=255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d Dictionary) String() string { return d.Name }

// Country, Genre, PhotoType and StaffType name the dictionary rows by the
// table they come from.
type (
	Country   = Dictionary
	Genre     = Dictionary
	PhotoType = Dictionary // e.g. poster, still
	StaffType = Dictionary // e.g. director, actor
)

// StaffMember is a person credited on films.
type StaffMember struct {
	ID        uint64    `json:"id"`
	FullName  string    `json:"full_name" validate:"notblank,max=255"`
	Birthday  Date      `json:"birthday" validate:"required"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s StaffMember) String() string { return s.FullName }

// Film is a catalog entry.  Title holds the long description.
type Film struct {
	ID         uint64    `json:"id"`
	Name       string    `json:"name" validate:"notblank,max=255"`
	Title      string    `json:"title" validate:"notblank"`
	ReleasedAt Date      `json:"released_at" validate:"required"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (f Film) String() string { return f.Name }
