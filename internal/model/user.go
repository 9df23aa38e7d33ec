package model

import "time"

// RoleAdmin is the only role allowed on /admin routes.
const RoleAdmin = "ADMIN"

// AdminUser is a staff account allowed to manage the catalog.  It mirrors
// the `admin_users` table; the password is only ever stored as a bcrypt
// hash.
type AdminUser struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email" validate:"required,email,max=255"`
	PasswordHash string    `json:"-" validate:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
