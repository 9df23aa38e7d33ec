package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/film-catalog/internal/model"
	"github.com/iliyamo/film-catalog/internal/utils"
)

// UserRepo persists admin accounts.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

const userSelect = "SELECT id, email, password_hash, role, is_active, created_at, updated_at FROM admin_users"

func scanUser(s scanner) (*model.AdminUser, error) {
	var u model.AdminUser
	if err := s.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create hashes password with the given bcrypt cost and inserts the
// account.  Email is stored lower-cased.
func (r *UserRepo) Create(ctx context.Context, email, password, role string, cost int) (*model.AdminUser, error) {
	u := &model.AdminUser{Email: strings.ToLower(strings.TrimSpace(email)), Role: role}
	if err := model.Validate(u); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, &ValidationError{Field: "password", Reason: "is required"}
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return nil, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO admin_users (email, password_hash, role) VALUES (?, ?, ?)",
		u.Email, hash, role)
	if err != nil {
		var dup *DuplicateKeyError
		if errors.As(translate(err), &dup) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByEmail fetches an account by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.AdminUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.DB.QueryRowContext(ctx, userSelect+" WHERE email = ? LIMIT 1", email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.AdminUser, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, userSelect+" WHERE id = ? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

// SetPassword replaces the stored hash; used by createadmin -reset.
func (r *UserRepo) SetPassword(ctx context.Context, id uint64, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE admin_users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP(6) WHERE id = ?", hash, id)
	if err != nil {
		return err
	}
	return affectedOne(res)
}
