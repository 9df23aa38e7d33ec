package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Table names of the catalog schema.  Repositories refer to these rather
// than repeating literals.
const (
	TableCountries     = "countries"
	TableGenres        = "genres"
	TablePhotoTypes    = "photo_types"
	TableStaffTypes    = "staff_types"
	TableStaffMembers  = "staff_members"
	TableFilms         = "films"
	TableFilmPhotos    = "film_photos"
	TableStaffPhotos   = "staff_photos"
	TableFilmStaff     = "film_staff"
	TableFilmCountries = "film_countries"
	TableFilmGenres    = "film_genres"
	TableAdminUsers    = "admin_users"
	TableRefreshTokens = "refresh_tokens"
)

// timestamps shared by every table.  DATETIME(6) makes updated_at move on
// every UPDATE even when two writes land in the same second.
const timestamps = `
    created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
    updated_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6)`

// dictionaryTable is the shape of the four name-keyed lookup tables.
func dictionaryTable(name string) string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
    id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
    name VARCHAR(255) NOT NULL,%[2]s,
    CONSTRAINT %[1]s_name_unique UNIQUE (name)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`, name, timestamps)
}

// schemaQueries lists the DDL in dependency order: referenced tables come
// before the tables holding foreign keys to them.
var schemaQueries = []string{
	dictionaryTable(TableCountries),
	dictionaryTable(TableGenres),
	dictionaryTable(TablePhotoTypes),
	dictionaryTable(TableStaffTypes),

	`
CREATE TABLE IF NOT EXISTS staff_members (
    id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
    full_name VARCHAR(255) NOT NULL,
    birthday DATE NOT NULL,` + timestamps + `,
    INDEX staff_members_full_name_idx (full_name)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`
CREATE TABLE IF NOT EXISTS films (
    id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    title TEXT NOT NULL,
    released_at DATE NOT NULL,` + timestamps + `,
    INDEX films_released_name_idx (released_at, name)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`
CREATE TABLE IF NOT EXISTS film_photos (
    id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
    film_id BIGINT UNSIGNED NOT NULL,
    photo_type_id BIGINT UNSIGNED NOT NULL,
    image VARCHAR(512) NOT NULL,
    is_main BOOLEAN NOT NULL DEFAULT FALSE,` + timestamps + `,
    CONSTRAINT film_photos_film_fk FOREIGN KEY (film_id) REFERENCES films (id) ON DELETE CASCADE,
    CONSTRAINT film_photos_type_fk FOREIGN KEY (photo_type_id) REFERENCES photo_types (id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`
CREATE TABLE IF NOT EXISTS staff_photos (
    id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
    staff_id BIGINT UNSIGNED NOT NULL,
    image VARCHAR(512) NOT NULL,
    is_main BOOLEAN NOT NULL DEFAULT FALSE,` + timestamps + `,
    CONSTRAINT staff_photos_staff_fk FOREIGN KEY (staff_id) REFERENCES staff_members (id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`
CREATE TABLE IF NOT EXISTS film_staff (
    id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
    staff_id BIGINT UNSIGNED NOT NULL,
    film_id BIGINT UNSIGNED NOT NULL,
    staff_type_id BIGINT UNSIGNED NOT NULL,` + timestamps + `,
    CONSTRAINT film_staff_unique_key UNIQUE (staff_id, film_id, staff_type_id),
    CONSTRAINT film_staff_staff_fk FOREIGN KEY (staff_id) REFERENCES staff_members (id) ON DELETE CASCADE,
    CONSTRAINT film_staff_film_fk FOREIGN KEY (film_id) REFERENCES films (id) ON DELETE CASCADE,
    CONSTRAINT film_staff_type_fk FOREIGN KEY (staff_type_id) REFERENCES staff_types (id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`
CREATE TABLE IF NOT EXISTS film_countries (
    id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
    country_id BIGINT UNSIGNED NOT NULL,
    film_id BIGINT UNSIGNED NOT NULL,` + timestamps + `,
    CONSTRAINT film_country_unique_key UNIQUE (country_id, film_id),
    CONSTRAINT film_countries_country_fk FOREIGN KEY (country_id) REFERENCES countries (id) ON DELETE CASCADE,
    CONSTRAINT film_countries_film_fk FOREIGN KEY (film_id) REFERENCES films (id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`
CREATE TABLE IF NOT EXISTS film_genres (
    id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
    genre_id BIGINT UNSIGNED NOT NULL,
    film_id BIGINT UNSIGNED NOT NULL,` + timestamps + `,
    CONSTRAINT film_genre_unique_key UNIQUE (genre_id, film_id),
    CONSTRAINT film_genres_genre_fk FOREIGN KEY (genre_id) REFERENCES genres (id) ON DELETE CASCADE,
    CONSTRAINT film_genres_film_fk FOREIGN KEY (film_id) REFERENCES films (id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`
CREATE TABLE IF NOT EXISTS admin_users (
    id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
    email VARCHAR(255) NOT NULL,
    password_hash VARCHAR(255) NOT NULL,
    role VARCHAR(32) NOT NULL DEFAULT 'ADMIN',
    is_active BOOLEAN NOT NULL DEFAULT TRUE,` + timestamps + `,
    CONSTRAINT admin_users_email_unique UNIQUE (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`
CREATE TABLE IF NOT EXISTS refresh_tokens (
    id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
    user_id BIGINT UNSIGNED NOT NULL,
    token_hash CHAR(64) NOT NULL,
    expires_at DATETIME NOT NULL,
    revoked_at DATETIME NULL,
    created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
    CONSTRAINT refresh_tokens_hash_unique UNIQUE (token_hash),
    CONSTRAINT refresh_tokens_user_fk FOREIGN KEY (user_id) REFERENCES admin_users (id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates every catalog table that does not exist yet.  It is safe
// to run on each start.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, q := range schemaQueries {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("schema step %d: %w", i+1, err)
		}
	}
	return nil
}
