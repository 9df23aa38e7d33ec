package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/film-catalog/internal/config"
	"github.com/iliyamo/film-catalog/internal/handler"
	"github.com/iliyamo/film-catalog/internal/middleware"
	"github.com/iliyamo/film-catalog/internal/repository"
	"github.com/iliyamo/film-catalog/internal/utils"
)

const secret = "router-secret"

func newServer(t *testing.T) (*echo.Echo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
		db.Close()
	})
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	e := echo.New()
	Configure(e)
	RegisterRoutes(e)
	cfg := config.Config{JWTSecret: secret, AccessTTLMin: 5, RefreshTTLDays: 1}
	RegisterAuth(e,
		handler.NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db)),
		secret,
		middleware.NewTokenBucket(config.RateLimitConfig{}, nil))
	RegisterAdmin(e,
		Dictionaries{
			Countries:  handler.NewDictionaryHandler(repository.NewCountryRepo(db), nil),
			Genres:     handler.NewDictionaryHandler(repository.NewGenreRepo(db), nil),
			PhotoTypes: handler.NewDictionaryHandler(repository.NewPhotoTypeRepo(db), nil),
			StaffTypes: handler.NewDictionaryHandler(repository.NewStaffTypeRepo(db), nil),
		},
		handler.NewAdminHandler(repository.NewStaffRepo(db), repository.NewFilmRepo(db),
			repository.NewPhotoRepo(db), repository.NewPhotoTypeRepo(db), repository.NewLinkRepo(db), nil, nil),
		secret,
		middleware.NewRedisCache(config.CacheConfig{Enabled: true, TTL: time.Minute, Prefix: "test:cache", MaxBodyBytes: 1 << 20}, rdb))
	return e, mock
}

func get(e *echo.Echo, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestPublicRoutes(t *testing.T) {
	e, _ := newServer(t)

	if rec := get(e, "/healthz", ""); rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body)
	}
	if rec := get(e, "/films/3", ""); rec.Body.String() != "kinosite application page:\nFilm: 3" {
		t.Errorf("film page = %q", rec.Body)
	}
	if rec := get(e, "/films/3/extra", ""); rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "Page not found") {
		t.Errorf("unknown page = %d %q", rec.Code, rec.Body)
	}
}

func TestAdminRoutesNeedAdminToken(t *testing.T) {
	e, _ := newServer(t)
	viewer, err := utils.NewAccessToken(secret, 2, "VIEWER", 5)
	if err != nil {
		t.Fatal(err)
	}
	if rec := get(e, "/admin/films", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous = %d", rec.Code)
	}
	if rec := get(e, "/admin/films", viewer.Token); rec.Code != http.StatusForbidden {
		t.Errorf("viewer = %d", rec.Code)
	}
}

func TestAdminReadsAreCached(t *testing.T) {
	e, mock := newServer(t)
	admin, err := utils.NewAccessToken(secret, 1, "ADMIN", 5)
	if err != nil {
		t.Fatal(err)
	}
	mock.ExpectQuery("FROM staff_types ORDER BY name, id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}).
			AddRow(1, "Director", time.Now(), time.Now()))

	first := get(e, "/admin/staff-types", admin.Token)
	if first.Code != http.StatusOK || first.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("first = %d %s", first.Code, first.Header().Get("X-Cache"))
	}
	second := get(e, "/admin/staff-types", admin.Token)
	if second.Header().Get("X-Cache") != "HIT" || second.Body.String() != first.Body.String() {
		t.Fatalf("second = %s %q", second.Header().Get("X-Cache"), second.Body)
	}
}
