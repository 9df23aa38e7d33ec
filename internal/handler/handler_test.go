package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/film-catalog/internal/config"
	"github.com/iliyamo/film-catalog/internal/queue"
	"github.com/iliyamo/film-catalog/internal/repository"
	"github.com/iliyamo/film-catalog/internal/utils"
)

var ts = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct{ events []queue.CatalogChangedEvent }

func (p *recordingPublisher) Publish(_ context.Context, ev queue.CatalogChangedEvent) error {
	p.events = append(p.events, ev)
	return nil
}

type memStore struct{ objects map[string][]byte }

func (s *memStore) Put(_ context.Context, key string, data io.Reader, _ int64, _ string) error {
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	if s.objects == nil {
		s.objects = map[string][]byte{}
	}
	s.objects[key] = b
	return nil
}

func (s *memStore) URL(key string) string { return "http://assets.local/kinosite/" + key }

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
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
	return db, mock
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = Validator{}
	e.HTTPErrorHandler = HTTPErrorHandler(e)
	return e
}

func do(e *echo.Echo, method, target, contentType string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", rec.Body, err)
	}
	return m
}

func TestDictionaryCreatePublishesEvent(t *testing.T) {
	db, mock := newMock(t)
	pub := &recordingPublisher{}
	h := NewDictionaryHandler(repository.NewGenreRepo(db), pub)
	e := newEcho()
	e.POST("/admin/genres", h.Create)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO genres (name) VALUES (?)")).WithArgs("Drama").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectQuery("FROM genres WHERE id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}).AddRow(5, "Drama", ts, ts))

	rec := do(e, http.MethodPost, "/admin/genres", echo.MIMEApplicationJSON, strings.NewReader(`{"name":" Drama "}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body)
	}
	if got := decode(t, rec)["name"]; got != "Drama" {
		t.Errorf("name = %v", got)
	}
	if len(pub.events) != 1 {
		t.Fatalf("events = %+v", pub.events)
	}
	ev := pub.events[0]
	if ev.Entity != "genres" || ev.Action != queue.ActionCreated || ev.ID != 5 || ev.Label != "Drama" {
		t.Errorf("event = %+v", ev)
	}
}

func TestDictionaryCreateConflictAndBlank(t *testing.T) {
	db, mock := newMock(t)
	pub := &recordingPublisher{}
	h := NewDictionaryHandler(repository.NewCountryRepo(db), pub)
	e := newEcho()
	e.POST("/admin/countries", h.Create)

	mock.ExpectExec("INSERT INTO countries").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'France' for key 'countries.countries_name_unique'"})

	rec := do(e, http.MethodPost, "/admin/countries", echo.MIMEApplicationJSON, strings.NewReader(`{"name":"France"}`))
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body)
	}
	if got := decode(t, rec)["constraint"]; got != "countries_name_unique" {
		t.Errorf("constraint = %v", got)
	}

	rec = do(e, http.MethodPost, "/admin/countries", echo.MIMEApplicationJSON, strings.NewReader(`{"name":"  "}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank status = %d (%s)", rec.Code, rec.Body)
	}
	if got := decode(t, rec)["field"]; got != "name" {
		t.Errorf("field = %v", got)
	}
	if len(pub.events) != 0 {
		t.Errorf("failed writes published %+v", pub.events)
	}
}

func TestDictionaryDeleteMissing(t *testing.T) {
	db, mock := newMock(t)
	h := NewDictionaryHandler(repository.NewPhotoTypeRepo(db), nil)
	e := newEcho()
	e.DELETE("/admin/photo-types/:id", h.Delete)

	mock.ExpectQuery("FROM photo_types WHERE id").WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}))

	if rec := do(e, http.MethodDelete, "/admin/photo-types/7", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec := do(e, http.MethodDelete, "/admin/photo-types/abc", "", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d", rec.Code)
	}
}

func TestSitePages(t *testing.T) {
	e := newEcho()
	e.GET("/", Index)
	e.GET("/films/:film_id", Film)

	cases := []struct {
		target string
		status int
		body   string
	}{
		{"/", http.StatusOK, "kinosite application page"},
		{"/films/42", http.StatusOK, "kinosite application page:\nFilm: 42"},
		{"/films/not-a-number", http.StatusOK, "kinosite application page:\nFilm: not-a-number"},
		{"/nowhere", http.StatusNotFound, "<h1>Page not found :(</h1>"},
	}
	for _, tc := range cases {
		rec := do(e, http.MethodGet, tc.target, "", nil)
		if rec.Code != tc.status || rec.Body.String() != tc.body {
			t.Errorf("GET %s = %d %q, want %d %q", tc.target, rec.Code, rec.Body, tc.status, tc.body)
		}
	}
	if ct := do(e, http.MethodGet, "/nowhere", "", nil).Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, echo.MIMETextHTML) {
		t.Errorf("not-found content type = %q", ct)
	}
}

func photoBody(t *testing.T, fields map[string]string, filename string, data []byte) (string, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if filename != "" {
		part, err := w.CreateFormFile("image", filename)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return w.FormDataContentType(), &buf
}

func newAdmin(db *sql.DB, store ObjectStore, pub Publisher) *AdminHandler {
	return NewAdminHandler(repository.NewStaffRepo(db), repository.NewFilmRepo(db),
		repository.NewPhotoRepo(db), repository.NewPhotoTypeRepo(db), repository.NewLinkRepo(db), store, pub)
}

func TestUploadFilmPhoto(t *testing.T) {
	db, mock := newMock(t)
	store := &memStore{}
	pub := &recordingPublisher{}
	e := newEcho()
	e.POST("/admin/films/:id/photos", newAdmin(db, store, pub).UploadFilmPhoto)

	mock.ExpectQuery("FROM films WHERE id").WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "title", "released_at", "created_at", "updated_at"}).
			AddRow(1, "Inception", "Dream heist", time.Date(2010, 7, 16, 0, 0, 0, 0, time.UTC), ts, ts))
	mock.ExpectQuery("FROM photo_types WHERE id").WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}).AddRow(2, "poster", ts, ts))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO film_photos (film_id, photo_type_id, image, is_main) VALUES (?, ?, ?, ?)")).
		WithArgs(uint64(1), uint64(2), "films/photos/1/poster.jpg", true).
		WillReturnResult(sqlmock.NewResult(8, 1))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.id = ?")).WithArgs(uint64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "film_id", "photo_type_id", "image", "is_main", "created_at", "updated_at", "film", "type"}).
			AddRow(8, 1, 2, "films/photos/1/poster.jpg", true, ts, ts, "Inception", "poster"))

	ct, body := photoBody(t, map[string]string{"photo_type_id": "2", "is_main": "true"}, `C:\Users\me\poster.jpg`, []byte("jpeg bytes"))
	rec := do(e, http.MethodPost, "/admin/films/1/photos", ct, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body)
	}
	if got := string(store.objects["films/photos/1/poster.jpg"]); got != "jpeg bytes" {
		t.Errorf("stored = %q", got)
	}
	if got := decode(t, rec)["image_url"]; got != "http://assets.local/kinosite/films/photos/1/poster.jpg" {
		t.Errorf("image_url = %v", got)
	}
	if len(pub.events) != 1 || pub.events[0].Label != "Inception/poster/films/photos/1/poster.jpg" {
		t.Errorf("events = %+v", pub.events)
	}
}

func TestUploadFilmPhotoUnknownTypeKeepsStoredAsset(t *testing.T) {
	db, mock := newMock(t)
	store := &memStore{objects: map[string][]byte{"films/photos/1/poster.jpg": []byte("original")}}
	pub := &recordingPublisher{}
	e := newEcho()
	e.POST("/admin/films/:id/photos", newAdmin(db, store, pub).UploadFilmPhoto)

	mock.ExpectQuery("FROM films WHERE id").WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "title", "released_at", "created_at", "updated_at"}).
			AddRow(1, "Inception", "Dream heist", time.Date(2010, 7, 16, 0, 0, 0, 0, time.UTC), ts, ts))
	mock.ExpectQuery("FROM photo_types WHERE id").WithArgs(uint64(999)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}))

	ct, body := photoBody(t, map[string]string{"photo_type_id": "999"}, "poster.jpg", []byte("replacement"))
	rec := do(e, http.MethodPost, "/admin/films/1/photos", ct, body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body)
	}
	if got := decode(t, rec)["constraint"]; got != "film_photos_type_fk" {
		t.Errorf("constraint = %v", got)
	}
	if got := string(store.objects["films/photos/1/poster.jpg"]); got != "original" {
		t.Errorf("stored asset = %q, want it untouched", got)
	}
	if len(pub.events) != 0 {
		t.Errorf("events = %+v", pub.events)
	}
}

func TestUploadStaffPhotoUnknownMemberStoresNothing(t *testing.T) {
	db, mock := newMock(t)
	store := &memStore{}
	e := newEcho()
	e.POST("/admin/staff/:id/photos", newAdmin(db, store, nil).UploadStaffPhoto)

	mock.ExpectQuery("FROM staff_members WHERE id").WithArgs(uint64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "birthday", "created_at", "updated_at"}))

	ct, body := photoBody(t, nil, "portrait.jpg", []byte("x"))
	if rec := do(e, http.MethodPost, "/admin/staff/4/photos", ct, body); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body)
	}
	if len(store.objects) != 0 {
		t.Errorf("stored %v for a missing member", store.objects)
	}
}

func TestUploadFilmPhotoRejectsBadInput(t *testing.T) {
	db, _ := newMock(t)
	e := newEcho()
	e.POST("/admin/films/:id/photos", newAdmin(db, &memStore{}, nil).UploadFilmPhoto)
	e.POST("/nostore/films/:id/photos", newAdmin(db, nil, nil).UploadFilmPhoto)

	ct, body := photoBody(t, map[string]string{"is_main": "true"}, "poster.jpg", []byte("x"))
	if rec := do(e, http.MethodPost, "/admin/films/1/photos", ct, body); rec.Code != http.StatusBadRequest {
		t.Errorf("missing photo type: status = %d", rec.Code)
	}
	ct, body = photoBody(t, map[string]string{"photo_type_id": "2"}, "", nil)
	if rec := do(e, http.MethodPost, "/admin/films/1/photos", ct, body); rec.Code != http.StatusBadRequest {
		t.Errorf("missing file: status = %d", rec.Code)
	}
	ct, body = photoBody(t, map[string]string{"photo_type_id": "2"}, "poster.jpg", []byte("x"))
	if rec := do(e, http.MethodPost, "/nostore/films/1/photos", ct, body); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("no store: status = %d", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	db, mock := newMock(t)
	cfg := config.Config{JWTSecret: "secret", AccessTTLMin: 5, RefreshTTLDays: 1}
	h := NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db))
	e := newEcho()
	e.POST("/admin/auth/login", h.Login)

	hash, err := utils.HashPassword("s3cret", 4)
	if err != nil {
		t.Fatal(err)
	}
	cols := []string{"id", "email", "password_hash", "role", "is_active", "created_at", "updated_at"}
	mock.ExpectQuery("FROM admin_users WHERE email").WithArgs("admin@kinosite.local").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(1, "admin@kinosite.local", hash, "ADMIN", true, ts, ts))
	mock.ExpectExec("INSERT INTO refresh_tokens").WithArgs(uint64(1), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("FROM admin_users WHERE email").WithArgs("admin@kinosite.local").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(1, "admin@kinosite.local", hash, "ADMIN", true, ts, ts))

	rec := do(e, http.MethodPost, "/admin/auth/login", echo.MIMEApplicationJSON,
		strings.NewReader(`{"email":" Admin@Kinosite.local ","password":"s3cret"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body)
	}
	var resp authResp
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	claims, err := utils.ParseAccessToken("secret", resp.Access.Token)
	if err != nil || claims.UserID != 1 || claims.Role != "ADMIN" {
		t.Fatalf("claims = %+v, %v", claims, err)
	}
	if resp.Refresh.Token == "" {
		t.Error("no refresh token issued")
	}

	rec = do(e, http.MethodPost, "/admin/auth/login", echo.MIMEApplicationJSON,
		strings.NewReader(`{"email":"admin@kinosite.local","password":"wrong"}`))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d", rec.Code)
	}

	rec = do(e, http.MethodPost, "/admin/auth/login", echo.MIMEApplicationJSON, strings.NewReader(`{"email":"nope"}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid body status = %d", rec.Code)
	}
}

func TestRefreshLosingRevokeRaceIsRejected(t *testing.T) {
	db, mock := newMock(t)
	cfg := config.Config{JWTSecret: "secret", AccessTTLMin: 5, RefreshTTLDays: 1}
	h := NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db))
	e := newEcho()
	e.POST("/admin/auth/refresh", h.Refresh)

	hash := utils.HashRefreshRaw("raw-token")
	mock.ExpectQuery("FROM refresh_tokens").WithArgs(hash).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(1, time.Now().Add(time.Hour), nil))
	// Another request revoked the token between the check and the update.
	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at").WithArgs(hash).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rec := do(e, http.MethodPost, "/admin/auth/refresh", echo.MIMEApplicationJSON,
		strings.NewReader(`{"refresh_token":"raw-token"}`))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body)
	}
}
