package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestDateJSON(t *testing.T) {
	var f Film
	if err := json.Unmarshal([]byte(`{"name":"Inception","title":"Dream heist","released_at":"2010-07-16"}`), &f); err != nil {
		t.Fatal(err)
	}
	if !f.ReleasedAt.Equal(NewDate(2010, time.July, 16).Time) {
		t.Fatalf("released_at = %v", f.ReleasedAt)
	}
	out, err := json.Marshal(f.ReleasedAt)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `"2010-07-16"` {
		t.Fatalf("marshal = %s", out)
	}

	if err := json.Unmarshal([]byte(`{"released_at":"16.07.2010"}`), &f); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

func TestDateScan(t *testing.T) {
	cases := []struct {
		name string
		src  any
		want Date
	}{
		{"time", time.Date(1970, 7, 30, 13, 5, 0, 0, time.UTC), NewDate(1970, time.July, 30)},
		{"bytes", []byte("1970-07-30"), NewDate(1970, time.July, 30)},
		{"datetime string", "1970-07-30 00:00:00", NewDate(1970, time.July, 30)},
		{"nil", nil, Date{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var d Date
			if err := d.Scan(tc.src); err != nil {
				t.Fatal(err)
			}
			if !d.Equal(tc.want.Time) {
				t.Fatalf("got %v want %v", d, tc.want)
			}
		})
	}

	var d Date
	if err := d.Scan(42); err == nil {
		t.Fatal("expected error scanning int")
	}
}

func TestDateValue(t *testing.T) {
	v, err := NewDate(2010, time.July, 16).Value()
	if err != nil || v != "2010-07-16" {
		t.Fatalf("Value() = %v, %v", v, err)
	}
	v, err = Date{}.Value()
	if err != nil || v != nil {
		t.Fatalf("zero Value() = %v, %v", v, err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name  string
		in    any
		field string
	}{
		{"blank country", &Country{Name: "   "}, "name"},
		{"long genre", &Genre{Name: string(make([]byte, 256))}, "name"},
		{"staff without birthday", &StaffMember{FullName: "Christopher Nolan"}, "birthday"},
		{"film without title", &Film{Name: "Inception", ReleasedAt: NewDate(2010, 7, 16)}, "title"},
		{"link without type", &FilmStaffLink{StaffID: 1, FilmID: 2}, "staff_type_id"},
		{"photo without image", &FilmPhoto{FilmID: 1, PhotoTypeID: 1}, "image"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.in)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() = %v, want *ValidationError", err)
			}
			if verr.Field != tc.field {
				t.Fatalf("field = %q, want %q", verr.Field, tc.field)
			}
		})
	}

	ok := []any{
		&Country{Name: "France"},
		&StaffMember{FullName: "Christopher Nolan", Birthday: NewDate(1970, 7, 30)},
		&Film{Name: "Inception", Title: "Dream heist", ReleasedAt: NewDate(2010, 7, 16)},
		&FilmStaffLink{StaffID: 1, FilmID: 2, StaffTypeID: 3},
	}
	for _, v := range ok {
		if err := Validate(v); err != nil {
			t.Errorf("Validate(%T) = %v", v, err)
		}
	}
}

func TestDisplayLabels(t *testing.T) {
	p := FilmPhoto{FilmName: "Inception", PhotoTypeName: "poster", Image: "films/photos/1/a.jpg"}
	if got := p.String(); got != "Inception/poster/films/photos/1/a.jpg" {
		t.Fatalf("photo label = %q", got)
	}
	l := FilmStaffLink{FilmName: "Inception", StaffFullName: "Christopher Nolan"}
	if got := l.String(); got != "Inception - Christopher Nolan" {
		t.Fatalf("link label = %q", got)
	}
}
