// Package storage keeps film and staff photo assets in an S3 compatible
// bucket.  Object keys are derived from the owning row, so the same
// filename uploaded twice for one owner replaces the earlier object.
package storage

import (
	"path"
	"strconv"
	"strings"
)

// FilmPhotoPath is the object key of a film photo:
// films/photos/{film_id}/{filename}.
func FilmPhotoPath(filmID uint64, filename string) string {
	return "films/photos/" + strconv.FormatUint(filmID, 10) + "/" + BaseName(filename)
}

// StaffPhotoPath is the object key of a staff photo:
// staff/photos/{staff_id}/{filename}.
func StaffPhotoPath(staffID uint64, filename string) string {
	return "staff/photos/" + strconv.FormatUint(staffID, 10) + "/" + BaseName(filename)
}

// BaseName drops any directory part a client put in the filename, with
// either slash style.
func BaseName(filename string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), `\`, "/"))
	switch name {
	case ".", "/", "..":
		return ""
	}
	return name
}
