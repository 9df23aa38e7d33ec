package handler

import (
	"github.com/iliyamo/film-catalog/internal/repository"
)

// AdminHandler bundles what the staff, film, photo and link endpoints
// need.  Store may be nil when asset storage is not configured; uploads
// then answer 503 and thumbnails carry no URL.
type AdminHandler struct {
	Staff      *repository.StaffRepo
	Films      *repository.FilmRepo
	Photos     *repository.PhotoRepo
	PhotoTypes *repository.DictionaryRepo
	Links      *repository.LinkRepo
	Store      ObjectStore
	Events     Publisher
}

// NewAdminHandler panics if a repository is missing.
func NewAdminHandler(staff *repository.StaffRepo, films *repository.FilmRepo, photos *repository.PhotoRepo,
	photoTypes *repository.DictionaryRepo, links *repository.LinkRepo, store ObjectStore, events Publisher) *AdminHandler {
	if staff == nil || films == nil || photos == nil || photoTypes == nil || links == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	if events == nil {
		events = NopPublisher()
	}
	return &AdminHandler{Staff: staff, Films: films, Photos: photos, PhotoTypes: photoTypes, Links: links,
		Store: store, Events: events}
}

// imageURL is the thumbnail link of an object key.
func (h *AdminHandler) imageURL(key string) string {
	if h.Store == nil {
		return ""
	}
	return h.Store.URL(key)
}
