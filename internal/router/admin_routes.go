package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/film-catalog/internal/handler"
	"github.com/iliyamo/film-catalog/internal/middleware"
	"github.com/iliyamo/film-catalog/internal/model"
)

// Dictionaries holds one handler per lookup table.
type Dictionaries struct {
	Countries  *handler.DictionaryHandler
	Genres     *handler.DictionaryHandler
	PhotoTypes *handler.DictionaryHandler
	StaffTypes *handler.DictionaryHandler
}

// RegisterAuth mounts login, refresh and logout under /admin/auth.
// limiter guards them against password guessing.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/admin/auth", limiter)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	e.GET("/admin/me", a.Me, middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleAdmin))
}

// RegisterAdmin mounts the catalog CRUD under /admin.  Every route needs
// an ADMIN access token; cache serves repeated reads.
func RegisterAdmin(e *echo.Echo, d Dictionaries, a *handler.AdminHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	g := e.Group("/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
		cache,
	)

	dictionary(g, "/countries", d.Countries)
	dictionary(g, "/genres", d.Genres)
	dictionary(g, "/photo-types", d.PhotoTypes)
	dictionary(g, "/staff-types", d.StaffTypes)

	// ---- Staff ----
	g.GET("/staff", a.ListStaff)
	g.POST("/staff", a.CreateStaff)
	g.GET("/staff/:id", a.GetStaff)
	g.PUT("/staff/:id", a.UpdateStaff)
	g.PATCH("/staff/:id", a.UpdateStaff)
	g.DELETE("/staff/:id", a.DeleteStaff)
	g.PUT("/staff/:id/form", a.SaveStaffForm)
	g.GET("/staff/:id/photos", a.ListStaffPhotos)
	g.POST("/staff/:id/photos", a.UploadStaffPhoto)

	// ---- Films ----
	g.GET("/films", a.ListFilms)
	g.POST("/films", a.CreateFilm)
	g.POST("/films/form", a.CreateFilmForm)
	g.GET("/films/:id", a.GetFilm)
	g.PUT("/films/:id", a.UpdateFilm)
	g.PATCH("/films/:id", a.UpdateFilm)
	g.DELETE("/films/:id", a.DeleteFilm)
	g.PUT("/films/:id/form", a.SaveFilmForm)
	g.GET("/films/:id/photos", a.ListFilmPhotos)
	g.POST("/films/:id/photos", a.UploadFilmPhoto)

	// ---- Photos ----
	g.PATCH("/film-photos/:id", a.UpdateFilmPhoto)
	g.DELETE("/film-photos/:id", a.DeleteFilmPhoto)
	g.PATCH("/staff-photos/:id", a.UpdateStaffPhoto)
	g.DELETE("/staff-photos/:id", a.DeleteStaffPhoto)

	// ---- Links ----
	g.GET("/film-staff", a.ListFilmStaff)
	g.POST("/film-staff", a.CreateFilmStaff)
	g.DELETE("/film-staff/:id", a.DeleteFilmStaff)
	g.GET("/film-countries", a.ListFilmCountries)
	g.POST("/film-countries", a.CreateFilmCountry)
	g.DELETE("/film-countries/:id", a.DeleteFilmCountry)
	g.GET("/film-genres", a.ListFilmGenres)
	g.POST("/film-genres", a.CreateFilmGenre)
	g.DELETE("/film-genres/:id", a.DeleteFilmGenre)
}

func dictionary(g *echo.Group, prefix string, h *handler.DictionaryHandler) {
	g.GET(prefix, h.List)
	g.POST(prefix, h.Create)
	g.GET(prefix+"/:id", h.Get)
	g.PUT(prefix+"/:id", h.Update)
	g.PATCH(prefix+"/:id", h.Update)
	g.DELETE(prefix+"/:id", h.Delete)
}
