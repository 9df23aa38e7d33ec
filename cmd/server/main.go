package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/film-catalog/internal/config"
	"github.com/iliyamo/film-catalog/internal/database"
	"github.com/iliyamo/film-catalog/internal/handler"
	"github.com/iliyamo/film-catalog/internal/middleware"
	"github.com/iliyamo/film-catalog/internal/repository"
	"github.com/iliyamo/film-catalog/internal/router"
	"github.com/iliyamo/film-catalog/internal/service"
	"github.com/iliyamo/film-catalog/internal/storage"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer db.Close()

	if cfg.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.Migrate(ctx, db)
		cancel()
		if err != nil {
			log.Fatalf("db migrate: %v", err)
		}
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; cache and rate limit disabled")
	} else {
		defer rdb.Close()
	}

	var store handler.ObjectStore
	if ms, err := storage.NewMinioStore(config.LoadStorageConfig()); err != nil {
		log.Printf("asset storage disabled: %v", err)
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := ms.EnsureBucket(ctx); err != nil {
			log.Printf("asset storage disabled: %v", err)
		} else {
			store = ms
		}
		cancel()
	}

	var events handler.Publisher = handler.NopPublisher()
	if qcfg := config.LoadQueueConfig(); qcfg.Enabled {
		events = service.NewQueuePublisher(qcfg)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	router.Configure(e)

	router.RegisterRoutes(e)
	router.RegisterAuth(e,
		handler.NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db)),
		cfg.JWTSecret,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	router.RegisterAdmin(e,
		router.Dictionaries{
			Countries:  handler.NewDictionaryHandler(repository.NewCountryRepo(db), events),
			Genres:     handler.NewDictionaryHandler(repository.NewGenreRepo(db), events),
			PhotoTypes: handler.NewDictionaryHandler(repository.NewPhotoTypeRepo(db), events),
			StaffTypes: handler.NewDictionaryHandler(repository.NewStaffTypeRepo(db), events),
		},
		handler.NewAdminHandler(
			repository.NewStaffRepo(db),
			repository.NewFilmRepo(db),
			repository.NewPhotoRepo(db),
			repository.NewPhotoTypeRepo(db),
			repository.NewLinkRepo(db),
			store,
			events,
		),
		cfg.JWTSecret,
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
