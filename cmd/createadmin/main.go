// Command createadmin creates an admin account, or resets its password
// with -reset.
//
//	createadmin -email admin@example.com -password secret
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"github.com/iliyamo/film-catalog/internal/config"
	"github.com/iliyamo/film-catalog/internal/database"
	"github.com/iliyamo/film-catalog/internal/model"
	"github.com/iliyamo/film-catalog/internal/repository"
)

func main() {
	email := flag.String("email", "", "admin email")
	password := flag.String("password", "", "admin password")
	reset := flag.Bool("reset", false, "set the password of an existing account")
	flag.Parse()
	if *email == "" || *password == "" {
		flag.Usage()
		log.Fatal("email and password are required")
	}

	config.LoadEnv()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatalf("db migrate: %v", err)
		}
	}

	users := repository.NewUserRepo(db)
	if *reset {
		u, err := users.GetByEmail(ctx, *email)
		if err != nil {
			log.Fatalf("lookup %s: %v", *email, err)
		}
		if err := users.SetPassword(ctx, u.ID, *password, cfg.BcryptCost); err != nil {
			log.Fatalf("reset password: %v", err)
		}
		log.Printf("password reset for %s (id=%d)", u.Email, u.ID)
		return
	}

	u, err := users.Create(ctx, *email, *password, model.RoleAdmin, cfg.BcryptCost)
	if errors.Is(err, repository.ErrEmailExists) {
		log.Fatalf("%s already exists; use -reset to change the password", *email)
	}
	if err != nil {
		log.Fatalf("create admin: %v", err)
	}
	log.Printf("created admin %s (id=%d)", u.Email, u.ID)
}
