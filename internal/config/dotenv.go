package config

import (
	"log"

	"github.com/joho/godotenv"
)

// LoadEnv reads .env (or the given files) into the process environment.
// Variables already set win.  A missing file is not an error: production
// passes configuration through the real environment.
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		log.Printf("no .env file loaded (%v); using the process environment", err)
	}
}
