// Command auditlog consumes catalog change events and appends them to the
// audit log file (QUEUE_LOG_PATH, default logs/catalog.log).
package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/iliyamo/film-catalog/internal/config"
	"github.com/iliyamo/film-catalog/internal/queue"
)

func main() {
	config.LoadEnv()
	cfg := config.LoadQueueConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("consuming %s into %s", cfg.Queue, cfg.LogPath)
	if err := queue.StartCatalogConsumer(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}
