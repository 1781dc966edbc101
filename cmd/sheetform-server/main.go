package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-sheetform/internal/config"
	"github.com/goliatone/go-sheetform/internal/server"
	"github.com/goliatone/go-sheetform/pkg/client"
	"github.com/goliatone/go-sheetform/pkg/orchestrator"
	"github.com/goliatone/go-sheetform/pkg/renderers/sheet"
	"github.com/goliatone/go-sheetform/pkg/schema"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clientOptions := []client.Option{client.WithRetry(cfg.API.RetryAttempts, cfg.API.RetryDelay)}
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("Redis unavailable at %s, caching disabled: %v", cfg.Redis.Addr, err)
		} else {
			log.Printf("Caching entities in Redis at %s (ttl %s)", cfg.Redis.Addr, cfg.Redis.TTL)
			clientOptions = append(clientOptions, client.WithCache(client.NewRedisCache(rdb, cfg.Redis.TTL)))
		}
	}

	api, err := client.New(cfg.API.BaseURL, clientOptions...)
	if err != nil {
		log.Fatalf("Failed to create API client: %v", err)
	}

	schemas, err := schema.Defaults()
	if err != nil {
		log.Fatalf("Failed to load schemas: %v", err)
	}
	if cfg.Server.SchemaDir != "" {
		extra, err := schema.LoadFS(os.DirFS(cfg.Server.SchemaDir))
		if err != nil {
			log.Fatalf("Failed to load schemas from %s: %v", cfg.Server.SchemaDir, err)
		}
		extra.Merge(schemas)
		schemas = extra
	}
	log.Printf("Serving sheets: %v", schemas.Names())

	html, err := sheet.New()
	if err != nil {
		log.Fatalf("Failed to create sheet renderer: %v", err)
	}

	orch := orchestrator.New(
		orchestrator.WithSchemas(schemas),
		orchestrator.WithHTMLRenderer(html),
		orchestrator.WithStore(api),
	)

	if err := server.Run(ctx, server.Config{
		Addr:         cfg.Server.Addr,
		Orchestrator: orch,
		Index:        api,
		Staged:       cfg.Server.Staged,
	}); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
