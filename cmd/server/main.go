package main

import (
	"context"
	"log"

	"asr-benchmark-platform/internal/apigateway"
	"asr-benchmark-platform/internal/auth"
	"asr-benchmark-platform/internal/config"
	"asr-benchmark-platform/internal/configmanagement"
	"asr-benchmark-platform/internal/coreengine/evaluationengine"
	"asr-benchmark-platform/internal/coreengine/resolver"
	"asr-benchmark-platform/internal/coreengine/runner"
	"asr-benchmark-platform/internal/datastore"
	"asr-benchmark-platform/internal/jobmanagement"
	"asr-benchmark-platform/internal/objectstore"
)

func main() {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		log.Fatalf("failed to load server configuration: %v", err)
	}

	authService, err := auth.NewFromEnv()
	if err != nil {
		log.Fatalf("failed to configure admin auth: %v", err)
	}

	store, err := datastore.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer store.Close()
	if err := store.EnsureSchema(); err != nil {
		log.Fatalf("failed to ensure database schema: %v", err)
	}

	objects, err := objectstore.New(context.Background(), cfg.ObjectStore)
	if err != nil {
		log.Fatalf("failed to connect to object storage: %v", err)
	}

	registry := config.DefaultRegistry()
	if cfg.ModelRegistryPath != "" {
		registry, err = config.LoadRegistry(cfg.ModelRegistryPath)
		if err != nil {
			log.Fatalf("failed to load model registry: %v", err)
		}
	}
	adapters, err := config.BuildAdapters(registry)
	if err != nil {
		log.Fatalf("failed to build model adapters: %v", err)
	}
	res, err := resolver.New(adapters)
	if err != nil {
		log.Fatalf("invalid model registry: %v", err)
	}

	engine := &evaluationengine.Engine{Resolver: res, Runner: &runner.Runner{}}
	jobs := jobmanagement.NewJobService(store, objects, engine)
	samples := &configmanagement.Handlers{Store: store, Objects: objects}

	router := apigateway.SetupRouter(authService, samples, jobs)
	log.Printf("listening on %s with %d registered models", cfg.ListenAddr, len(adapters))
	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
