package config

import (
	"fmt"
	"os"
	"strconv"

	"asr-benchmark-platform/internal/objectstore"
)

// ServerConfig carries everything the HTTP server needs at startup.
type ServerConfig struct {
	// ListenAddr is the address the gin server binds, e.g. ":8080".
	ListenAddr string
	// DatabaseURL is the PostgreSQL connection string.
	DatabaseURL string
	// ModelRegistryPath points at the TOML model registry. Empty selects
	// the built-in default registry.
	ModelRegistryPath string
	// ObjectStore holds the MinIO connection settings.
	ObjectStore objectstore.Config
}

// LoadServerConfig reads the server configuration from the environment.
func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{
		ListenAddr:        envOr("LISTEN_ADDR", ":8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		ModelRegistryPath: os.Getenv("MODEL_REGISTRY_PATH"),
		ObjectStore: objectstore.Config{
			Endpoint:        os.Getenv("MINIO_ENDPOINT"),
			AccessKeyID:     os.Getenv("MINIO_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("MINIO_SECRET_ACCESS_KEY"),
			BucketName:      envOr("MINIO_BUCKET_NAME", "asr-benchmark-audio"),
		},
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("config: DATABASE_URL must be set")
	}

	if useSSL := os.Getenv("MINIO_USE_SSL"); useSSL != "" {
		parsed, err := strconv.ParseBool(useSSL)
		if err != nil {
			return nil, fmt.Errorf("config: MINIO_USE_SSL is not a valid boolean: %w", err)
		}
		cfg.ObjectStore.UseSSL = parsed
	}

	return cfg, nil
}

func envOr(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}
