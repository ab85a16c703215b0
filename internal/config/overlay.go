// config/overlay.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const EnvPrefix = "INTERNSHIPS_"

// LoadDotEnv loads the given .env files into the process environment.
// Missing files are skipped; variables already set win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// OverlayEnv applies INTERNSHIPS_* variables on top of cfg.
func OverlayEnv(cfg *Config) error {
	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}

	str("DATA_DIR", &cfg.App.DataDir)
	str("LOG_LEVEL", &cfg.App.LogLevel)
	str("KEYWORDS", &cfg.Scrape.Keywords)
	str("SCRAPE_HOST", &cfg.Scrape.Host)
	str("STORAGE_DRIVER", &cfg.Storage.Driver)
	str("STORAGE_PATH", &cfg.Storage.Path)
	str("REDIS_ADDR", &cfg.Storage.Redis.Addr)
	str("REDIS_URL", &cfg.Storage.Redis.URL)
	str("MONGO_URI", &cfg.Storage.Mongo.URI)
	str("NEO4J_URI", &cfg.Storage.Neo4j.URI)
	str("NEO4J_USERNAME", &cfg.Storage.Neo4j.Username)
	str("OUTPUT_PATH", &cfg.Output.Path)

	if v := os.Getenv(EnvPrefix + "PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sPORT: %w", EnvPrefix, err)
		}
		cfg.App.Port = p
	}
	return nil
}
