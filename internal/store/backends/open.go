package backends

import (
	"context"
	"fmt"
	"strings"

	"internship-scraper/internal/config"
	"internship-scraper/internal/secrets"
	"internship-scraper/internal/store"
	"internship-scraper/internal/store/mongostore"
	"internship-scraper/internal/store/neo4jstore"
	"internship-scraper/internal/store/redisstore"
)

const (
	RedisPasswordEnv = "INTERNSHIPS_REDIS_PASSWORD"
	MongoPasswordEnv = "INTERNSHIPS_MONGO_PASSWORD"
	Neo4jPasswordEnv = "INTERNSHIPS_NEO4J_PASSWORD"
)

// Open builds the backend named by cfg.Storage.Driver.
func Open(ctx context.Context, cfg config.Config) (store.Backend, error) {
	s := cfg.Storage
	switch strings.ToLower(strings.TrimSpace(s.Driver)) {
	case "", "sqlite":
		return check(store.OpenSQLite(cfg.StoragePath()))
	case "file":
		return check(store.OpenFile(cfg.StoragePath()))
	case "memory":
		return store.NewMemoryBackend(), nil
	case "redis":
		return check(redisstore.Open(ctx, redisstore.Config{
			Addr:     s.Redis.Addr,
			URL:      s.Redis.URL,
			Password: secrets.Lookup(s.Redis.KeyringAccount, RedisPasswordEnv, s.Redis.Password),
			DB:       s.Redis.DB,
			Prefix:   s.Redis.Prefix,
		}))
	case "mongo":
		return check(mongostore.Open(ctx, mongostore.Config{
			URI:        s.Mongo.URI,
			Username:   s.Mongo.Username,
			Password:   secrets.Lookup(s.Mongo.KeyringAccount, MongoPasswordEnv, s.Mongo.Password),
			Database:   s.Mongo.Database,
			Collection: s.Mongo.Collection,
		}))
	case "neo4j":
		return check(neo4jstore.Open(ctx, neo4jstore.Config{
			URI:      s.Neo4j.URI,
			Username: s.Neo4j.Username,
			Password: secrets.Lookup(s.Neo4j.KeyringAccount, Neo4jPasswordEnv, s.Neo4j.Password),
			Database: s.Neo4j.Database,
		}))
	default:
		return nil, fmt.Errorf("unknown storage driver %q", s.Driver)
	}
}

// check returns an untyped nil Backend on error.
func check[B store.Backend](b B, err error) (store.Backend, error) {
	if err != nil {
		return nil, err
	}
	return b, nil
}
