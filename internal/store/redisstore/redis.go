package redisstore

import (
	"context"
	"fmt"
	"time"

	"internship-scraper/internal/fingerprint"
	"internship-scraper/internal/store"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr     string // "localhost:6379"
	URL      string // "redis://<user>:<pass>@localhost:6379/<db>", wins over Addr
	Password string
	DB       int
	Prefix   string
}

// Backend keeps records in a hash keyed by fingerprint and the insertion
// order in a list. Both are written by one Lua script so a fingerprint is
// either fully recorded or absent.
type Backend struct {
	client   *redis.Client
	jobsKey  string
	orderKey string
}

var _ store.Backend = (*Backend)(nil)

var insertScript = redis.NewScript(`
if redis.call('HSETNX', KEYS[1], ARGV[1], ARGV[2]) == 1 then
  redis.call('RPUSH', KEYS[2], ARGV[1])
  return 1
end
return 0
`)

func Open(ctx context.Context, cfg Config) (*Backend, error) {
	var opt *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opt = parsed
	} else {
		opt = &redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	if cfg.Password != "" && opt.Password == "" {
		opt.Password = cfg.Password
	}
	return New(ctx, redis.NewClient(opt), cfg.Prefix)
}

// New takes ownership of client.
func New(ctx context.Context, client *redis.Client, prefix string) (*Backend, error) {
	if prefix == "" {
		prefix = "internships"
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Backend{
		client:   client,
		jobsKey:  prefix + ":jobs",
		orderKey: prefix + ":order",
	}, nil
}

func (b *Backend) Insert(ctx context.Context, e store.Entry) (bool, error) {
	payload, err := store.EncodeRecord(e.Record)
	if err != nil {
		return false, fmt.Errorf("encode job: %w", err)
	}
	n, err := insertScript.Run(ctx, b.client, []string{b.jobsKey, b.orderKey}, e.Fingerprint.String(), payload).Int()
	if err != nil {
		return false, fmt.Errorf("error while adding job to %s: %w", b.jobsKey, err)
	}
	return n == 1, nil
}

func (b *Backend) Load(ctx context.Context) ([]store.Entry, error) {
	ids, err := b.client.LRange(ctx, b.orderKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", b.orderKey, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	vals, err := b.client.HMGet(ctx, b.jobsKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", b.jobsKey, err)
	}

	out := make([]store.Entry, 0, len(ids))
	for i, id := range ids {
		raw, ok := vals[i].(string)
		if !ok {
			// order entry without a record: never written by insertScript
			continue
		}
		fp, err := fingerprint.Parse(id)
		if err != nil {
			return nil, err
		}
		rec, err := store.DecodeRecord([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("decode job %s: %w", id, err)
		}
		out = append(out, store.Entry{Fingerprint: fp, Record: rec})
	}
	return out, nil
}

func (b *Backend) Close() error {
	return b.client.Close()
}

// Drop removes both keys; used by integration tests.
func (b *Backend) Drop(ctx context.Context) error {
	return b.client.Del(ctx, b.jobsKey, b.orderKey).Err()
}
