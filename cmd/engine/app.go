package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"internship-scraper/internal/config"
	"internship-scraper/internal/events"
	"internship-scraper/internal/poll"
	"internship-scraper/internal/render"
	"internship-scraper/internal/scrape/linkedin"
	"internship-scraper/internal/scrape/util"
	"internship-scraper/internal/store"
	"internship-scraper/internal/store/backends"
	"internship-scraper/pkg/logging"

	"github.com/gofrs/flock"
)

var errInstanceRunning = errors.New("another engine instance holds the data directory")

type app struct {
	cfg    config.Config
	log    *logging.Logger
	lock   *flock.Flock
	repo   *store.Repository
	hub    *events.Hub
	runner *poll.Runner
}

// openApp takes the single-instance lock, opens storage and wires the
// fetchers. Callers must call close.
func openApp(ctx context.Context, cfg config.Config, log *logging.Logger) (*app, error) {
	if err := os.MkdirAll(cfg.App.DataDir, 0o755); err != nil {
		return nil, err
	}
	lock := flock.New(filepath.Join(cfg.App.DataDir, "engine.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("engine lock: %w", err)
	}
	if !ok {
		return nil, errInstanceRunning
	}

	backend, err := backends.Open(ctx, cfg)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Driver, err)
	}
	repo, err := store.NewRepository(ctx, backend)
	if err != nil {
		_ = backend.Close()
		_ = lock.Unlock()
		return nil, err
	}
	log.Info("storage opened", "driver", cfg.Storage.Driver, "jobs", repo.Len())

	hub := events.NewHub()
	limiter := util.NewHostLimiter(cfg.Scrape.RequestsPerSecond, cfg.Scrape.Burst)
	scraper := linkedin.New(cfg, limiter, log.Named("linkedin"))

	runner := poll.NewRunner(repo, scraper.Fetchers(), poll.Options{
		Concurrency: cfg.Scrape.Concurrency,
		Log:         log.Named("poll"),
		Hub:         hub,
	})

	return &app{cfg: cfg, log: log, lock: lock, repo: repo, hub: hub, runner: runner}, nil
}

func (a *app) listingOptions() render.Options {
	return render.Options{Title: a.cfg.Output.Title, Intro: a.cfg.Output.Intro}
}

func (a *app) writeListing() error {
	jobs := a.repo.GetAllJobs()
	if err := render.WriteFile(a.cfg.Output.Path, jobs, a.listingOptions()); err != nil {
		return fmt.Errorf("write %s: %w", a.cfg.Output.Path, err)
	}
	a.log.Info("generated markdown listing", "path", a.cfg.Output.Path, "jobs", len(jobs))
	return nil
}

func (a *app) close() {
	if err := a.repo.Close(); err != nil {
		a.log.Warn("close storage", "err", err)
	}
	_ = a.lock.Unlock()
}
