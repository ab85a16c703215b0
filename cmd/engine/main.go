package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"internship-scraper/internal/config"
	"internship-scraper/pkg/logging"
)

const usage = `usage: engine [flags] <command>

commands:
  run                     one ingestion pass, then rewrite the listing (default)
  serve                   HTTP API on 127.0.0.1:<app.port>
  list                    print the stored jobs as Markdown
  secret set <account>    store a backend password (read from stdin) in the OS keychain
  secret delete <account>

flags:
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	_ = config.LoadDotEnv(".env")

	fs := flag.NewFlagSet("engine", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	dataDir := fs.String("data-dir", envOr(config.EnvPrefix+"DATA_DIR", "."), "directory for config, lock and local storage")
	cfgPath := fs.String("config", "", "config file (default <data-dir>/config.yml)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cmd, rest := "run", fs.Args()
	if len(rest) > 0 {
		cmd, rest = rest[0], rest[1:]
	}

	if cmd == "secret" {
		return runSecret(rest, stdin, stdout, stderr)
	}

	cfg, warnings, err := loadConfig(*dataDir, *cfgPath)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}

	log := logging.New(stderr, cfg.App.LogLevel).Named("engine")
	defer func() { _ = log.Sync() }()
	for _, w := range warnings {
		log.Warn("config", "warning", w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "run":
		return cmdRun(ctx, cfg, log)
	case "serve":
		stop() // serve installs its own signal handling
		return cmdServe(context.Background(), cfg, log)
	case "list":
		return cmdList(ctx, cfg, log, stdout)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", cmd)
		fs.Usage()
		return 2
	}
}

// loadConfig bootstraps <dataDir>/config.yml when no explicit path is given,
// then layers .env and INTERNSHIPS_* variables over the file.
func loadConfig(dataDir, path string) (config.Config, []string, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return config.Config{}, nil, err
	}
	if err := config.LoadDotEnv(filepath.Join(dataDir, ".env")); err != nil {
		return config.Config{}, nil, err
	}

	if path == "" {
		p, err := config.EnsureUserConfig(dataDir)
		if err != nil {
			return config.Config{}, nil, fmt.Errorf("bootstrap: %w", err)
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, fmt.Errorf("load %s: %w", path, err)
	}
	if cfg.App.DataDir == "" || cfg.App.DataDir == "." {
		cfg.App.DataDir = dataDir
	}
	if err := config.OverlayEnv(&cfg); err != nil {
		return cfg, nil, err
	}

	if err := config.Validate(cfg); err != nil {
		return cfg, nil, err
	}
	cfg, v := config.NormalizeAndValidate(cfg)
	return cfg, v.Warnings, nil
}

func envOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}
