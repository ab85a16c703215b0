package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"internship-scraper/internal/config"
	"internship-scraper/internal/httpapi"
	"internship-scraper/internal/poll"
	"internship-scraper/internal/render"
	"internship-scraper/internal/secrets"
	"internship-scraper/pkg/logging"
	"internship-scraper/pkg/shutdown"
)

func cmdRun(ctx context.Context, cfg config.Config, log *logging.Logger) int {
	a, err := openApp(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", "err", err)
		return 1
	}
	defer a.close()

	sum, err := a.runner.Run(ctx)
	if err != nil {
		// storage faults are already logged per batch; still publish what we hold
		log.Warn("ingestion pass finished with errors", "err", err)
	}
	log.Info("added new jobs", "new", sum.New, "total", sum.Total)

	if err := a.writeListing(); err != nil {
		log.Error("listing", "err", err)
		return 1
	}
	return 0
}

func cmdList(ctx context.Context, cfg config.Config, log *logging.Logger, stdout io.Writer) int {
	a, err := openApp(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", "err", err)
		return 1
	}
	defer a.close()

	if err := render.Markdown(stdout, a.repo.GetAllJobs(), a.listingOptions()); err != nil {
		log.Error("render", "err", err)
		return 1
	}
	return 0
}

func cmdServe(ctx context.Context, cfg config.Config, log *logging.Logger) int {
	a, err := openApp(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", "err", err)
		return 1
	}
	defer a.close()

	a.runner.AfterRun = func(context.Context, poll.Summary) {
		if err := a.writeListing(); err != nil {
			log.Error("listing", "err", err)
		}
	}

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(cfg.App.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Error("listen", "addr", addr, "err", err)
		return 1
	}

	baseCtx, cancelBase := context.WithCancel(context.Background())
	srv := &http.Server{
		Handler: httpapi.NewHandler(httpapi.Deps{
			Repo:    a.repo,
			Runner:  a.runner,
			Hub:     a.hub,
			Log:     log,
			Listing: a.listingOptions(),
		}),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	serveCtx, serveFailed := context.WithCancelCause(ctx)
	defer serveFailed(nil)
	go func() {
		log.Info("engine listening", "addr", "http://"+addr)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("serve", "err", err)
			serveFailed(err)
		}
	}()

	// Streams end before srv.Shutdown, which waits for open handlers.
	err = shutdown.Graceful(serveCtx, []os.Signal{os.Interrupt, syscall.SIGTERM}, 15*time.Second, log,
		shutdown.Step{Name: "streams", Stop: func(context.Context) error { cancelBase(); return nil }},
		shutdown.Step{Name: "http", Stop: srv.Shutdown},
		shutdown.Step{Name: "runner", Stop: a.runner.Shutdown},
	)
	if cause := context.Cause(serveCtx); cause != nil && !errors.Is(cause, context.Canceled) {
		return 1
	}
	if err != nil {
		return 1
	}
	return 0
}

func runSecret(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) != 2 {
		fmt.Fprintln(stderr, "usage: engine secret set|delete <account>")
		return 2
	}
	action, account := args[0], args[1]

	switch action {
	case "set":
		pw, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintf(stderr, "read password: %v\n", err)
			return 1
		}
		if err := secrets.Set(account, strings.TrimRight(pw, "\r\n")); err != nil {
			fmt.Fprintf(stderr, "keychain: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "stored secret for %s\n", account)
	case "delete":
		if err := secrets.Delete(account); err != nil {
			fmt.Fprintf(stderr, "keychain: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "deleted secret for %s\n", account)
	default:
		fmt.Fprintf(stderr, "unknown secret action %q\n", action)
		return 2
	}
	return 0
}
