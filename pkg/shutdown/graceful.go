package shutdown

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"internship-scraper/pkg/logging"
)

// Step is one stage of an ordered shutdown.
type Step struct {
	Name string
	Stop func(ctx context.Context) error
}

// Graceful blocks until one of signals arrives or parent is done, then runs
// steps under timeout.
func Graceful(parent context.Context, signals []os.Signal, timeout time.Duration, log *logging.Logger, steps ...Step) error {
	sigCtx, stop := signal.NotifyContext(parent, signals...)
	defer stop()

	<-sigCtx.Done()
	if cause := context.Cause(parent); cause != nil {
		log.Info("shutting down", "cause", cause)
	} else {
		log.Info("shutdown signal received")
	}
	return Run(timeout, log, steps...)
}

// Run executes steps in order sharing one deadline. A failed step is logged
// and the remaining steps still run; the result joins every failure.
func Run(timeout time.Duration, log *logging.Logger, steps ...Step) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	for _, s := range steps {
		start := time.Now()
		if err := s.Stop(ctx); err != nil {
			log.Warn("shutdown step failed", "step", s.Name, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
			continue
		}
		log.Debug("shutdown step done", "step", s.Name, "took", time.Since(start))
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	log.Info("graceful shutdown completed")
	return nil
}
