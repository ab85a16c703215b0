package poll

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"internship-scraper/internal/scrape/types"
)

var (
	ErrAlreadyRunning = errors.New("ingestion pass already running")
	ErrClosed         = errors.New("runner is shut down")
)

// Runner allows at most one ingestion pass at a time and remembers the
// outcome of the last one.
type Runner struct {
	repo     Ingester
	fetchers []types.Fetcher
	opts     Options

	// AfterRun, when set, is called after every pass (e.g. to rewrite the
	// listing). It runs before the pass is marked finished.
	AfterRun func(ctx context.Context, sum Summary)

	mu      sync.Mutex // guards closed and wg.Add
	closed  bool
	running atomic.Bool
	status  atomic.Value // types.ScrapeStatus
	wg      sync.WaitGroup
}

func NewRunner(repo Ingester, fetchers []types.Fetcher, opts Options) *Runner {
	r := &Runner{repo: repo, fetchers: fetchers, opts: opts}
	r.status.Store(types.ScrapeStatus{Total: repo.Len()})
	return r
}

// Run executes one pass synchronously.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	if err := r.begin(); err != nil {
		return Summary{}, err
	}
	return r.run(ctx)
}

// Start launches a pass in the background and returns immediately.
func (r *Runner) Start(ctx context.Context) error {
	if err := r.begin(); err != nil {
		return err
	}
	go func() { _, _ = r.run(context.WithoutCancel(ctx)) }()
	return nil
}

func (r *Runner) begin() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if !r.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	r.wg.Add(1)
	return nil
}

func (r *Runner) run(ctx context.Context) (Summary, error) {
	defer r.wg.Done()
	defer r.running.Store(false)

	st := r.Status()
	st.Running = true
	st.LastRunAt = time.Now().Format(time.RFC3339)
	r.status.Store(st)

	sum, err := RunOnce(ctx, r.repo, r.fetchers, r.opts)
	if r.AfterRun != nil {
		r.AfterRun(ctx, sum)
	}

	st.Running = false
	st.RunID = sum.RunID
	st.LastAdded = sum.New
	st.Total = sum.Total
	if err != nil {
		st.LastError = err.Error()
	} else {
		st.LastError = ""
		st.LastOkAt = time.Now().Format(time.RFC3339)
	}
	r.status.Store(st)
	return sum, err
}

func (r *Runner) Status() types.ScrapeStatus {
	st, _ := r.status.Load().(types.ScrapeStatus)
	return st
}

func (r *Runner) Running() bool { return r.running.Load() }

// Shutdown refuses new passes and waits for an in-flight one, up to ctx.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
