package poll

import (
	"context"
	"errors"
	"time"

	"internship-scraper/internal/domain"
	"internship-scraper/internal/events"
	"internship-scraper/internal/scrape/types"
	"internship-scraper/pkg/logging"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Ingester is the part of store.Repository a pass writes to.
type Ingester interface {
	AddJobs(ctx context.Context, records []domain.JobRecord) (newCount, totalCount int, err error)
	Len() int
}

type Options struct {
	Concurrency  int           // parallel fetches; <= 0 means one per source
	FetchTimeout time.Duration // per source; <= 0 means 2m
	Log          *logging.Logger
	Hub          *events.Hub
}

type SourceError struct {
	Source string `json:"source"`
	Stage  string `json:"stage"` // fetch | store
	Error  string `json:"error"`
}

type Summary struct {
	RunID      string        `json:"run_id"`
	Sources    int           `json:"sources"`
	Fetched    int           `json:"fetched"`
	New        int           `json:"new"`
	Total      int           `json:"total"`
	Failed     []SourceError `json:"failed,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

type batchEvent struct {
	Source  string `json:"source"`
	Fetched int    `json:"fetched"`
	New     int    `json:"new"`
	Total   int    `json:"total"`
}

// RunOnce fetches every source concurrently and ingests each source's batch
// through a single writer goroutine. A failing source is recorded and
// skipped. The returned error joins the storage faults of the pass, if any.
func RunOnce(ctx context.Context, repo Ingester, fetchers []types.Fetcher, opts Options) (Summary, error) {
	log := opts.Log
	if log == nil {
		log = logging.NewNop()
	}
	timeout := opts.FetchTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	sum := Summary{
		RunID:     uuid.NewString(),
		Sources:   len(fetchers),
		StartedAt: time.Now().UTC(),
	}
	log = log.With("run_id", sum.RunID)
	opts.Hub.Publish(events.MakeEvent(sum.RunID, events.TypeRunStarted, 1, map[string]int{"sources": len(fetchers)}))
	log.Info("ingestion pass started", "sources", len(fetchers))

	var g errgroup.Group
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}

	results := make(chan types.ScrapeResult, len(fetchers))
	fetchErrs := make(chan SourceError, len(fetchers))

	var storeErrs []error
	done := make(chan struct{})
	go func() {
		defer close(done)
		for res := range results {
			sum.Fetched += len(res.Records)
			if len(res.Records) == 0 {
				continue
			}

			n, total, err := repo.AddJobs(ctx, res.Records)
			sum.New += n
			if err != nil {
				storeErrs = append(storeErrs, err)
				sum.Failed = append(sum.Failed, SourceError{Source: res.Source, Stage: "store", Error: err.Error()})
				log.Error("batch ingestion failed", "source", res.Source, "committed", n, "err", err)
				opts.Hub.Publish(events.MakeEvent(sum.RunID, events.TypeSourceFailed, 1, sum.Failed[len(sum.Failed)-1]))
				continue
			}

			log.Info("batch ingested", "source", res.Source, "new", n, "total", total)
			opts.Hub.Publish(events.MakeEvent(sum.RunID, events.TypeBatchIngested, 1, batchEvent{
				Source:  res.Source,
				Fetched: len(res.Records),
				New:     n,
				Total:   total,
			}))
		}
	}()

	for _, f := range fetchers {
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			log.Debug("fetching", "source", f.Name())
			res, err := f.Fetch(fctx)
			if err != nil {
				log.Warn("fetch failed", "source", f.Name(), "err", err)
				se := SourceError{Source: f.Name(), Stage: "fetch", Error: err.Error()}
				fetchErrs <- se
				opts.Hub.Publish(events.MakeEvent(sum.RunID, events.TypeSourceFailed, 1, se))
				return nil // best-effort: don’t cancel siblings
			}
			if res.Source == "" {
				res.Source = f.Name()
			}
			results <- res
			return nil
		})
	}

	_ = g.Wait()
	close(results)
	close(fetchErrs)
	<-done

	for se := range fetchErrs {
		sum.Failed = append(sum.Failed, se)
	}
	sum.Total = repo.Len()
	sum.FinishedAt = time.Now().UTC()

	log.Info("ingestion pass finished",
		"fetched", sum.Fetched, "new", sum.New, "total", sum.Total, "failed", len(sum.Failed))
	opts.Hub.Publish(events.MakeEvent(sum.RunID, events.TypeRunFinished, 1, sum))

	if err := ctx.Err(); err != nil {
		storeErrs = append(storeErrs, err)
	}
	return sum, errors.Join(storeErrs...)
}
