package types

import (
	"context"

	"internship-scraper/internal/domain"
)

// ScrapeResult is one source's output for a single pass.
type ScrapeResult struct {
	Source   string
	Records  []domain.JobRecord
	Seen     int // cards on the page before filtering
	Filtered int
}

type ScrapeStatus struct {
	RunID     string `json:"run_id,omitempty"`
	LastRunAt string `json:"last_run_at"`
	LastOkAt  string `json:"last_ok_at"`
	LastError string `json:"last_error"`
	LastAdded int    `json:"last_added"`
	Total     int    `json:"total"`
	Running   bool   `json:"running"`
}

type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) (ScrapeResult, error)
}
