package httpapi

import (
	"context"

	"internship-scraper/internal/domain"
	"internship-scraper/internal/events"
	"internship-scraper/internal/poll"
	"internship-scraper/internal/render"
	"internship-scraper/internal/scrape/types"
	"internship-scraper/pkg/logging"
)

// JobLister is the read side of store.Repository.
type JobLister interface {
	GetAllJobs() []domain.JobRecord
	Len() int
}

// PassRunner is implemented by poll.Runner.
type PassRunner interface {
	Start(ctx context.Context) error
	Run(ctx context.Context) (poll.Summary, error)
	Status() types.ScrapeStatus
}

type Deps struct {
	Repo   JobLister
	Runner PassRunner
	Hub    *events.Hub
	Log    *logging.Logger

	Listing render.Options
}
