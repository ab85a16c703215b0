package store

import (
	"context"

	"internship-scraper/internal/domain"
	"internship-scraper/internal/fingerprint"
)

type Entry struct {
	Fingerprint fingerprint.Digest
	Record      domain.JobRecord
}

// Backend persists entries for a Repository.
//
// Insert must never overwrite: when the fingerprint is already stored it
// returns (false, nil). A (true, nil) return means the entry is durable.
// Load returns entries in the order they were first inserted.
type Backend interface {
	Load(ctx context.Context) ([]Entry, error)
	Insert(ctx context.Context, e Entry) (inserted bool, err error)
	Close() error
}
