package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"internship-scraper/internal/domain"
	"internship-scraper/internal/fingerprint"
)

// Repository is the deduplicating job store. At most one record per
// fingerprint is ever held and the first one seen wins. All mutation goes
// through AddJobs; a whole batch runs under the write lock, so readers never
// see a half-applied batch and two concurrent batches cannot both insert the
// same fingerprint.
type Repository struct {
	mu      sync.RWMutex
	backend Backend
	index   map[fingerprint.Digest]int
	records []domain.JobRecord
}

// NewRepository loads the persisted state of backend. A nil backend gives a
// purely in-memory repository.
func NewRepository(ctx context.Context, backend Backend) (*Repository, error) {
	if backend == nil {
		backend = NewMemoryBackend()
	}
	r := &Repository{
		backend: backend,
		index:   make(map[fingerprint.Digest]int),
	}

	entries, err := backend.Load(ctx)
	if err != nil {
		return nil, asStorageError("load", fingerprint.Digest{}, err)
	}
	for _, e := range entries {
		if _, ok := r.index[e.Fingerprint]; ok {
			continue
		}
		if got := fingerprint.OfRecord(e.Record); got != e.Fingerprint {
			return nil, asStorageError("load", e.Fingerprint,
				fmt.Errorf("%w: record hashes to %s", ErrFingerprintMismatch, got))
		}
		r.index[e.Fingerprint] = len(r.records)
		r.records = append(r.records, e.Record.Clone())
	}
	return r, nil
}

// AddJobs ingests records in order and reports how many were new and how
// many distinct records are held afterwards.
//
// On a storage fault the call stops at the failing record: newCount is the
// number of records this call durably committed, totalCount the size held at
// that point, and err is a *StorageError. Resubmitting the same batch is safe.
func (r *Repository) AddJobs(ctx context.Context, records []domain.JobRecord) (newCount, totalCount int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range records {
		fp := fingerprint.OfRecord(rec)
		if _, ok := r.index[fp]; ok {
			continue
		}
		rec = rec.Clone()

		inserted, ierr := r.backend.Insert(ctx, Entry{Fingerprint: fp, Record: rec})
		if ierr != nil {
			return newCount, len(r.records), asStorageError("insert", fp, ierr)
		}
		if !inserted {
			// already persisted by an earlier run we did not load; first one wins
			continue
		}

		r.index[fp] = len(r.records)
		r.records = append(r.records, rec)
		newCount++
	}
	return newCount, len(r.records), nil
}

// GetAllJobs returns a copy of every held record in insertion order.
// Callers wanting another order sort the result themselves.
func (r *Repository) GetAllJobs() []domain.JobRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.JobRecord, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.Clone()
	}
	return out
}

func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

func (r *Repository) Contains(fp fingerprint.Digest) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.index[fp]
	return ok
}

// Get returns the record held for fp.
func (r *Repository) Get(fp fingerprint.Digest) (domain.JobRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[fp]
	if !ok {
		return domain.JobRecord{}, false
	}
	return r.records[i].Clone(), true
}

func (r *Repository) Close() error {
	if r == nil || r.backend == nil {
		return nil
	}
	if err := r.backend.Close(); err != nil {
		return asStorageError("close", fingerprint.Digest{}, err)
	}
	return nil
}

func asStorageError(op string, fp fingerprint.Digest, err error) error {
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Fingerprint: fp, Err: err}
}
