package store

import (
	"errors"
	"fmt"

	"internship-scraper/internal/fingerprint"
)

var (
	// ErrStorage matches every *StorageError via errors.Is.
	ErrStorage = errors.New("storage error")
	// ErrLocked is returned when another process owns the store.
	ErrLocked = errors.New("store is locked by another process")
	// ErrFingerprintMismatch is returned by a load whose stored record no
	// longer hashes to the fingerprint it was stored under.
	ErrFingerprintMismatch = errors.New("stored record does not match its fingerprint")
)

// StorageError reports a fault of the persistence medium. Fingerprint is set
// when the fault happened while committing a specific entry.
type StorageError struct {
	Op          string
	Fingerprint fingerprint.Digest
	Err         error
}

func (e *StorageError) Error() string {
	if e.Fingerprint.IsZero() {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Fingerprint, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }
