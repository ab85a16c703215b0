package store

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"internship-scraper/internal/fingerprint"

	"github.com/gofrs/flock"
)

// FileBackend is an append-only JSON Lines file, one entry per line, synced
// after every append. The file is owned exclusively through an flock on
// <path>.lock for the lifetime of the backend.
type FileBackend struct {
	mu      sync.Mutex
	path    string
	lock    *flock.Flock
	f       *os.File
	size    int64
	seen    map[fingerprint.Digest]struct{}
	entries []Entry
}

type fileLine struct {
	Fingerprint fingerprint.Digest `json:"fingerprint"`
	Record      storedRecord       `json:"record"`
	FirstSeen   time.Time          `json:"first_seen"`
}

func OpenFile(path string) (*FileBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrLocked)
	}

	b := &FileBackend{
		path: path,
		lock: lock,
		seen: make(map[fingerprint.Digest]struct{}),
	}
	if err := b.readAll(); err != nil {
		_ = lock.Unlock()
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	b.f = f
	return b, nil
}

// readAll parses the file and truncates a torn trailing line left by a crash
// mid-append. A malformed complete line is corruption and fails the open.
func (b *FileBackend) readAll() error {
	f, err := os.OpenFile(b.path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", b.path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var offset int64
	lineNo := 0
	for {
		line, rerr := r.ReadBytes('\n')
		if rerr != nil && !errors.Is(rerr, io.EOF) {
			return fmt.Errorf("read %s: %w", b.path, rerr)
		}
		if errors.Is(rerr, io.EOF) {
			if len(line) > 0 {
				// torn tail: drop it
				if err := f.Truncate(offset); err != nil {
					return fmt.Errorf("truncate torn tail of %s: %w", b.path, err)
				}
			}
			break
		}

		lineNo++
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) > 0 {
			var fl fileLine
			if err := json.Unmarshal(trimmed, &fl); err != nil {
				return fmt.Errorf("%s line %d: %w", b.path, lineNo, err)
			}
			if _, dup := b.seen[fl.Fingerprint]; !dup {
				b.seen[fl.Fingerprint] = struct{}{}
				b.entries = append(b.entries, Entry{Fingerprint: fl.Fingerprint, Record: fl.Record.record()})
			}
		}
		offset += int64(len(line))
	}
	b.size = offset
	return nil
}

func (b *FileBackend) Load(ctx context.Context) ([]Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out, nil
}

func (b *FileBackend) Insert(ctx context.Context, e Entry) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.f == nil {
		return false, os.ErrClosed
	}
	if _, ok := b.seen[e.Fingerprint]; ok {
		return false, nil
	}

	line, err := json.Marshal(fileLine{Fingerprint: e.Fingerprint, Record: toStored(e.Record), FirstSeen: time.Now().UTC()})
	if err != nil {
		return false, fmt.Errorf("encode entry: %w", err)
	}
	line = append(line, '\n')

	n, werr := b.f.Write(line)
	if werr == nil {
		werr = b.f.Sync()
	}
	if werr != nil {
		// roll back a partial append so later lines stay parseable
		if n > 0 {
			_ = b.f.Truncate(b.size)
		}
		return false, fmt.Errorf("append %s: %w", b.path, werr)
	}

	b.size += int64(n)
	b.seen[e.Fingerprint] = struct{}{}
	b.entries = append(b.entries, e)
	return true, nil
}

func (b *FileBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var errs []error
	if b.f != nil {
		errs = append(errs, b.f.Close())
		b.f = nil
	}
	if b.lock != nil {
		errs = append(errs, b.lock.Unlock())
	}
	return errors.Join(errs...)
}
