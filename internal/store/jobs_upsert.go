package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"internship-scraper/internal/domain"
	"internship-scraper/internal/fingerprint"
)

// Insert relies on the unique index on fingerprint; each statement runs in
// autocommit mode, so a true return is already on disk.
func (d *SQLiteBackend) Insert(ctx context.Context, e Entry) (bool, error) {
	j := e.Record

	var posted sql.NullString
	if j.PostedAt != nil && !j.PostedAt.IsZero() {
		posted = sql.NullString{String: j.PostedAt.Format(time.RFC3339Nano), Valid: true}
	}

	res, err := d.Pool.ExecContext(ctx, `
INSERT OR IGNORE INTO jobs(fingerprint, company, title, location, posted_at, description, url, first_seen)
VALUES(?,?,?,?,?,?,?,?);`,
		e.Fingerprint.String(),
		j.CompanyName,
		j.Title,
		j.Location,
		posted,
		j.Description,
		j.URL,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("insert job: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert job rows affected: %w", err)
	}
	return n > 0, nil
}

func (d *SQLiteBackend) Load(ctx context.Context) ([]Entry, error) {
	rows, err := d.Pool.QueryContext(ctx, `
SELECT fingerprint, company, title, location, posted_at, description, url
FROM jobs
ORDER BY seq ASC;`)
	if err != nil {
		return nil, fmt.Errorf("load jobs: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			fpStr  string
			posted sql.NullString
			j      domain.JobRecord
		)
		if err := rows.Scan(&fpStr, &j.CompanyName, &j.Title, &j.Location, &posted, &j.Description, &j.URL); err != nil {
			return nil, err
		}
		fp, err := fingerprint.Parse(fpStr)
		if err != nil {
			return nil, err
		}
		if posted.Valid && posted.String != "" {
			if t, perr := time.Parse(time.RFC3339Nano, posted.String); perr == nil {
				j.PostedAt = &t
			}
		}
		out = append(out, Entry{Fingerprint: fp, Record: j})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
