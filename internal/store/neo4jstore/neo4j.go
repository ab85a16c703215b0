package neo4jstore

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"internship-scraper/internal/domain"
	"internship-scraper/internal/fingerprint"
	"internship-scraper/internal/store"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type Config struct {
	URI      string
	Username string
	Password string
	Database string
}

// Backend keeps each posting as a (:Job) node linked to its (:Company).
// A uniqueness constraint on Job.fingerprint backs the no-overwrite rule.
type Backend struct {
	driver   neo4j.DriverWithContext
	database string
	seq      atomic.Int64
}

var _ store.Backend = (*Backend)(nil)

const constraintQuery = `CREATE CONSTRAINT job_fingerprint IF NOT EXISTS
FOR (j:Job) REQUIRE j.fingerprint IS UNIQUE`

// ON CREATE only: an existing node keeps its first-seen properties.
const insertQuery = `
MERGE (j:Job {fingerprint: $fingerprint})
ON CREATE SET j.seq = $seq,
              j.title = $title,
              j.company = $company,
              j.location = $location,
              j.postedAt = $postedAt,
              j.description = $description,
              j.url = $url,
              j.firstSeen = datetime()
WITH j
MERGE (c:Company {name: $company})
MERGE (j)-[:POSTED_BY]->(c)
RETURN j.seq = $seq AS created
`

const loadQuery = `
MATCH (j:Job)
RETURN j.fingerprint AS fingerprint, j.seq AS seq, j.title AS title,
       j.company AS company, j.location AS location, j.postedAt AS postedAt,
       j.description AS description, j.url AS url
ORDER BY j.seq
`

func Open(ctx context.Context, cfg Config) (*Backend, error) {
	driver, err := neo4j.NewDriverWithContext(
		cfg.URI,
		neo4j.BasicAuth(cfg.Username, cfg.Password, ""),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Neo4j driver: %w", err)
	}

	vctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := driver.VerifyConnectivity(vctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to verify Neo4j connectivity: %w", err)
	}

	b := &Backend{driver: driver, database: cfg.Database}
	if _, err := b.run(vctx, constraintQuery, nil); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("create job constraint: %w", err)
	}
	b.seq.Store(time.Now().UnixNano())
	return b, nil
}

func (b *Backend) run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	opts := []neo4j.ExecuteQueryConfigurationOption{}
	if b.database != "" {
		opts = append(opts, neo4j.ExecuteQueryWithDatabase(b.database))
	}
	return neo4j.ExecuteQuery(ctx, b.driver, query, params, neo4j.EagerResultTransformer, opts...)
}

func (b *Backend) Insert(ctx context.Context, e store.Entry) (bool, error) {
	var posted any
	if e.Record.PostedAt != nil {
		posted = e.Record.PostedAt.Format(time.RFC3339Nano)
	}

	res, err := b.run(ctx, insertQuery, map[string]any{
		"fingerprint": e.Fingerprint.String(),
		"seq":         b.seq.Add(1),
		"title":       e.Record.Title,
		"company":     e.Record.CompanyName,
		"location":    e.Record.Location,
		"postedAt":    posted,
		"description": e.Record.Description,
		"url":         e.Record.URL,
	})
	if err != nil {
		return false, err
	}
	if len(res.Records) == 0 {
		return false, fmt.Errorf("insert %s: no result", e.Fingerprint)
	}
	created, _ := res.Records[0].Get("created")
	ok, _ := created.(bool)
	return ok, nil
}

func (b *Backend) Load(ctx context.Context) ([]store.Entry, error) {
	res, err := b.run(ctx, loadQuery, nil)
	if err != nil {
		return nil, err
	}

	out := make([]store.Entry, 0, len(res.Records))
	for _, record := range res.Records {
		m := record.AsMap()

		fp, err := fingerprint.Parse(str(m["fingerprint"]))
		if err != nil {
			return nil, err
		}
		if seq, ok := m["seq"].(int64); ok && seq > b.seq.Load() {
			b.seq.Store(seq)
		}

		rec := domain.JobRecord{
			Title:       str(m["title"]),
			CompanyName: str(m["company"]),
			Location:    str(m["location"]),
			Description: str(m["description"]),
			URL:         str(m["url"]),
		}
		if s := str(m["postedAt"]); s != "" {
			t, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return nil, fmt.Errorf("job %s: bad postedAt %q: %w", fp, s, err)
			}
			rec.PostedAt = &t
		}
		out = append(out, store.Entry{Fingerprint: fp, Record: rec})
	}
	return out, nil
}

func (b *Backend) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return b.driver.Close(ctx)
}

// Drop removes every Job and Company node; used by integration tests.
func (b *Backend) Drop(ctx context.Context) error {
	_, err := b.run(ctx, `MATCH (n) WHERE n:Job OR n:Company DETACH DELETE n`, nil)
	return err
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
