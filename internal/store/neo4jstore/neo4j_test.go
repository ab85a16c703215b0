package neo4jstore

import (
	"context"
	"os"
	"testing"
	"time"

	"internship-scraper/internal/domain"
	"internship-scraper/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// INTERNSHIPS_TEST_NEO4J_URI=neo4j://localhost:7687, credentials from
// INTERNSHIPS_TEST_NEO4J_USER / INTERNSHIPS_TEST_NEO4J_PASSWORD. The test
// wipes Job and Company nodes, so point it at a scratch database.
func openTest(t *testing.T) *Backend {
	t.Helper()
	uri := os.Getenv("INTERNSHIPS_TEST_NEO4J_URI")
	if uri == "" {
		t.Skip("INTERNSHIPS_TEST_NEO4J_URI not set")
	}
	b, err := Open(context.Background(), Config{
		URI:      uri,
		Username: os.Getenv("INTERNSHIPS_TEST_NEO4J_USER"),
		Password: os.Getenv("INTERNSHIPS_TEST_NEO4J_PASSWORD"),
	})
	require.NoError(t, err)
	return b
}

func TestBackend_FirstSeenWinsAcrossReopen(t *testing.T) {
	ctx := context.Background()

	b := openTest(t)
	require.NoError(t, b.Drop(ctx))
	t.Cleanup(func() { _ = b.Drop(ctx); _ = b.Close() })

	repo, err := store.NewRepository(ctx, b)
	require.NoError(t, err)

	posted := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	n, _, err := repo.AddJobs(ctx, []domain.JobRecord{
		{CompanyName: "Acme", Title: "Backend Intern", Location: "NYC", PostedAt: &posted, URL: "A"},
		{CompanyName: "Acme", Title: "Data Intern", Location: "NYC"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	b2 := openTest(t)
	t.Cleanup(func() { _ = b2.Close() })
	repo2, err := store.NewRepository(ctx, b2)
	require.NoError(t, err)

	n, total, err := repo2.AddJobs(ctx, []domain.JobRecord{
		{CompanyName: "Acme", Title: "Backend Intern", Location: "NYC", URL: "B"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 2, total)

	all := repo2.GetAllJobs()
	require.Len(t, all, 2)
	assert.Equal(t, "A", all[0].URL)
	assert.Equal(t, "2025-03-09", all[0].PostedDate())
	assert.Nil(t, all[1].PostedAt)
}
