package redisstore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"internship-scraper/internal/domain"
	"internship-scraper/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a live server: INTERNSHIPS_TEST_REDIS_ADDR=localhost:6379
func openTest(t *testing.T, prefix string) *Backend {
	t.Helper()
	addr := os.Getenv("INTERNSHIPS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("INTERNSHIPS_TEST_REDIS_ADDR not set")
	}
	b, err := Open(context.Background(), Config{Addr: addr, Prefix: prefix})
	require.NoError(t, err)
	return b
}

func TestBackend_RoundTrip(t *testing.T) {
	ctx := context.Background()
	prefix := fmt.Sprintf("internships-test-%d", time.Now().UnixNano())

	b := openTest(t, prefix)
	t.Cleanup(func() { _ = b.Drop(ctx); _ = b.Close() })

	repo, err := store.NewRepository(ctx, b)
	require.NoError(t, err)

	posted := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	n, total, err := repo.AddJobs(ctx, []domain.JobRecord{
		{CompanyName: "Acme", Title: "Backend Intern", Location: "NYC", PostedAt: &posted, URL: "A"},
		{CompanyName: "Acme", Title: "Backend Intern", Location: "NYC", URL: "B"},
		{CompanyName: "Acme", Title: "Frontend Intern", Location: "NYC", URL: "C"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, total)

	b2 := openTest(t, prefix)
	t.Cleanup(func() { _ = b2.Close() })
	repo2, err := store.NewRepository(ctx, b2)
	require.NoError(t, err)

	all := repo2.GetAllJobs()
	require.Len(t, all, 2)
	assert.Equal(t, "A", all[0].URL)
	assert.Equal(t, "2025-05-01", all[0].PostedDate())
	assert.Equal(t, "Frontend Intern", all[1].Title)

	// a second writer racing on the same key never overwrites
	n, _, err = repo2.AddJobs(ctx, []domain.JobRecord{{CompanyName: "Acme", Title: "Backend Intern", Location: "NYC", URL: "Z"}})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
