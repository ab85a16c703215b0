package util

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, want string
	}{
		{"", ""},
		{
			"https://www.LinkedIn.com/jobs/view/backend-intern-at-acme-4012345678?position=1&pageNum=0&refId=abc&trackingId=xyz",
			"https://www.linkedin.com/jobs/view/backend-intern-at-acme-4012345678",
		},
		{
			"https://careers.acme.com/apply?id=42&utm_source=linkedin&gclid=1#top",
			"https://careers.acme.com/apply?id=42",
		},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanonicalizeURL(tc.in), tc.in)
	}
}

func TestCleanText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Acme Corp", CleanText("\n   Acme \t Corp  \n"))
	assert.Equal(t, "", CleanText(" \n\t "))
}

func TestHostLimiter_PerHost(t *testing.T) {
	t.Parallel()

	hl := NewHostLimiter(1, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	// each host gets its own bucket, so the first call on either is immediate
	require.NoError(t, hl.WaitURL(ctx, "https://a.example/x"))
	require.NoError(t, hl.WaitURL(ctx, "https://b.example/y"))

	// a second call on the same host would wait ~1s and must hit the deadline
	assert.Error(t, hl.WaitURL(ctx, "https://a.example/z"))
}

func TestHostLimiter_Unlimited(t *testing.T) {
	t.Parallel()

	hl := NewHostLimiter(0, 0)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for i := 0; i < 50; i++ {
		require.NoError(t, hl.WaitURL(ctx, "https://a.example/"))
	}
}
