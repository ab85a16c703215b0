package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"internship-scraper/internal/config"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

const searchPage = `<html><body>
<div class="job-search-card">
  <a class="base-card__full-link" href="https://www.linkedin.com/jobs/view/4011111111?trk=x">x</a>
  <h3 class="base-search-card__title">Software Engineer Intern</h3>
  <h4 class="base-search-card__subtitle">Acme</h4>
  <span class="job-search-card__location">Remote</span>
  <time datetime="2025-02-01">1 week ago</time>
</div>
<div class="job-search-card">
  <h3 class="base-search-card__title">Backend Developer Internship</h3>
  <h4 class="base-search-card__subtitle">Globex</h4>
  <span class="job-search-card__location">Remote</span>
</div>
<div class="job-search-card">
  <h3 class="base-search-card__title">Sales Intern</h3>
  <h4 class="base-search-card__subtitle">Initech</h4>
  <span class="job-search-card__location">Remote</span>
</div>
</body></html>`

func writeTestConfig(t *testing.T, host string) (dir string, cfg config.Config) {
	t.Helper()

	dir = t.TempDir()
	cfg = config.Default()
	cfg.App.DataDir = dir
	cfg.Scrape.Host = host
	cfg.Scrape.RequestsPerSecond = 100
	cfg.Scrape.Burst = 10
	cfg.Scrape.Locations = []config.Location{
		{Name: "France", GeoID: "105015875"},
		{Name: "Canada", GeoID: "101174742"},
	}
	cfg.Storage.Driver = "file"
	cfg.Output.Path = filepath.Join(dir, "README.md")
	require.NoError(t, config.SaveAtomic(filepath.Join(dir, "config.yml"), cfg))
	return dir, cfg
}

func runEngine(t *testing.T, stdin string, args ...string) (code int, stdout string) {
	t.Helper()
	var out, errb bytes.Buffer
	code = run(args, strings.NewReader(stdin), &out, &errb)
	return code, out.String()
}

func TestRun_IngestsDedupesAndWritesListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(searchPage))
	}))
	t.Cleanup(srv.Close)
	dir, cfg := writeTestConfig(t, srv.URL)

	code, _ := runEngine(t, "", "-data-dir", dir, "run")
	require.Equal(t, 0, code)

	// both locations return the same cards
	md, err := os.ReadFile(cfg.Output.Path)
	require.NoError(t, err)
	assert.Contains(t, string(md), "## Available positions (2 offers)")
	assert.Contains(t, string(md), "- [Apply here](https://www.linkedin.com/jobs/view/4011111111)")
	assert.Less(t, strings.Index(string(md), "### Acme"), strings.Index(string(md), "### Globex"))

	code, _ = runEngine(t, "", "-data-dir", dir, "run")
	require.Equal(t, 0, code)

	code, out := runEngine(t, "", "-data-dir", dir, "list")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "## Available positions (2 offers)")
	assert.NotContains(t, out, "Initech")
}

func TestRun_FetchFailureStillWritesListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)
	dir, cfg := writeTestConfig(t, srv.URL)

	code, _ := runEngine(t, "", "-data-dir", dir, "run")
	require.Equal(t, 0, code)

	md, err := os.ReadFile(cfg.Output.Path)
	require.NoError(t, err)
	assert.Contains(t, string(md), "(0 offers)")
}

func TestRun_SecondInstanceRefused(t *testing.T) {
	dir, _ := writeTestConfig(t, "http://127.0.0.1:1")

	lock := flock.New(filepath.Join(dir, "engine.lock"))
	ok, err := lock.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	t.Cleanup(func() { _ = lock.Unlock() })

	var out, errb bytes.Buffer
	code := run([]string{"-data-dir", dir, "list"}, strings.NewReader(""), &out, &errb)
	assert.Equal(t, 1, code)
	assert.Contains(t, errb.String(), "another engine instance holds the data directory")
	assert.Empty(t, out.String())
}

func TestRun_BootstrapsConfig(t *testing.T) {
	dir := t.TempDir()

	code, _ := runEngine(t, "", "-data-dir", dir, "bogus")
	assert.Equal(t, 2, code)
	assert.FileExists(t, filepath.Join(dir, "config.yml"))
}

func TestRun_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte("storage:\n  driver: cassandra\n"), 0o644))

	code, _ := runEngine(t, "", "-data-dir", dir, "list")
	assert.Equal(t, 1, code)
}

func TestSecret_SetAndDelete(t *testing.T) {
	keyring.MockInit()

	code, out := runEngine(t, "s3cret\n", "secret", "set", "redis-prod")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "redis-prod")

	pw, err := keyring.Get("internship-scraper", "redis-prod")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pw)

	code, _ = runEngine(t, "", "secret", "delete", "redis-prod")
	require.Equal(t, 0, code)
	_, err = keyring.Get("internship-scraper", "redis-prod")
	assert.ErrorIs(t, err, keyring.ErrNotFound)

	code, _ = runEngine(t, "", "secret", "set")
	assert.Equal(t, 2, code)
}
