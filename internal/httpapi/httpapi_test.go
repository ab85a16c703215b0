package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"internship-scraper/internal/domain"
	"internship-scraper/internal/events"
	"internship-scraper/internal/poll"
	"internship-scraper/internal/render"
	"internship-scraper/internal/scrape/types"
	"internship-scraper/internal/store"
	"internship-scraper/pkg/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeRunner struct {
	mu      sync.Mutex
	running bool
	starts  int
	runErr  error
}

func (f *fakeRunner) Run(context.Context) (poll.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.running {
		return poll.Summary{}, poll.ErrAlreadyRunning
	}
	if f.runErr != nil {
		return poll.Summary{RunID: "r1"}, f.runErr
	}
	return poll.Summary{RunID: "r1", Sources: 2, New: 3, Total: 6}, nil
}

func (f *fakeRunner) Start(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.running {
		return poll.ErrAlreadyRunning
	}
	f.running = true
	f.starts++
	return nil
}

func (f *fakeRunner) Status() types.ScrapeStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return types.ScrapeStatus{Running: f.running, LastAdded: 7}
}

func day(s string) *time.Time {
	t, _ := time.Parse(domain.PostedDateLayout, s)
	return &t
}

func newTestServer(t *testing.T) (*httptest.Server, *fakeRunner, *events.Hub) {
	t.Helper()

	repo, err := store.NewRepository(context.Background(), nil)
	require.NoError(t, err)
	_, _, err = repo.AddJobs(context.Background(), []domain.JobRecord{
		{CompanyName: "Old", Title: "Web Intern", Location: "Lyon", PostedAt: day("2025-01-02")},
		{CompanyName: "New", Title: "Data Intern", Location: "NYC", PostedAt: day("2025-03-01"), URL: "https://x/new"},
		{CompanyName: "Undated", Title: "QA Intern", Location: "Paris"},
	})
	require.NoError(t, err)

	runner := &fakeRunner{}
	hub := events.NewHub()
	srv := httptest.NewServer(NewHandler(Deps{
		Repo:    repo,
		Runner:  runner,
		Hub:     hub,
		Listing: render.Options{Title: "Listing"},
	}))
	t.Cleanup(srv.Close)
	return srv, runner, hub
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealth(t *testing.T) {
	t.Parallel()
	srv, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var body map[string]any
	decode(t, resp, &body)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, float64(3), body["jobs"])
}

func TestJobs_NewestFirstWithLimit(t *testing.T) {
	t.Parallel()
	srv, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/jobs?limit=2")
	require.NoError(t, err)

	var body struct {
		Total int       `json:"total"`
		Jobs  []jobView `json:"jobs"`
	}
	decode(t, resp, &body)
	assert.Equal(t, 3, body.Total)
	require.Len(t, body.Jobs, 2)
	assert.Equal(t, "New", body.Jobs[0].CompanyName)
	assert.Equal(t, "2025-03-01", body.Jobs[0].PostedDate)
	assert.Equal(t, "Old", body.Jobs[1].CompanyName)
}

func TestJobs_BadLimit(t *testing.T) {
	t.Parallel()
	srv, _, _ := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/jobs?limit=abc", nil)
	req.Header.Set("X-Request-ID", "req-42")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var e APIError
	decode(t, resp, &e)
	assert.Equal(t, "invalid_limit", e.Error.Code)
	assert.Equal(t, "req-42", e.Error.RequestID)
}

func TestListing(t *testing.T) {
	t.Parallel()
	srv, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/listing")
	require.NoError(t, err)
	defer resp.Body.Close()

	var sb strings.Builder
	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		sb.WriteString(sc.Text() + "\n")
	}
	md := sb.String()
	assert.True(t, strings.HasPrefix(md, "# Listing\n"))
	assert.Contains(t, md, "## Available positions (3 offers)")
	assert.Less(t, strings.Index(md, "### New"), strings.Index(md, "### Undated"))
}

func TestScrapeRun_ConflictWhileRunning(t *testing.T) {
	t.Parallel()
	srv, runner, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/scrape/run", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/scrape/run", "application/json", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var e APIError
	decode(t, resp, &e)
	assert.Equal(t, "already_running", e.Error.Code)
	assert.Equal(t, 1, runner.starts)

	resp, err = http.Get(srv.URL + "/scrape/status")
	require.NoError(t, err)
	var st types.ScrapeStatus
	decode(t, resp, &st)
	assert.True(t, st.Running)
	assert.Equal(t, 7, st.LastAdded)
}

func TestScrapeRun_Wait(t *testing.T) {
	t.Parallel()
	srv, _, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/scrape/run?wait=true", "application/json", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var sum poll.Summary
	decode(t, resp, &sum)
	assert.Equal(t, "r1", sum.RunID)
	assert.Equal(t, 3, sum.New)

	resp, err = http.Post(srv.URL+"/scrape/run?wait=maybe", "application/json", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var e APIError
	decode(t, resp, &e)
	assert.Equal(t, "invalid_wait", e.Error.Code)
}

func TestScrapeRun_WaitStorageFault(t *testing.T) {
	t.Parallel()
	srv, runner, _ := newTestServer(t)
	runner.mu.Lock()
	runner.runErr = errors.Join(&store.StorageError{Op: "insert", Err: errors.New("disk full")})
	runner.mu.Unlock()

	resp, err := http.Post(srv.URL+"/scrape/run?wait=1", "application/json", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	var e APIError
	decode(t, resp, &e)
	assert.Equal(t, "storage_unavailable", e.Error.Code)
	assert.Contains(t, e.Error.Message, "disk full")
	assert.NotEmpty(t, e.Error.RequestID)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{poll.ErrAlreadyRunning, http.StatusConflict, "already_running"},
		{fmt.Errorf("start: %w", poll.ErrClosed), http.StatusServiceUnavailable, "shutting_down"},
		{&store.StorageError{Op: "load", Err: errors.New("x")}, http.StatusServiceUnavailable, "storage_unavailable"},
		{context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout"},
		{context.Canceled, 499, "canceled"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		status, code := classify(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, code, tc.err.Error())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	t.Parallel()
	srv, _, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/jobs", "application/json", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	var e APIError
	decode(t, resp, &e)
	assert.Equal(t, "method_not_allowed", e.Error.Code)
}

func TestEvents_StreamsHubMessages(t *testing.T) {
	t.Parallel()
	srv, _, hub := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	sc := bufio.NewScanner(resp.Body)
	readData := func() string {
		for sc.Scan() {
			if line := sc.Text(); strings.HasPrefix(line, "data: ") {
				return strings.TrimPrefix(line, "data: ")
			}
		}
		return ""
	}

	assert.Contains(t, readData(), `"type":"ping"`)

	hub.Publish(events.MakeEvent("run-1", events.TypeBatchIngested, 1, map[string]int{"new": 1}))
	assert.Contains(t, readData(), `"run_id":"run-1"`)
}

func TestRecover(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }),
		RequestID, Recover(logging.FromZap(zap.New(core))))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var e APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	assert.Equal(t, "internal_error", e.Error.Code)
	assert.NotEmpty(t, e.Error.RequestID)
	assert.Equal(t, 1, logs.FilterMessage("panic").Len())
}
