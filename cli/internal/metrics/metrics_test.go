package metrics

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/zhaobenny/claude-token-counter/internal/model"
)

func sampleSnapshot() model.Snapshot {
	return model.Snapshot{
		Tick:    1,
		TakenAt: time.Unix(1_700_000_000, 0),
		Usage: model.AggregatedUsage{
			TotalInput:         1500,
			TotalOutput:        700,
			TotalCacheCreation: 300,
			TotalCacheRead:     2000,
			MessageCount:       3,
		},
		Cost:         0.0195,
		Files:        2,
		SkippedLines: 1,
	}
}

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestHandleSnapshotExposesGauges(t *testing.T) {
	e := New()
	require.NoError(t, e.HandleSnapshot(context.Background(), sampleSnapshot()))
	require.NoError(t, e.HandleSnapshot(context.Background(), sampleSnapshot()))

	body := scrape(t, e.Handler(nil))

	assert.Contains(t, body, `claude_code_tokens{category="input"} 1500`)
	assert.Contains(t, body, `claude_code_tokens{category="output"} 700`)
	assert.Contains(t, body, `claude_code_tokens{category="cache_creation"} 300`)
	assert.Contains(t, body, `claude_code_tokens{category="cache_read"} 2000`)
	assert.Contains(t, body, "claude_code_messages 3")
	assert.Contains(t, body, "claude_code_estimated_cost_usd 0.0195")
	assert.Contains(t, body, "claude_code_log_files 2")
	assert.Contains(t, body, "claude_code_lines_skipped 1")
	assert.Contains(t, body, "claude_code_last_refresh_timestamp_seconds 1.7e+09")
	assert.Contains(t, body, "claude_code_refreshes_total 2")
}

func TestHandlerSetsSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	New().Handler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Body.String(), "/metrics")
}

func TestHandlerUnknownPath(t *testing.T) {
	rec := httptest.NewRecorder()
	New().Handler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIPRateLimiter(t *testing.T) {
	h := New().Handler(NewIPRateLimiter(rate.Every(time.Hour), 2))

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.RemoteAddr = "10.0.0.2:5000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServerServesUntilCancelled(t *testing.T) {
	e := New()
	require.NoError(t, e.HandleSnapshot(context.Background(), sampleSnapshot()))

	srv, err := Listen("127.0.0.1:0", e, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "claude_code_messages 3")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServerStartLogsFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	srv, err := Listen("127.0.0.1:0", New(), logger)
	require.NoError(t, err)
	require.NoError(t, srv.listener.Close())

	select {
	case <-srv.Start(context.Background()):
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Contains(t, buf.String(), "metrics server stopped")
}
