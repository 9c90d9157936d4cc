package recorder

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kardianos/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhaobenny/claude-token-counter/cli/internal/store"
)

const usageLine = `{"message":{"usage":{"input_tokens":1000,"output_tokens":500,"cache_creation_input_tokens":200,"cache_read_input_tokens":0}}}` + "\n"

func TestRunRecordsEveryTick(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "projects")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "p"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "p", "s.jsonl"), []byte(usageLine), 0o644))

	dbPath := filepath.Join(dir, "snapshots.db")
	p := &Program{Interval: time.Second, Root: root, DBPath: dbPath, MaxTicks: 2}
	require.NoError(t, p.Run(context.Background()))

	db, err := store.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()

	latest, err := db.Latest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 2, latest.Tick)
	assert.Equal(t, uint64(1700), latest.Usage.Total())
	assert.Equal(t, uint64(1), latest.Usage.MessageCount)
}

func TestRunRetriesMissingRootUntilCancelled(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "snapshots.db")
	p := &Program{Interval: time.Millisecond, Root: filepath.Join(dir, "absent"), DBPath: dbPath}

	// long enough for at least two retries at the minimum interval
	ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	defer cancel()
	require.NoError(t, p.Run(ctx))

	db, err := store.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()

	latest, err := db.Latest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, latest)

	var runs int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&runs))
	assert.Zero(t, runs)
}

func TestStartStop(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "projects")
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "s.jsonl"), []byte(usageLine), 0o644))

	p := &Program{Interval: time.Hour, Root: root, DBPath: filepath.Join(dir, "snapshots.db")}
	require.NoError(t, p.Start(nil))
	assert.NoError(t, p.Stop(nil))
}

func TestStopWithoutStart(t *testing.T) {
	assert.NoError(t, (&Program{}).Stop(nil))
}

func TestServiceConfig(t *testing.T) {
	cfg := ServiceConfig(30 * time.Minute)
	assert.Equal(t, ServiceName, cfg.Name)
	assert.Equal(t, []string{"record", "run", "--interval=30m0s"}, cfg.Arguments)

	cfg = ServiceConfig(time.Minute, "--projects-dir=/data/projects")
	assert.Equal(t, []string{"record", "run", "--interval=1m0s", "--projects-dir=/data/projects"}, cfg.Arguments)
}

func TestStatusText(t *testing.T) {
	assert.Equal(t, "running", StatusText(service.StatusRunning))
	assert.Equal(t, "stopped", StatusText(service.StatusStopped))
	assert.Equal(t, "unknown", StatusText(service.StatusUnknown))
}
