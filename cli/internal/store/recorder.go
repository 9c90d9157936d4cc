package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rs/xid"

	"github.com/zhaobenny/claude-token-counter/internal/model"
)

// Recorder persists every snapshot it receives under a single run.
// The run row is written with the first snapshot.
type Recorder struct {
	db     *DB
	id     string
	root   string
	run    *Run
	logger *slog.Logger
}

// NewRecorder prepares a new run over root
func NewRecorder(db *DB, root string, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{db: db, id: xid.New().String(), root: root, logger: logger}
}

// RunID returns the identifier of the current run
func (r *Recorder) RunID() string {
	return r.id
}

// HandleSnapshot stores snap
func (r *Recorder) HandleSnapshot(ctx context.Context, snap model.Snapshot) error {
	if r.run == nil {
		run, err := r.db.StartRun(ctx, r.id, r.root, time.Now())
		if err != nil {
			return err
		}
		r.run = run
		r.logger.Info("recording snapshots", "run", run.ID, "root", r.root)
	}

	if err := r.db.InsertSnapshot(ctx, r.run.ID, snap); err != nil {
		return fmt.Errorf("failed to record snapshot %d: %w", snap.Tick, err)
	}
	r.logger.Debug("snapshot recorded", "run", r.run.ID, "tick", snap.Tick, "total", snap.Usage.Total())
	return nil
}
