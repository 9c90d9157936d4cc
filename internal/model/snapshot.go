package model

import "time"

// Snapshot is the result of one aggregation pass over the local logs
type Snapshot struct {
	Tick         int             `json:"tick"`
	TakenAt      time.Time       `json:"taken_at"`
	Usage        AggregatedUsage `json:"usage"`
	Cost         float64         `json:"cost"`
	Files        int             `json:"files"`
	FailedFiles  int             `json:"failed_files"`
	SkippedLines int             `json:"skipped_lines"`
}
