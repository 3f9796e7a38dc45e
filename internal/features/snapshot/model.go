package snapshot

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusPartial = "partial"
	RunStatusFailed  = "failed"
)

const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
)

// SnapshotRun is one execution of the snapshot job: a chart for every
// configured data source.
type SnapshotRun struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Trigger   string             `json:"trigger" bson:"trigger"`
	StartTime time.Time          `json:"start_time" bson:"start_time"`
	EndTime   *time.Time         `json:"end_time,omitempty" bson:"end_time,omitempty"`
	Status    string             `json:"status" bson:"status"`
	Charts    []SnapshotChart    `json:"charts" bson:"charts"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// SnapshotChart is the outcome for one data source.
type SnapshotChart struct {
	DataSource string `json:"data_source" bson:"data_source"`
	FileID     string `json:"file_id,omitempty" bson:"file_id,omitempty"`
	Error      string `json:"error,omitempty" bson:"error,omitempty"`
}

// Status describes the scheduler.
type Status struct {
	Enabled  bool         `json:"enabled"`
	Schedule string       `json:"schedule,omitempty"`
	Sources  []string     `json:"sources"`
	NextRun  *time.Time   `json:"next_run,omitempty"`
	LastRun  *SnapshotRun `json:"last_run,omitempty"`
}

func statusOf(charts []SnapshotChart) string {
	failed := 0
	for _, c := range charts {
		if c.Error != "" {
			failed++
		}
	}
	switch {
	case failed == 0:
		return RunStatusSuccess
	case failed == len(charts):
		return RunStatusFailed
	default:
		return RunStatusPartial
	}
}
