package transcode

import (
	"context"
	"time"
)

type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCanceled   Status = "canceled"
)

// Job is one upload-to-HLS request tracked by the Manager. The encode
// pipeline state lives inside the Orchestrator while the job is
// processing; the Job only carries its externally visible lifecycle.
type Job struct {
	ID          string    `json:"id"`
	Status      Status    `json:"status"`
	SourcePath  string    `json:"-"`
	OutputDir   string    `json:"-"`
	MasterPath  string    `json:"-"`
	PlaybackURL string    `json:"playbackUrl,omitempty"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	// Pointers so omitempty elides the timestamps a queued job does
	// not have yet.
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	cancelFunc  context.CancelFunc
}
