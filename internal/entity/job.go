package entity

import "time"

// JobStatus is the lifecycle state of a download job.
type JobStatus string

const (
	JobStatusStarting    JobStatus = "starting"
	JobStatusDownloading JobStatus = "downloading"
	// JobStatusFinished means the transfer is done and post-processing is running.
	JobStatusFinished  JobStatus = "finished"
	JobStatusCompleted JobStatus = "completed"
	JobStatusError     JobStatus = "error"
)

// Job is one fetch request and its tracked state.
type Job struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Status    JobStatus `json:"status"`
	Progress  float64   `json:"progress"` // 0 to 100
	Speed     string    `json:"speed"`    // human readable, empty if unknown
	ETA       string    `json:"eta"`      // mm:ss or hh:mm:ss, empty if unknown
	Title     string    `json:"title"`
	FilePath  string    `json:"file_path"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Metadata is what the fetcher knows about a URL before the transfer starts.
type Metadata struct {
	Title           string
	DurationSeconds float64
}

type ProgressPhase string

const (
	ProgressPhaseDownloading ProgressPhase = "downloading"
	ProgressPhaseFinished    ProgressPhase = "finished"
)

// Progress is a single progress event reported by the fetcher during a transfer.
type Progress struct {
	Phase      ProgressPhase
	Percentage float64
	Speed      float64       // bytes per second, 0 if unknown
	ETA        time.Duration // 0 if unknown
}

// StartResult is returned to the caller as soon as the transfer is scheduled.
type StartResult struct {
	JobID string `json:"job_id"`
	Title string `json:"title"`
}
