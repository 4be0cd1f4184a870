package entity

import "time"

const DownloadTimeLayout = "2006-01-02 15:04:05"

// CatalogEntry describes one successfully completed download.
type CatalogEntry struct {
	// JobID is unique within one process run only: ids restart at "0" and a
	// persistent catalog keeps entries from earlier runs.
	JobID         string    `json:"job_id"`
	Title         string    `json:"title"`
	SourceURL     string    `json:"url"`
	DownloadedAt  time.Time `json:"downloaded_at"`
	DownloadTime  string    `json:"download_time"`
	SizeBytes     int64     `json:"size_bytes"`
	HumanFileSize string    `json:"file_size"`
	HumanDuration string    `json:"duration"`
	FileName      string    `json:"filename"`
	AbsolutePath  string    `json:"path"`
	FolderPath    string    `json:"folder"`
}
