package download

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jgivc/mediafetch/internal/common"
	"github.com/jgivc/mediafetch/internal/entity"
	"github.com/jgivc/mediafetch/internal/metrics"
	"github.com/jgivc/mediafetch/internal/util"
	"github.com/spf13/afero"
)

const (
	serviceName = "download"
)

type Fetcher interface {
	FetchMetadata(ctx context.Context, url string) (*entity.Metadata, error)
	Transfer(ctx context.Context, url, outputTemplate string, onProgress func(entity.Progress)) (string, error)
}

type JobRepository interface {
	Create(ctx context.Context, url string) string
	Update(ctx context.Context, id string, fn func(job *entity.Job)) error
}

type CatalogRepository interface {
	Append(ctx context.Context, entry *entity.CatalogEntry) error
}

type downloadService struct {
	// ctx is the parent of every transfer; transfers outlive the request that started them.
	ctx            context.Context
	fetcher        Fetcher
	jobs           JobRepository
	catalog        CatalogRepository
	fs             afero.Fs
	outputTemplate string
	now            func() time.Time
	wg             sync.WaitGroup
	log            *slog.Logger
}

func NewDownloadService(fetcher Fetcher, jobs JobRepository, catalog CatalogRepository, fs afero.Fs, outputTemplate string, log *slog.Logger) *downloadService {
	return &downloadService{
		ctx:            context.Background(),
		fetcher:        fetcher,
		jobs:           jobs,
		catalog:        catalog,
		fs:             fs,
		outputTemplate: outputTemplate,
		now:            time.Now,
		log:            log.With(slog.String("service", serviceName)),
	}
}

// StartJob resolves the title synchronously, registers the job and starts the
// transfer in the background.
func (s *downloadService) StartJob(ctx context.Context, rawURL string) (*entity.StartResult, error) {
	rawURL = strings.TrimSpace(rawURL)
	if err := validateURL(rawURL); err != nil {
		metrics.RecordRejected(metrics.RejectInvalidInput)

		return nil, err
	}

	log := s.log.With(slog.String("url", rawURL))
	log.Info("Received download request")

	meta, err := s.fetcher.FetchMetadata(ctx, rawURL)
	if err != nil {
		log.Error("Cannot fetch video info", slog.Any("error", err))
		metrics.RecordRejected(metrics.RejectMetadataFailure)

		return nil, fmt.Errorf("%w: %w", common.ErrMetadataFetchFailed, err)
	}

	id := s.jobs.Create(ctx, rawURL)
	if err := s.jobs.Update(ctx, id, func(job *entity.Job) {
		job.Title = meta.Title
	}); err != nil {
		return nil, fmt.Errorf("cannot set job %s title: %w", id, err)
	}

	metrics.RecordStarted()

	jc := &jobContext{
		id:   id,
		url:  rawURL,
		meta: *meta,
		log:  log.With(slog.String("job_id", id)),
	}

	s.wg.Add(1)
	go s.run(jc)

	log.Info("Download started", slog.String("job_id", id), slog.String("title", meta.Title))

	return &entity.StartResult{JobID: id, Title: meta.Title}, nil
}

// Wait blocks until every transfer started so far has finished or ctx is done.
func (s *downloadService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.wg.Wait()
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// jobContext carries the per-job state the progress callback needs.
type jobContext struct {
	id   string
	url  string
	meta entity.Metadata
	log  *slog.Logger

	// lastPercent is touched only by the fetcher's progress callback.
	lastPercent float64
}

func (s *downloadService) run(jc *jobContext) {
	defer s.wg.Done()

	ctx := s.ctx
	jc.log.Info("Starting download", slog.String("title", jc.meta.Title))

	path, err := s.fetcher.Transfer(ctx, jc.url, s.outputTemplate, func(p entity.Progress) {
		s.onProgress(ctx, jc, p)
	})
	if err != nil {
		s.fail(ctx, jc, err)

		return
	}

	entry, err := s.buildEntry(jc, path)
	if err != nil {
		s.fail(ctx, jc, err)

		return
	}

	if err := s.catalog.Append(ctx, entry); err != nil {
		s.fail(ctx, jc, fmt.Errorf("cannot save catalog entry: %w", err))

		return
	}

	if err := s.jobs.Update(ctx, jc.id, func(job *entity.Job) {
		job.Status = entity.JobStatusCompleted
		job.Progress = 100
		job.ETA = ""
		job.FilePath = entry.AbsolutePath
	}); err != nil {
		jc.log.Error("Cannot update job", slog.Any("error", err))
	}

	metrics.RecordCompleted(entry.SizeBytes)
	jc.log.Info("Successfully downloaded", slog.String("path", entry.AbsolutePath), slog.String("size", entry.HumanFileSize))
}

func (s *downloadService) onProgress(ctx context.Context, jc *jobContext, p entity.Progress) {
	percent := util.ClampPercent(p.Percentage)
	if percent < jc.lastPercent {
		percent = jc.lastPercent
	}
	jc.lastPercent = percent

	status := entity.JobStatusDownloading
	if p.Phase == entity.ProgressPhaseFinished {
		status = entity.JobStatusFinished
	}

	if err := s.jobs.Update(ctx, jc.id, func(job *entity.Job) {
		job.Status = status
		job.Progress = percent
		job.Speed = util.HumanSpeed(p.Speed)
		job.ETA = util.FormatETA(p.ETA)
	}); err != nil {
		jc.log.Error("Cannot update progress", slog.Any("error", err))
	}
}

func (s *downloadService) buildEntry(jc *jobContext, path string) (*entity.CatalogEntry, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("cannot get absolute path of %s: %w", path, err)
	}

	stat, err := s.fs.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("cannot get file size: %w", err)
	}

	now := s.now()

	return &entity.CatalogEntry{
		JobID:         jc.id,
		Title:         jc.meta.Title,
		SourceURL:     jc.url,
		DownloadedAt:  now,
		DownloadTime:  now.Format(entity.DownloadTimeLayout),
		SizeBytes:     stat.Size(),
		HumanFileSize: util.HumanSize(stat.Size()),
		HumanDuration: util.FormatDuration(jc.meta.DurationSeconds),
		FileName:      filepath.Base(absPath),
		AbsolutePath:  absPath,
		FolderPath:    filepath.Dir(absPath),
	}, nil
}

func (s *downloadService) fail(ctx context.Context, jc *jobContext, cause error) {
	err := fmt.Errorf("%w: %w", common.ErrTransferFailed, cause)
	jc.log.Error("Download task error", slog.Any("error", err))

	if uerr := s.jobs.Update(ctx, jc.id, func(job *entity.Job) {
		job.Status = entity.JobStatusError
		job.Error = err.Error()
		job.Speed = ""
		job.ETA = ""
	}); uerr != nil {
		jc.log.Error("Cannot update job", slog.Any("error", uerr))
	}

	metrics.RecordFailed()
}

func validateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("%w: URL is required", common.ErrInvalidInput)
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: malformed URL %q", common.ErrInvalidInput, rawURL)
	}

	return nil
}
