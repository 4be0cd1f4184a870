// Package ytdlpadapter resolves metadata and downloads media through yt-dlp
// (via github.com/lrstanley/go-ytdlp).
package ytdlpadapter

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jgivc/mediafetch/internal/config"
	"github.com/jgivc/mediafetch/internal/entity"
	"github.com/lrstanley/go-ytdlp"
)

const (
	progressInterval = 500 * time.Millisecond
	partSuffix       = ".part"
)

type ytdlpAdapter struct {
	cfg *config.FetcherConfig
	log *slog.Logger
}

func NewYtdlpAdapter(cfg *config.FetcherConfig, log *slog.Logger) *ytdlpAdapter {
	return &ytdlpAdapter{
		cfg: cfg,
		log: log.With(slog.String("item", "YtdlpAdapter")),
	}
}

// OutputTemplate returns the yt-dlp output template inside the download directory.
func (a *ytdlpAdapter) OutputTemplate() string {
	return filepath.Join(a.cfg.DownloadDir, a.cfg.OutputTemplate)
}

func (a *ytdlpAdapter) command() *ytdlp.Command {
	dl := ytdlp.New().
		Format(a.cfg.Format).
		NoCheckCertificates()

	if a.cfg.Proxy != "" {
		dl = dl.Proxy(a.cfg.Proxy)
	}

	return dl
}

func (a *ytdlpAdapter) FetchMetadata(ctx context.Context, url string) (*entity.Metadata, error) {
	res, err := a.command().DumpSingleJSON().Run(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("cannot extract info: %w", err)
	}

	info, err := extractedInfo(res)
	if err != nil {
		return nil, err
	}

	meta := &entity.Metadata{
		Title: "Unknown",
	}
	if info.Title != nil && *info.Title != "" {
		meta.Title = *info.Title
	}
	if info.Duration != nil {
		meta.DurationSeconds = *info.Duration
	}

	a.log.Info("Fetched info", slog.String("url", url), slog.String("title", meta.Title))

	return meta, nil
}

// Transfer downloads url and returns the path of the written file. onProgress is
// called from the yt-dlp output reader and must not block.
func (a *ytdlpAdapter) Transfer(ctx context.Context, url, outputTemplate string, onProgress func(entity.Progress)) (string, error) {
	// PrintJSON reports the final file name even when yt-dlp emits no progress
	// lines or merges separately downloaded formats.
	dl := a.command().
		ForceOverwrites().
		RestrictFilenames().
		PrintJSON().
		Output(outputTemplate)

	var (
		mu       sync.Mutex
		lastFile string
	)
	dl.ProgressFunc(progressInterval, func(update ytdlp.ProgressUpdate) {
		if update.Filename != "" {
			mu.Lock()
			lastFile = strings.TrimSuffix(update.Filename, partSuffix)
			mu.Unlock()
		}

		if onProgress != nil {
			onProgress(toProgress(&update))
		}
	})

	res, err := dl.Run(ctx, url)
	if err != nil {
		return "", fmt.Errorf("cannot download %s: %w", url, err)
	}

	if info, err := extractedInfo(res); err == nil && info.Filename != nil && *info.Filename != "" {
		return *info.Filename, nil
	}

	mu.Lock()
	defer mu.Unlock()

	if lastFile == "" {
		return "", fmt.Errorf("cannot determine output file for %s", url)
	}

	return lastFile, nil
}

func extractedInfo(res *ytdlp.Result) (*ytdlp.ExtractedInfo, error) {
	infos, err := res.GetExtractedInfo()
	if err != nil {
		return nil, fmt.Errorf("cannot parse extracted info: %w", err)
	}

	if len(infos) < 1 || infos[0] == nil {
		return nil, fmt.Errorf("could not fetch video info")
	}

	return infos[0], nil
}

// toProgress maps a yt-dlp progress update to a fetcher progress event.
// yt-dlp reports byte counts, so the percentage and speed are derived here.
func toProgress(update *ytdlp.ProgressUpdate) entity.Progress {
	p := entity.Progress{
		Phase: entity.ProgressPhaseDownloading,
	}

	if update.Status == ytdlp.ProgressStatusFinished {
		p.Phase = entity.ProgressPhaseFinished
		p.Percentage = 100
	} else if update.TotalBytes > 0 {
		p.Percentage = float64(update.DownloadedBytes) / float64(update.TotalBytes) * 100
	}

	if !update.Started.IsZero() {
		if elapsed := time.Since(update.Started).Seconds(); elapsed > 0 {
			p.Speed = float64(update.DownloadedBytes) / elapsed
		}
	}

	if eta := update.ETA(); eta > 0 {
		p.ETA = eta
	}

	return p
}
