package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jgivc/mediafetch/internal/adapter/pageadapter"
	"github.com/jgivc/mediafetch/internal/adapter/ytdlpadapter"
	"github.com/jgivc/mediafetch/internal/config"
	httphandler "github.com/jgivc/mediafetch/internal/handler/http"
	"github.com/jgivc/mediafetch/internal/repository/catalog"
	"github.com/jgivc/mediafetch/internal/service/download"
	"github.com/jgivc/mediafetch/internal/service/reveal"
	"github.com/jgivc/mediafetch/internal/service/status"
	"github.com/jgivc/mediafetch/internal/storage/job"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
)

const (
	pingTimeout = 5 * time.Second
)

type Catalog interface {
	download.CatalogRepository
	status.CatalogRepository
}

// Services groups what the router needs; tests build it from fakes.
type Services struct {
	Download httphandler.DownloadService
	Status   httphandler.StatusService
	Reveal   httphandler.RevealService
	Page     httphandler.PageRenderer
}

type App struct {
	cfgPath    string
	cfg        *config.Config
	srv        *http.Server
	downloader interface{ Wait(ctx context.Context) error }
	rdb        *redis.Client
	log        *slog.Logger
}

func New(cfgPath string) *App {
	return &App{
		cfgPath: cfgPath,
	}
}

func (a *App) Start() {
	a.cfg = config.MustLoad(a.cfgPath)

	lo := &slog.HandlerOptions{}
	switch a.cfg.LogLevel {
	case config.LogLevelInfo:
		lo.Level = slog.LevelInfo
	case config.LogLevelWarn:
		lo.Level = slog.LevelWarn
	case config.LogLevelError:
		lo.Level = slog.LevelError
	case config.LogLevelDebug:
		lo.Level = slog.LevelDebug
	default:
		panic("unknown log level")
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, lo))
	a.log = log

	fs := afero.NewOsFs()
	if err := fs.MkdirAll(a.cfg.DownloadDir, 0o755); err != nil {
		panic(fmt.Errorf("cannot create download dir: %w", err))
	}

	cat, err := a.newCatalog(log)
	if err != nil {
		panic(err)
	}

	jobs := job.NewJobStorage(log)
	fetcher := ytdlpadapter.NewYtdlpAdapter(a.cfg.FetcherConfig(), log)
	dSrv := download.NewDownloadService(fetcher, jobs, cat, fs, fetcher.OutputTemplate(), log)
	a.downloader = dSrv

	rSrv, err := reveal.NewRevealService(fs, a.cfg.DownloadDir, log)
	if err != nil {
		panic(err)
	}

	page, err := pageadapter.NewPageAdapterWithFS(fs, &a.cfg.Page, log)
	if err != nil {
		panic(err)
	}

	handler := NewRouter(&Services{
		Download: dSrv,
		Status:   status.NewStatusService(jobs, cat, log),
		Reveal:   rSrv,
		Page:     page,
	}, &a.cfg.RateLimit, log)

	a.srv = &http.Server{
		Addr:    a.cfg.Listen,
		Handler: handler,
	}

	go func() {
		log.Info("Start listen", slog.String("addr", a.cfg.Listen), slog.String("download_dir", a.cfg.DownloadDir))

		if err := a.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Could not serve", slog.String("listen_addr", a.cfg.Listen), slog.Any("error", err))
			os.Exit(2)
		}
	}()
}

func (a *App) newCatalog(log *slog.Logger) (Catalog, error) {
	if a.cfg.Catalog.Store != config.CatalogStoreRedis {
		return catalog.NewMemoryCatalog(log), nil
	}

	opt, err := redis.ParseURL(a.cfg.Catalog.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("cannot parse redis url: %w", err)
	}

	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()

		return nil, fmt.Errorf("cannot connect to redis: %w", err)
	}
	a.rdb = rdb

	return catalog.NewRedisCatalog(rdb, a.cfg.Catalog.Key, log), nil
}

// NewRouter registers every endpoint and wraps the mux with the middleware chain.
func NewRouter(s *Services, rl *config.RateLimitConfig, log *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	limit := httphandler.RateLimit(rl.Requests, rl.Window)

	mux.Handle("POST /download", limit(httphandler.NewStartHandler(s.Download, log)))
	mux.Handle("GET /progress/{id}", httphandler.NewProgressHandler(s.Status, log))
	mux.Handle("GET /videos", httphandler.NewVideosHandler(s.Status, log))
	mux.Handle("POST /open-folder", httphandler.NewOpenFolderHandler(s.Reveal, log))
	mux.Handle("GET /{$}", httphandler.NewHomeHandler(s.Status, s.Page, log))
	mux.Handle("GET /healthz", httphandler.NewHealthHandler())
	mux.Handle("GET /metrics", promhttp.Handler())

	return httphandler.Chain(mux,
		httphandler.RequestID(),
		httphandler.AccessLog(log),
		httphandler.Recoverer(log),
	)
}

// Stop stops accepting requests, then waits for running transfers within the shutdown timeout.
func (a *App) Stop() {
	if a.srv == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.srv.Shutdown(ctx); err != nil {
		a.log.Error("Cannot shutdown server", slog.Any("error", err))
	}

	if err := a.downloader.Wait(ctx); err != nil {
		a.log.Warn("Transfers still running at shutdown", slog.Any("error", err))
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.log.Error("Cannot close redis client", slog.Any("error", err))
		}
	}
}
