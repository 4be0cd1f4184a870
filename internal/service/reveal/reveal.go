// Package reveal opens a download folder in the host's file manager.
package reveal

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/jgivc/mediafetch/internal/common"
	"github.com/spf13/afero"
)

const (
	serviceName = "reveal"

	osDarwin  = "darwin"
	osWindows = "windows"
	osLinux   = "linux"

	openTimeout = 10 * time.Second
)

var (
	linuxFileManagers = []string{"xdg-open", "nautilus", "dolphin", "thunar", "nemo", "pcmanfm"}
)

// Runner starts an external command and waits for it.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
	LookPath(name string) (string, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

func (execRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

type revealService struct {
	fs      afero.Fs
	rootDir string
	goos    string
	runner  Runner
	log     *slog.Logger
}

// NewRevealService only opens folders inside rootDir.
func NewRevealService(fs afero.Fs, rootDir string, log *slog.Logger) (*revealService, error) {
	return NewRevealServiceWithRunner(fs, rootDir, runtime.GOOS, execRunner{}, log)
}

func NewRevealServiceWithRunner(fs afero.Fs, rootDir, goos string, runner Runner, log *slog.Logger) (*revealService, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("cannot get absolute path of %s: %w", rootDir, err)
	}

	return &revealService{
		fs:      fs,
		rootDir: absRoot,
		goos:    goos,
		runner:  runner,
		log:     log.With(slog.String("service", serviceName)),
	}, nil
}

func (s *revealService) OpenFolder(ctx context.Context, folderPath string) error {
	folderPath = strings.TrimSpace(folderPath)
	if folderPath == "" || !filepath.IsAbs(folderPath) {
		return fmt.Errorf("%w: folder path must be absolute", common.ErrInvalidInput)
	}

	folderPath = filepath.Clean(folderPath)
	if rel, err := filepath.Rel(s.rootDir, folderPath); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s is outside the download directory", common.ErrInvalidInput, folderPath)
	}

	stat, err := s.fs.Stat(folderPath)
	if err != nil {
		return fmt.Errorf("%w: %s", common.ErrPathNotFound, folderPath)
	}
	if !stat.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", common.ErrInvalidInput, folderPath)
	}

	ctx, cancel := context.WithTimeout(ctx, openTimeout)
	defer cancel()

	if err := s.open(ctx, folderPath); err != nil {
		s.log.Error("Cannot open folder", slog.String("path", folderPath), slog.Any("error", err))

		return fmt.Errorf("%w: %w", common.ErrOsIntegrationFailed, err)
	}

	s.log.Info("Folder opened", slog.String("path", folderPath))

	return nil
}

func (s *revealService) open(ctx context.Context, dir string) error {
	switch s.goos {
	case osDarwin:
		return s.runner.Run(ctx, "open", dir)
	case osWindows:
		return s.runner.Run(ctx, "explorer", dir)
	case osLinux:
		var lastErr error
		for _, fm := range linuxFileManagers {
			if _, err := s.runner.LookPath(fm); err != nil {
				continue
			}

			if lastErr = s.runner.Run(ctx, fm, dir); lastErr == nil {
				return nil
			}
		}

		if lastErr != nil {
			return lastErr
		}

		return fmt.Errorf("no suitable file manager found")
	default:
		return fmt.Errorf("unsupported operating system: %s", s.goos)
	}
}
