package status

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jgivc/mediafetch/internal/common"
	"github.com/jgivc/mediafetch/internal/entity"
)

const (
	serviceName = "status"
)

type JobRepository interface {
	Get(ctx context.Context, id string) (*entity.Job, error)
}

type CatalogRepository interface {
	List(ctx context.Context) ([]*entity.CatalogEntry, error)
}

// statusService is the read-only view over jobs and completed downloads.
type statusService struct {
	jobs    JobRepository
	catalog CatalogRepository
	log     *slog.Logger
}

func NewStatusService(jobs JobRepository, catalog CatalogRepository, log *slog.Logger) *statusService {
	return &statusService{
		jobs:    jobs,
		catalog: catalog,
		log:     log.With(slog.String("service", serviceName)),
	}
}

func (s *statusService) GetJob(ctx context.Context, id string) (*entity.Job, error) {
	job, err := s.jobs.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, common.ErrJobNotFound) {
			s.log.Error("Cannot get job", slog.String("job_id", id), slog.Any("error", err))
		}

		return nil, fmt.Errorf("cannot get job %s: %w", id, err)
	}

	return job, nil
}

func (s *statusService) ListCatalog(ctx context.Context) ([]*entity.CatalogEntry, error) {
	entries, err := s.catalog.List(ctx)
	if err != nil {
		s.log.Error("Cannot list catalog", slog.Any("error", err))

		return nil, fmt.Errorf("cannot list catalog: %w", err)
	}

	return entries, nil
}
