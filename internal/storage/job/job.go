package job

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/jgivc/mediafetch/internal/common"
	"github.com/jgivc/mediafetch/internal/entity"
	"github.com/jgivc/mediafetch/internal/util"
)

// jobStorage is the in-memory job registry. Entries live for the lifetime of the process.
type jobStorage struct {
	mu     sync.RWMutex
	nextID uint64
	jobs   map[string]*entity.Job
	now    func() time.Time
	log    *slog.Logger
}

func NewJobStorage(log *slog.Logger) *jobStorage {
	return &jobStorage{
		jobs: make(map[string]*entity.Job),
		now:  time.Now,
		log:  log.With(slog.String("item", "JobStorage")),
	}
}

// Create allocates the next id and stores a job in the starting state.
func (s *jobStorage) Create(_ context.Context, url string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := strconv.FormatUint(s.nextID, 10)
	s.nextID++

	now := s.now()
	s.jobs[id] = &entity.Job{
		ID:        id,
		URL:       url,
		Status:    entity.JobStatusStarting,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.log.Debug("Job created", slog.String("job_id", id), slog.String("url", url))

	return id
}

// Get returns a copy of the job.
func (s *jobStorage) Get(_ context.Context, id string) (*entity.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[id]
	if !exists {
		return nil, common.ErrJobNotFound
	}

	cp := *job

	return &cp, nil
}

// Update applies fn to the stored job under the write lock. The id and creation
// time cannot be changed and progress is clamped to [0, 100].
func (s *jobStorage) Update(_ context.Context, id string, fn func(job *entity.Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[id]
	if !exists {
		return common.ErrJobNotFound
	}

	createdAt := job.CreatedAt
	fn(job)

	job.ID = id
	job.CreatedAt = createdAt
	job.Progress = util.ClampPercent(job.Progress)
	job.UpdatedAt = s.now()

	return nil
}

func (s *jobStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.jobs)
}
