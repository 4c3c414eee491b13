package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/yourorg/jobboard/internal/domain"
	"github.com/yourorg/jobboard/internal/security"
	"github.com/yourorg/jobboard/pkg/cache"
)

const jobListCacheKey = "jobs:list"
const jobListCacheTTL = 30 * time.Second

// JobService manages job postings. Posting requires the recruiter role;
// editing and deleting require ownership of the posting.
type JobService struct {
	jobRepo domain.JobRepository
	authz   *security.AuthorizationService
	cache   *cache.Cache[[]*domain.Job]
	logger  *slog.Logger
}

// NewJobService creates a new job service
func NewJobService(
	jobRepo domain.JobRepository,
	authz *security.AuthorizationService,
	logger *slog.Logger,
) *JobService {
	if logger == nil {
		logger = slog.Default()
	}

	return &JobService{
		jobRepo: jobRepo,
		authz:   authz,
		cache:   cache.New[[]*domain.Job](),
		logger:  logger,
	}
}

// Create posts a new job owned by the calling recruiter
func (s *JobService) Create(ctx context.Context, user *domain.User, title, description string) (*domain.Job, error) {
	if err := s.authz.Require(user.ID, user.Role, security.PermPostJob); err != nil {
		return nil, err
	}
	if title == "" {
		return nil, errors.New("title is required")
	}

	job := &domain.Job{
		Title:       title,
		Description: description,
		PostedBy:    user.ID,
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}

	s.cache.Invalidate(jobListCacheKey)
	s.logger.Info("job posted",
		slog.String("job_id", job.ID),
		slog.String("posted_by", user.ID),
	)

	return job, nil
}

// Get returns a single posting
func (s *JobService) Get(ctx context.Context, id string) (*domain.Job, error) {
	return s.jobRepo.GetByID(ctx, id)
}

// Update edits a posting; only the owning recruiter may edit
func (s *JobService) Update(ctx context.Context, user *domain.User, id, title, description string) (*domain.Job, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.RequireOwner(user.ID, job.PostedBy, "job", job.ID); err != nil {
		return nil, err
	}

	if title != "" {
		job.Title = title
	}
	if description != "" {
		job.Description = description
	}

	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, err
	}

	s.cache.Invalidate(jobListCacheKey)
	return job, nil
}

// Delete removes a posting; only the owning recruiter may delete.
// Existing applications for the job are kept.
func (s *JobService) Delete(ctx context.Context, user *domain.User, id string) error {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.RequireOwner(user.ID, job.PostedBy, "job", job.ID); err != nil {
		return err
	}

	if err := s.jobRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.Invalidate(jobListCacheKey)
	s.logger.Info("job deleted",
		slog.String("job_id", id),
		slog.String("deleted_by", user.ID),
	)
	return nil
}

// List returns all postings, served from a short-lived cache between
// mutations.
func (s *JobService) List(ctx context.Context) ([]*domain.Job, error) {
	if jobs, ok := s.cache.Get(jobListCacheKey); ok {
		return jobs, nil
	}

	jobs, err := s.jobRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.Set(jobListCacheKey, jobs, jobListCacheTTL)
	return jobs, nil
}
