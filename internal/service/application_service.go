package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/yourorg/jobboard/internal/domain"
	"github.com/yourorg/jobboard/internal/observability/metrics"
	"github.com/yourorg/jobboard/internal/security"
	"github.com/yourorg/jobboard/internal/storage"
)

const submissionLockTTL = 30 * time.Second

// SubmissionLocker serializes in-flight submissions per (job, candidate)
// pair. The Redis client satisfies this; the lock is a fast-path guard,
// the unique index in the application store remains the authority.
type SubmissionLocker interface {
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

// ApplicationService is the submission pipeline and status workflow. It is
// the only component composing the job store, the blob store, and the
// application store in one logical operation.
type ApplicationService struct {
	appRepo domain.ApplicationRepository
	jobRepo domain.JobRepository
	blobs   domain.BlobStore
	locker  SubmissionLocker
	authz   *security.AuthorizationService
	logger  *slog.Logger
}

// NewApplicationService creates a new application service. locker may be
// nil; submissions then rely on the store's uniqueness constraint alone.
func NewApplicationService(
	appRepo domain.ApplicationRepository,
	jobRepo domain.JobRepository,
	blobs domain.BlobStore,
	locker SubmissionLocker,
	authz *security.AuthorizationService,
	logger *slog.Logger,
) *ApplicationService {
	if logger == nil {
		logger = slog.Default()
	}

	return &ApplicationService{
		appRepo: appRepo,
		jobRepo: jobRepo,
		blobs:   blobs,
		locker:  locker,
		authz:   authz,
		logger:  logger,
	}
}

// Submit runs the application pipeline: resolve the job, guard against a
// duplicate submission, commit the staged resume to the blob store, and
// persist the application record with a Pending status.
//
// The staged file is discarded on every exit path. Failure modes:
// ErrJobNotFound before any side effect, ErrDuplicateApplication with no
// new blob or record, and *StorageError for blob or record persistence
// failures (carrying the orphaned blob ID when one was left behind).
func (s *ApplicationService) Submit(ctx context.Context, user *domain.User, jobID string, staged *storage.StagedFile) (app *domain.Application, err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveSubmission(submissionResult(err), time.Since(start))
	}()
	defer func() {
		if discardErr := staged.Discard(); discardErr != nil {
			// Best effort only; a leftover staging file is picked up by
			// the next process start, never surfaced to the caller.
			s.logger.Warn("failed to discard staged file",
				slog.String("path", staged.Path),
				slog.String("error", discardErr.Error()),
			)
		}
	}()

	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to resolve job: %w", err)
	}

	unlock := s.lockSubmission(ctx, jobID, user.Name)
	if unlock == nil {
		return nil, domain.ErrDuplicateApplication
	}
	defer unlock()

	if _, err := s.appRepo.GetByJobAndCandidate(ctx, jobID, user.Name); err == nil {
		return nil, domain.ErrDuplicateApplication
	} else if !errors.Is(err, domain.ErrApplicationNotFound) {
		return nil, fmt.Errorf("failed to check for existing application: %w", err)
	}

	content, err := staged.Open()
	if err != nil {
		return nil, &domain.StorageError{Op: "read staged upload", Err: err}
	}
	blob, err := s.blobs.Put(ctx, staged.OriginalName, staged.ContentType, content)
	content.Close()
	if err != nil {
		return nil, &domain.StorageError{Op: "store resume", Err: err}
	}

	app = &domain.Application{
		JobID:     jobID,
		JobTitle:  job.Title,
		Candidate: user.Name,
		Resume:    blob.ID,
		Status:    domain.StatusPending,
	}

	if err := s.appRepo.Create(ctx, app); err != nil {
		if errors.Is(err, domain.ErrDuplicateApplication) {
			// A concurrent submission won the unique index. The blob we
			// just wrote is orphaned; the sweeper reclaims it.
			s.logger.Warn("duplicate submission lost the insert race",
				slog.String("job_id", jobID),
				slog.String("candidate", user.Name),
				slog.String("orphaned_blob_id", blob.ID),
			)
			return nil, domain.ErrDuplicateApplication
		}
		return nil, &domain.StorageError{
			Op:             "persist application",
			OrphanedBlobID: blob.ID,
			Err:            err,
		}
	}

	s.logger.Info("application submitted",
		slog.String("application_id", app.ID),
		slog.String("job_id", jobID),
		slog.String("candidate", user.Name),
		slog.String("blob_id", blob.ID),
	)

	return app, nil
}

// UpdateStatus transitions an application out of Pending. Only recruiters
// may transition, only to Accepted or Rejected, and only once: the store
// performs the check-and-set, so concurrent requests cannot both win.
func (s *ApplicationService) UpdateStatus(ctx context.Context, user *domain.User, applicationID string, status domain.ApplicationStatus) (*domain.Application, error) {
	if !domain.ValidTargetStatus(status) {
		metrics.ObserveStatusTransition("invalid_status")
		return nil, domain.ErrInvalidStatus
	}
	if err := s.authz.Require(user.ID, user.Role, security.PermReviewApplications); err != nil {
		metrics.ObserveStatusTransition("forbidden")
		return nil, err
	}

	app, err := s.appRepo.UpdateStatusFromPending(ctx, applicationID, status)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrApplicationNotFound):
			metrics.ObserveStatusTransition("not_found")
		case errors.Is(err, domain.ErrInvalidTransition):
			metrics.ObserveStatusTransition("invalid_transition")
		default:
			metrics.ObserveStatusTransition("error")
		}
		return nil, err
	}

	metrics.ObserveStatusTransition("success")
	s.logger.Info("application status updated",
		slog.String("application_id", applicationID),
		slog.String("status", string(status)),
		slog.String("updated_by", user.ID),
	)

	return app, nil
}

// ListForJob returns the applications for a posting; only the posting's
// owner may review them.
func (s *ApplicationService) ListForJob(ctx context.Context, user *domain.User, jobID string) ([]*domain.Application, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.RequireOwner(user.ID, job.PostedBy, "job", job.ID); err != nil {
		return nil, err
	}

	return s.appRepo.ListByJob(ctx, jobID)
}

// OpenResume streams a stored resume by blob ID.
func (s *ApplicationService) OpenResume(ctx context.Context, blobID string) (*domain.BlobInfo, io.ReadCloser, error) {
	return s.blobs.Open(ctx, blobID)
}

// lockSubmission takes the per-(job, candidate) lock. It returns a release
// func, nil when another submission for the pair is in flight, or a no-op
// release when no locker is configured or Redis is unavailable (the unique
// index still protects the invariant).
func (s *ApplicationService) lockSubmission(ctx context.Context, jobID, candidate string) func() {
	if s.locker == nil {
		return func() {}
	}

	key := fmt.Sprintf("apply:%s:%s", jobID, candidate)
	ok, err := s.locker.SetNX(ctx, key, "1", submissionLockTTL)
	if err != nil {
		s.logger.Warn("submission lock unavailable, relying on store constraint",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return func() {}
	}
	if !ok {
		return nil
	}

	return func() {
		if err := s.locker.Delete(ctx, key); err != nil {
			s.logger.Warn("failed to release submission lock",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
	}
}

func submissionResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrDuplicateApplication):
		return "duplicate"
	case errors.Is(err, domain.ErrJobNotFound):
		return "job_not_found"
	default:
		return "error"
	}
}
