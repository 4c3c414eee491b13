package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/yourorg/jobboard/internal/domain"
)

// PostgresApplicationRepository implements domain.ApplicationRepository
// using PostgreSQL. The (job_id, candidate) uniqueness invariant and the
// Pending-only status transition are both enforced here, at the store
// boundary, not by read-then-write logic in the service.
type PostgresApplicationRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresApplicationRepository creates a new application repository
func NewPostgresApplicationRepository(db *sql.DB, logger *slog.Logger) *PostgresApplicationRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresApplicationRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new application. A concurrent insert for the same
// (job, candidate) pair loses on the unique index and maps to
// ErrDuplicateApplication.
func (r *PostgresApplicationRepository) Create(ctx context.Context, app *domain.Application) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if app.Status == "" {
		app.Status = domain.StatusPending
	}

	query := `
		INSERT INTO applications (id, job_id, job_title, candidate, resume, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING date
	`

	err := r.db.QueryRowContext(ctx, query,
		app.ID,
		app.JobID,
		app.JobTitle,
		app.Candidate,
		app.Resume,
		app.Status,
	).Scan(&app.Date)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateApplication
		}
		r.logger.Error("failed to create application",
			slog.String("job_id", app.JobID),
			slog.String("candidate", app.Candidate),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create application: %w", err)
	}

	return nil
}

// GetByID retrieves an application by ID
func (r *PostgresApplicationRepository) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	query := `
		SELECT id, job_id, job_title, candidate, resume, status, date
		FROM applications
		WHERE id = $1
	`

	app := &domain.Application{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&app.ID,
		&app.JobID,
		&app.JobTitle,
		&app.Candidate,
		&app.Resume,
		&app.Status,
		&app.Date,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrApplicationNotFound
		}
		r.logger.Error("failed to get application by id",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return app, nil
}

// GetByJobAndCandidate retrieves the application for a (job, candidate) pair
func (r *PostgresApplicationRepository) GetByJobAndCandidate(ctx context.Context, jobID, candidate string) (*domain.Application, error) {
	query := `
		SELECT id, job_id, job_title, candidate, resume, status, date
		FROM applications
		WHERE job_id = $1 AND candidate = $2
	`

	app := &domain.Application{}
	err := r.db.QueryRowContext(ctx, query, jobID, candidate).Scan(
		&app.ID,
		&app.JobID,
		&app.JobTitle,
		&app.Candidate,
		&app.Resume,
		&app.Status,
		&app.Date,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return app, nil
}

// ListByJob lists all applications for a job, newest first
func (r *PostgresApplicationRepository) ListByJob(ctx context.Context, jobID string) ([]*domain.Application, error) {
	query := `
		SELECT id, job_id, job_title, candidate, resume, status, date
		FROM applications
		WHERE job_id = $1
		ORDER BY date DESC
	`

	rows, err := r.db.QueryContext(ctx, query, jobID)
	if err != nil {
		r.logger.Error("failed to list applications",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var apps []*domain.Application
	for rows.Next() {
		app := &domain.Application{}
		err := rows.Scan(
			&app.ID,
			&app.JobID,
			&app.JobTitle,
			&app.Candidate,
			&app.Resume,
			&app.Status,
			&app.Date,
		)
		if err != nil {
			r.logger.Error("failed to scan application row", slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, app)
	}

	return apps, rows.Err()
}

// UpdateStatusFromPending transitions the status with a conditional UPDATE.
// Two concurrent transitions on the same application cannot both win: the
// second sees zero rows and gets ErrInvalidTransition.
func (r *PostgresApplicationRepository) UpdateStatusFromPending(ctx context.Context, id string, status domain.ApplicationStatus) (*domain.Application, error) {
	query := `
		UPDATE applications
		SET status = $1
		WHERE id = $2 AND status = $3
		RETURNING id, job_id, job_title, candidate, resume, status, date
	`

	app := &domain.Application{}
	err := r.db.QueryRowContext(ctx, query, status, id, domain.StatusPending).Scan(
		&app.ID,
		&app.JobID,
		&app.JobTitle,
		&app.Candidate,
		&app.Resume,
		&app.Status,
		&app.Date,
	)

	if err == nil {
		return app, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		r.logger.Error("failed to update application status",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to update application status: %w", err)
	}

	// No row matched: either the application does not exist or it is
	// already terminal.
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, domain.ErrInvalidTransition
}

// ReferencedResumeIDs returns the set of blob IDs referenced by any
// application, for the orphaned-blob sweep.
func (r *PostgresApplicationRepository) ReferencedResumeIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT resume FROM applications`)
	if err != nil {
		return nil, fmt.Errorf("failed to list referenced resumes: %w", err)
	}
	defer rows.Close()

	refs := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan resume id: %w", err)
		}
		refs[id] = struct{}{}
	}

	return refs, rows.Err()
}
