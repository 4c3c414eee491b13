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

// PostgresJobRepository implements domain.JobRepository using PostgreSQL
type PostgresJobRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresJobRepository creates a new job repository
func NewPostgresJobRepository(db *sql.DB, logger *slog.Logger) *PostgresJobRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresJobRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new job posting
func (r *PostgresJobRepository) Create(ctx context.Context, job *domain.Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}

	query := `
		INSERT INTO jobs (id, title, description, posted_by)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		job.ID,
		job.Title,
		job.Description,
		job.PostedBy,
	).Scan(&job.CreatedAt, &job.UpdatedAt)

	if err != nil {
		r.logger.Error("failed to create job",
			slog.String("title", job.Title),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create job: %w", err)
	}

	return nil
}

// GetByID retrieves a job by ID
func (r *PostgresJobRepository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	job := &domain.Job{}

	query := `
		SELECT id, title, description, posted_by, created_at, updated_at
		FROM jobs
		WHERE id = $1
	`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&job.ID,
		&job.Title,
		&job.Description,
		&job.PostedBy,
		&job.CreatedAt,
		&job.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		r.logger.Error("failed to get job by id",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return job, nil
}

// Update updates title and description of an existing job
func (r *PostgresJobRepository) Update(ctx context.Context, job *domain.Job) error {
	query := `
		UPDATE jobs
		SET title = $1, description = $2, updated_at = now()
		WHERE id = $3
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		job.Title,
		job.Description,
		job.ID,
	).Scan(&job.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrJobNotFound
		}
		return fmt.Errorf("failed to update job: %w", err)
	}

	return nil
}

// Delete removes a job posting. Applications that reference it remain.
func (r *PostgresJobRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rows == 0 {
		return domain.ErrJobNotFound
	}

	return nil
}

// List returns all job postings, newest first
func (r *PostgresJobRepository) List(ctx context.Context) ([]*domain.Job, error) {
	query := `
		SELECT id, title, description, posted_by, created_at, updated_at
		FROM jobs
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to list jobs", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*domain.Job
	for rows.Next() {
		job := &domain.Job{}
		err := rows.Scan(
			&job.ID,
			&job.Title,
			&job.Description,
			&job.PostedBy,
			&job.CreatedAt,
			&job.UpdatedAt,
		)
		if err != nil {
			r.logger.Error("failed to scan job row", slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}
