package domain

import (
	"context"
	"time"
)

// Job represents a job posting
type Job struct {
	ID          string // UUID
	Title       string
	Description string
	PostedBy    string // User ID of the recruiter who posted the job
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// JobRepository defines data access for job postings
type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, id string) (*Job, error)
	Update(ctx context.Context, job *Job) error
	// Delete removes the posting only. Applications referencing the job are
	// kept with a dangling job reference.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Job, error)
}
