package domain

import (
	"context"
	"time"
)

// ApplicationStatus is the review state of an application. Pending is the
// only state that may transition; Accepted and Rejected are terminal.
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "Pending"
	StatusAccepted ApplicationStatus = "Accepted"
	StatusRejected ApplicationStatus = "Rejected"
)

// ValidTargetStatus reports whether s is a status a recruiter may
// transition an application to.
func ValidTargetStatus(s ApplicationStatus) bool {
	return s == StatusAccepted || s == StatusRejected
}

// Application is a candidate's submission for a specific job posting.
// JobTitle and Candidate are snapshots taken at submission time; they are
// not refreshed if the job or the account is later edited.
type Application struct {
	ID        string // UUID
	JobID     string // May dangle if the job is deleted afterwards
	JobTitle  string
	Candidate string // Candidate name snapshot, not a foreign key
	Resume    string // Blob store ID of the stored resume
	Status    ApplicationStatus
	Date      time.Time
}

// ApplicationRepository defines data access for applications.
//
// Implementations must enforce at most one application per (job, candidate)
// pair: Create returns ErrDuplicateApplication when a second insert for the
// same pair races in, and UpdateStatusFromPending performs the transition as
// a conditional write so that only one of two concurrent transitions wins.
type ApplicationRepository interface {
	Create(ctx context.Context, app *Application) error
	GetByID(ctx context.Context, id string) (*Application, error)
	GetByJobAndCandidate(ctx context.Context, jobID, candidate string) (*Application, error)
	ListByJob(ctx context.Context, jobID string) ([]*Application, error)
	// UpdateStatusFromPending sets the status if and only if the current
	// status is Pending. Returns ErrApplicationNotFound for an unknown id
	// and ErrInvalidTransition when the record exists but is terminal.
	UpdateStatusFromPending(ctx context.Context, id string, status ApplicationStatus) (*Application, error)
	// ReferencedResumeIDs returns the blob IDs of every stored resume,
	// used by the blob sweeper to detect orphans.
	ReferencedResumeIDs(ctx context.Context) (map[string]struct{}, error)
}
