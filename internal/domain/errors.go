package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the stores and services. Handlers map these
// to HTTP statuses with errors.Is.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailTaken           = errors.New("email already registered")
	ErrJobNotFound          = errors.New("job not found")
	ErrApplicationNotFound  = errors.New("application not found")
	ErrDuplicateApplication = errors.New("already applied for this job")
	ErrInvalidTransition    = errors.New("application status is terminal")
	ErrInvalidStatus        = errors.New("status value not recognized")
	ErrBlobNotFound         = errors.New("blob not found")
	ErrForbidden            = errors.New("not authorized for this resource")
)

// StorageError reports a blob store failure during application submission.
// OrphanedBlobID is set when a blob was written but no application record
// references it, so operators can reconcile against the sweeper logs.
type StorageError struct {
	Op             string
	OrphanedBlobID string
	Err            error
}

func (e *StorageError) Error() string {
	if e.OrphanedBlobID != "" {
		return fmt.Sprintf("storage %s failed (orphaned blob %s): %v", e.Op, e.OrphanedBlobID, e.Err)
	}
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
