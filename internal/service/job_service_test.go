package service

import (
	"context"
	"errors"
	"testing"

	"github.com/yourorg/jobboard/internal/domain"
	"github.com/yourorg/jobboard/internal/security"
)

func newTestJobService() (*JobService, *memJobRepo) {
	repo := newMemJobRepo()
	return NewJobService(repo, security.NewAuthorizationService(nil), nil), repo
}

func TestJobPostRequiresRecruiter(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestJobService()

	if _, err := s.Create(ctx, candidate("ada"), "Go Engineer", "desc"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for candidate, got %v", err)
	}

	job, err := s.Create(ctx, recruiter("r1"), "Go Engineer", "desc")
	if err != nil {
		t.Fatalf("recruiter post failed: %v", err)
	}
	if job.PostedBy != "r1" {
		t.Errorf("expected owner r1, got %s", job.PostedBy)
	}
}

func TestJobUpdateAndDeleteOwnerOnly(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestJobService()

	job, err := s.Create(ctx, recruiter("r1"), "Go Engineer", "desc")
	if err != nil {
		t.Fatalf("post failed: %v", err)
	}

	if _, err := s.Update(ctx, recruiter("r2"), job.ID, "New Title", ""); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner update, got %v", err)
	}
	updated, err := s.Update(ctx, recruiter("r1"), job.ID, "New Title", "")
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	if updated.Title != "New Title" || updated.Description != "desc" {
		t.Errorf("partial update went wrong: %+v", updated)
	}

	if err := s.Delete(ctx, recruiter("r2"), job.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner delete, got %v", err)
	}
	if err := s.Delete(ctx, recruiter("r1"), job.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if _, err := s.Get(ctx, job.ID); !errors.Is(err, domain.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound after delete, got %v", err)
	}
}

func TestJobListCacheInvalidation(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestJobService()

	if _, err := s.Create(ctx, recruiter("r1"), "First", "desc"); err != nil {
		t.Fatalf("post failed: %v", err)
	}

	jobs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected one job, got %d", len(jobs))
	}

	// The cached listing must not survive a mutation
	if _, err := s.Create(ctx, recruiter("r1"), "Second", "desc"); err != nil {
		t.Fatalf("post failed: %v", err)
	}
	jobs, err = s.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected two jobs after invalidation, got %d", len(jobs))
	}
}
