package worker

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/yourorg/jobboard/internal/domain"
)

type fakeBlobStore struct {
	mu    sync.Mutex
	blobs map[string]*domain.BlobInfo
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: map[string]*domain.BlobInfo{}}
}

func (f *fakeBlobStore) add(id string, age time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobs[id] = &domain.BlobInfo{ID: id, CreatedAt: time.Now().Add(-age)}
}

func (f *fakeBlobStore) has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.blobs[id]
	return ok
}

func (f *fakeBlobStore) Put(ctx context.Context, name, contentType string, r io.Reader) (*domain.BlobInfo, error) {
	return nil, nil
}

func (f *fakeBlobStore) Open(ctx context.Context, id string) (*domain.BlobInfo, io.ReadCloser, error) {
	return nil, nil, domain.ErrBlobNotFound
}

func (f *fakeBlobStore) Remove(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.blobs[id]; !ok {
		return domain.ErrBlobNotFound
	}
	delete(f.blobs, id)
	return nil
}

func (f *fakeBlobStore) List(ctx context.Context) ([]*domain.BlobInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.BlobInfo{}
	for _, b := range f.blobs {
		out = append(out, b)
	}
	return out, nil
}

type fakeAppRepo struct {
	refs map[string]struct{}
}

func (f *fakeAppRepo) Create(ctx context.Context, app *domain.Application) error { return nil }
func (f *fakeAppRepo) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	return nil, domain.ErrApplicationNotFound
}
func (f *fakeAppRepo) GetByJobAndCandidate(ctx context.Context, jobID, candidate string) (*domain.Application, error) {
	return nil, domain.ErrApplicationNotFound
}
func (f *fakeAppRepo) ListByJob(ctx context.Context, jobID string) ([]*domain.Application, error) {
	return nil, nil
}
func (f *fakeAppRepo) UpdateStatusFromPending(ctx context.Context, id string, status domain.ApplicationStatus) (*domain.Application, error) {
	return nil, domain.ErrApplicationNotFound
}
func (f *fakeAppRepo) ReferencedResumeIDs(ctx context.Context) (map[string]struct{}, error) {
	return f.refs, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSweepRemovesOldOrphans(t *testing.T) {
	blobs := newFakeBlobStore()
	blobs.add("referenced", time.Hour)
	blobs.add("orphan-old", time.Hour)
	blobs.add("orphan-fresh", time.Second)

	repo := &fakeAppRepo{refs: map[string]struct{}{"referenced": {}}}
	sweeper := NewBlobSweeper(blobs, repo, testLogger(), time.Minute, 10*time.Minute)

	sweeper.sweep(context.Background())

	if !blobs.has("referenced") {
		t.Errorf("referenced blob must never be swept")
	}
	if blobs.has("orphan-old") {
		t.Errorf("old orphan should have been removed")
	}
	if !blobs.has("orphan-fresh") {
		t.Errorf("orphan inside the grace window must be kept")
	}
}

func TestSweepDryRun(t *testing.T) {
	t.Setenv("FLAG_SWEEP_DRY_RUN", "true")

	blobs := newFakeBlobStore()
	blobs.add("orphan-old", time.Hour)

	repo := &fakeAppRepo{refs: map[string]struct{}{}}
	sweeper := NewBlobSweeper(blobs, repo, testLogger(), time.Minute, 10*time.Minute)

	sweeper.sweep(context.Background())

	if !blobs.has("orphan-old") {
		t.Errorf("dry run must not remove anything")
	}
}

func TestSweeperStopsOnCancel(t *testing.T) {
	blobs := newFakeBlobStore()
	repo := &fakeAppRepo{refs: map[string]struct{}{}}
	sweeper := NewBlobSweeper(blobs, repo, testLogger(), 10*time.Millisecond, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Start(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("sweeper did not stop after context cancellation")
	}
}
