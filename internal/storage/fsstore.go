package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yourorg/jobboard/internal/domain"
)

// FSStore implements domain.BlobStore on the local filesystem. Each blob is
// a content file named by its generated ID plus a JSON metadata sidecar.
type FSStore struct {
	root   string
	logger *slog.Logger
}

type blobMeta struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	SHA256      string    `json:"sha256"`
	Size        int64     `json:"size_bytes"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}

const metaSuffix = ".json"

// NewFSStore creates the store root if needed.
func NewFSStore(root string, logger *slog.Logger) (*FSStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob dir: %w", err)
	}

	return &FSStore{root: root, logger: logger}, nil
}

// Put streams r into a temp file, hashing while copying, then commits the
// content and its sidecar under a generated ID.
func (s *FSStore) Put(ctx context.Context, name, contentType string, r io.Reader) (*domain.BlobInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create blob temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, hasher), r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write blob content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close blob temp file: %w", err)
	}

	meta := blobMeta{
		ID:          uuid.NewString(),
		Name:        name,
		SHA256:      hex.EncodeToString(hasher.Sum(nil)),
		Size:        size,
		ContentType: contentType,
		CreatedAt:   time.Now().UTC(),
	}

	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to encode blob metadata: %w", err)
	}
	if err := os.WriteFile(s.metaPath(meta.ID), metaBytes, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write blob metadata: %w", err)
	}
	if err := os.Rename(tmpPath, s.contentPath(meta.ID)); err != nil {
		os.Remove(s.metaPath(meta.ID))
		return nil, fmt.Errorf("failed to commit blob: %w", err)
	}

	s.logger.Debug("blob stored",
		slog.String("blob_id", meta.ID),
		slog.Int64("size_bytes", size),
		slog.String("content_type", contentType),
	)

	return meta.info(), nil
}

// Open returns the metadata and a reader over the blob content.
func (s *FSStore) Open(ctx context.Context, id string) (*domain.BlobInfo, io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	meta, err := s.readMeta(id)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(s.contentPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, domain.ErrBlobNotFound
		}
		return nil, nil, fmt.Errorf("failed to open blob %s: %w", id, err)
	}

	return meta.info(), f, nil
}

// Remove deletes the content and its sidecar. Removing an unknown blob
// returns ErrBlobNotFound.
func (s *FSStore) Remove(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(s.contentPath(id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.ErrBlobNotFound
		}
		return fmt.Errorf("failed to remove blob %s: %w", id, err)
	}
	if err := os.Remove(s.metaPath(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove blob metadata %s: %w", id, err)
	}
	return nil
}

// List returns metadata for every stored blob.
func (s *FSStore) List(ctx context.Context) ([]*domain.BlobInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to list blob dir: %w", err)
	}

	var infos []*domain.BlobInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), metaSuffix) {
			continue
		}
		id := strings.TrimSuffix(e.Name(), metaSuffix)
		meta, err := s.readMeta(id)
		if err != nil {
			s.logger.Warn("skipping unreadable blob metadata",
				slog.String("blob_id", id),
				slog.String("error", err.Error()),
			)
			continue
		}
		infos = append(infos, meta.info())
	}

	return infos, nil
}

func (s *FSStore) readMeta(id string) (*blobMeta, error) {
	raw, err := os.ReadFile(s.metaPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to read blob metadata %s: %w", id, err)
	}

	var meta blobMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("failed to decode blob metadata %s: %w", id, err)
	}
	return &meta, nil
}

func (s *FSStore) contentPath(id string) string {
	return filepath.Join(s.root, id)
}

func (s *FSStore) metaPath(id string) string {
	return filepath.Join(s.root, id+metaSuffix)
}

func (m *blobMeta) info() *domain.BlobInfo {
	return &domain.BlobInfo{
		ID:          m.ID,
		SHA256:      m.SHA256,
		Size:        m.Size,
		ContentType: m.ContentType,
		CreatedAt:   m.CreatedAt,
	}
}
