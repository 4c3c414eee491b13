package storage

import (
	"io"
	"os"
	"strings"
	"testing"
)

func TestStageAndOpen(t *testing.T) {
	staging, err := NewStaging(t.TempDir())
	if err != nil {
		t.Fatalf("staging setup failed: %v", err)
	}

	staged, err := staging.Stage(strings.NewReader("upload body"), "resume.pdf", "application/pdf")
	if err != nil {
		t.Fatalf("stage failed: %v", err)
	}
	if staged.OriginalName != "resume.pdf" || staged.ContentType != "application/pdf" {
		t.Errorf("metadata mismatch: %+v", staged)
	}

	rc, err := staged.Open()
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	content, _ := io.ReadAll(rc)
	rc.Close()
	if string(content) != "upload body" {
		t.Errorf("content mismatch: %q", content)
	}

	if err := staged.Discard(); err != nil {
		t.Fatalf("discard failed: %v", err)
	}
	if _, err := os.Stat(staged.Path); !os.IsNotExist(err) {
		t.Errorf("expected staged file to be gone, stat err: %v", err)
	}
}

func TestDiscardIdempotent(t *testing.T) {
	staging, err := NewStaging(t.TempDir())
	if err != nil {
		t.Fatalf("staging setup failed: %v", err)
	}

	staged, err := staging.Stage(strings.NewReader("body"), "resume.txt", "text/plain")
	if err != nil {
		t.Fatalf("stage failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := staged.Discard(); err != nil {
			t.Fatalf("discard call %d failed: %v", i+1, err)
		}
	}
}

func TestDiscardMissingFile(t *testing.T) {
	staging, err := NewStaging(t.TempDir())
	if err != nil {
		t.Fatalf("staging setup failed: %v", err)
	}

	staged, err := staging.Stage(strings.NewReader("body"), "resume.txt", "text/plain")
	if err != nil {
		t.Fatalf("stage failed: %v", err)
	}

	// Someone else removed the file first; discard must not complain
	os.Remove(staged.Path)
	if err := staged.Discard(); err != nil {
		t.Fatalf("discard of missing file failed: %v", err)
	}
}
