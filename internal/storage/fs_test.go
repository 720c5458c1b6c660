package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/dagaz/internal/apperr"
)

func tempStore(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestPutAndGet(t *testing.T) {
	s := tempStore(t)
	content := []byte(`{"singletonId":"run-1"}`)
	if err := s.Put("run-1", content); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get("run-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestGetMissingArtifact(t *testing.T) {
	s := tempStore(t)
	if _, err := s.Get("never-dispatched"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestPutCreatesSubdirs(t *testing.T) {
	s := tempStore(t)
	if err := s.Put("host-1/2024-01-01/run-1", []byte("deep")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get("host-1/2024-01-01/run-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "deep" {
		t.Errorf("content = %q", got)
	}
}

func TestDelete(t *testing.T) {
	s := tempStore(t)
	_ = s.Put("run-gone", []byte("bye"))
	if err := s.Delete("run-gone"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get("run-gone"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound after delete", err)
	}
	if err := s.Delete("run-gone"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound for double delete", err)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempStore(t)

	cases := []string{
		"../../etc/passwd",
		"../outside",
		"/etc/shadow",
		"",
	}
	for _, key := range cases {
		if _, err := s.Get(key); err == nil {
			t.Errorf("expected error for key %q", key)
		}
		if err := s.Put(key, []byte("x")); err == nil {
			t.Errorf("expected error for put with key %q", key)
		}
	}
}

func TestAtomicPutNoCorruption(t *testing.T) {
	// The rename is atomic on POSIX; a replayed Put must fully replace the
	// artifact and leave no temp files behind.
	s := tempStore(t)
	_ = s.Put("atomic", []byte("original content"))

	updated := []byte("updated content")
	if err := s.Put("atomic", updated); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, _ := s.Get("atomic")
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	matches, _ := filepath.Glob(filepath.Join(s.root, ".dagaz-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS("/tmp/dagaz-does-not-exist-" + t.Name())
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "dagaz-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
