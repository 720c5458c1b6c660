// Package testutil provides shared test helpers for setting up databases
// and artifact stores.
package testutil

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/starford/dagaz/internal/repository"
	"github.com/starford/dagaz/internal/storage"
)

// TestDB creates a temporary SQLite database with migrations applied. The
// file lives in the test's temp dir and is cleaned up with it.
func TestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "dagaz-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	return db
}

// TestArtifactStore creates a temporary filesystem artifact store.
func TestArtifactStore(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}
