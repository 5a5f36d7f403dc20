// Package screenshot implements the C7 Screenshot Store: PNG persistence
// under a configured directory, and a background age-based cleanup sweep.
//
// Grounded in original_source/src/services/screenshot.rs for the save/
// cleanup algorithm; google/uuid supplies filename uniqueness the way the
// original uses uuid::Uuid::new_v4.
package screenshot

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/use-agent/webloader/models"
)

// Store persists and serves screenshot PNGs under a directory.
type Store struct {
	dir  string
	stop chan struct{}
}

// New constructs a Store rooted at dir, creating it if missing.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, models.NewAppError(models.ErrScreenshotError, "failed to create screenshot directory", err)
	}
	return &Store{dir: dir, stop: make(chan struct{})}, nil
}

// Close stops any running cleanup goroutine.
func (s *Store) Close() { close(s.stop) }

// Save writes data as a new PNG named from a sanitized prefix of url plus a
// UUID suffix, returning its public "/screenshots/{name}" URL path.
func (s *Store) Save(data []byte, url string) (string, error) {
	filename := generateFilename(url)
	path := filepath.Join(s.dir, filename)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", models.NewAppError(models.ErrScreenshotError, "failed to save screenshot", err)
	}
	return "/screenshots/" + filename, nil
}

func generateFilename(url string) string {
	var b strings.Builder
	for _, c := range url {
		if b.Len() >= 50 {
			break
		}
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_' {
			b.WriteRune(c)
		}
	}
	return b.String() + "_" + uuid.NewString() + ".png"
}

// Get reads a screenshot by its stored filename (not full path).
func (s *Store) Get(filename string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, filename))
	if err != nil {
		return nil, models.NewAppError(models.ErrScreenshotError, "failed to read screenshot", err)
	}
	return data, nil
}

// Delete removes a screenshot by filename, succeeding if it is already gone.
func (s *Store) Delete(filename string) error {
	path := filepath.Join(s.dir, filename)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := os.Remove(path); err != nil {
		return models.NewAppError(models.ErrScreenshotError, "failed to delete screenshot", err)
	}
	return nil
}

// CleanupOld deletes files whose modification-time age exceeds maxAge,
// returning the count removed.
func (s *Store) CleanupOld(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, models.NewAppError(models.ErrScreenshotError, "failed to read screenshot directory", err)
	}

	deleted := 0
	now := time.Now()
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) > maxAge {
			if err := os.Remove(filepath.Join(s.dir, entry.Name())); err == nil {
				deleted++
			}
		}
	}
	return deleted, nil
}

// StartCleanupLoop runs CleanupOld once an hour until Close is called.
func (s *Store) StartCleanupLoop(maxAge time.Duration) {
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				_, _ = s.CleanupOld(maxAge)
			}
		}
	}()
}
