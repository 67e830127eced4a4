package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/csheth/latexr/internal/capture"
	"github.com/csheth/latexr/internal/filename"
)

// Refs hands out temporary files for captured blobs so they can be opened
// by other programs, and removes them when released. Every path returned
// by Create stays valid until Revoke or RevokeAll.
type Refs struct {
	mu    sync.Mutex
	dir   string
	seq   int
	live  map[string]struct{}
	mkdir func() (string, error)
}

// NewRefs returns a registry creating files under a fresh temporary
// directory (made on first use).
func NewRefs() *Refs {
	return &Refs{
		live:  map[string]struct{}{},
		mkdir: func() (string, error) { return os.MkdirTemp("", "latexr-") },
	}
}

// NewRefsIn returns a registry creating files under dir.
func NewRefsIn(dir string) *Refs {
	return &Refs{
		live: map[string]struct{}{},
		mkdir: func() (string, error) {
			return dir, os.MkdirAll(dir, 0o755)
		},
	}
}

// Create writes blob to a new temporary file and returns its path.
func (r *Refs) Create(blob capture.Blob) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dir == "" {
		dir, err := r.mkdir()
		if err != nil {
			return "", fmt.Errorf("export: temp dir: %w", err)
		}
		r.dir = dir
	}
	r.seq++
	path := filepath.Join(r.dir, fmt.Sprintf("preview-%d.%s", r.seq, filename.Extension(blob.Type)))
	if err := os.WriteFile(path, blob.Data, 0o600); err != nil {
		return "", fmt.Errorf("export: write preview: %w", err)
	}
	r.live[path] = struct{}{}
	return path, nil
}

// Revoke deletes the file behind path. Unknown paths are ignored.
func (r *Refs) Revoke(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.live[path]; !ok {
		return nil
	}
	delete(r.live, path)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("export: revoke %s: %w", path, err)
	}
	return nil
}

// RevokeAll deletes every live file.
func (r *Refs) RevokeAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for path := range r.live {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = fmt.Errorf("export: revoke %s: %w", path, err)
		}
		delete(r.live, path)
	}
	return firstErr
}

// Live returns the number of unreleased files.
func (r *Refs) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}
