// Package scan walks folders and hashes the images it finds.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	"simindex/internal/hash"
	"simindex/internal/models"
)

// Scanner scans folders for images and computes hashes
type Scanner struct {
	hasher     *hash.Hasher
	workers    int
	progressFn func(scanned, total int, current string)
}

// Option configures a Scanner
type Option func(*Scanner)

// WithWorkers sets the number of parallel workers
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithProgress sets a progress callback
func WithProgress(fn func(scanned, total int, current string)) Option {
	return func(s *Scanner) {
		s.progressFn = fn
	}
}

// NewScanner creates a new Scanner
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		hasher:  hash.NewHasher(),
		workers: 8,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScanFolder scans a folder recursively for images and returns their info,
// sorted by path. Files that fail to decode are skipped.
func (s *Scanner) ScanFolder(folder string) ([]*models.ImageInfo, error) {
	// First, collect all image paths
	var paths []string
	err := filepath.Walk(folder, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if info.IsDir() {
			return nil
		}
		if hash.IsSupportedImage(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk folder: %w", err)
	}

	if len(paths) == 0 {
		return nil, nil
	}

	// Process images in parallel
	var (
		results   []*models.ImageInfo
		resultsMu sync.Mutex
		wg        sync.WaitGroup
		scanned   int64
		total     = len(paths)
	)

	work := make(chan string, len(paths))
	for _, p := range paths {
		work <- p
	}
	close(work)

	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range work {
				info, err := s.hasher.HashFile(path)
				if err != nil {
					// Skip failed images silently
					atomic.AddInt64(&scanned, 1)
					continue
				}

				resultsMu.Lock()
				results = append(results, info)
				resultsMu.Unlock()

				n := atomic.AddInt64(&scanned, 1)
				if s.progressFn != nil {
					s.progressFn(int(n), total, path)
				}
			}
		}()
	}

	wg.Wait()

	// Worker completion order is nondeterministic
	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})

	return results, nil
}
