package scan

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func writeTestImage(t *testing.T, path string, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
}

func TestScanFolder(t *testing.T) {
	dir := t.TempDir()

	writeTestImage(t, filepath.Join(dir, "a.png"), color.White)
	writeTestImage(t, filepath.Join(dir, "b.png"), color.Black)

	// Nested folder
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	writeTestImage(t, filepath.Join(sub, "c.png"), color.White)

	// Non-image files are ignored
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("text"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	// Broken image files are skipped
	if err := os.WriteFile(filepath.Join(dir, "broken.png"), []byte("nope"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	s := NewScanner(WithWorkers(2))
	results, err := s.ScanFolder(dir)
	if err != nil {
		t.Fatalf("ScanFolder failed: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("expected 3 images, got %d", len(results))
	}
	// Sorted by path
	for i := 1; i < len(results); i++ {
		if results[i-1].Path >= results[i].Path {
			t.Errorf("results not sorted by path: %q before %q", results[i-1].Path, results[i].Path)
		}
	}
}

func TestScanFolder_Empty(t *testing.T) {
	s := NewScanner()
	results, err := s.ScanFolder(t.TempDir())
	if err != nil {
		t.Fatalf("ScanFolder failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestScanFolder_Progress(t *testing.T) {
	dir := t.TempDir()
	writeTestImage(t, filepath.Join(dir, "a.png"), color.White)
	writeTestImage(t, filepath.Join(dir, "b.png"), color.Black)

	var mu sync.Mutex
	calls := 0
	s := NewScanner(
		WithWorkers(1),
		WithProgress(func(scanned, total int, current string) {
			mu.Lock()
			calls++
			if total != 2 {
				t.Errorf("expected total 2, got %d", total)
			}
			mu.Unlock()
		}),
	)

	if _, err := s.ScanFolder(dir); err != nil {
		t.Fatalf("ScanFolder failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 progress calls, got %d", calls)
	}
}
