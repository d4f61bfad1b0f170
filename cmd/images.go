package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"simindex/internal/match"
	"simindex/internal/scan"
)

var (
	imagesThreshold int
	imagesWorkers   int
	imagesJSON      bool
)

var imagesCmd = &cobra.Command{
	Use:   "images <folder>",
	Short: "Find near-duplicate images in a folder",
	Long: `Scan a folder recursively for images, compute perceptual hashes, and
report groups of near-duplicates. Images are grouped when their hashes
are within --threshold bits of each other (Hamming distance), so
resized or recompressed copies are still detected.

Example:
  simindex images ./photos
  simindex images /path/to/images --threshold 5`,
	Args: cobra.ExactArgs(1),
	RunE: runImages,
}

func init() {
	imagesCmd.Flags().IntVar(&imagesThreshold, "threshold", 10, "Hamming distance threshold (0-64, lower = stricter)")
	imagesCmd.Flags().IntVar(&imagesWorkers, "workers", 8, "Number of parallel workers for scanning")
	imagesCmd.Flags().BoolVar(&imagesJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(imagesCmd)
}

func runImages(cmd *cobra.Command, args []string) error {
	folder := args[0]

	// Resolve absolute path
	absFolder, err := filepath.Abs(folder)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	// Check folder exists
	info, err := os.Stat(absFolder)
	if err != nil {
		return fmt.Errorf("folder not found: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", absFolder)
	}

	if !imagesJSON {
		fmt.Printf("Scanning: %s\n", absFolder)
		fmt.Printf("Threshold: %d (Hamming distance)\n", imagesThreshold)
		fmt.Printf("Workers: %d\n\n", imagesWorkers)
	}

	// Create scanner with progress reporting
	lastLine := ""
	opts := []scan.Option{scan.WithWorkers(imagesWorkers)}
	if !imagesJSON {
		opts = append(opts, scan.WithProgress(func(scanned, total int, current string) {
			// Clear previous line
			if lastLine != "" {
				fmt.Print("\r" + strings.Repeat(" ", len(lastLine)) + "\r")
			}
			shortPath := current
			if len(shortPath) > 50 {
				shortPath = "..." + shortPath[len(shortPath)-47:]
			}
			lastLine = fmt.Sprintf("Progress: %d/%d  %s", scanned, total, shortPath)
			fmt.Print(lastLine)
		}))
	}

	s := scan.NewScanner(opts...)
	images, err := s.ScanFolder(absFolder)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	// Clear progress line
	if lastLine != "" {
		fmt.Print("\r" + strings.Repeat(" ", len(lastLine)) + "\r")
	}

	if len(images) == 0 {
		if !imagesJSON {
			fmt.Println("No images found.")
		}
		return nil
	}

	m := match.NewPerceptualMatcher(imagesThreshold)
	groups, err := m.FindGroups(images)
	if err != nil {
		return fmt.Errorf("failed to group images: %w", err)
	}

	if imagesJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(groups)
	}

	fmt.Printf("Scanned: %d images\n\n", len(images))

	if len(groups) == 0 {
		fmt.Println("No near-duplicates found.")
		return nil
	}

	duplicates := 0
	for _, group := range groups {
		fmt.Printf("Group %d (%d images):\n", group.ID, len(group.Images))
		for _, img := range group.Images {
			fmt.Printf("  %s  (%dx%d, %s)\n", img.Path, img.Width, img.Height, img.Format)
		}
		fmt.Println()
		duplicates += len(group.Images) - 1
	}

	fmt.Println("=== Scan Complete ===")
	fmt.Printf("Total images:     %d\n", len(images))
	fmt.Printf("Duplicate groups: %d\n", len(groups))
	fmt.Printf("Duplicates found: %d\n", duplicates)
	return nil
}
