package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"simindex/internal/bktree"
	"simindex/internal/distance"
	"simindex/internal/storage"
)

var (
	benchDict      string
	benchThreshold int
)

var benchCmd = &cobra.Command{
	Use:   "bench <term>",
	Short: "Compare tree search against brute force",
	Long: `Time a BK-tree search against a brute-force scan over the same
dictionary. Both must return the same matches; the tree gets there
without computing the distance to every word.

Example:
  simindex bench boook --dict english --threshold 1`,
	Args: cobra.ExactArgs(1),
	RunE: runBench,
}

func init() {
	benchCmd.Flags().StringVar(&benchDict, "dict", "", "Dictionary to benchmark against (required)")
	benchCmd.Flags().IntVar(&benchThreshold, "threshold", 2, "Maximum edit distance")
	benchCmd.MarkFlagRequired("dict")
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	term := args[0]

	store, err := storage.NewStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	words, err := store.Words(benchDict)
	if err != nil {
		return err
	}

	fmt.Printf("Dictionary: %s (%s words)\n", benchDict, humanize.Comma(int64(len(words))))
	fmt.Printf("Term: %q  Threshold: %d\n\n", term, benchThreshold)

	start := time.Now()
	tree := bktree.New(distance.Levenshtein)
	if err := tree.InsertAll(words...); err != nil {
		return fmt.Errorf("failed to build tree: %w", err)
	}
	buildTime := time.Since(start)

	start = time.Now()
	treeResults, err := tree.Find(term, benchThreshold)
	if err != nil {
		return fmt.Errorf("tree search failed: %w", err)
	}
	treeTime := time.Since(start)

	start = time.Now()
	bruteResults := bktree.BruteForce(distance.Levenshtein, words, term, benchThreshold)
	bruteTime := time.Since(start)

	fmt.Printf("Tree build:   %v\n", buildTime)
	fmt.Printf("Tree search:  %v  (%d matches)\n", treeTime, len(treeResults))
	fmt.Printf("Brute force:  %v  (%d matches)\n", bruteTime, len(bruteResults))

	if len(treeResults) != len(bruteResults) {
		return fmt.Errorf("result mismatch: tree found %d, brute force found %d",
			len(treeResults), len(bruteResults))
	}

	if treeTime > 0 {
		fmt.Printf("\nSpeedup: %.1fx\n", float64(bruteTime)/float64(treeTime))
	}
	return nil
}
