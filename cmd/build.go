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

var buildOut string

var buildCmd = &cobra.Command{
	Use:   "build <dict>",
	Short: "Build a BK-tree from a dictionary and save it to a file",
	Long: `Build a BK-tree over a stored dictionary using edit distance and persist
it as a JSON document. The saved file contains only the tree structure;
querying it later rebinds the same edit-distance metric.

Example:
  simindex build english --out english.tree.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildOut, "out", "tree.json", "Output file for the serialized tree")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	name := args[0]

	store, err := storage.NewStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	words, err := store.Words(name)
	if err != nil {
		return err
	}

	start := time.Now()
	tree := bktree.New(distance.Levenshtein)
	if err := tree.InsertAll(words...); err != nil {
		return fmt.Errorf("failed to build tree: %w", err)
	}
	buildTime := time.Since(start)

	if err := tree.SaveFile(buildOut); err != nil {
		return fmt.Errorf("failed to save tree: %w", err)
	}

	fmt.Printf("Built tree from %q in %v\n", name, buildTime.Round(time.Millisecond))
	fmt.Printf("Words: %s\n", humanize.Comma(int64(tree.Size())))
	fmt.Printf("Depth: %d\n", tree.Depth())
	fmt.Printf("Saved: %s\n", buildOut)
	return nil
}
