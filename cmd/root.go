package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:   "simindex",
	Short: "Fast similarity search over words and images",
	Long: `simindex indexes items in a BK-tree so that approximate matches can be
found without scanning every item. Words are matched by edit distance,
images by the Hamming distance between their perceptual hashes.

Example usage:
  simindex import words.txt --name english   # Store a word list
  simindex query boook --dict english        # Find close matches
  simindex build english --out tree.json     # Persist the index
  simindex query boook --tree tree.json      # Query a persisted index
  simindex bench boook --dict english        # Compare against brute force
  simindex images ./photos                   # Find near-duplicate images`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Default database path
	homeDir, _ := os.UserHomeDir()
	defaultDB := filepath.Join(homeDir, ".simindex", "simindex.db")

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "Path to SQLite database")
}
