package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"simindex/internal/bktree"
	"simindex/internal/distance"
	"simindex/internal/storage"
)

var (
	queryTree      string
	queryDict      string
	queryThreshold int
	queryJSON      bool
)

var queryCmd = &cobra.Command{
	Use:   "query <term>",
	Short: "Find words within an edit distance of a term",
	Long: `Query a BK-tree for all words within --threshold edit distance of the
given term. The tree is either loaded from a file written by 'build'
(--tree) or built on the fly from a stored dictionary (--dict).

Example:
  simindex query boook --dict english --threshold 1
  simindex query boook --tree english.tree.json`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryTree, "tree", "", "Path to a serialized tree file")
	queryCmd.Flags().StringVar(&queryDict, "dict", "", "Dictionary to build the tree from")
	queryCmd.Flags().IntVar(&queryThreshold, "threshold", 2, "Maximum edit distance")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	term := args[0]

	tree, err := loadQueryTree()
	if err != nil {
		return err
	}

	start := time.Now()
	results, err := tree.Find(term, queryThreshold)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	elapsed := time.Since(start)

	// Display closest matches first
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	if queryDict != "" {
		recordQuery(term, len(results), elapsed)
	}

	if queryJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Printf("No matches within distance %d\n", queryThreshold)
		return nil
	}

	for _, r := range results {
		fmt.Printf("%3d  %s\n", r.Distance, r.Item)
	}
	fmt.Printf("\n%d matches in %v\n", len(results), elapsed.Round(time.Microsecond))
	return nil
}

// loadQueryTree loads a persisted tree or builds one from a dictionary.
func loadQueryTree() (*bktree.Tree[string], error) {
	switch {
	case queryTree != "" && queryDict != "":
		return nil, fmt.Errorf("use either --tree or --dict, not both")
	case queryTree != "":
		tree, err := bktree.LoadFile(queryTree, distance.Levenshtein)
		if err != nil {
			return nil, fmt.Errorf("failed to load tree: %w", err)
		}
		return tree, nil
	case queryDict != "":
		store, err := storage.NewStorage(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		defer store.Close()

		words, err := store.Words(queryDict)
		if err != nil {
			return nil, err
		}
		tree := bktree.New(distance.Levenshtein)
		if err := tree.InsertAll(words...); err != nil {
			return nil, fmt.Errorf("failed to build tree: %w", err)
		}
		return tree, nil
	default:
		return nil, fmt.Errorf("specify a tree file (--tree) or a dictionary (--dict)")
	}
}

// recordQuery stores the query in history; failures are not fatal
func recordQuery(term string, matches int, elapsed time.Duration) {
	store, err := storage.NewStorage(dbPath)
	if err != nil {
		return
	}
	defer store.Close()
	store.RecordQuery(queryDict, term, queryThreshold, matches, elapsed)
}
