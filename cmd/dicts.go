package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"simindex/internal/storage"
)

var dictsJSON bool

var dictsCmd = &cobra.Command{
	Use:   "dicts",
	Short: "List stored dictionaries",
	RunE:  runDicts,
}

func init() {
	dictsCmd.Flags().BoolVar(&dictsJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(dictsCmd)
}

func runDicts(cmd *cobra.Command, args []string) error {
	store, err := storage.NewStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	dicts, err := store.Dictionaries()
	if err != nil {
		return fmt.Errorf("failed to list dictionaries: %w", err)
	}

	if dictsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(dicts)
	}

	if len(dicts) == 0 {
		fmt.Println("No dictionaries. Run 'simindex import <file>' to add one.")
		return nil
	}

	for _, d := range dicts {
		fmt.Printf("%-20s %8s words  %s\n", d.Name, humanize.Comma(int64(d.WordCount)), d.Source)
	}
	return nil
}
