package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"simindex/internal/storage"
	"simindex/internal/wordlist"
)

var importName string

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a word list into the database",
	Long: `Import a plain-text word list (one word per line) as a named dictionary.

Re-importing under the same name replaces the previous contents.

Example:
  simindex import /usr/share/dict/words --name english
  simindex import names.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importName, "name", "", "Dictionary name (default: file name without extension)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	file := args[0]

	absFile, err := filepath.Abs(file)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	name := importName
	if name == "" {
		base := filepath.Base(absFile)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	words, err := wordlist.Load(absFile)
	if err != nil {
		return err
	}
	if len(words) == 0 {
		return fmt.Errorf("no words found in %s", absFile)
	}

	store, err := storage.NewStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	if err := store.SaveDictionary(name, absFile, words); err != nil {
		return fmt.Errorf("failed to save dictionary: %w", err)
	}

	fmt.Printf("Imported %s words into dictionary %q\n", humanize.Comma(int64(len(words))), name)
	return nil
}
