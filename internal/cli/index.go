package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"chatsearch/config"
	"chatsearch/internal/adapter/fs"
	"chatsearch/internal/adapter/store"
	"chatsearch/internal/usecase"
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Load catalog files into the catalog database",
	Long: `Read every catalog file (YAML or JSON) under the given directory and store
the items in .chatsearch/catalog.db. Items that disappeared from the files
are removed, unless some file could not be read.

Examples:
  chatsearch index .               # Index current directory
  chatsearch index ./catalog       # Index a specific directory`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	path := GetRootDir()
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	cfg := GetConfig()

	if err := config.EnsureDataDir(GetRootDir()); err != nil {
		return fmt.Errorf("failed to create .chatsearch directory: %w", err)
	}

	dbPath := config.CatalogDBPath(GetRootDir())
	st, err := store.NewBoltStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open catalog store: %w", err)
	}
	defer st.Close()

	if err := prepareStore(st, cfg); err != nil {
		return err
	}

	indexUC := usecase.NewIndexUseCase(st, fs.NewWalker(nil, nil))

	fmt.Printf("Scanning %s...\n", path)

	var bar *progressbar.ProgressBar
	var barMu sync.Mutex
	var startTime time.Time

	progressCallback := func(processed, total int, currentFile string) {
		barMu.Lock()
		defer barMu.Unlock()

		if bar == nil {
			startTime = time.Now()
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Reading[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}

		_ = bar.Set(processed)

		if processed > 0 {
			rate := float64(processed) / time.Since(startTime).Seconds()
			if rate > 0 {
				eta := time.Duration(float64(total-processed)/rate) * time.Second
				bar.Describe(fmt.Sprintf("[cyan]Reading[reset] ETA: %s", formatDuration(eta)))
			}
		}
	}

	result, err := indexUC.Index(path, progressCallback)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	if err := st.Migrate(cfg); err != nil {
		return fmt.Errorf("failed to update schema info: %w", err)
	}

	fmt.Printf("\nIndexing complete:\n")
	fmt.Printf("  Files read:     %d\n", result.FilesRead)
	fmt.Printf("  Files failed:   %d\n", result.FilesFailed)
	fmt.Printf("  Items stored:   %d\n", result.ItemsStored)
	fmt.Printf("  Items deleted:  %d (removed)\n", result.ItemsDeleted)

	if len(result.Errors) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, e := range result.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}

	fmt.Printf("\nCatalog stored at: %s\n", dbPath)
	return nil
}

// prepareStore clears or migrates the database when its schema or the
// configuration that shaped it has changed.
func prepareStore(st *store.BoltStore, cfg *config.Config) error {
	migrationResult, err := st.CheckMigration(cfg)
	if err != nil {
		return fmt.Errorf("failed to check migration: %w", err)
	}

	if migrationResult.NeedsRebuild {
		fmt.Printf("Catalog rebuild required: %s\n", migrationResult.Reason)
		fmt.Println("Clearing existing catalog...")
		if err := st.Clear(); err != nil {
			return fmt.Errorf("failed to clear catalog: %w", err)
		}
	} else if migrationResult.NeedsMigration {
		fmt.Printf("Running schema migration: %s\n", migrationResult.Reason)
		if err := st.Migrate(cfg); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
