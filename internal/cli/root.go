package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"chatsearch/config"
	"chatsearch/internal/observability"
)

var (
	cfgFile  string
	cfg      *config.Config
	rootDir  string
	logLevel string
	logger   *observability.Logger
)

var rootCmd = &cobra.Command{
	Use:   "chatsearch",
	Short: "Conversational product search over a local catalog",
	Long: `chatsearch understands short, informal shopping questions, ranks catalog
items against them and composes a reply, remembering the conversation
between turns.

Example usage:
  chatsearch index ./catalog                  # Load catalog files into .chatsearch/catalog.db
  chatsearch ask -q "harga iphone berapa"     # One question, session kept in the database
  chatsearch chat --watch                     # Interactive session, reloads on catalog edits
  chatsearch compare -q "iphone vs samsung"   # Side-by-side comparison
  chatsearch serve                            # HTTP API`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.ApplyEnv(); err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}

		logger = observability.NewLogger(observability.LogConfig{
			Level:       cfg.Logging.Level,
			Format:      cfg.Logging.Format,
			ServiceName: "chatsearch",
		})
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./chatsearch.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
