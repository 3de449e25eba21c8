package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suykerbuyk/devflow/internal/completion"
	"github.com/suykerbuyk/devflow/internal/config"
	"github.com/suykerbuyk/devflow/internal/history"
	"github.com/suykerbuyk/devflow/internal/logging"
	"github.com/suykerbuyk/devflow/internal/render"
)

const version = "0.1.0"

var (
	// Global flags
	cfgFile string
	verbose bool
	plain   bool

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "devflow",
	Short: "DevFlow IA - describe what you want, get code back",
	Long: `devflow sends a natural-language description to a hosted language model
and shows the reply with headings, bold text and highlighted code blocks.

Run without arguments to start an interactive chat.

Configuration: ~/.config/devflow/config.toml (devflow init writes one).
The API key is read from the variable named by provider.api_key_env
(OPENROUTER_API_KEY by default); a .env file in the working directory is
loaded first.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		if cfgFile != "" {
			cfg, err = config.LoadFile(cfgFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return err
		}

		logger, err = logging.New(cfg.Log.Level, cfg.Log.Path, verbose)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runChat,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default: ~/.config/devflow/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&plain, "plain", false, "Disable colors and highlighting")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(segmentCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "devflow:", err)
		os.Exit(1)
	}
}

func newCompleter(c config.Config) (*completion.Client, error) {
	return completion.New(c.Provider, completion.WithLogger(logger))
}

// openHistory returns nil when history is disabled.
func openHistory(c config.Config) (*history.Store, error) {
	if !c.History.Enabled {
		return nil, nil
	}
	return history.Open(c.History.Path, logger)
}

func newTerminal() *render.Terminal {
	width := 0
	if cols, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil {
		width = cols
	}
	return render.NewTerminal(width, plain || os.Getenv("NO_COLOR") != "")
}
