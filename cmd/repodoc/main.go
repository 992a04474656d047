// cmd/repodoc/main.go
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/julianshen/repodoc/internal/config"

	// Register providers via init() side effects.
	_ "github.com/julianshen/repodoc/internal/provider/anthropic"
	_ "github.com/julianshen/repodoc/internal/provider/openai"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	modelFlag  string
	verbose    bool
}

func versionString() string {
	return fmt.Sprintf("repodoc %s (commit: %s, built: %s)", version, commit, date)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "repodoc",
		Short: "Generate technical and functional specifications from a repository",
		Long: `repodoc ingests a GitHub, GitLab or local repository, runs a staged
LLM analysis over its most relevant files and produces a technical and a
functional specification, optionally delivered by email.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file (default ~/.config/repodoc/config.toml)")
	rootCmd.PersistentFlags().StringVar(&opts.modelFlag, "model", "", "override model name")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
		},
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(generateCmd(opts))
	rootCmd.AddCommand(serveCmd(opts))
	rootCmd.AddCommand(configCmd(opts))
	return rootCmd
}

// resolveConfigPath returns --config or the default location.
func (o *rootOptions) resolveConfigPath() (string, error) {
	if o.configPath != "" {
		return o.configPath, nil
	}
	return config.DefaultPath()
}

// loadConfig loads and validates the config file, applying flag overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	path, err := o.resolveConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if o.modelFlag != "" {
		cfg.Provider.Model = o.modelFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// newLogger builds the process logger. --verbose wins over log.level.
func (o *rootOptions) newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg != nil {
		if l, err := config.ParseLevel(cfg.Log.Level); err == nil {
			level = l
		}
	}
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
