package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/tally/internal/platform"
	"github.com/aretw0/tally/internal/settings"
	"github.com/aretw0/tally/pkg/tally"
)

var (
	verbose      bool
	filePath     string
	settingsPath string
	logger       = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tally",
	Short: "A project tracker whose data file is never half-written",
	Long: `Tally keeps a list of projects in a single JSON or YAML file.
Every change is committed atomically: the new content goes to a temp file,
the previous file is kept as a .bak, and only then is the file replaced.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fatal("tally", err)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&filePath, "file", "f", "", "Project file (defaults to the remembered file)")
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "Settings file (defaults to the user config directory)")
}

func loadSettings() (settings.Settings, error) {
	s, err := settings.Load(settingsPath)
	if err != nil {
		return settings.Settings{}, fmt.Errorf("loading settings: %w", err)
	}
	return s, nil
}

// resolveFile picks the project file: --file, then the remembered path, then
// the nearest projects file above the working directory, then the default
// location in the user config directory.
func resolveFile(s settings.Settings) (string, error) {
	if filePath != "" {
		return filePath, nil
	}
	if s.Path != "" {
		return s.Path, nil
	}
	if wd, err := os.Getwd(); err == nil {
		if found, err := platform.FindCanonical(wd); err == nil {
			return found, nil
		}
	}
	return s.CanonicalPath()
}

// openStore opens the project file for one command. Read-only stores never
// create or rewrite the file.
func openStore(ctx context.Context, readOnly bool, extra ...platform.Option) (*tally.Store, settings.Settings, error) {
	s, err := loadSettings()
	if err != nil {
		return nil, s, err
	}
	path, err := resolveFile(s)
	if err != nil {
		return nil, s, err
	}

	opts := []platform.Option{
		platform.WithLogger(logger),
		platform.WithDelay(s.Debounce),
		platform.WithReadOnly(readOnly),
	}
	store, err := platform.Open(ctx, path, append(opts, extra...)...)
	if err != nil {
		return nil, s, fmt.Errorf("opening %s: %w", path, err)
	}
	return store, s, nil
}

// withStore runs fn against a writable store and flushes it on the way out.
func withStore(ctx context.Context, fn func(*tally.Store) error) error {
	store, _, err := openStore(ctx, false)
	if err != nil {
		return err
	}
	if err := fn(store); err != nil {
		store.Discard()
		return err
	}
	if err := store.Close(ctx); err != nil {
		store.Discard()
		return fmt.Errorf("saving %s: %w", store.Path(), err)
	}
	return nil
}
