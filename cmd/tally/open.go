package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/tally/internal/platform"
	"github.com/aretw0/tally/internal/settings"
)

var openCmd = &cobra.Command{
	Use:   "open [path]",
	Short: "Use a project file by default from now on",
	Long:  `Open remembers the given file in the settings, creating it with sample projects if it does not exist.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := loadSettings()
		if err != nil {
			return err
		}

		abs, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		store, err := platform.Open(ctx, abs, platform.WithLogger(logger), platform.WithDelay(s.Debounce))
		if err != nil {
			return err
		}
		if err := store.Close(ctx); err != nil {
			store.Discard()
			return err
		}

		s.Path = store.Path()
		if err := settings.Save(settingsPath, s); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Using %s (%d projects)\n", s.Path, store.Len())
		return nil
	},
}

var themeCmd = &cobra.Command{
	Use:       "theme [light|dark]",
	Short:     "Remember the colour theme",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{settings.ThemeLight, settings.ThemeDark},
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings()
		if err != nil {
			return err
		}
		s.Theme = args[0]
		if err := settings.Save(settingsPath, s); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Theme set to %s\n", s.Theme)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(openCmd, themeCmd)
}
