package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aretw0/tally/internal/platform"
)

var (
	snapshotText    string
	snapshotCurrent bool
	snapshotMatch   string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save a timestamped copy of some text next to the project file",
	Long: `Snapshot writes a new file under .history/ next to the project file.
The content is --text, or stdin when --text is not given. With --current the
projects themselves are written. Snapshots never replace each other and never
touch the project file or its backup.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer store.Discard()

		var path string
		switch {
		case snapshotCurrent:
			path, err = store.SnapshotCurrent()
		case cmd.Flags().Changed("text"):
			path, err = store.Snapshot(snapshotText)
		default:
			data, readErr := io.ReadAll(cmd.InOrStdin())
			if readErr != nil {
				return fmt.Errorf("reading stdin: %w", readErr)
			}
			path, err = store.Snapshot(string(data))
		}
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List snapshots of the project file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings()
		if err != nil {
			return err
		}
		path, err := resolveFile(s)
		if err != nil {
			return err
		}
		repo, err := platform.NewRepository(path, platform.WithLogger(logger), platform.WithReadOnly(true))
		if err != nil {
			return err
		}

		paths, err := repo.Snapshots().List(snapshotMatch)
		if err != nil {
			return err
		}
		p := newPrinter(cmd.OutOrStdout(), s.Theme)
		if len(paths) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), p.dim("no snapshots"))
			return nil
		}
		for _, sp := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), sp)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.Flags().StringVar(&snapshotText, "text", "", "Text to snapshot instead of stdin")
	snapshotCmd.Flags().BoolVar(&snapshotCurrent, "current", false, "Snapshot the projects instead of text")

	rootCmd.AddCommand(snapshotsCmd)
	snapshotsCmd.Flags().StringVar(&snapshotMatch, "match", "", "Glob on snapshot file names, e.g. 'projects-202508*'")
}
