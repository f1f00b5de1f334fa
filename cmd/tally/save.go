package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/tally/internal/settings"
)

var (
	saveAs       string
	saveRemember bool
)

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Rewrite the project file, or save it to a new location",
	Long: `Save commits the project file again, normalizing it and refreshing its
last_modified timestamp. With --as the projects are written to a new file,
leaving the old one untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, s, err := openStore(ctx, false)
		if err != nil {
			return err
		}
		defer store.Discard()

		if saveAs != "" {
			if err := store.SaveAs(ctx, saveAs); err != nil {
				return err
			}
			if saveRemember {
				s.Path = store.Path()
				if err := settings.Save(settingsPath, s); err != nil {
					return err
				}
			}
		} else {
			store.MarkDirty()
			if err := store.FlushNow(ctx); err != nil {
				return err
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Saved %d projects to %s\n", store.Len(), store.Path())
		return store.Close(ctx)
	},
}

func init() {
	rootCmd.AddCommand(saveCmd)
	saveCmd.Flags().StringVar(&saveAs, "as", "", "Write to a new file instead")
	saveCmd.Flags().BoolVar(&saveRemember, "remember", false, "Open the new file by default from now on")
}
