package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/tally/pkg/core"
)

var (
	listJSON     bool
	filterStatus string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if filterStatus != "" && !core.Status(filterStatus).Valid() {
			return fmt.Errorf("unknown status %q", filterStatus)
		}

		var all []core.Record
		store, s, err := openStore(cmd.Context(), true)
		switch {
		case errors.Is(err, core.ErrNotFound):
			// Nothing saved yet.
		case err != nil:
			return err
		default:
			defer store.Discard()
			all = store.All()
		}

		var filtered []core.Record
		for _, r := range all {
			if filterStatus != "" && r.Status != core.Status(filterStatus) {
				continue
			}
			filtered = append(filtered, r)
		}

		if listJSON {
			if filtered == nil {
				filtered = []core.Record{}
			}
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(filtered)
		}

		newPrinter(cmd.OutOrStdout(), s.Theme).list(filtered)
		return nil
	},
}

var (
	showJSON bool
)

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, s, err := openStore(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer store.Discard()

		r, ok := store.Find(args[0])
		if !ok {
			return fmt.Errorf("%w: %s", core.ErrRecordNotFound, args[0])
		}

		if showJSON {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(r)
		}
		newPrinter(cmd.OutOrStdout(), s.Theme).show(r)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVar(&filterStatus, "status", "", "Only list projects with this status")

	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output in JSON format")
}
