package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/tally/pkg/tally"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(store *tally.Store) error {
			if err := store.Remove(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Project deleted: %s\n", args[0])
			return nil
		})
	},
}

var duplicateCmd = &cobra.Command{
	Use:   "duplicate [id]",
	Short: "Copy a project under a new id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(store *tally.Store) error {
			dup, err := store.Duplicate(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dup.ID)
			return nil
		})
	},
}

var startCmd = &cobra.Command{
	Use:   "start [id]",
	Short: "Mark a project in progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(store *tally.Store) error {
			return store.Start(args[0])
		})
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete [id]",
	Short: "Mark a project completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(store *tally.Store) error {
			return store.Complete(args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd, duplicateCmd, startCmd, completeCmd)
}
