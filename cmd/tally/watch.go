package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/tally/internal/platform"
	"github.com/aretw0/tally/pkg/adapters/lifecycle"
	"github.com/aretw0/tally/pkg/core"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print store events, including edits made to the file by other programs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, s, err := openStore(ctx, true, platform.WithWatch(true))
		if err != nil {
			return err
		}
		defer store.Discard()

		src := lifecycle.NewSource(store.Events(64))
		if err := src.Start(ctx); err != nil {
			return err
		}

		logger.Info("watching", "path", store.Path())
		p := newPrinter(cmd.OutOrStdout(), s.Theme)
		for e := range src.Events() {
			if ev, ok := e.(core.Event); ok {
				p.event(ev)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
