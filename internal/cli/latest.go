package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cklxx/scoutqueue/internal/config"
	"github.com/cklxx/scoutqueue/internal/store"
)

func newLatestQueueCompleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "latest-queue-complete",
		Short: "Print true or false depending on whether the latest run has completed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLatestQueueComplete(cmd)
		},
	}
	config.BindLatestQueueCompleteFlags(cmd.Flags())
	return cmd
}

func runLatestQueueComplete(cmd *cobra.Command) error {
	cfg, err := config.LoadLatestQueueComplete(cmd.Flags())
	if err != nil {
		return err
	}

	latest, found, err := store.LatestRunDir(cfg.DataDirectory)
	if err != nil {
		return fmt.Errorf("latest-queue-complete: %w", err)
	}
	if !found {
		fmt.Fprintln(cmd.OutOrStdout(), "true")
		return nil
	}

	state, err := store.ReadState(cfg.DataDirectory, latest)
	if err != nil {
		return fmt.Errorf("latest-queue-complete: %w", err)
	}

	if state.IsComplete() {
		fmt.Fprintln(cmd.OutOrStdout(), "true")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "false")
	}
	return nil
}
