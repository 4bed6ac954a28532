package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cklxx/scoutqueue/internal/clock"
	"github.com/cklxx/scoutqueue/internal/config"
	"github.com/cklxx/scoutqueue/internal/runner"
)

func newRequeueTasksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requeue-tasks",
		Short: "Re-admit a past run's errored (or non-critical-errored) tasks into unresolved.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequeueTasks(cmd)
		},
	}
	config.BindRequeueFlags(cmd.Flags())
	return cmd
}

func runRequeueTasks(cmd *cobra.Command) error {
	cfg, err := config.LoadRequeue(cmd.Flags())
	if err != nil {
		return err
	}

	state, err := runner.Requeue(cfg.DataDirectory, cfg.Timestamp, runner.RequeueType(cfg.RequeueType), clock.UUIDGenerator{})
	if err != nil {
		return fmt.Errorf("requeue-tasks: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "run %s now has %d unresolved task(s)\n", cfg.Timestamp, len(state.Unresolved))
	return nil
}
