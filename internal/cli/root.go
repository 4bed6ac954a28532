// Package cli wires the three spec.md §6 subcommands onto a cobra
// root command: execute, latest-queue-complete, requeue-tasks.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the scoutqueue root command with all three
// subcommands attached.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "scoutqueue",
		Short:         "A resumable, rate-limit-aware search crawler.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(newExecuteCommand())
	root.AddCommand(newLatestQueueCompleteCommand())
	root.AddCommand(newRequeueTasksCommand())
	return root
}
