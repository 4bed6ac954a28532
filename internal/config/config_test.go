package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadExecute_Defaults(t *testing.T) {
	flags := pflag.NewFlagSet("execute", pflag.ContinueOnError)
	BindExecuteFlags(flags)
	require.NoError(t, flags.Parse([]string{
		"--command-file=cmd.yaml",
		"--data-directory=/tmp/data",
		"--github-token=tok",
	}))

	cfg, err := LoadExecute(flags)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Concurrency)
	assert.Equal(t, 3, cfg.RetryCount)
	assert.Equal(t, 7, cfg.RenewPeriodInDays)
	assert.Equal(t, 30*time.Second, cfg.PerTaskTimeout)
	assert.Equal(t, 20*time.Second, cfg.Interval)
}

func TestLoadExecute_MissingRequiredFlags(t *testing.T) {
	flags := pflag.NewFlagSet("execute", pflag.ContinueOnError)
	BindExecuteFlags(flags)
	require.NoError(t, flags.Parse(nil))

	_, err := LoadExecute(flags)
	assert.Error(t, err, "expected an error when required flags are missing")
}

func TestLoadExecute_GithubTokenFallsBackToEnv(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "env-token")

	flags := pflag.NewFlagSet("execute", pflag.ContinueOnError)
	BindExecuteFlags(flags)
	require.NoError(t, flags.Parse([]string{
		"--command-file=cmd.yaml",
		"--data-directory=/tmp/data",
	}))

	cfg, err := LoadExecute(flags)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.GithubToken)
}

func TestLoadRequeue_ValidatesRequeueType(t *testing.T) {
	flags := pflag.NewFlagSet("requeue-tasks", pflag.ContinueOnError)
	BindRequeueFlags(flags)
	require.NoError(t, flags.Parse([]string{
		"--data-directory=/tmp/data",
		"--timestamp=2026-01-01-00-00-00",
		"--requeue-type=bogus",
	}))

	_, err := LoadRequeue(flags)
	assert.Error(t, err, "expected an error for an unrecognized requeue type")
}

func TestLoadLatestQueueComplete_RequiresDataDirectory(t *testing.T) {
	flags := pflag.NewFlagSet("latest-queue-complete", pflag.ContinueOnError)
	BindLatestQueueCompleteFlags(flags)
	require.NoError(t, flags.Parse(nil))

	_, err := LoadLatestQueueComplete(flags)
	assert.Error(t, err, "expected an error when --data-directory is missing")
}
