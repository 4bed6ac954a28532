// Package config binds each CLI subcommand's flags (and, for
// --github-token, an environment fallback) into typed structs via
// spf13/viper over a spf13/pflag flag set.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ExecuteConfig is the fully-resolved configuration for the execute
// subcommand (spec.md §6).
type ExecuteConfig struct {
	CommandFile          string
	DataDirectory        string
	GithubToken          string
	RenewPeriodInDays    int
	Concurrency          int
	PerTaskTimeout       time.Duration
	RateLimitStopPercent int
	IntervalCap          int
	Interval             time.Duration
	RetryCount           int
	RecordHTTPCalls      bool
	LogLevel             string
	MaxRunTimeInMinutes  int
	ReportPeriodInMs     int
	MetricsAddr          string
}

// BindExecuteFlags registers every execute flag, with the defaults
// spec.md §6 lists, on flags.
func BindExecuteFlags(flags *pflag.FlagSet) {
	flags.String("command-file", "", "path to the YAML file describing the crawl range and command (required)")
	flags.String("data-directory", "", "run-directory root (required)")
	flags.String("github-token", "", "bearer token for the configured transport (required; falls back to GITHUB_TOKEN)")
	flags.Int("renew-period-in-days", 7, "days after completion before a fresh run is seeded")
	flags.Int("concurrency", 6, "maximum in-flight task executions")
	flags.Int("per-task-timeout-in-ms", 30000, "per-task execution timeout in milliseconds")
	flags.Int("rate-limit-stop-percent", 10, "remaining-quota percentage below which the queue aborts")
	flags.Int("interval-cap", 4, "maximum task starts per interval")
	flags.Int("interval-in-ms", 20000, "admission interval in milliseconds")
	flags.Int("retry-count", 3, "retries before a failing task is narrowed down or left errored")
	flags.Bool("record-http-calls", false, "log every transport call at debug level")
	flags.String("log-level", "info", "debug, info, warn, or error")
	flags.Int("max-run-time-in-minutes", 60, "wall-clock cap for one execute invocation")
	flags.Int("report-period-in-ms", 5000, "periodic queue-state log interval; 0 disables it")
	flags.String("metrics-addr", "", "address to serve /metrics on; empty disables metrics")
}

// LoadExecute resolves ExecuteConfig from flags (and the environment,
// for --github-token).
func LoadExecute(flags *pflag.FlagSet) (ExecuteConfig, error) {
	v := viper.New()
	if err := v.BindPFlags(flags); err != nil {
		return ExecuteConfig{}, fmt.Errorf("config: binding execute flags: %w", err)
	}
	if err := v.BindEnv("github-token", "GITHUB_TOKEN"); err != nil {
		return ExecuteConfig{}, fmt.Errorf("config: binding GITHUB_TOKEN: %w", err)
	}

	cfg := ExecuteConfig{
		CommandFile:          v.GetString("command-file"),
		DataDirectory:        v.GetString("data-directory"),
		GithubToken:          v.GetString("github-token"),
		RenewPeriodInDays:    v.GetInt("renew-period-in-days"),
		Concurrency:          v.GetInt("concurrency"),
		PerTaskTimeout:       time.Duration(v.GetInt("per-task-timeout-in-ms")) * time.Millisecond,
		RateLimitStopPercent: v.GetInt("rate-limit-stop-percent"),
		IntervalCap:          v.GetInt("interval-cap"),
		Interval:             time.Duration(v.GetInt("interval-in-ms")) * time.Millisecond,
		RetryCount:           v.GetInt("retry-count"),
		RecordHTTPCalls:      v.GetBool("record-http-calls"),
		LogLevel:             v.GetString("log-level"),
		MaxRunTimeInMinutes:  v.GetInt("max-run-time-in-minutes"),
		ReportPeriodInMs:     v.GetInt("report-period-in-ms"),
		MetricsAddr:          v.GetString("metrics-addr"),
	}

	if cfg.CommandFile == "" {
		return cfg, fmt.Errorf("config: --command-file is required")
	}
	if cfg.DataDirectory == "" {
		return cfg, fmt.Errorf("config: --data-directory is required")
	}
	if cfg.GithubToken == "" {
		return cfg, fmt.Errorf("config: --github-token is required (or set GITHUB_TOKEN)")
	}
	return cfg, nil
}

// LatestQueueCompleteConfig is the latest-queue-complete subcommand's
// configuration.
type LatestQueueCompleteConfig struct {
	DataDirectory string
}

// BindLatestQueueCompleteFlags registers that subcommand's flags.
func BindLatestQueueCompleteFlags(flags *pflag.FlagSet) {
	flags.String("data-directory", "", "run-directory root (required)")
}

// LoadLatestQueueComplete resolves LatestQueueCompleteConfig from flags.
func LoadLatestQueueComplete(flags *pflag.FlagSet) (LatestQueueCompleteConfig, error) {
	v := viper.New()
	if err := v.BindPFlags(flags); err != nil {
		return LatestQueueCompleteConfig{}, fmt.Errorf("config: binding flags: %w", err)
	}
	cfg := LatestQueueCompleteConfig{DataDirectory: v.GetString("data-directory")}
	if cfg.DataDirectory == "" {
		return cfg, fmt.Errorf("config: --data-directory is required")
	}
	return cfg, nil
}

// RequeueConfig is the requeue-tasks subcommand's configuration.
type RequeueConfig struct {
	DataDirectory string
	Timestamp     string
	RequeueType   string
}

// BindRequeueFlags registers that subcommand's flags.
func BindRequeueFlags(flags *pflag.FlagSet) {
	flags.String("data-directory", "", "run-directory root (required)")
	flags.String("timestamp", "", "run directory name to requeue against (required)")
	flags.String("requeue-type", "", "errored or non-critical-errored (required)")
}

// LoadRequeue resolves RequeueConfig from flags.
func LoadRequeue(flags *pflag.FlagSet) (RequeueConfig, error) {
	v := viper.New()
	if err := v.BindPFlags(flags); err != nil {
		return RequeueConfig{}, fmt.Errorf("config: binding flags: %w", err)
	}
	cfg := RequeueConfig{
		DataDirectory: v.GetString("data-directory"),
		Timestamp:     v.GetString("timestamp"),
		RequeueType:   v.GetString("requeue-type"),
	}
	if cfg.DataDirectory == "" {
		return cfg, fmt.Errorf("config: --data-directory is required")
	}
	if cfg.Timestamp == "" {
		return cfg, fmt.Errorf("config: --timestamp is required")
	}
	if cfg.RequeueType != "errored" && cfg.RequeueType != "non-critical-errored" {
		return cfg, fmt.Errorf("config: --requeue-type must be \"errored\" or \"non-critical-errored\", got %q", cfg.RequeueType)
	}
	return cfg, nil
}
