package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cklxx/scoutqueue/internal/clock"
	"github.com/cklxx/scoutqueue/internal/command/genericsearch"
	"github.com/cklxx/scoutqueue/internal/config"
	"github.com/cklxx/scoutqueue/internal/logging"
	"github.com/cklxx/scoutqueue/internal/metrics"
	"github.com/cklxx/scoutqueue/internal/runner"
	"github.com/cklxx/scoutqueue/internal/taskqueue"
)

func newExecuteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Resume or start a crawl run.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExecute(cmd)
		},
	}
	config.BindExecuteFlags(cmd.Flags())
	return cmd
}

func runExecute(cmd *cobra.Command) error {
	cfg, err := config.LoadExecute(cmd.Flags())
	if err != nil {
		return err
	}

	logging.ApplyGlobalMinLevel(logging.ParseLevel(cfg.LogLevel))
	logger := logging.RunnerLogger

	fileCfg, err := genericsearch.LoadFileConfig(cfg.CommandFile)
	if err != nil {
		return err
	}

	ids := clock.UUIDGenerator{}
	fetcher := genericsearch.NewHTTPFetcher(genericsearch.HTTPFetcherConfig{
		Endpoint:        fileCfg.Endpoint,
		AuthToken:       cfg.GithubToken,
		RecordHTTPCalls: cfg.RecordHTTPCalls,
		Logger:          logging.QueueLogger,
	})
	searchCmd := genericsearch.New(genericsearch.Config{
		Start:                fileCfg.Start,
		End:                  fileCfg.End,
		PartCount:            fileCfg.PartCount,
		RateLimitStopPercent: cfg.RateLimitStopPercent,
	}, fetcher, ids)

	var metricsRegistry *metrics.Registry
	if cfg.MetricsAddr != "" {
		metricsRegistry = metrics.New()
		go func() {
			if err := metricsRegistry.Serve(cfg.MetricsAddr); err != nil {
				logger.Error("metrics server stopped: %v", err)
			}
		}()
	}

	r := runner.New(runner.Config{
		DataDirectory:        cfg.DataDirectory,
		RenewPeriodInDays:    cfg.RenewPeriodInDays,
		MaxRunTimeInMinutes:  cfg.MaxRunTimeInMinutes,
		ReportPeriodInMs:     cfg.ReportPeriodInMs,
		RateLimitStopPercent: cfg.RateLimitStopPercent,
		Metrics:              metricsRegistry,
		Queue: taskqueue.Config{
			Concurrency:    cfg.Concurrency,
			PerTaskTimeout: cfg.PerTaskTimeout,
			IntervalCap:    cfg.IntervalCap,
			Interval:       cfg.Interval,
			RetryCount:     cfg.RetryCount,
		},
	}, searchCmd, fetcher, clock.RealClock{}, ids, logger)

	result, err := r.Run(cmd.Context())
	if err == runner.ErrNoWork {
		logger.Info("latest run already complete within the renew period, nothing to do")
		return nil
	}
	if err != nil {
		return fmt.Errorf("execute: %w", err)
	}

	logger.Info("run %s finished: resolved=%d errored=%d archived=%d",
		result.RunDir, len(result.State.Resolved), len(result.State.Errored), len(result.State.Archived))
	return nil
}
