package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/aalemi-dev/oboe/config"
	"github.com/aalemi-dev/oboe/logger"
	"github.com/aalemi-dev/oboe/reporter"
	"github.com/aalemi-dev/oboe/settings"
	"github.com/aalemi-dev/oboe/tracing"
)

var reportFlags struct {
	layer   string
	xtrace  string
	timeout time.Duration
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Send a test entry and exit event",
	Long: `Send one entry and one exit event through the reporter of the config
file, and print the X-Trace identifier of the exit event. Nothing is sent
when the settings decide not to sample.

Examples:
  oboectl report --config /etc/oboe.yaml
  OBOE_REPORTER_TYPE=file OBOE_REPORTER_FILE_PATH=/tmp/events.bson oboectl report`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportFlags.layer, "layer", "oboectl", "layer name")
	reportCmd.Flags().StringVar(&reportFlags.xtrace, "xtrace", "", "inbound X-Trace identifier to continue")
	reportCmd.Flags().DurationVar(&reportFlags.timeout, "timeout", 10*time.Second, "start, report and stop timeout")
}

func runReport(cmd *cobra.Command, args []string) error {
	var client *tracing.Client
	app := fx.New(
		config.Module(cfgFile),
		logger.FXModule,
		settings.FXModule,
		reporter.FXModule,
		tracing.FXModule,
		fx.Populate(&client),
		fx.NopLogger,
	)
	if err := app.Err(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), reportFlags.timeout)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, stop := context.WithTimeout(context.Background(), reportFlags.timeout)
		defer stop()
		_ = app.Stop(stopCtx)
	}()

	ctx, d, err := client.StartLayer(ctx, tracing.StartOptions{
		Layer:  reportFlags.layer,
		XTrace: reportFlags.xtrace,
		KVs:    []any{"Command", "oboectl report"},
	})
	if err != nil {
		return err
	}
	xtrace, err := client.EndLayer(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "sampled: %t (%s)\n", d.Sampled, d.Source)
	fmt.Fprintf(out, "x-trace: %s\n", xtrace)
	return nil
}
