package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aalemi-dev/oboe/config"
	"github.com/aalemi-dev/oboe/settings"
)

var sampleFlags struct {
	mode      string
	rate      int
	layer     string
	xtrace    string
	synthetic string
	url       string
	count     int
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Dry run sampling decisions",
	Long: `Run sampling decisions with the settings of the config file, overridden
by the flags, and print the outcome.

Examples:
  # One decision for a continued trace
  oboectl sample --mode through --xtrace 2B0123...01

  # Observed sample fraction over many new traces
  oboectl sample --rate 250000 --count 100000`,
	Args: cobra.NoArgs,
	RunE: runSample,
}

func init() {
	rootCmd.AddCommand(sampleCmd)

	sampleCmd.Flags().StringVar(&sampleFlags.mode, "mode", "", "trace mode: never, always, through")
	sampleCmd.Flags().IntVar(&sampleFlags.rate, "rate", settings.RateUnset, "sample rate out of 1000000")
	sampleCmd.Flags().StringVar(&sampleFlags.layer, "layer", "", "layer name")
	sampleCmd.Flags().StringVar(&sampleFlags.xtrace, "xtrace", "", "inbound X-Trace identifier")
	sampleCmd.Flags().StringVar(&sampleFlags.synthetic, "synthetic", "", "synthetic monitoring id")
	sampleCmd.Flags().StringVar(&sampleFlags.url, "url", "", "request URL, for the rate limiter")
	sampleCmd.Flags().IntVarP(&sampleFlags.count, "count", "n", 1, "number of decisions")
}

func runSample(cmd *cobra.Command, args []string) error {
	if sampleFlags.count < 1 {
		return fmt.Errorf("--count must be at least 1")
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	s, err := settings.New(cfg.Settings)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("mode") {
		mode, err := settings.ParseTraceMode(sampleFlags.mode)
		if err != nil {
			return err
		}
		if err := s.SetTraceMode(mode); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("rate") {
		if err := s.SetSampleRate(sampleFlags.rate); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if sampleFlags.count == 1 {
		d := s.ShouldSample(sampleFlags.layer, sampleFlags.xtrace, sampleFlags.synthetic, sampleFlags.url)
		fmt.Fprintf(out, "sampled:    %t\n", d.Sampled)
		fmt.Fprintf(out, "source:     %s\n", d.Source)
		fmt.Fprintf(out, "rate:       %d\n", d.Rate)
		fmt.Fprintf(out, "trace_mode: %s\n", d.TraceMode)
		fmt.Fprintf(out, "flags:      %s\n", d.Flags)
		fmt.Fprintf(out, "layer:      %s\n", d.Layer)
		fmt.Fprintf(out, "continued:  %t\n", d.Continued)
		return nil
	}

	sampled := 0
	sources := map[settings.Source]int{}
	var rate int
	for i := 0; i < sampleFlags.count; i++ {
		d := s.ShouldSample(sampleFlags.layer, sampleFlags.xtrace, sampleFlags.synthetic, sampleFlags.url)
		if d.Sampled {
			sampled++
		}
		sources[d.Source]++
		rate = d.Rate
	}
	fmt.Fprintf(out, "sampled: %d/%d (%.4f, rate %.4f)\n",
		sampled, sampleFlags.count,
		float64(sampled)/float64(sampleFlags.count),
		float64(rate)/settings.SampleResolution)
	for src, n := range sources {
		fmt.Fprintf(out, "  %s: %d\n", src, n)
	}
	return nil
}
