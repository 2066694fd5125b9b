package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// cfgFile is the --config flag shared by every subcommand.
var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "oboectl",
	Short: "oboectl - X-Trace identifier and sampling tool",
	Long: `oboectl works with the oboe tracing core from the command line:
  - generate and decode X-Trace identifiers
  - dry run sampling decisions against a trace mode and sample rate
  - send test events through the configured reporter`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (OBOE_* environment variables always apply)")
}
