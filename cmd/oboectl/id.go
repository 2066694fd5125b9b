package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aalemi-dev/oboe/metadata"
)

var idFlags struct {
	unsampled bool
	v1        bool
	format    string
}

var idCmd = &cobra.Command{
	Use:   "id",
	Short: "Generate and decode X-Trace identifiers",
}

var idNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Print a new random identifier",
	Long: `Print a new random X-Trace identifier.

Examples:
  # Sampled version 2 identifier
  oboectl id new

  # Legacy version 1 identifier
  oboectl id new --v1`,
	Args: cobra.NoArgs,
	RunE: newID,
}

var idParseCmd = &cobra.Command{
	Use:   "parse <xtrace>",
	Short: "Decode an identifier",
	Args:  cobra.ExactArgs(1),
	RunE:  parseID,
}

func init() {
	idNewCmd.Flags().BoolVar(&idFlags.unsampled, "unsampled", false, "clear the sampled flag")
	idNewCmd.Flags().BoolVar(&idFlags.v1, "v1", false, "print the legacy version 1 form")
	idParseCmd.Flags().StringVar(&idFlags.format, "format", "text", "output format: text, json")

	idCmd.AddCommand(idNewCmd, idParseCmd)
	rootCmd.AddCommand(idCmd)
}

func newID(cmd *cobra.Command, args []string) error {
	md, err := metadata.Random()
	if err != nil {
		return err
	}
	md = md.WithSampled(!idFlags.unsampled)

	var s string
	if idFlags.v1 {
		s, err = md.FormatV1()
	} else {
		s, err = md.Format()
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), s)
	return nil
}

type idInfo struct {
	Version int    `json:"version"`
	TaskID  string `json:"task_id"`
	OpID    string `json:"op_id"`
	Sampled bool   `json:"sampled"`
}

func parseID(cmd *cobra.Command, args []string) error {
	md, version, err := metadata.ParseVersion(args[0])
	if err != nil {
		return fmt.Errorf("invalid identifier: %w", err)
	}
	info := idInfo{
		Version: version,
		TaskID:  md.TaskIDString(),
		OpID:    md.OpIDString(),
		Sampled: md.Sampled,
	}

	out := cmd.OutOrStdout()
	switch idFlags.format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	case "text":
		fmt.Fprintf(out, "version: %d\n", info.Version)
		fmt.Fprintf(out, "task_id: %s\n", info.TaskID)
		fmt.Fprintf(out, "op_id:   %s\n", info.OpID)
		fmt.Fprintf(out, "sampled: %t\n", info.Sampled)
		return nil
	default:
		return fmt.Errorf("unknown format %q", idFlags.format)
	}
}
